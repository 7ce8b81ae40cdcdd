// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package corpus

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/courserank/internal/models"
)

// Indexable course fields.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldTopics      = "topics"
)

// Options controls index construction.
type Options struct {
	// Fields selects the course text fed to the vectorizer.
	// Default: description only.
	Fields []string

	// MinTokenLength drops shorter tokens. Default: 2.
	MinTokenLength int

	// Workers bounds parallel similarity rows. Default: GOMAXPROCS.
	Workers int
}

func (o Options) withDefaults() Options {
	if len(o.Fields) == 0 {
		o.Fields = []string{FieldDescription}
	}
	if o.MinTokenLength <= 0 {
		o.MinTokenLength = 2
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// sparseVector is an L2-normalized TF-IDF row with terms in ascending order.
type sparseVector struct {
	terms   []int
	weights []float64
}

func (v sparseVector) isZero() bool {
	return len(v.terms) == 0
}

// dot assumes both vectors keep terms sorted.
func (v sparseVector) dot(o sparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.terms) && j < len(o.terms) {
		switch {
		case v.terms[i] == o.terms[j]:
			sum += v.weights[i] * o.weights[j]
			i++
			j++
		case v.terms[i] < o.terms[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Index is an immutable snapshot of the catalog with precomputed pairwise
// cosine similarities. All lookups are by course ID. An Index is safe for
// concurrent use.
type Index struct {
	courses  []models.Course
	position map[string]int
	vectors  []sparseVector
	sims     *mat.SymDense
	vocab    map[string]int

	version uint64
	builtAt time.Time
}

// Build vectorizes courses and computes the similarity matrix.
//
// Term weights are raw counts times the smoothed inverse document frequency
// ln((1+n)/(1+df)) + 1, with each row L2-normalized. Courses without any
// indexable terms get a zero vector and are similar to nothing.
//
// Errors:
//   - models.ErrInvalidArgument: empty or duplicate course ID
//   - models.ErrEmptyCatalog: no course produced a single term
func Build(ctx context.Context, courses []models.Course, opts Options) (*Index, error) {
	opts = opts.withDefaults()
	for _, f := range opts.Fields {
		if f != FieldTitle && f != FieldDescription && f != FieldTopics {
			return nil, fmt.Errorf("unknown index field %q: %w", f, models.ErrInvalidArgument)
		}
	}

	n := len(courses)
	position := make(map[string]int, n)
	snapshot := make([]models.Course, n)
	for i, c := range courses {
		if !models.ValidID(c.ID) {
			return nil, fmt.Errorf("course at position %d has invalid id %q: %w", i, c.ID, models.ErrInvalidArgument)
		}
		if _, dup := position[c.ID]; dup {
			return nil, fmt.Errorf("duplicate course id %q: %w", c.ID, models.ErrInvalidArgument)
		}
		position[c.ID] = i
		snapshot[i] = c
		snapshot[i].Topics = append([]string(nil), c.Topics...)
	}

	tokenizer := NewTokenizer(opts.MinTokenLength)
	counts := make([]map[string]int, n)
	docFreq := make(map[string]int)
	for i, c := range snapshot {
		tf := make(map[string]int)
		for _, tok := range tokenizer.Tokenize(documentText(c, opts.Fields)) {
			tf[tok]++
		}
		for term := range tf {
			docFreq[term]++
		}
		counts[i] = tf
	}
	if len(docFreq) == 0 {
		return nil, fmt.Errorf("%d courses produced no index terms: %w", n, models.ErrEmptyCatalog)
	}

	// Term ids follow lexical order so rows are built already sorted.
	terms := make([]string, 0, len(docFreq))
	for term := range docFreq {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for id, term := range terms {
		vocab[term] = id
		idf[id] = math.Log(float64(1+n)/float64(1+docFreq[term])) + 1
	}

	vectors := make([]sparseVector, n)
	for i, tf := range counts {
		vectors[i] = vectorize(tf, vocab, idf)
	}

	sims, err := similarityMatrix(ctx, vectors, opts.Workers)
	if err != nil {
		return nil, err
	}

	return &Index{
		courses:  snapshot,
		position: position,
		vectors:  vectors,
		sims:     sims,
		vocab:    vocab,
		builtAt:  time.Now(),
	}, nil
}

func documentText(c models.Course, fields []string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		switch f {
		case FieldTitle:
			parts = append(parts, c.Title)
		case FieldDescription:
			parts = append(parts, c.Description)
		case FieldTopics:
			parts = append(parts, strings.Join(c.Topics, " "))
		}
	}
	return strings.Join(parts, " ")
}

func vectorize(tf map[string]int, vocab map[string]int, idf []float64) sparseVector {
	if len(tf) == 0 {
		return sparseVector{}
	}
	ids := make([]int, 0, len(tf))
	for term := range tf {
		ids = append(ids, vocab[term])
	}
	sort.Ints(ids)

	v := sparseVector{terms: ids, weights: make([]float64, len(ids))}
	byID := make(map[int]int, len(tf))
	for term, count := range tf {
		byID[vocab[term]] = count
	}
	for k, id := range ids {
		v.weights[k] = float64(byID[id]) * idf[id]
	}
	if norm := floats.Norm(v.weights, 2); norm > 0 {
		floats.Scale(1/norm, v.weights)
	}
	return v
}

// similarityMatrix fills the upper triangle row by row in parallel.
func similarityMatrix(ctx context.Context, vectors []sparseVector, workers int) (*mat.SymDense, error) {
	n := len(vectors)
	rows := make([][]float64, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row := make([]float64, n-i)
			if !vectors[i].isZero() {
				row[0] = 1
				for j := i + 1; j < n; j++ {
					row[j-i] = clampUnit(vectors[i].dot(vectors[j]))
				}
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compute similarity matrix: %w", err)
	}

	sims := mat.NewSymDense(n, nil)
	for i, row := range rows {
		for k, s := range row {
			sims.SetSym(i, i+k, s)
		}
	}
	return sims, nil
}

func clampUnit(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}

// Len returns the number of indexed courses.
func (idx *Index) Len() int {
	return len(idx.courses)
}

// Version is the publish counter assigned by Holder; zero for unpublished indexes.
func (idx *Index) Version() uint64 {
	return idx.version
}

// BuiltAt returns when the index was built.
func (idx *Index) BuiltAt() time.Time {
	return idx.builtAt
}

// VocabularySize returns the number of distinct terms.
func (idx *Index) VocabularySize() int {
	return len(idx.vocab)
}

// Contains reports whether the course is indexed.
func (idx *Index) Contains(courseID string) bool {
	_, ok := idx.position[courseID]
	return ok
}

// Course returns the indexed course record.
func (idx *Index) Course(courseID string) (models.Course, error) {
	i, ok := idx.position[courseID]
	if !ok {
		return models.Course{}, fmt.Errorf("course %q: %w", courseID, models.ErrNotFound)
	}
	return idx.courses[i], nil
}

// Courses returns the indexed courses in index order.
func (idx *Index) Courses() []models.Course {
	out := make([]models.Course, len(idx.courses))
	copy(out, idx.courses)
	return out
}

// Position returns the row of courseID in the similarity matrix.
func (idx *Index) Position(courseID string) (int, bool) {
	i, ok := idx.position[courseID]
	return i, ok
}

// CourseAt returns the course at row i.
func (idx *Index) CourseAt(i int) models.Course {
	return idx.courses[i]
}

// SimilarityAt returns the similarity between rows i and j.
func (idx *Index) SimilarityAt(i, j int) float64 {
	return idx.sims.At(i, j)
}

// Similarity returns the cosine similarity of two indexed courses.
// The result is symmetric; it is 1 for a course with itself unless the
// course has no indexable terms.
func (idx *Index) Similarity(a, b string) (float64, error) {
	i, ok := idx.position[a]
	if !ok {
		return 0, fmt.Errorf("course %q: %w", a, models.ErrNotFound)
	}
	j, ok := idx.position[b]
	if !ok {
		return 0, fmt.Errorf("course %q: %w", b, models.ErrNotFound)
	}
	return idx.sims.At(i, j), nil
}

// TopKSimilar returns up to k other courses ordered by descending similarity
// to courseID, ties broken by ascending course ID. The query course is never
// included. k <= 0 yields an empty result.
func (idx *Index) TopKSimilar(courseID string, k int) ([]models.Recommendation, error) {
	i, ok := idx.position[courseID]
	if !ok {
		return nil, fmt.Errorf("course %q: %w", courseID, models.ErrNotFound)
	}
	if k <= 0 {
		return []models.Recommendation{}, nil
	}

	recs := make([]models.Recommendation, 0, len(idx.courses)-1)
	for j, c := range idx.courses {
		if j == i {
			continue
		}
		recs = append(recs, models.Recommendation{CourseID: c.ID, Score: idx.sims.At(i, j)})
	}
	models.SortRecommendations(recs)
	if len(recs) > k {
		recs = recs[:k]
	}
	return recs, nil
}
