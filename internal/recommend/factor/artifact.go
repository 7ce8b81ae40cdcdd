// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package factor

import (
	"bytes"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/courserank/internal/models"
)

// Artifact is the serialized form of a Model. Tables are row-major.
type Artifact struct {
	Factors     int       `msgpack:"factors"`
	Combiner    Combiner  `msgpack:"combiner"`
	LearnerRows int       `msgpack:"learner_rows"`
	LearnerData []float64 `msgpack:"learner_data"`
	CourseRows  int       `msgpack:"course_rows"`
	CourseData  []float64 `msgpack:"course_data"`
	Weights     []float64 `msgpack:"weights,omitempty"`
	Bias        float64   `msgpack:"bias"`
}

// Model validates the artifact and builds a Model from it.
func (a *Artifact) Model() (*Model, error) {
	if a.Factors <= 0 || a.LearnerRows <= 0 || a.CourseRows <= 0 {
		return nil, fmt.Errorf("artifact shape %dx%d / %dx%d: %w",
			a.LearnerRows, a.Factors, a.CourseRows, a.Factors, models.ErrInvalidArgument)
	}
	if len(a.LearnerData) != a.LearnerRows*a.Factors {
		return nil, fmt.Errorf("learner table has %d values, want %d: %w",
			len(a.LearnerData), a.LearnerRows*a.Factors, models.ErrInvalidArgument)
	}
	if len(a.CourseData) != a.CourseRows*a.Factors {
		return nil, fmt.Errorf("course table has %d values, want %d: %w",
			len(a.CourseData), a.CourseRows*a.Factors, models.ErrInvalidArgument)
	}

	learners := mat.NewDense(a.LearnerRows, a.Factors, append([]float64(nil), a.LearnerData...))
	courses := mat.NewDense(a.CourseRows, a.Factors, append([]float64(nil), a.CourseData...))
	return NewModel(learners, courses, a.Combiner, a.Weights, a.Bias)
}

// NewArtifact captures a model for serialization.
func NewArtifact(m *Model) *Artifact {
	return &Artifact{
		Factors:     m.Factors(),
		Combiner:    m.combiner,
		LearnerRows: m.LearnerRows(),
		LearnerData: rowMajor(m.learners),
		CourseRows:  m.CourseRows(),
		CourseData:  rowMajor(m.courses),
		Weights:     append([]float64(nil), m.weights...),
		Bias:        m.bias,
	}
}

func rowMajor(d *mat.Dense) []float64 {
	r, c := d.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		out = append(out, d.RawRowView(i)...)
	}
	return out
}

// Encode writes the artifact as msgpack.
func (a *Artifact) Encode(w io.Writer) error {
	if err := msgpack.NewEncoder(w).Encode(a); err != nil {
		return fmt.Errorf("encode factor artifact: %w", err)
	}
	return nil
}

// DecodeArtifact reads a msgpack artifact.
func DecodeArtifact(r io.Reader) (*Artifact, error) {
	var a Artifact
	if err := msgpack.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode factor artifact: %w", err)
	}
	return &a, nil
}

// Load decodes an artifact from raw bytes and builds the model.
func Load(data []byte) (*Model, error) {
	a, err := DecodeArtifact(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return a.Model()
}
