// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

// Package recommend ranks courses for learners by fusing content similarity
// with a pre-trained latent factor model.
//
// # Architecture
//
//	Recommend(learner, limit)
//	    -> InteractionProvider          (engaged set)
//	    -> empty? PopularityProvider    (cold start)
//	    -> corpus.Index                 (mean similarity to engaged courses)
//	    -> CollaborativeScorer          (latent factor score, 0 when unknown)
//	    -> fuse, sort, truncate
//
//	Similar(course, limit) -> corpus.Index.TopKSimilar
//
// The fused score is
//
//	score = ContentWeight*content + CollaborativeWeight*collaborative
//
// with defaults 0.7 and 0.3. Ties are broken by ascending course ID so
// results are deterministic.
//
// # Concurrency
//
// Engine is safe for concurrent use. Every request loads the current corpus
// index once and uses that snapshot throughout; RebuildIndex swaps in a new
// snapshot atomically and never blocks readers.
//
// # Errors
//
// Errors wrap the sentinels in this package (aliases of the models
// package); match them with errors.Is. A missing factor row is not an
// error: the collaborative term for that candidate is zero.
package recommend
