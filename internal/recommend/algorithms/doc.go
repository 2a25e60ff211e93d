// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package algorithms implements the two signals blended by the hybrid engine.
//
// # Content Similarity
//
// SimilarityIndex vectorizes item genres with TF-IDF and precomputes cosine
// similarity between every pair of items:
//
//	idx := algorithms.NewSimilarityIndex(logger)
//	if err := idx.Build(ctx, corpus); err != nil {
//	    return err
//	}
//	similar := idx.SimilarTo("Toy Story (1995)", 5)
//
// Genre labels are lowercased and split into words of two or more
// characters; English stop words are dropped. Because many movies share the
// same genre combination, the matrix is stored per distinct genre profile.
//
// # Rating Prediction
//
// SVD is a biased matrix factorization model trained by stochastic gradient
// descent on explicit ratings:
//
//	train, test := algorithms.TrainTestSplit(table.Ratings(), 0.2, 42)
//	svd := algorithms.NewSVD(algorithms.DefaultSVDConfig(), logger)
//	if err := svd.Train(ctx, table, train); err != nil {
//	    return err
//	}
//	eval := algorithms.Evaluate(svd, test)
//	top := svd.RankForUser(userID, corpus.IDs(), 5)
//
// Initialization and the split are seeded, so identical inputs produce
// identical models. Trained parameters can be exported with Snapshot and
// loaded again with Restore.
//
// # Thread Safety
//
// Both types guard their state with a read-write mutex. Queries take the
// read lock; Build, Train and Restore take the write lock.
package algorithms
