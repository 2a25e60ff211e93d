// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package movielens_import loads MovieLens-layout CSV files into a corpus and
// interaction table.
//
// Files are parsed by an in-memory DuckDB connection using read_csv_auto, so
// quoting, headers and column inference follow DuckDB's CSV reader:
//
//	movies.csv   movieId,title,genres          (genres separated by "|")
//	ratings.csv  userId,movieId,rating[,timestamp]
//
// # Dropped Rows
//
// Rows with a missing or non-numeric required field are filtered in SQL.
// Ratings that reference a movie absent from movies.csv are dropped while
// building the interaction table. Both counts are logged at warn level and
// exported as import_rows_dropped_total.
//
// # Fingerprint
//
// Dataset.Fingerprint hashes file sizes and modification times. The rebuild
// service polls it to detect changed inputs and the snapshot store uses it to
// key saved models.
//
//nolint:revive // package name with underscore is intentional for clarity
package movielens_import
