// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package main is the entry point for the Marquee recommendation server.

Marquee serves hybrid movie recommendations that blend TF-IDF genre
similarity with a biased matrix factorization model trained on user
ratings. It reads the MovieLens movies.csv and ratings.csv files.

# Startup

 1. Configuration: Koanf v2 defaults, optional config.yaml, environment variables
 2. Logging: zerolog, JSON or console
 3. Dataset reader: embedded DuckDB
 4. Snapshot store: BadgerDB (STORAGE_ENABLED)
 5. Initial build: similarity index and SVD model, restored from a snapshot
    when one matches the input files and hyper-parameters
 6. Supervisor tree: rebuild service and HTTP server

The server exits non-zero if the initial build fails; it never serves
without a model.

	RootSupervisor ("marquee")
	├── ModelSupervisor ("model-layer")
	│   └── RebuildService (RECOMMEND_REBUILD_INTERVAL > 0)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains in-flight
requests for up to SHUTDOWN_TIMEOUT, then the reader and store are closed.

# Example Usage

	export MOVIES_PATH=/data/ml-latest-small/movies.csv
	export RATINGS_PATH=/data/ml-latest-small/ratings.csv
	export STORAGE_PATH=/data/models
	./marquee-server

	curl 'http://localhost:8080/api/v1/recommendations?user_id=1&title=Toy+Story+(1995)&k=5'
*/
package main
