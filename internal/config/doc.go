// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package config provides layered configuration loading for Marquee.

Configuration is loaded with Koanf v2 from three sources, later sources
overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. Optional YAML file: CONFIG_PATH, then config.yaml, config.yml,
    /etc/marquee/config.yaml, /etc/marquee/config.yml
 3. Environment variables, mapped explicitly (unmapped variables are ignored)

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT, REQUEST_TIMEOUT, SHUTDOWN_TIMEOUT

Logging:
  - LOG_LEVEL (trace, debug, info, warn, error), LOG_FORMAT (json, console), LOG_CALLER

Data:
  - MOVIES_PATH, RATINGS_PATH, DATA_QUERY_TIMEOUT

Recommendation:
  - RECOMMEND_WEIGHT_CONTENT, RECOMMEND_WEIGHT_COLLAB
  - RECOMMEND_DEFAULT_K, RECOMMEND_MAX_K
  - RECOMMEND_FACTORS, RECOMMEND_EPOCHS, RECOMMEND_INIT_MEAN, RECOMMEND_INIT_STD_DEV,
    RECOMMEND_LEARNING_RATE, RECOMMEND_REGULARIZATION
  - RECOMMEND_SCALE_MIN, RECOMMEND_SCALE_MAX, RECOMMEND_TEST_FRACTION, RECOMMEND_SEED
  - RECOMMEND_CACHE_ENABLED, RECOMMEND_CACHE_TTL, RECOMMEND_CACHE_MAX_ENTRIES
  - RECOMMEND_REBUILD_INTERVAL (0 disables the rebuild service)

Storage:
  - STORAGE_ENABLED, STORAGE_PATH, STORAGE_IN_MEMORY, STORAGE_KEEP_VERSIONS

Security:
  - CORS_ORIGINS (comma-separated), RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

# Example YAML

	server:
	  port: 8080
	data:
	  movies_path: /data/ml-latest-small/movies.csv
	  ratings_path: /data/ml-latest-small/ratings.csv
	recommend:
	  weight_content: 0.4
	  weight_collab: 0.6
	  rebuild_interval: 15m
	storage:
	  path: /data/models
*/
package config
