// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

/*
Package main is the FitLens API server.

FitLens infers coarse appearance traits from a photo, ranks catalog
products for them with a rule scorer or a logistic regression model, and
records click, like and hide events.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("fitlens")
	├── DataSupervisor ("data-layer")
	│   ├── Cache GC (CACHE_BACKEND=badger)
	│   └── Embedded NATS server (NATS_EMBEDDED=true)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── Event tap (EVENTS_ENABLED=true)
	│   └── Model trainer
	└── APISupervisor ("api-layer")
	    └── HTTP server (chi)

Initialization order:

 1. Configuration: Koanf v2 (defaults, config file, environment)
 2. Logging: zerolog, JSON or console
 3. Store: DuckDB, SQLite or PostgreSQL, optionally seeded from JSON
 4. Response cache: in-memory LRU or BadgerDB
 5. Recommendation engine: rule and logistic scorers, MMR reranker
 6. Event bus: Watermill over gochannel or NATS
 7. HTTP handler and router
 8. Supervisor tree

# Configuration

Priority: environment variables > config file > defaults.

	# Server
	HTTP_PORT=8000
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console
	MAX_UPLOAD_BYTES=10485760

	# Store
	DATABASE_DRIVER=duckdb       # duckdb, sqlite, postgres
	DATABASE_DSN=/data/fitlens.duckdb
	DATABASE_SEED_FILE=/data/catalog.json

	# Recommendations
	RECOMMEND_SCORER=ml          # ml or rules
	RECOMMEND_FALLBACK_TO_RULES=true
	RECOMMEND_MODEL_PATH=/data/models
	RECOMMEND_TRAINING_CSV=/data/training.csv
	RECOMMEND_TRAIN_ON_STARTUP=true

	# Events
	EVENTS_TRANSPORT=gochannel   # gochannel or nats
	NATS_URL=nats://nats:4222
	NATS_EMBEDDED=false

	# Cache
	CACHE_BACKEND=memory         # memory or badger
	CACHE_PATH=/data/cache

A config file is read from CONFIG_PATH or the default locations. Changes
to its recommend section are applied to the running engine.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server stops
accepting connections, in-flight requests and background training get up
to 10 seconds, then the event bus, cache and store are closed.

# Example Usage

	export DATABASE_DRIVER=sqlite
	export DATABASE_DSN=./data/fitlens.sqlite
	export DATABASE_SEED_FILE=./catalog.json
	export RECOMMEND_SCORER=rules
	./server

	curl -F image=@me.jpg -F style=casual -F size=M http://localhost:8000/analyze-and-recommend

The fitlens CLI (cmd/fitlens) runs the same server with "fitlens serve"
and adds offline commands for data generation, training and export.
*/
package main
