// Package app composes the innovators site from its parts.
//
//	internal/app/
//	├── application.go   # service wiring over a set of stores
//	├── domain/          # entities (user, solution, job, course, event, pitch)
//	├── storage/         # store interfaces, memory/ and postgres/ implementations
//	├── services/        # validation, defaults and orchestration per catalog
//	├── seed/            # first-run demo data
//	├── httpapi/         # HTML pages and the JSON API
//	├── metrics/         # Prometheus collectors
//	└── runtime/         # process wiring: config, database, HTTP server
//
// Dependencies point downward: httpapi calls services, services call
// storage interfaces, and only runtime picks concrete stores.
package app
