// Package http implements the HTTP handlers of the featurelab web service.
// Handlers are a thin layer between the chi router and the services: they
// parse and validate the request, call one service method and render the
// result.
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Workflow package
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Routes
//
//	GET  /api/datasets                   toy dataset names
//	GET  /api/datasets/{name}            shape, class balance and feature stats
//	POST /api/datasets/{name}/split      seeded train/test partition
//	POST /api/features/vectorize         one-hot encode JSON records
//	POST /api/features/dummies           dummy-encode an uploaded CSV table
//	GET  /api/inequality                 income rows filtered by years and countries
//	GET  /api/inequality/presets         named queries
//	GET  /api/inequality/presets/{name}  run a named query
//	GET  /api/pricing/put                put prices over a spot grid
//	POST /api/pricing/benchmark          time repeated pricing of the grid
//	GET  /api/files                      data files below the data directory
//
// Table-shaped responses accept format=csv.
//
// # Error Handling
//
// Every error is rendered as RFC 7807 Problem Details by the shared
// errors.ErrorHandler:
//
//	{
//	    "type": "/errors/validation",
//	    "title": "Validation Failed",
//	    "status": 400,
//	    "detail": "target column \"Survived\" not found",
//	    "instance": "/api/features/dummies"
//	}
//
// # Testing
//
// Handlers depend on the service interfaces in service_interfaces.go and
// are tested with httptest and testify mocks.
package http
