// Package app wires the featurelab web service: configuration, logging,
// OpenTelemetry, the workflow services, the chi router and the HTTP server.
//
// # Initialization Flow
//
//	1. Load configuration from the environment and the optional YAML file
//	2. Initialize the slog logger and OpenTelemetry providers
//	3. Create the output directories below the data root
//	4. Construct the services with the shared metrics
//	5. Build the middleware chain and mount the handlers
//	6. Create the HTTP server from the server section of the config
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// Run blocks until SIGINT or SIGTERM and then shuts the server down within
// the configured shutdown timeout.
package app
