// Command web serves the featurelab workflows over HTTP.
package main

import (
	"flag"
	"log/slog"
	"os"

	"featurelab/internal/app"
	"featurelab/internal/config"
)

func main() {
	configFile := flag.String("config", "", "config file (overrides "+config.ConfigFileEnv+")")
	flag.Parse()

	if *configFile != "" {
		if err := os.Setenv(config.ConfigFileEnv, *configFile); err != nil {
			slog.Error("Failed to select config file", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	application, err := app.NewApplication()
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
