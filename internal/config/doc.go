// Package config provides centralized configuration for featurelab.
//
// # Configuration Sources
//
// Configuration is layered in order of increasing precedence:
//
//	1. Default values (Default)
//	2. A YAML file: $FEATURELAB_CONFIG, featurelab.yaml or configs/featurelab.yaml
//	3. Environment variables
//
// # Environment Variables
//
// Variables are namespaced FEATURELAB_<SECTION>_<FIELD>:
//
//	FEATURELAB_SERVER_PORT=8080
//	FEATURELAB_LOGGING_LEVEL=debug
//	FEATURELAB_PATHS_ROOT=/srv/featurelab
//	FEATURELAB_WORKFLOWS_TITANIC_DROP_COLUMNS=Name,Ticket,Cabin
//	FEATURELAB_WORKFLOWS_INCOME_SKIP_ROWS=2
//
// # Path Management
//
// Paths describes the data/ and logs/ layout below a root directory. The
// root defaults to the working directory:
//
//	cfg, _ := config.Load()
//	train := cfg.TitanicTrainPath()        // data/general/titanic_train.csv
//	out := cfg.GetPaths().GetReportPath("x_train.csv")
//
// # Validation
//
// Struct tags are checked with go-playground/validator after all sources
// have been applied; an invalid value fails Load.
package config
