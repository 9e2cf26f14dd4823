// Package files discovers the input tables available to the workflows.
//
// Discovery lists .csv, .csv.gz and .xlsx files below the data directory
// and resolves user-supplied names into paths that stay inside it.
//
//	discovery := files.NewDiscovery(paths.DataDir)
//	inputs, err := discovery.FindDataFiles("general")
//	path, err := discovery.Resolve("CORE/income-by-country.csv")
package files
