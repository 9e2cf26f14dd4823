package datasets

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"featurelab/internal/errors"
)

//go:embed data/iris.data
var irisData []byte

var (
	irisFeatureNames = []string{
		"sepal length (cm)",
		"sepal width (cm)",
		"petal length (cm)",
		"petal width (cm)",
	}
	irisTargetNames = []string{"setosa", "versicolor", "virginica"}
)

const irisDescription = `Iris plants dataset (Fisher, 1936). 150 samples, 50 per class,
4 numeric features in centimetres. Classes: setosa, versicolor, virginica.`

// LoadIris returns the iris measurements bundled with the binary
func LoadIris() (*Bunch, error) {
	return parseIris(irisData)
}

func parseIris(raw []byte) (*Bunch, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.NewParsingError("failed to read iris data", err)
	}

	classes := make(map[string]int, len(irisTargetNames))
	for i, name := range irisTargetNames {
		classes["Iris-"+name] = i
	}

	data := make([]float64, 0, len(records)*len(irisFeatureNames))
	target := make([]int, 0, len(records))

	for i, rec := range records {
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rec) != len(irisFeatureNames)+1 {
			return nil, errors.NewParsingError(
				fmt.Sprintf("iris line %d: expected %d fields, got %d", i+1, len(irisFeatureNames)+1, len(rec)), nil)
		}

		for _, field := range rec[:len(irisFeatureNames)] {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, errors.NewParsingError(fmt.Sprintf("iris line %d", i+1), err)
			}
			data = append(data, v)
		}

		label := strings.TrimSpace(rec[len(irisFeatureNames)])
		class, ok := classes[label]
		if !ok {
			return nil, errors.NewParsingError(fmt.Sprintf("iris line %d: unknown class %q", i+1, label), nil)
		}
		target = append(target, class)
	}

	return newBunch("iris", data, target, irisFeatureNames, irisTargetNames, irisDescription)
}
