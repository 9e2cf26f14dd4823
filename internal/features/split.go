package features

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"featurelab/internal/errors"
	"featurelab/internal/table"
	"featurelab/pkg/contracts/domain"
)

// Split is a table separated into a feature matrix and a target vector
type Split struct {
	X            *mat.Dense
	FeatureNames []string
	Y            []float64
	Target       string
}

// SplitTarget separates target from the remaining columns. Every feature
// column must be numeric, so categorical columns need encoding first.
func SplitTarget(t *table.Table, target string) (*Split, error) {
	if !t.HasColumn(target) {
		return nil, errors.NewAppValidationError(fmt.Sprintf("target column %q not found", target)).
			WithContext("column", target)
	}
	if t.Nrow() == 0 {
		return nil, errors.NewAppValidationError("table has no rows")
	}

	y, err := t.Float(target)
	if err != nil {
		return nil, err
	}

	features := make([]string, 0, t.Ncol()-1)
	for _, name := range t.Names() {
		if name == target {
			continue
		}
		typ, err := t.ColumnType(name)
		if err != nil {
			return nil, err
		}
		if typ == domain.ColumnString {
			return nil, errors.NewAppValidationError(
				fmt.Sprintf("feature column %q is categorical; encode it first", name)).
				WithContext("column", name)
		}
		features = append(features, name)
	}
	if len(features) == 0 {
		return nil, errors.NewAppValidationError("no feature columns besides the target")
	}

	x := mat.NewDense(t.Nrow(), len(features), nil)
	for j, name := range features {
		col, err := t.Float(name)
		if err != nil {
			return nil, err
		}
		x.SetCol(j, col)
	}

	return &Split{X: x, FeatureNames: features, Y: y, Target: target}, nil
}

// Samples returns the number of rows
func (s *Split) Samples() int {
	r, _ := s.X.Dims()
	return r
}

// Positives counts target values equal to one, the survivors of the
// Titanic workflow
func (s *Split) Positives() int {
	return floats.Count(func(v float64) bool { return v == 1 }, s.Y)
}
