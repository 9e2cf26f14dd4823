package datasets

import (
	"fmt"
	"strconv"

	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"featurelab/internal/errors"
	"featurelab/internal/table"
	"featurelab/pkg/contracts/domain"
)

// TargetColumn names the class column when a Bunch is rendered as a table
const TargetColumn = "target"

// Bunch is a toy dataset: a sample-by-feature matrix, integer class labels
// and the names of both.
type Bunch struct {
	Name         string
	Data         *mat.Dense
	Target       []int
	FeatureNames []string
	TargetNames  []string
	Description  string
}

// Samples returns the number of rows
func (b *Bunch) Samples() int {
	r, _ := b.Data.Dims()
	return r
}

// Features returns the number of feature columns
func (b *Bunch) Features() int {
	_, c := b.Data.Dims()
	return c
}

// ClassCounts counts samples per target name
func (b *Bunch) ClassCounts() map[string]int {
	counts := make(map[string]int, len(b.TargetNames))
	for _, name := range b.TargetNames {
		counts[name] = 0
	}
	for _, y := range b.Target {
		counts[b.targetName(y)]++
	}
	return counts
}

// Summary reports the shape, class balance and per-feature statistics
func (b *Bunch) Summary() domain.DatasetSummary {
	stats := make([]domain.FeatureStat, b.Features())
	col := make([]float64, b.Samples())
	for j, name := range b.FeatureNames {
		mat.Col(col, j, b.Data)

		mean, std := stat.MeanStdDev(col, nil)
		if len(col) < 2 {
			std = 0
		}
		stats[j] = domain.FeatureStat{
			Name: name,
			Mean: mean,
			Std:  std,
			Min:  floats.Min(col),
			Max:  floats.Max(col),
		}
	}

	return domain.DatasetSummary{
		Name:         b.Name,
		Samples:      b.Samples(),
		Features:     b.Features(),
		FeatureNames: append([]string(nil), b.FeatureNames...),
		TargetNames:  append([]string(nil), b.TargetNames...),
		ClassCounts:  b.ClassCounts(),
		Stats:        stats,
		Description:  b.Description,
	}
}

// Frame renders the bunch as a table of the features plus a target column
func (b *Bunch) Frame() (*table.Table, error) {
	cols := make([]series.Series, 0, b.Features()+1)
	for j, name := range b.FeatureNames {
		cols = append(cols, table.FloatColumn(name, mat.Col(nil, j, b.Data)))
	}
	cols = append(cols, series.New(b.Target, series.Int, TargetColumn))
	return table.New(cols...)
}

// rows returns a new bunch holding the given sample indexes in order
func (b *Bunch) rows(idx []int) *Bunch {
	data := mat.NewDense(len(idx), b.Features(), nil)
	target := make([]int, len(idx))
	for i, src := range idx {
		data.SetRow(i, b.Data.RawRowView(src))
		target[i] = b.Target[src]
	}

	return &Bunch{
		Name:         b.Name,
		Data:         data,
		Target:       target,
		FeatureNames: b.FeatureNames,
		TargetNames:  b.TargetNames,
		Description:  b.Description,
	}
}

func (b *Bunch) targetName(y int) string {
	if y >= 0 && y < len(b.TargetNames) {
		return b.TargetNames[y]
	}
	return strconv.Itoa(y)
}

func newBunch(name string, data []float64, target []int, features, targets []string, descr string) (*Bunch, error) {
	if len(target) == 0 {
		return nil, errors.NewParsingError(fmt.Sprintf("dataset %s has no samples", name), nil)
	}
	return &Bunch{
		Name:         name,
		Data:         mat.NewDense(len(target), len(features), data),
		Target:       target,
		FeatureNames: features,
		TargetNames:  targets,
		Description:  descr,
	}, nil
}
