package inequality

import (
	"fmt"
	"sort"

	"github.com/go-gota/gota/series"

	"featurelab/internal/config"
	"featurelab/internal/errors"
	"featurelab/internal/table"
	"featurelab/pkg/contracts/domain"
)

// Income file columns
const (
	ColumnCountry  = "Country"
	ColumnYear     = "Year"
	ColumnDecile1  = "Decile 1 Income"
	ColumnDecile10 = "Decile 10 Income"
	ColumnRatio    = config.InequalityRatioColumn
)

// DefaultSkipRows is the number of preamble lines above the header
const DefaultSkipRows = 2

// RequiredColumns must be present in every income file
var RequiredColumns = []string{ColumnCountry, ColumnYear, ColumnDecile1, ColumnDecile10}

// Load reads an income CSV, .csv.gz or .xlsx file with the default preamble
func Load(path string) (*table.Table, error) {
	return LoadWithSkip(path, DefaultSkipRows)
}

// LoadWithSkip reads an income file after discarding skipRows preamble lines
func LoadWithSkip(path string, skipRows int) (*table.Table, error) {
	t, err := table.LoadFile(path, table.LoadOptions{
		SkipRows: skipRows,
		Types: map[string]series.Type{
			ColumnCountry:  series.String,
			ColumnYear:     series.Int,
			ColumnDecile1:  series.Float,
			ColumnDecile10: series.Float,
		},
	})
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, col := range RequiredColumns {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewAppValidationError(fmt.Sprintf("income file lacks columns %v", missing)).
			WithContext("path", path).
			WithContext("columns", missing)
	}
	return t, nil
}

// WithRatio adds inequality_ratio = Decile 10 Income / Decile 1 Income
func WithRatio(t *table.Table) (*table.Table, error) {
	return t.DeriveRatio(ColumnDecile10, ColumnDecile1, ColumnRatio)
}

// Query selects country-year observations. An empty set places no
// constraint on that column.
type Query struct {
	Years     []int    `json:"years,omitempty" validate:"dive,gte=0"`
	Countries []string `json:"countries,omitempty" validate:"dive,required"`
}

// Apply filters t by the query's year and country sets
func Apply(t *table.Table, q Query) (*table.Table, error) {
	out := t
	if len(q.Years) > 0 {
		years := make([]any, len(q.Years))
		for i, y := range q.Years {
			years[i] = y
		}
		var err error
		if out, err = out.FilterIn(ColumnYear, years...); err != nil {
			return nil, err
		}
	}
	if len(q.Countries) > 0 {
		countries := make([]any, len(q.Countries))
		for i, c := range q.Countries {
			countries[i] = c
		}
		var err error
		if out, err = out.FilterIn(ColumnCountry, countries...); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Project keeps the country, year and ratio columns of a ratio table
func Project(t *table.Table) (*table.Table, error) {
	return t.Select(ColumnCountry, ColumnYear, ColumnRatio)
}

// Report derives the ratio, applies q and returns the matching rows in file order
func Report(t *table.Table, q Query) ([]domain.IncomeRow, error) {
	withRatio, err := WithRatio(t)
	if err != nil {
		return nil, err
	}
	filtered, err := Apply(withRatio, q)
	if err != nil {
		return nil, err
	}
	return Rows(filtered)
}

// Rows converts a ratio table into income rows
func Rows(t *table.Table) ([]domain.IncomeRow, error) {
	countries, err := t.Strings(ColumnCountry)
	if err != nil {
		return nil, err
	}
	years, err := t.Float(ColumnYear)
	if err != nil {
		return nil, err
	}
	d1, err := t.Float(ColumnDecile1)
	if err != nil {
		return nil, err
	}
	d10, err := t.Float(ColumnDecile10)
	if err != nil {
		return nil, err
	}
	ratio, err := t.Float(ColumnRatio)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.IncomeRow, t.Nrow())
	for i := range rows {
		rows[i] = domain.IncomeRow{
			Country:         countries[i],
			Year:            int(years[i]),
			Decile1:         d1[i],
			Decile10:        d10[i],
			InequalityRatio: ratio[i],
		}
	}
	return rows, nil
}

// Preset is a named built-in query
type Preset struct {
	Name  string
	Title string
	Query Query
}

// Built-in queries. Srilanka is kept as written; countries absent from
// the file simply yield no rows.
var (
	Snapshot2014 = Preset{
		Name:  "snapshot-2014",
		Title: "Inequality in 2014 across five economies",
		Query: Query{
			Years:     []int{2014},
			Countries: []string{"Norway", "Nigeria", "India", "United States", "Botswana"},
		},
	}
	SouthAsia = Preset{
		Name:  "south-asia",
		Title: "Inequality in China and South Asia, 1980 to 2014",
		Query: Query{
			Years:     []int{1980, 1990, 2014},
			Countries: []string{"China", "India", "Bangladesh", "Pakistan", "Srilanka"},
		},
	}
)

var presets = map[string]Preset{
	Snapshot2014.Name: Snapshot2014,
	SouthAsia.Name:    SouthAsia,
}

// LookupPreset returns the preset called name
func LookupPreset(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, errors.NewNotFoundError("preset " + name).WithContext("preset", name)
	}
	return p, nil
}

// Presets lists the built-in queries sorted by name
func Presets() []Preset {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
