package features

import (
	"fmt"
	"sort"

	"github.com/go-gota/gota/series"

	"featurelab/internal/config"
	"featurelab/internal/errors"
	"featurelab/internal/table"
	"featurelab/pkg/contracts/domain"
)

// DummyOptions controls one-hot encoding
type DummyOptions struct {
	// Columns lists the columns to encode; nil encodes every string column
	Columns []string
	// Separator joins column and level, e.g. Sex_male. Empty means "_".
	Separator string
	// DummyNA adds a <column>_nan indicator for missing values
	DummyNA bool
	// DropFirst omits the first level of each encoded column
	DropFirst bool
	// Levels fixes the levels of a column, usually ones learned from a
	// training table. Values outside the set give an all-zero row.
	Levels map[string][]string
}

// GetDummies one-hot encodes categorical columns. The untouched columns keep
// their order and the int indicator columns follow, one block per encoded
// column with its levels sorted. A missing value gives an all-zero row
// unless DummyNA is set.
func GetDummies(t *table.Table, opts DummyOptions) (*table.Table, error) {
	sep := opts.Separator
	if sep == "" {
		sep = config.DummySeparator
	}

	encode, err := columnsToEncode(t, opts.Columns)
	if err != nil {
		return nil, err
	}
	if len(encode) == 0 {
		return t.Head(t.Nrow())
	}

	encodeSet := make(map[string]bool, len(encode))
	for _, c := range encode {
		encodeSet[c] = true
	}

	cols := make([]series.Series, 0, t.Ncol())
	for _, name := range t.Names() {
		if encodeSet[name] {
			continue
		}
		s, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, s)
	}

	for _, name := range encode {
		dummies, err := indicatorColumns(t, name, sep, opts)
		if err != nil {
			return nil, err
		}
		cols = append(cols, dummies...)
	}

	if len(cols) == 0 {
		return nil, errors.NewAppValidationError("encoding produced no columns")
	}
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if seen[c.Name] {
			return nil, errors.NewAppValidationError(fmt.Sprintf("duplicate column %q after encoding", c.Name)).
				WithContext("column", c.Name)
		}
		seen[c.Name] = true
	}
	return table.New(cols...)
}

// CategoryLevels returns the levels GetDummies would use for every column
// it encodes with opts
func CategoryLevels(t *table.Table, opts DummyOptions) (map[string][]string, error) {
	encode, err := columnsToEncode(t, opts.Columns)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(encode))
	for _, name := range encode {
		levels, err := levelsFor(t, name, opts)
		if err != nil {
			return nil, err
		}
		out[name] = levels
	}
	return out, nil
}

// Levels returns the distinct non-missing values of a column. Int and float
// columns are ordered numerically, everything else as strings.
func Levels(t *table.Table, col string) ([]string, error) {
	values, err := t.Strings(col)
	if err != nil {
		return nil, err
	}
	missing, err := t.Missing(col)
	if err != nil {
		return nil, err
	}
	typ, err := t.ColumnType(col)
	if err != nil {
		return nil, err
	}

	var numbers []float64
	if typ == domain.ColumnInt || typ == domain.ColumnFloat {
		if numbers, err = t.Float(col); err != nil {
			return nil, err
		}
	}

	seen := make(map[string]bool)
	levels := make([]string, 0)
	keys := make(map[string]float64)
	for i, v := range values {
		if missing[i] || seen[v] {
			continue
		}
		seen[v] = true
		levels = append(levels, v)
		if numbers != nil {
			keys[v] = numbers[i]
		}
	}

	if numbers != nil {
		sort.SliceStable(levels, func(i, j int) bool { return keys[levels[i]] < keys[levels[j]] })
	} else {
		sort.Strings(levels)
	}
	return levels, nil
}

func levelsFor(t *table.Table, col string, opts DummyOptions) ([]string, error) {
	if fixed, ok := opts.Levels[col]; ok {
		return fixed, nil
	}
	return Levels(t, col)
}

func columnsToEncode(t *table.Table, requested []string) ([]string, error) {
	if requested != nil {
		for _, c := range requested {
			if !t.HasColumn(c) {
				return nil, errors.NewAppValidationError(fmt.Sprintf("unknown column %q", c)).
					WithContext("column", c)
			}
		}
		return requested, nil
	}

	var out []string
	for _, name := range t.Names() {
		typ, err := t.ColumnType(name)
		if err != nil {
			return nil, err
		}
		if typ == domain.ColumnString {
			out = append(out, name)
		}
	}
	return out, nil
}

func indicatorColumns(t *table.Table, col, sep string, opts DummyOptions) ([]series.Series, error) {
	levels, err := levelsFor(t, col, opts)
	if err != nil {
		return nil, err
	}
	values, err := t.Strings(col)
	if err != nil {
		return nil, err
	}
	missing, err := t.Missing(col)
	if err != nil {
		return nil, err
	}

	if opts.DropFirst && len(levels) > 0 {
		levels = levels[1:]
	}

	index := make(map[string]int, len(levels))
	indicators := make([][]int, len(levels))
	for i, l := range levels {
		index[l] = i
		indicators[i] = make([]int, len(values))
	}

	var nan []int
	if opts.DummyNA {
		nan = make([]int, len(values))
	}

	for row, v := range values {
		if missing[row] {
			if nan != nil {
				nan[row] = 1
			}
			continue
		}
		if i, ok := index[v]; ok {
			indicators[i][row] = 1
		}
	}

	out := make([]series.Series, 0, len(levels)+1)
	for i, l := range levels {
		out = append(out, series.New(indicators[i], series.Int, col+sep+l))
	}
	if nan != nil {
		out = append(out, series.New(nan, series.Int, col+sep+"nan"))
	}
	return out, nil
}
