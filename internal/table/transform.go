package table

import (
	"fmt"
	"math"
	"strconv"

	"github.com/go-gota/gota/series"

	"featurelab/internal/errors"
)

// FilterIn keeps the rows whose col value is one of values. Values may be
// strings, ints, floats or bools; they are converted to the column type.
// An empty value set keeps no rows.
func (t *Table) FilterIn(col string, values ...any) (*Table, error) {
	return t.filter(col, series.In, values)
}

// FilterEq keeps the rows whose col value equals value
func (t *Table) FilterEq(col string, value any) (*Table, error) {
	return t.filter(col, series.Eq, []any{value})
}

func (t *Table) filter(col string, cmp series.Comparator, values []any) (*Table, error) {
	s, err := t.Column(col)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 || t.df.Nrow() == 0 {
		return t.subset(nil)
	}

	comparando, err := coerce(s.Type(), values)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrTypeValidation,
			fmt.Sprintf("invalid filter value for column %q", col), err).WithContext("column", col)
	}

	mask, err := s.Compare(cmp, comparando).Bool()
	if err != nil {
		return nil, errors.NewAppError(errors.ErrTypeValidation,
			fmt.Sprintf("failed to compare column %q", col), err)
	}

	keep := make([]int, 0, len(mask))
	for i, ok := range mask {
		if ok && !isMissing(s.Elem(i)) {
			keep = append(keep, i)
		}
	}
	return t.subset(keep)
}

// DeriveRatio appends name = num / den as a float column. Division follows
// IEEE 754: x/0 is ±Inf, 0/0 is NaN, and a missing operand gives NaN.
// A column already called name is replaced in place.
func (t *Table) DeriveRatio(num, den, name string) (*Table, error) {
	n, err := t.Float(num)
	if err != nil {
		return nil, err
	}
	d, err := t.Float(den)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errors.NewAppValidationError("derived column needs a name")
	}

	ratio := make([]float64, len(n))
	for i := range ratio {
		ratio[i] = n[i] / d[i]
	}

	return t.Mutate(FloatColumn(name, ratio))
}

// FloatColumn builds a float series; NaN marks a missing cell
func FloatColumn(name string, values []float64) series.Series {
	s := series.Floats(values)
	s.Name = name
	return s
}

// coerce converts filter values to a typed slice gota can compare against
func coerce(typ series.Type, values []any) (interface{}, error) {
	switch typ {
	case series.Int:
		out := make([]int, 0, len(values))
		for _, v := range values {
			i, err := toInt(v)
			if err != nil {
				return nil, err
			}
			out = append(out, i)
		}
		return out, nil
	case series.Float:
		out := make([]float64, 0, len(values))
		for _, v := range values {
			f, err := toFloat(v)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
		return out, nil
	case series.Bool:
		out := make([]bool, 0, len(values))
		for _, v := range values {
			switch b := v.(type) {
			case bool:
				out = append(out, b)
			case string:
				parsed, err := strconv.ParseBool(b)
				if err != nil {
					return nil, err
				}
				out = append(out, parsed)
			default:
				return nil, fmt.Errorf("cannot use %T as bool", v)
			}
		}
		return out, nil
	default:
		out := make([]string, 0, len(values))
		for _, v := range values {
			out = append(out, fmt.Sprint(v))
		}
		return out, nil
	}
}

func toInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int32:
		return int(x), nil
	case int64:
		return int(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("%v is not an integer", x)
		}
		return int(x), nil
	case string:
		return strconv.Atoi(x)
	default:
		return 0, fmt.Errorf("cannot use %T as int", v)
	}
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case string:
		return strconv.ParseFloat(x, 64)
	default:
		return 0, fmt.Errorf("cannot use %T as float", v)
	}
}
