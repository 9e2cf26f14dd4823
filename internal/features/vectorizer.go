package features

import (
	"encoding/json"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"featurelab/internal/errors"
)

// DefaultVectorizerSeparator joins a key and a string value, as in city=Dubai
const DefaultVectorizerSeparator = "="

// DictVectorizer turns feature dictionaries into a dense matrix. String
// values become key=value indicators, numeric and bool values are kept
// under their key. Feature names are sorted lexicographically.
type DictVectorizer struct {
	Separator string

	vocabulary   map[string]int
	featureNames []string
}

// NewDictVectorizer creates an unfitted vectorizer
func NewDictVectorizer() *DictVectorizer {
	return &DictVectorizer{Separator: DefaultVectorizerSeparator}
}

// Fit learns the feature names from records
func (v *DictVectorizer) Fit(records []map[string]any) error {
	seen := make(map[string]bool)
	for i, rec := range records {
		for key, value := range rec {
			name, _, ok, err := v.feature(key, value)
			if err != nil {
				return errors.NewAppError(errors.ErrTypeValidation,
					fmt.Sprintf("record %d", i), err).WithContext("key", key)
			}
			if ok {
				seen[name] = true
			}
		}
	}

	if len(seen) == 0 {
		return errors.NewAppValidationError("records contain no features")
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	v.featureNames = names
	v.vocabulary = make(map[string]int, len(names))
	for i, name := range names {
		v.vocabulary[name] = i
	}
	return nil
}

// Transform encodes records with the fitted vocabulary. Features unseen
// during Fit are ignored.
func (v *DictVectorizer) Transform(records []map[string]any) (*mat.Dense, error) {
	if v.vocabulary == nil {
		return nil, errors.NewAppValidationError("vectorizer is not fitted")
	}
	if len(records) == 0 {
		return nil, errors.NewAppValidationError("no records to transform")
	}

	m := mat.NewDense(len(records), len(v.featureNames), nil)
	for i, rec := range records {
		for key, value := range rec {
			name, x, ok, err := v.feature(key, value)
			if err != nil {
				return nil, errors.NewAppError(errors.ErrTypeValidation,
					fmt.Sprintf("record %d", i), err).WithContext("key", key)
			}
			if !ok {
				continue
			}
			if j, known := v.vocabulary[name]; known {
				m.Set(i, j, x)
			}
		}
	}
	return m, nil
}

// FitTransform is Fit followed by Transform on the same records
func (v *DictVectorizer) FitTransform(records []map[string]any) (*mat.Dense, error) {
	if err := v.Fit(records); err != nil {
		return nil, err
	}
	return v.Transform(records)
}

// FeatureNames returns the fitted feature names in column order
func (v *DictVectorizer) FeatureNames() []string {
	out := make([]string, len(v.featureNames))
	copy(out, v.featureNames)
	return out
}

// feature maps one key/value pair to its column name and value. ok is false
// for nil values, which contribute nothing.
func (v *DictVectorizer) feature(key string, value any) (string, float64, bool, error) {
	sep := v.Separator
	if sep == "" {
		sep = DefaultVectorizerSeparator
	}

	switch x := value.(type) {
	case nil:
		return "", 0, false, nil
	case string:
		return key + sep + x, 1, true, nil
	case bool:
		if x {
			return key, 1, true, nil
		}
		return key, 0, true, nil
	case int:
		return key, float64(x), true, nil
	case int32:
		return key, float64(x), true, nil
	case int64:
		return key, float64(x), true, nil
	case float32:
		return key, float64(x), true, nil
	case float64:
		return key, x, true, nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return "", 0, false, fmt.Errorf("invalid number %q", x.String())
		}
		return key, f, true, nil
	default:
		return "", 0, false, fmt.Errorf("unsupported value type %T", value)
	}
}

// Rows copies a matrix into a slice of rows
func Rows(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, c)
		for j := range out[i] {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}
