package domain

import (
	"encoding/json"
	"math"
)

// IncomeRow is one country-year observation with its decile inequality ratio.
// The ratio follows IEEE division, so a zero first decile yields +Inf.
type IncomeRow struct {
	Country         string  `json:"country"`
	Year            int     `json:"year"`
	Decile1         float64 `json:"decile_1_income"`
	Decile10        float64 `json:"decile_10_income"`
	InequalityRatio float64 `json:"inequality_ratio"`
}

// MarshalJSON renders non-finite values as null, which JSON can represent
func (r IncomeRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Country         string   `json:"country"`
		Year            int      `json:"year"`
		Decile1         *float64 `json:"decile_1_income"`
		Decile10        *float64 `json:"decile_10_income"`
		InequalityRatio *float64 `json:"inequality_ratio"`
	}{
		Country:         r.Country,
		Year:            r.Year,
		Decile1:         finite(r.Decile1),
		Decile10:        finite(r.Decile10),
		InequalityRatio: finite(r.InequalityRatio),
	})
}

// IncomeReport is the filtered result of an inequality query
type IncomeReport struct {
	Query     string      `json:"query,omitempty"`
	Years     []int       `json:"years,omitempty"`
	Countries []string    `json:"countries,omitempty"`
	Rows      []IncomeRow `json:"rows"`
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
