package table

import (
	"fmt"
	"io"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"featurelab/internal/errors"
	"featurelab/pkg/contracts/domain"
)

// Table is an immutable, column-typed table. Every transformation returns a
// new Table and leaves the receiver untouched.
type Table struct {
	df dataframe.DataFrame
}

// New builds a table from columns of equal length
func New(cols ...series.Series) (*Table, error) {
	if len(cols) == 0 {
		return nil, errors.NewAppValidationError("table needs at least one column")
	}
	df := dataframe.New(cols...)
	if df.Err != nil {
		return nil, errors.NewAppValidationError("invalid columns").WithContext("cause", df.Err.Error())
	}
	return &Table{df: df}, nil
}

// FromDataFrame wraps an existing gota dataframe
func FromDataFrame(df dataframe.DataFrame) (*Table, error) {
	if df.Err != nil {
		return nil, errors.NewParsingError("invalid dataframe", df.Err)
	}
	return &Table{df: df}, nil
}

// DataFrame returns a copy of the underlying dataframe
func (t *Table) DataFrame() dataframe.DataFrame {
	return t.df.Copy()
}

// Names returns the column names in order
func (t *Table) Names() []string { return t.df.Names() }

// Nrow returns the number of rows
func (t *Table) Nrow() int { return t.df.Nrow() }

// Ncol returns the number of columns
func (t *Table) Ncol() int { return t.df.Ncol() }

// HasColumn reports whether the table has a column called name
func (t *Table) HasColumn(name string) bool {
	for _, n := range t.df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Column returns the named column
func (t *Table) Column(name string) (series.Series, error) {
	if !t.HasColumn(name) {
		return series.Series{}, unknownColumn(name)
	}
	return t.df.Col(name), nil
}

// ColumnType returns the detected type of the named column
func (t *Table) ColumnType(name string) (domain.ColumnType, error) {
	s, err := t.Column(name)
	if err != nil {
		return "", err
	}
	return columnType(s.Type()), nil
}

// Info reports the row count and, per column, its type and non-null count
func (t *Table) Info() domain.TableInfo {
	info := domain.TableInfo{
		Rows:    t.df.Nrow(),
		Columns: make([]domain.ColumnInfo, 0, t.df.Ncol()),
	}

	for _, name := range t.df.Names() {
		s := t.df.Col(name)
		nulls := 0
		for i := 0; i < s.Len(); i++ {
			if isMissing(s.Elem(i)) {
				nulls++
			}
		}
		info.Columns = append(info.Columns, domain.ColumnInfo{
			Name:    name,
			Type:    columnType(s.Type()),
			NonNull: s.Len() - nulls,
			Null:    nulls,
		})
	}

	return info
}

// Head returns the first n rows, or every row when n covers the table
func (t *Table) Head(n int) (*Table, error) {
	if n < 0 {
		n = 0
	}
	if n >= t.df.Nrow() {
		return &Table{df: t.df.Copy()}, nil
	}

	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return t.subset(rows)
}

// Drop removes the named columns
func (t *Table) Drop(cols ...string) (*Table, error) {
	if err := t.requireColumns(cols...); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return &Table{df: t.df.Copy()}, nil
	}

	df := t.df.Drop(cols)
	if df.Err != nil {
		return nil, errors.NewAppError(errors.ErrTypeValidation, "failed to drop columns", df.Err)
	}
	return &Table{df: df}, nil
}

// Select keeps the named columns in the given order
func (t *Table) Select(cols ...string) (*Table, error) {
	if len(cols) == 0 {
		return nil, errors.NewAppValidationError("select needs at least one column")
	}
	if err := t.requireColumns(cols...); err != nil {
		return nil, err
	}

	df := t.df.Select(cols)
	if df.Err != nil {
		return nil, errors.NewAppError(errors.ErrTypeValidation, "failed to select columns", df.Err)
	}
	return &Table{df: df}, nil
}

// DropNA removes every row with at least one missing cell
func (t *Table) DropNA() (*Table, error) {
	keep := make([]int, 0, t.df.Nrow())
	cols := make([]series.Series, t.df.Ncol())
	for j, name := range t.df.Names() {
		cols[j] = t.df.Col(name)
	}

rows:
	for i := 0; i < t.df.Nrow(); i++ {
		for _, s := range cols {
			if isMissing(s.Elem(i)) {
				continue rows
			}
		}
		keep = append(keep, i)
	}

	if len(keep) == t.df.Nrow() {
		return &Table{df: t.df.Copy()}, nil
	}
	return t.subset(keep)
}

// Mutate adds col, replacing an existing column of the same name in place
func (t *Table) Mutate(col series.Series) (*Table, error) {
	if col.Len() != t.df.Nrow() {
		return nil, errors.NewAppValidationError(fmt.Sprintf(
			"column %q has %d rows, table has %d", col.Name, col.Len(), t.df.Nrow()))
	}

	if t.df.Nrow() == 0 {
		return t.mutateEmpty(col)
	}

	df := t.df.Mutate(col)
	if df.Err != nil {
		return nil, errors.NewAppError(errors.ErrTypeValidation, "failed to add column", df.Err)
	}
	return &Table{df: df}, nil
}

// Records returns the header followed by every row rendered as strings
func (t *Table) Records() [][]string {
	return t.df.Records()
}

// Float returns a numeric column as float64, with NaN for missing cells
func (t *Table) Float(col string) ([]float64, error) {
	s, err := t.Column(col)
	if err != nil {
		return nil, err
	}
	if !isNumeric(s.Type()) {
		return nil, errors.NewAppValidationError(fmt.Sprintf("column %q is %s, not numeric", col, columnType(s.Type())))
	}

	out := make([]float64, s.Len())
	for i := range out {
		e := s.Elem(i)
		if isMissing(e) {
			out[i] = math.NaN()
			continue
		}
		out[i] = e.Float()
	}
	return out, nil
}

// Strings returns a column rendered as strings, with "" for missing cells
func (t *Table) Strings(col string) ([]string, error) {
	s, err := t.Column(col)
	if err != nil {
		return nil, err
	}

	out := make([]string, s.Len())
	for i := range out {
		e := s.Elem(i)
		if !isMissing(e) {
			out[i] = e.String()
		}
	}
	return out, nil
}

// Missing returns, per row, whether the named column is missing
func (t *Table) Missing(col string) ([]bool, error) {
	s, err := t.Column(col)
	if err != nil {
		return nil, err
	}

	out := make([]bool, s.Len())
	for i := range out {
		out[i] = isMissing(s.Elem(i))
	}
	return out, nil
}

// WriteCSV writes the table with its header
func (t *Table) WriteCSV(w io.Writer) error {
	if err := t.df.WriteCSV(w); err != nil {
		return errors.NewStorageError("failed to write table", err)
	}
	return nil
}

// String renders a preview of the table
func (t *Table) String() string {
	return t.df.String()
}

func (t *Table) requireColumns(cols ...string) error {
	for _, c := range cols {
		if !t.HasColumn(c) {
			return unknownColumn(c)
		}
	}
	return nil
}

// subset keeps rows by index. gota rejects empty index sets, so a zero-row
// result is rebuilt from empty, correctly typed columns.
func (t *Table) subset(rows []int) (*Table, error) {
	if len(rows) == 0 {
		return t.empty(), nil
	}

	df := t.df.Subset(rows)
	if df.Err != nil {
		return nil, errors.NewAppError(errors.ErrTypeValidation, "failed to subset rows", df.Err)
	}
	return &Table{df: df}, nil
}

func (t *Table) empty() *Table {
	cols := make([]series.Series, 0, t.df.Ncol())
	for _, name := range t.df.Names() {
		cols = append(cols, emptySeries(t.df.Col(name).Type(), name))
	}
	if len(cols) == 0 {
		return &Table{df: t.df.Copy()}
	}
	return &Table{df: dataframe.New(cols...)}
}

func (t *Table) mutateEmpty(col series.Series) (*Table, error) {
	cols := make([]series.Series, 0, t.df.Ncol()+1)
	replaced := false
	for _, name := range t.df.Names() {
		if name == col.Name {
			cols = append(cols, emptySeries(col.Type(), name))
			replaced = true
			continue
		}
		cols = append(cols, emptySeries(t.df.Col(name).Type(), name))
	}
	if !replaced {
		cols = append(cols, emptySeries(col.Type(), col.Name))
	}
	return &Table{df: dataframe.New(cols...)}, nil
}

func emptySeries(typ series.Type, name string) series.Series {
	switch typ {
	case series.Int:
		return series.New([]int{}, series.Int, name)
	case series.Float:
		return series.New([]float64{}, series.Float, name)
	case series.Bool:
		return series.New([]bool{}, series.Bool, name)
	default:
		return series.New([]string{}, series.String, name)
	}
}

// isMissing treats both gota NA markers and float NaN payloads as missing
func isMissing(e series.Element) bool {
	if e.IsNA() {
		return true
	}
	if e.Type() == series.Float {
		return math.IsNaN(e.Float())
	}
	return false
}

func isNumeric(typ series.Type) bool {
	return typ == series.Int || typ == series.Float || typ == series.Bool
}

func columnType(typ series.Type) domain.ColumnType {
	switch typ {
	case series.Int:
		return domain.ColumnInt
	case series.Float:
		return domain.ColumnFloat
	case series.Bool:
		return domain.ColumnBool
	default:
		return domain.ColumnString
	}
}

func unknownColumn(name string) error {
	return errors.NewAppValidationError(fmt.Sprintf("unknown column %q", name)).
		WithContext("column", name)
}
