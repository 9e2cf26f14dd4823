package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/xuri/excelize/v2"
)

// TitanicTrainCSV is a slice of the Kaggle training file. Passenger 6 has no
// Age and passenger 62 has no Embarked, so DropNA keeps 9 of 11 rows.
const TitanicTrainCSV = `PassengerId,Survived,Pclass,Name,Sex,Age,SibSp,Parch,Ticket,Fare,Cabin,Embarked
1,0,3,"Braund, Mr. Owen Harris",male,22,1,0,A/5 21171,7.25,,S
2,1,1,"Cumings, Mrs. John Bradley (Florence Briggs Thayer)",female,38,1,0,PC 17599,71.2833,C85,C
3,1,3,"Heikkinen, Miss. Laina",female,26,0,0,STON/O2. 3101282,7.925,,S
4,1,1,"Futrelle, Mrs. Jacques Heath (Lily May Peel)",female,35,1,0,113803,53.1,C123,S
5,0,3,"Allen, Mr. William Henry",male,35,0,0,373450,8.05,,S
6,0,3,"Moran, Mr. James",male,,0,0,330877,8.4583,,Q
7,0,1,"McCarthy, Mr. Timothy J",male,54,0,0,17463,51.8625,E46,S
8,0,3,"Palsson, Master. Gosta Leonard",male,2,3,1,349909,21.075,,S
9,1,3,"Johnson, Mrs. Oscar W (Elisabeth Vilhelmina Berg)",female,27,0,2,347742,11.1333,,S
10,1,2,"Nasser, Mrs. Nicholas (Adele Achem)",female,14,1,0,237736,30.0708,,C
62,1,1,"Icard, Miss. Amelie",female,38,0,0,113572,80,B28,
`

// TitanicTestCSV is a slice of the Kaggle test file, which has no Survived column
const TitanicTestCSV = `PassengerId,Pclass,Name,Sex,Age,SibSp,Parch,Ticket,Fare,Cabin,Embarked
892,3,"Kelly, Mr. James",male,34.5,0,0,330911,7.8292,,Q
893,3,"Wilkes, Mrs. James (Ellen Needs)",female,47,1,0,363272,7,,S
894,2,"Myles, Mr. Thomas Francis",male,62,0,0,240276,9.6875,,Q
`

// IncomeCSV mimics the income-by-country export: two preamble lines, then
// the header. Norway 2014 has a zero first decile on purpose.
const IncomeCSV = `Income by country and decile
Source: synthetic fixture
Country,Year,Decile 1 Income,Decile 5 Income,Decile 10 Income
Norway,2014,0,30000,60000
Nigeria,2014,400,1500,9000
India,2014,500,1300,7000
India,1990,300,800,4200
India,1980,250,700,3500
United States,2014,3000,25000,90000
Botswana,2014,200,2200,14000
China,1980,150,500,1800
China,2014,900,5000,26000
Bangladesh,1990,350,750,3150
Pakistan,2014,450,1100,4500
Germany,2014,5000,20000,50000
`

// WriteFile writes content below dir, creating parent directories
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create fixture dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}

// WriteGzipFile writes content gzip-compressed below dir
func WriteGzipFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create fixture dir: %v", err)
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create fixture %s: %v", name, err)
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(content)); err != nil {
		t.Fatalf("failed to compress fixture %s: %v", name, err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to flush fixture %s: %v", name, err)
	}
	return path
}

// WriteXLSX writes rows into a single-sheet workbook
func WriteXLSX(t *testing.T, dir, name, sheet string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			t.Fatalf("failed to rename sheet: %v", err)
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("failed to build cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("failed to write row %d: %v", i+1, err)
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save workbook: %v", err)
	}
	return path
}

// DigitsCSV renders n synthetic digit images: 64 pixel values in 0..16
// then the label, which cycles through 0..9.
func DigitsCSV(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		for p := 0; p < 64; p++ {
			fmt.Fprintf(&b, "%d,", (i+p)%17)
		}
		fmt.Fprintf(&b, "%d\n", i%10)
	}
	return b.String()
}
