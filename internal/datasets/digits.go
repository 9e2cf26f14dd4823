package datasets

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"featurelab/internal/errors"
	"featurelab/internal/table"
)

const (
	digitsSide     = 8
	digitsPixels   = digitsSide * digitsSide
	digitsClasses  = 10
	digitsMaxPixel = 16
)

const digitsDescription = `Optical recognition of handwritten digits (UCI). Each sample is an
8x8 image of integer pixels in 0..16, flattened row by row, labelled 0..9.`

const bundledDigitsDescription = `Synthetic 8x8 digit glyphs, 100 per class, drawn from fixed stroke
templates with a one pixel jitter and random ink intensity. Pixels are
integers in 0..16, flattened row by row, labelled 0..9. Point the digits
file setting at the UCI optdigits data to use real handwriting.`

//go:embed data/digits.csv.gz
var digitsData []byte

var digitsFeatureNames, digitsTargetNames = func() ([]string, []string) {
	features := make([]string, 0, digitsPixels)
	for r := 0; r < digitsSide; r++ {
		for c := 0; c < digitsSide; c++ {
			features = append(features, fmt.Sprintf("pixel_%d_%d", r, c))
		}
	}
	targets := make([]string, digitsClasses)
	for i := range targets {
		targets[i] = strconv.Itoa(i)
	}
	return features, targets
}()

// LoadDigits reads digit images from a CSV or .csv.gz file with 65
// comma-separated integers per line: 64 pixels then the label.
func LoadDigits(path string) (*Bunch, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("digits file " + path).WithContext("path", path)
		}
		return nil, errors.NewStorageError("failed to open digits file", err)
	}
	defer f.Close()

	var r io.Reader = f
	if table.Format(path) == table.ExtCSVGz {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.NewParsingError("invalid gzip stream", err).WithContext("path", path)
		}
		defer zr.Close()
		r = zr
	}

	return ReadDigits(r)
}

// LoadBundledDigits returns the digit glyphs bundled with the binary
func LoadBundledDigits() (*Bunch, error) {
	zr, err := gzip.NewReader(bytes.NewReader(digitsData))
	if err != nil {
		return nil, errors.NewParsingError("invalid bundled digits data", err)
	}
	defer zr.Close()
	return readDigits(zr, bundledDigitsDescription)
}

// ReadDigits parses digit records from r
func ReadDigits(r io.Reader) (*Bunch, error) {
	return readDigits(r, digitsDescription)
}

func readDigits(r io.Reader, descr string) (*Bunch, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	var (
		data   []float64
		target []int
	)

	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewParsingError(fmt.Sprintf("digits line %d", line), err)
		}
		if len(rec) != digitsPixels+1 {
			return nil, errors.NewParsingError(
				fmt.Sprintf("digits line %d: expected %d fields, got %d", line, digitsPixels+1, len(rec)), nil)
		}

		for p, field := range rec[:digitsPixels] {
			v, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				return nil, errors.NewParsingError(fmt.Sprintf("digits line %d, pixel %d", line, p), err)
			}
			if v < 0 || v > digitsMaxPixel {
				return nil, errors.NewParsingError(
					fmt.Sprintf("digits line %d, pixel %d: value %d outside 0..%d", line, p, v, digitsMaxPixel), nil)
			}
			data = append(data, float64(v))
		}

		label, err := strconv.Atoi(strings.TrimSpace(rec[digitsPixels]))
		if err != nil || label < 0 || label >= digitsClasses {
			return nil, errors.NewParsingError(
				fmt.Sprintf("digits line %d: label %q outside 0..%d", line, rec[digitsPixels], digitsClasses-1), nil)
		}
		target = append(target, label)
	}

	return newBunch("digits", data, target, digitsFeatureNames, digitsTargetNames, descr)
}
