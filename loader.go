package rentroll

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Input file names inside an input directory.
const (
	AmendmentsFile = "amendments.jsonl"
	ChargesFile    = "charges.jsonl"
	PropertiesFile = "properties.jsonl"
)

// LoadBook reads the amendment, charge and property logs of an input directory.
//
// The amendment and charge logs are required, the property file is optional. Rejected
// lines are recorded in the book and logged; only a missing or unreadable file is an
// error. currency applies to charges that carry none.
func LoadBook(dir, currency string) (*Book, error) {
	var amendments []Amendment
	var charges []Charge
	var properties []Property
	var rejections []Rejection

	err := loadFile(dir, AmendmentsFile, true, func(f *os.File) (err error) {
		var rej []Rejection
		amendments, rej, err = DecodeAmendments(f, AmendmentsFile)
		rejections = append(rejections, rej...)
		return err
	})
	if err != nil {
		return nil, err
	}
	err = loadFile(dir, ChargesFile, true, func(f *os.File) (err error) {
		var rej []Rejection
		charges, rej, err = DecodeCharges(f, ChargesFile, currency)
		rejections = append(rejections, rej...)
		return err
	})
	if err != nil {
		return nil, err
	}
	err = loadFile(dir, PropertiesFile, false, func(f *os.File) (err error) {
		var rej []Rejection
		properties, rej, err = DecodeProperties(f, PropertiesFile)
		rejections = append(rejections, rej...)
		return err
	})
	if err != nil {
		return nil, err
	}

	book := NewBook(amendments, charges, properties)
	book.AddRejections(rejections...)
	LogRejections(rejections)
	return book, nil
}

// loadFile opens name in dir and passes it to decode.
func loadFile(dir, name string, required bool, decode func(*os.File) error) error {
	path := filepath.Join(dir, name)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not open input file %q: %w", path, err)
	}
	defer f.Close()
	if err := decode(f); err != nil {
		return fmt.Errorf("could not decode input file %q: %w", path, err)
	}
	return nil
}

// LogRejections logs each rejection at debug level and their count as a warning.
func LogRejections(rejections []Rejection) {
	for _, r := range rejections {
		Log.WithFields(logrus.Fields{"source": r.Source, "line": r.Line}).Debug(r.Reason)
	}
	if len(rejections) > 0 {
		Log.WithField("count", len(rejections)).Warn("input records rejected")
	}
}
