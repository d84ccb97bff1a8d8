// Package airports loads an IATA code directory from CSV.
package airports

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jszwec/csvutil"
)

// Airport is one row of the directory CSV.
type Airport struct {
	IATACode string `csv:"iata_code"`
	Name     string `csv:"name"`
	City     string `csv:"city,omitempty"`
	Country  string `csv:"country,omitempty"`
}

// Directory is a read-only set of airports keyed by IATA code.
type Directory struct {
	byCode map[string]Airport
}

// Parse decodes directory CSV data. Rows without a three-letter code are skipped.
func Parse(r io.Reader) (*Directory, error) {
	var rows []Airport
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("failed to create airports CSV decoder: %w", err)
	}
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode airports CSV: %w", err)
	}

	d := &Directory{byCode: make(map[string]Airport, len(rows))}
	for _, a := range rows {
		a.IATACode = strings.ToUpper(strings.TrimSpace(a.IATACode))
		if len(a.IATACode) != 3 {
			continue
		}
		d.byCode[a.IATACode] = a
	}
	return d, nil
}

// Load reads the directory from a CSV file.
func Load(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open airports file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	return Parse(f)
}

// Known reports whether code is in the directory.
func (d *Directory) Known(code string) bool {
	_, ok := d.byCode[strings.ToUpper(code)]
	return ok
}

// Len returns the number of airports.
func (d *Directory) Len() int {
	return len(d.byCode)
}
