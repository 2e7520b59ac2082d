// Package report serializes engagement rows as JSON records or CSV.
package report

import (
	"errors"
	"fmt"

	"github.com/vaughn-johnson/talkspace-public-api/internal/engagement"
)

// ErrUnsupportedFormat is returned for an output format other than json or csv.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Format selects the serialization of a result table.
type Format string

const (
	JSON Format = "json"
	CSV  Format = "csv"
)

// ParseFormat validates a format selector. An empty selector means JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", JSON:
		return JSON, nil
	case CSV:
		return CSV, nil
	}
	return "", fmt.Errorf("%w %q: must be one of %s, %s", ErrUnsupportedFormat, s, JSON, CSV)
}

// ContentType is the HTTP content type for the format.
func (f Format) ContentType() string {
	if f == CSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

// Encode serializes rows in the given format.
func Encode(f Format, rows []engagement.Row) ([]byte, error) {
	switch f {
	case JSON:
		return EncodeJSON(rows)
	case CSV:
		return EncodeCSV(rows)
	}
	return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, string(f))
}
