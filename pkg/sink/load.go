package sink

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sw33tLie/granfondo/pkg/result"
)

// Load reads a result file written by a FileSink. The format is taken from
// the extension.
func Load(path string) ([]result.Record, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if format == FormatJSON {
		return decodeJSON(f)
	}
	return decodeCSV(f)
}

func decodeJSON(r io.Reader) ([]result.Record, error) {
	var records []result.Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding results: %w", err)
	}
	for i, rec := range records {
		if !rec.Status.Valid() {
			return nil, fmt.Errorf("record %d (bib %d): unknown status %q", i, rec.BibNo, rec.Status)
		}
	}
	return records, nil
}

func decodeCSV(r io.Reader) ([]result.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) < 4 || strings.TrimPrefix(header[0], "\ufeff") != "BIB_NO" {
		return nil, fmt.Errorf("unexpected header %q", strings.Join(header, ","))
	}

	var records []result.Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(row) < 4 {
			return nil, fmt.Errorf("line %d: want at least 4 fields, got %d", line, len(row))
		}
		bib, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad bib %q", line, row[0])
		}
		rec := result.Record{BibNo: bib, Gender: row[1], Division: row[2], ElapsedTime: row[3]}
		if len(row) > 4 {
			if rec.Status, err = result.ParseStatus(row[4]); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
