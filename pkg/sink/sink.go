// Package sink persists result records to flat CSV or JSON files. Every Save
// rewrites the whole file so the file on disk is always a complete document.
package sink

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sw33tLie/granfondo/internal/utils"
	"github.com/sw33tLie/granfondo/pkg/result"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ErrLocked is returned when another process already writes the output file.
var ErrLocked = errors.New("output file is locked by another process")

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (want csv or json)", s)
}

// FormatFromPath infers the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// DefaultPath is the output file name used when none is given.
func DefaultPath(location, year string, format Format) string {
	return fmt.Sprintf("%s_%s.%s", location, year, format)
}

// Sink receives the full list of persisted records after each new one.
type Sink interface {
	Save(records []result.Record) error
	Close() error
	Path() string
}

type CSVOptions struct {
	// OmitStatus writes the four column header used by the simple crawler.
	OmitStatus bool
}

// FileSink is a Sink backed by one file guarded by an advisory lock.
type FileSink struct {
	path   string
	lock   *utils.OutputLock
	encode func([]result.Record) ([]byte, error)
}

func NewCSV(path string, opts CSVOptions) (*FileSink, error) {
	return open(path, func(records []result.Record) ([]byte, error) {
		return EncodeCSV(records, opts), nil
	})
}

func NewJSON(path string) (*FileSink, error) {
	return open(path, EncodeJSON)
}

// New opens a sink of the given format.
func New(format Format, path string, opts CSVOptions) (*FileSink, error) {
	switch format {
	case FormatCSV:
		return NewCSV(path, opts)
	case FormatJSON:
		return NewJSON(path)
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

func open(path string, encode func([]result.Record) ([]byte, error)) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("empty output path")
	}
	lock, err := utils.NewOutputLock(path)
	if err != nil {
		return nil, err
	}
	locked, err := lock.TryLock()
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", path, ErrLocked)
	}

	s := &FileSink{path: path, lock: lock, encode: encode}
	// Start from an empty document so a run that persists nothing still
	// leaves a valid file behind.
	if err := s.Save(nil); err != nil {
		lock.Unlock()
		return nil, err
	}
	return s, nil
}

func (s *FileSink) Path() string { return s.path }

func (s *FileSink) Save(records []result.Record) error {
	if s.lock == nil {
		return fmt.Errorf("%s: sink is closed", s.path)
	}
	data, err := s.encode(records)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", s.path, err)
	}
	if err := writeAtomic(s.path, data); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}

func (s *FileSink) Close() error {
	if s.lock == nil {
		return nil
	}
	err := s.lock.Unlock()
	s.lock = nil
	return err
}

// WriteFile replaces path with records in one go, under the output lock.
func WriteFile(path string, format Format, opts CSVOptions, records []result.Record) error {
	lock, err := utils.NewOutputLock(path)
	if err != nil {
		return err
	}
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	var data []byte
	switch format {
	case FormatCSV:
		data = EncodeCSV(records, opts)
	case FormatJSON:
		if data, err = EncodeJSON(records); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	return writeAtomic(path, data)
}

var (
	csvHeader       = []string{"BIB_NO", "Gender", "Event", "Time", "Status"}
	csvSimpleHeader = csvHeader[:4]
)

// EncodeCSV renders records with a header line. Fields are joined with commas
// as they are; none of the values this tool produces contain commas.
func EncodeCSV(records []result.Record, opts CSVOptions) []byte {
	var b strings.Builder
	header := csvHeader
	if opts.OmitStatus {
		header = csvSimpleHeader
	}
	b.WriteString(strings.Join(header, ","))
	b.WriteByte('\n')

	for _, r := range records {
		fields := []string{strconv.Itoa(r.BibNo), r.Gender, r.Division, r.ElapsedTime}
		if !opts.OmitStatus {
			fields = append(fields, string(r.Status))
		}
		b.WriteString(strings.Join(fields, ","))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// EncodeJSON renders records as an indented JSON array; nil renders as [].
func EncodeJSON(records []result.Record) ([]byte, error) {
	if records == nil {
		records = []result.Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
