package result

import (
	"fmt"
	"strconv"
	"strings"
)

// Status is the completion state of a participant.
// The finished state is the empty string so that finished rows keep an
// empty Status column in CSV output.
type Status string

const (
	StatusFinished Status = ""
	StatusDNF      Status = "DNF"
	StatusDNS      Status = "DNS"
)

func (s Status) Valid() bool {
	switch s {
	case StatusFinished, StatusDNF, StatusDNS:
		return true
	}
	return false
}

// ParseStatus accepts the persisted form ("", "DNF", "DNS") as well as the
// spelled out "FINISHED".
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "FINISHED":
		return StatusFinished, nil
	case "DNF":
		return StatusDNF, nil
	case "DNS":
		return StatusDNS, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Raw holds provider-native fields for a single bib lookup. Providers fill
// whatever they can find; everything is a string and may be a placeholder.
type Raw struct {
	// NotFound means the provider explicitly said the bib has no registration.
	NotFound bool

	// Category is free text of the form "<M|F> <division>".
	Category string

	// Gender and Division are used when the provider exposes them as separate
	// fields and Category is empty.
	Gender   string
	Division string

	ElapsedTime string
	StartTime   string
	FinishTime  string

	Extra map[string]string
}

// Record is the canonical, provider independent result for one bib.
type Record struct {
	BibNo       int               `json:"bibNo"`
	Gender      string            `json:"gender"`
	Division    string            `json:"division"`
	ElapsedTime string            `json:"elapsedTime"`
	Status      Status            `json:"status"`
	StartTime   string            `json:"startTime"`
	FinishTime  string            `json:"finishTime"`
	Extra       map[string]string `json:"extraFields,omitempty"`
	Comment     string            `json:"comment,omitempty"`
}

// Empty is the record for a bib the provider knows nothing about, or one
// whose lookup failed.
func Empty(bibNo int) Record {
	return Record{BibNo: bibNo}
}

// Persistable reports whether the record carries a result worth saving.
// Records for unregistered bibs are shown but never written.
func (r Record) Persistable() bool {
	return r.ElapsedTime != "" || r.Status != ""
}

// ProgressLine is the one-line summary printed for every processed bib.
func (r Record) ProgressLine() string {
	return strings.Join([]string{
		strconv.Itoa(r.BibNo),
		r.Gender,
		r.Division,
		r.ElapsedTime,
		string(r.Status),
	}, ",")
}
