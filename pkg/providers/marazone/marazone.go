// Package marazone queries the Marazone record API, which answers with a JSON
// array of flat records.
package marazone

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sw33tLie/granfondo/pkg/events"
	"github.com/sw33tLie/granfondo/pkg/result"
	"github.com/sw33tLie/granfondo/pkg/whttp"
	"github.com/tidwall/gjson"
)

const BASE_URL = "http://54.180.176.16"

type Provider struct{}

func (p *Provider) Name() string { return "marazone" }

func (p *Provider) DefaultPeriod() time.Duration { return 200 * time.Millisecond }

type recordQuery struct {
	CompTitle string `json:"comp_title"`
	BibNum    string `json:"bibNum"`
	Name      string `json:"name"`
}

// CompetitionTitle is the comp_title the API expects for ev.
func CompetitionTitle(ev events.Event) string {
	return ev.Param("comp_title", ev.Location+"그란폰도")
}

func (p *Provider) BuildRequest(ev events.Event, bibNo int) (*whttp.WHTTPReq, error) {
	if bibNo < 1 {
		return nil, fmt.Errorf("invalid bib number %d", bibNo)
	}
	if strings.TrimSpace(ev.Location) == "" && ev.Param("comp_title", "") == "" {
		return nil, fmt.Errorf("event has neither location nor comp_title")
	}

	body, err := json.Marshal(recordQuery{
		CompTitle: CompetitionTitle(ev),
		BibNum:    strconv.Itoa(bibNo),
	})
	if err != nil {
		return nil, err
	}

	base := strings.TrimRight(ev.Param("base_url", BASE_URL), "/")
	return &whttp.WHTTPReq{
		Method:      "POST",
		URL:         base + "/api/record-info",
		Body:        string(body),
		ContentType: "application/json",
		Headers: []whttp.WHTTPHeader{
			{Name: "Accept", Value: "application/json, text/plain, */*"},
			{Name: "Origin", Value: base},
			{Name: "Referer", Value: base + "/record"},
			{Name: "Pragma", Value: "no-cache"},
		},
	}, nil
}

// Parse reads the first element of the response array. Fields other than
// the ones mapped onto Raw are kept as extras with lower-cased keys.
func (p *Provider) Parse(body string) (result.Raw, error) {
	if !gjson.Valid(body) {
		return result.Raw{}, fmt.Errorf("invalid JSON response")
	}

	parsed := gjson.Parse(body)
	if !parsed.IsArray() {
		return result.Raw{NotFound: true}, nil
	}
	records := parsed.Array()
	if len(records) == 0 || !records[0].IsObject() {
		return result.Raw{NotFound: true}, nil
	}

	raw := result.Raw{Extra: map[string]string{}}
	records[0].ForEach(func(key, value gjson.Result) bool {
		switch key.String() {
		case "Time":
			raw.ElapsedTime = value.String()
		case "Net_start":
			raw.StartTime = value.String()
		case "Net_finish":
			raw.FinishTime = value.String()
		case "Sex":
			raw.Gender = value.String()
		case "Division":
			raw.Division = value.String()
		case "Bib":
			// the requested bib is authoritative
		default:
			if value.Type == gjson.Null || value.IsObject() || value.IsArray() {
				return true
			}
			raw.Extra[strings.ToLower(key.String())] = value.String()
		}
		return true
	})
	return raw, nil
}
