// Package sptc reads per-bib result pages from the SPCT timing site.
package sptc

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sw33tLie/granfondo/pkg/events"
	"github.com/sw33tLie/granfondo/pkg/providers"
	"github.com/sw33tLie/granfondo/pkg/result"
	"github.com/sw33tLie/granfondo/pkg/whttp"
)

const (
	PLATFORM_HOST = "time.spct.kr"
	// Result pages moved to https with the 2025 season.
	httpsSinceYear = 2025
)

var noDataMarkers = []string{"데이터가 없습니다", "No Results"}

type Provider struct{}

func (p *Provider) Name() string { return "sptc" }

func (p *Provider) DefaultPeriod() time.Duration { return 500 * time.Millisecond }

func (p *Provider) BuildRequest(ev events.Event, bibNo int) (*whttp.WHTTPReq, error) {
	if bibNo < 1 {
		return nil, fmt.Errorf("invalid bib number %d", bibNo)
	}
	if ev.ID == "" {
		return nil, fmt.Errorf("event %s %s has no id", ev.Location, ev.Year)
	}

	scheme := "http"
	if year, err := strconv.Atoi(ev.Year); err == nil && year >= httpsSinceYear {
		scheme = "https"
	}
	scheme = ev.Param("scheme", scheme)
	host := ev.Param("host", PLATFORM_HOST)

	return &whttp.WHTTPReq{
		Method: "GET",
		URL:    fmt.Sprintf("%s://%s/m2.php?E=%s&B=%06d", scheme, host, url.QueryEscape(ev.ID), bibNo),
	}, nil
}

func (p *Provider) Parse(body string) (result.Raw, error) {
	if providers.ContainsAny(body, noDataMarkers...) {
		return result.Raw{NotFound: true}, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return result.Raw{}, fmt.Errorf("parsing result page: %w", err)
	}

	raw := result.Raw{
		Category:    strings.TrimSpace(doc.Find("p.name span").Text()),
		ElapsedTime: strings.TrimSpace(doc.Find("div.record div.time").First().Text()),
		StartTime:   labelledClock(doc, "Start Time"),
		FinishTime:  labelledClock(doc, "Finish Time"),
	}

	nameSel := doc.Find("p.name").First().Clone()
	nameSel.Find("span").Remove()
	if name := strings.TrimSpace(nameSel.Text()); name != "" {
		raw.Extra = map[string]string{"name": name}
	}
	return raw, nil
}

// labelledClock finds the record paragraph carrying label and returns its
// HH:MM:SS value, or "" when the paragraph is missing or holds no time.
func labelledClock(doc *goquery.Document, label string) string {
	p := doc.Find("div.record p").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), label)
	}).First()
	return providers.ClockTime(p.Text())
}
