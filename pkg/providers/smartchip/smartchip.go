// Package smartchip reads live-photo result fragments from SmartChip.
package smartchip

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

const RESULT_URL = "https://smartchip.co.kr/return_data_livephoto.asp"

var noDataMarkers = []string{"데이터가 없습니다", "No Results", "검색결과가 없습니다"}

var divisionLabels = map[string]string{
	"Granfondo":  "그란폰도",
	"Mediofondo": "메디오폰도",
}

type Provider struct{}

func (p *Provider) Name() string { return "smartchip" }

func (p *Provider) DefaultPeriod() time.Duration { return 150 * time.Millisecond }

// BuildRequest posts the bib as a search term. The event id is SmartChip's
// "usedata" code.
func (p *Provider) BuildRequest(ev events.Event, bibNo int) (*whttp.WHTTPReq, error) {
	if bibNo < 1 {
		return nil, fmt.Errorf("invalid bib number %d", bibNo)
	}
	usedata := ev.Param("usedata", ev.ID)
	if usedata == "" {
		return nil, fmt.Errorf("event %s %s has no usedata code", ev.Location, ev.Year)
	}

	form := url.Values{}
	form.Set("nameorbibno", strconv.Itoa(bibNo))
	form.Set("usedata", usedata)

	return &whttp.WHTTPReq{
		Method:      "POST",
		URL:         ev.Param("url", RESULT_URL),
		Body:        form.Encode(),
		ContentType: "application/x-www-form-urlencoded",
	}, nil
}

func (p *Provider) Parse(body string) (result.Raw, error) {
	if providers.ContainsAny(body, noDataMarkers...) || !strings.Contains(body, "BIB") {
		return result.Raw{NotFound: true}, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return result.Raw{}, fmt.Errorf("parsing result fragment: %w", err)
	}

	var raw result.Raw

	// First bold cell is the rider name, second the course.
	heads := doc.Find(".jamsil-bold-center")
	if name := strings.TrimSpace(heads.Eq(0).Text()); name != "" {
		raw.Extra = map[string]string{"name": name}
	}
	if heads.Length() >= 2 {
		label := strings.TrimSpace(heads.Eq(1).Text())
		if mapped, ok := divisionLabels[label]; ok {
			label = mapped
		}
		raw.Division = label
	}

	raw.ElapsedTime = strings.TrimSpace(doc.Find(".jamsil-bold-center2").First().Text())

	doc.Find("details").Each(func(_ int, d *goquery.Selection) {
		stage := strings.TrimSpace(d.Find("summary .pretendard-gov-bold5").First().Text())
		switch {
		case strings.Contains(stage, "Stage1"):
			if t := passTime(d, "Stage1_Start"); t != "" {
				raw.StartTime = t
			}
		case strings.Contains(stage, "Stage2"):
			if t := passTime(d, "Stage2_Finish"); t != "" {
				raw.FinishTime = t
			}
		}
	})

	return raw, nil
}

// passTime returns the HH:MM:SS pass time of the checkpoint row named point.
// Rows look like: point | distance | "Sun. 08:28:12".
func passTime(stage *goquery.Selection, point string) string {
	var out string
	stage.Find("table.result-table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if !strings.Contains(cells.Eq(0).Text(), point) {
			return
		}
		if t := providers.ClockTime(strings.TrimSpace(cells.Eq(2).Text())); t != "" {
			out = t
		}
	})
	return out
}
