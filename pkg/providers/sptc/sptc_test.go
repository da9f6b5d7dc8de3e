package sptc

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sw33tLie/granfondo/pkg/events"
	"github.com/sw33tLie/granfondo/pkg/result"
)

const finishedPage = `<html><body>
<div class="profile"><p class="name">홍길동 <span>M 그란폰도</span></p></div>
<div class="record">
  <div class="time">05:12:33.45</div>
  <p>Start Time 07:01:12</p>
  <p>Finish Time 12:13:45</p>
</div>
</body></html>`

const dnfPage = `<html><body>
<div class="profile"><p class="name">김영희 <span>F 메디오폰도</span></p></div>
<div class="record">
  <div class="time"></div>
  <p>Start Time 07:03:00</p>
  <p>Finish Time -</p>
</div>
</body></html>`

const dnfShortHourPage = `<html><body>
<div class="profile"><p class="name">박민수 <span>M 그란폰도</span></p></div>
<div class="record">
  <div class="time">-</div>
  <p>Start Time 8:03:35</p>
  <p>Finish Time -</p>
</div>
</body></html>`

const dnsPage = `<html><body>
<div class="profile"><p class="name">이철수 <span>M 그란폰도</span></p></div>
<div class="record">
  <div class="time">-</div>
  <p>Start Time -</p>
</div>
</body></html>`

func TestBuildRequest(t *testing.T) {
	p := &Provider{}

	tests := []struct {
		name string
		ev   events.Event
		bib  int
		want string
	}{
		{"http before 2025", events.Event{ID: "2024042803", Year: "2024"}, 105, "http://time.spct.kr/m2.php?E=2024042803&B=000105"},
		{"https from 2025", events.Event{ID: "2025041903", Year: "2025"}, 1, "https://time.spct.kr/m2.php?E=2025041903&B=000001"},
		{"six digit bib", events.Event{ID: "2023041602", Year: "2023"}, 123456, "http://time.spct.kr/m2.php?E=2023041602&B=123456"},
		{"host override", events.Event{ID: "1", Year: "2025", Params: map[string]string{"scheme": "http", "host": "127.0.0.1:8080"}}, 7, "http://127.0.0.1:8080/m2.php?E=1&B=000007"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := p.BuildRequest(tt.ev, tt.bib)
			require.NoError(t, err)
			assert.Equal(t, "GET", req.Method)
			assert.Equal(t, tt.want, req.URL)
		})
	}

	_, err := p.BuildRequest(events.Event{ID: "1", Year: "2024"}, 0)
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	p := &Provider{}

	tests := []struct {
		name string
		body string
		want result.Raw
	}{
		{
			name: "finished",
			body: finishedPage,
			want: result.Raw{
				Category:    "M 그란폰도",
				ElapsedTime: "05:12:33.45",
				StartTime:   "07:01:12",
				FinishTime:  "12:13:45",
				Extra:       map[string]string{"name": "홍길동"},
			},
		},
		{
			name: "did not finish",
			body: dnfPage,
			want: result.Raw{
				Category:  "F 메디오폰도",
				StartTime: "07:03:00",
				Extra:     map[string]string{"name": "김영희"},
			},
		},
		{
			name: "one digit start hour",
			body: dnfShortHourPage,
			want: result.Raw{
				Category:    "M 그란폰도",
				ElapsedTime: "-",
				StartTime:   "8:03:35",
				Extra:       map[string]string{"name": "박민수"},
			},
		},
		{
			name: "did not start",
			body: dnsPage,
			want: result.Raw{
				Category:    "M 그란폰도",
				ElapsedTime: "-",
				Extra:       map[string]string{"name": "이철수"},
			},
		},
		{
			name: "korean no data marker",
			body: `<div class="msg">데이터가 없습니다</div>`,
			want: result.Raw{NotFound: true},
		},
		{
			name: "english no data marker",
			body: `<p>No Results</p>`,
			want: result.Raw{NotFound: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse(tt.body)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseThenNormalize(t *testing.T) {
	p := &Provider{}

	raw, err := p.Parse(finishedPage)
	require.NoError(t, err)
	rec := result.Normalize(12, raw)
	assert.Equal(t, "12,M,그란폰도,05:12:33,", rec.ProgressLine())

	raw, err = p.Parse(dnfPage)
	require.NoError(t, err)
	assert.Equal(t, result.StatusDNF, result.Normalize(13, raw).Status)

	raw, err = p.Parse(dnfShortHourPage)
	require.NoError(t, err)
	assert.Equal(t, result.StatusDNF, result.Normalize(15, raw).Status)

	raw, err = p.Parse(dnsPage)
	require.NoError(t, err)
	assert.Equal(t, result.StatusDNS, result.Normalize(14, raw).Status)
}
