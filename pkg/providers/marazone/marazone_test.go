package marazone

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sw33tLie/granfondo/pkg/events"
	"github.com/sw33tLie/granfondo/pkg/result"
)

// record builds a response body from the fields every fixture shares plus
// the ones under test.
func record(t *testing.T, bib string, fields map[string]string) string {
	t.Helper()
	rec := map[string]string{
		"Competition": "트렉가평자라섬그란폰도", "Bib": bib, "Name": "테스트",
		"Division": "그란폰도", "Sex": "M",
		"Time": "-", "Net_start": "-", "Net_finish": "-",
		"Pace": "-", "Speed": "-", "A_rank": "-", "G_rank": "-", "O_rank": "-", "Sa": "0",
		"KOM_NAME": "KOM", "KOM_TIME": "-", "DOWN_SPEED_NAME": "Down_speed", "DOWN_SPEED_TIME": "-",
		"CP_01_TOD": "-", "CP_01_TIME": "-", "CP_01_NAME": "kom_start",
		"CP_05_TOD": "-", "CP_05_TIME": "-", "CP_05_NAME": "G_77.8km",
	}
	for k, v := range fields {
		rec[k] = v
	}
	b, err := json.Marshal([]map[string]string{rec})
	require.NoError(t, err)
	return string(b)
}

func TestBuildRequest(t *testing.T) {
	p := &Provider{}
	ev := events.Event{ID: "트렉가평자라섬그란폰도", Year: "2025", Location: "트렉가평자라섬", Provider: "marazone"}

	req, err := p.BuildRequest(ev, 1005)
	require.NoError(t, err)
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "http://54.180.176.16/api/record-info", req.URL)
	assert.Equal(t, "application/json", req.ContentType)
	assert.JSONEq(t, `{"comp_title":"트렉가평자라섬그란폰도","bibNum":"1005","name":""}`, req.Body)

	var origin string
	for _, h := range req.Headers {
		if h.Name == "Origin" {
			origin = h.Value
		}
	}
	assert.Equal(t, "http://54.180.176.16", origin)

	ev.Params = map[string]string{"comp_title": "가평 자라섬 그란폰도", "base_url": "http://127.0.0.1:9000/"}
	req, err = p.BuildRequest(ev, 1)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000/api/record-info", req.URL)
	assert.Contains(t, req.Body, "가평 자라섬 그란폰도")
}

func TestParseDidNotStart(t *testing.T) {
	raw, err := (&Provider{}).Parse(record(t, "1003", nil))
	require.NoError(t, err)

	rec := result.Normalize(1003, raw)
	assert.Equal(t, result.StatusDNS, rec.Status)
	assert.Equal(t, "", rec.ElapsedTime)
	assert.Equal(t, "-", rec.StartTime)
	assert.Equal(t, "M", rec.Gender)
	assert.Equal(t, "그란폰도", rec.Division)
	assert.Equal(t, "테스트", rec.Extra["name"])
	assert.Equal(t, "-", rec.Extra["pace"])
	assert.Equal(t, "-", rec.Extra["speed"])
	assert.True(t, rec.Persistable())
}

func TestParseDidNotFinish(t *testing.T) {
	raw, err := (&Provider{}).Parse(record(t, "1004", map[string]string{"Net_start": "08:03:35"}))
	require.NoError(t, err)

	rec := result.Normalize(1004, raw)
	assert.Equal(t, result.StatusDNF, rec.Status)
	assert.Equal(t, "08:03:35", rec.StartTime)
	assert.Equal(t, "", rec.ElapsedTime)
	assert.Equal(t, "-", rec.Extra["pace"])
}

func TestParseFinished(t *testing.T) {
	raw, err := (&Provider{}).Parse(record(t, "1005", map[string]string{
		"Time": "04:01:41", "Net_start": "08:04:39", "Net_finish": "12:06:19",
		"Pace": "2:59min/km", "Speed": "20.0km/h",
		"KOM_TIME": "00:34:56", "DOWN_SPEED_TIME": "43.3 km/h",
		"CP_01_TOD": "09:08:05", "CP_01_TIME": "01:04:48",
	}))
	require.NoError(t, err)

	rec := result.Normalize(1005, raw)
	assert.Equal(t, result.StatusFinished, rec.Status)
	assert.Equal(t, "04:01:41", rec.ElapsedTime)
	assert.Equal(t, "12:06:19", rec.FinishTime)
	assert.Equal(t, "2:59min/km", rec.Extra["pace"])
	assert.Equal(t, "20.0km/h", rec.Extra["speed"])
	assert.Equal(t, "00:34:56", rec.Extra["kom_time"])
	assert.Equal(t, "43.3 km/h", rec.Extra["down_speed_time"])
	assert.Equal(t, "09:08:05", rec.Extra["cp_01_tod"])
	assert.Equal(t, "트렉가평자라섬그란폰도", rec.Extra["competition"])
	assert.NotContains(t, rec.Extra, "bib")
	assert.NotContains(t, rec.Extra, "time")
	assert.Equal(t, "1005,M,그란폰도,04:01:41,", rec.ProgressLine())
}

func TestParseNoData(t *testing.T) {
	p := &Provider{}
	for _, body := range []string{`[]`, `{"message":"not found"}`, `[null]`, `  [ ] `} {
		raw, err := p.Parse(body)
		require.NoError(t, err, body)
		assert.True(t, raw.NotFound, body)
	}

	_, err := p.Parse(`<html>502 Bad Gateway</html>`)
	assert.Error(t, err)
}

func TestParseSkipsNestedAndNullFields(t *testing.T) {
	body := `[{"Time":"03:00:00","Sex":"f","Rank":3,"Photo":null,"Splits":[1,2],"Meta":{"a":1}}]`
	raw, err := (&Provider{}).Parse(body)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"rank": "3"}, raw.Extra)

	rec := result.Normalize(9, raw)
	assert.Equal(t, "F", rec.Gender)
	assert.False(t, strings.Contains(rec.ProgressLine(), "Rank"))
}
