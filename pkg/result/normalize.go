package result

import (
	"regexp"
	"strings"
)

// categoryRe matches a single letter gender code followed by a division
// label, e.g. "M 그란폰도" or "홍길동 F 메디오폰도".
var categoryRe = regexp.MustCompile(`(?:^|\s)([MF])\s+(\S+)`)

// IsPlaceholder reports whether v means "absent". Missing fields, blank
// strings and dash placeholders are all treated the same way.
func IsPlaceholder(v string) bool {
	switch strings.TrimSpace(v) {
	case "", "-", "--", "–", "—":
		return true
	}
	return false
}

// FormatElapsed drops the fractional second suffix ("04:01:41.23" ->
// "04:01:41") and maps placeholders to "".
func FormatElapsed(v string) string {
	v = strings.TrimSpace(v)
	if i := strings.Index(v, "."); i >= 0 {
		v = v[:i]
	}
	v = strings.TrimSpace(v)
	if IsPlaceholder(v) {
		return ""
	}
	return v
}

// Classify applies the completion rule: an elapsed time means finished,
// otherwise a start time means the rider started but did not finish.
func Classify(elapsed, start string) Status {
	switch {
	case !IsPlaceholder(elapsed):
		return StatusFinished
	case !IsPlaceholder(start):
		return StatusDNF
	default:
		return StatusDNS
	}
}

// Normalize maps provider fields to a Record. It never fails: shapes it does
// not understand degrade to empty values.
func Normalize(bibNo int, raw Raw) Record {
	if raw.NotFound {
		return Empty(bibNo)
	}

	elapsed := FormatElapsed(raw.ElapsedTime)
	gender, division := genderDivision(raw)

	return Record{
		BibNo:       bibNo,
		Gender:      gender,
		Division:    division,
		ElapsedTime: elapsed,
		Status:      Classify(elapsed, raw.StartTime),
		StartTime:   strings.TrimSpace(raw.StartTime),
		FinishTime:  strings.TrimSpace(raw.FinishTime),
		Extra:       copyExtra(raw.Extra),
	}
}

func genderDivision(raw Raw) (string, string) {
	if strings.TrimSpace(raw.Category) != "" {
		m := categoryRe.FindStringSubmatch(raw.Category)
		if m == nil {
			return "", ""
		}
		return m[1], m[2]
	}

	gender := strings.ToUpper(strings.TrimSpace(raw.Gender))
	if gender != "M" && gender != "F" {
		gender = ""
	}
	division := strings.TrimSpace(raw.Division)
	if IsPlaceholder(division) {
		division = ""
	}
	return gender, division
}

func copyExtra(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
