package result

import "strings"

// ExcludeCourse rewrites records whose division is marker (riders taken off
// the course) as DNF in division, noting the marker in Comment. Any recorded
// elapsed time moves to Extra["recordedTime"] so the DNF row carries none.
// It returns new records and the number rewritten; the input is not modified.
func ExcludeCourse(records []Record, marker, division string) ([]Record, int) {
	out := make([]Record, len(records))
	changed := 0
	for i, r := range records {
		if marker == "" || strings.TrimSpace(r.Division) != marker {
			out[i] = r
			continue
		}
		fixed := r
		fixed.Extra = copyExtra(r.Extra)
		if r.ElapsedTime != "" {
			if fixed.Extra == nil {
				fixed.Extra = map[string]string{}
			}
			fixed.Extra["recordedTime"] = r.ElapsedTime
		}
		fixed.Division = division
		fixed.ElapsedTime = ""
		fixed.Status = StatusDNF
		fixed.Comment = marker
		out[i] = fixed
		changed++
	}
	return out, changed
}
