package result

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestExcludeCourse(t *testing.T) {
	in := []Record{
		{BibNo: 1, Gender: "M", Division: "그란폰도", ElapsedTime: "05:00:00"},
		{BibNo: 2, Gender: "M", Division: "코스제외자", ElapsedTime: "04:10:00", StartTime: "07:00:00"},
		{BibNo: 3, Gender: "F", Division: " 코스제외자 ", Status: StatusDNS, Extra: map[string]string{"name": "김"}},
	}

	got, n := ExcludeCourse(in, "코스제외자", "그란폰도")
	assert.Equal(t, 2, n)

	want := []Record{
		in[0],
		{BibNo: 2, Gender: "M", Division: "그란폰도", Status: StatusDNF, StartTime: "07:00:00",
			Extra: map[string]string{"recordedTime": "04:10:00"}, Comment: "코스제외자"},
		{BibNo: 3, Gender: "F", Division: "그란폰도", Status: StatusDNF,
			Extra: map[string]string{"name": "김"}, Comment: "코스제외자"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ExcludeCourse() mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "코스제외자", in[1].Division, "input left untouched")
	assert.Equal(t, "04:10:00", in[1].ElapsedTime)

	again, n := ExcludeCourse(got, "코스제외자", "그란폰도")
	assert.Zero(t, n)
	assert.Equal(t, got, again)
}

func TestExcludeCourseEmptyMarker(t *testing.T) {
	in := []Record{{BibNo: 1, Division: ""}}
	got, n := ExcludeCourse(in, "", "그란폰도")
	assert.Zero(t, n)
	assert.Equal(t, in, got)
}
