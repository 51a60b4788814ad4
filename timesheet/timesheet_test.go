package timesheet

import "testing"

func TestClassifyActivity(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want Activity
	}{
		{"PTO", ActivityPTO},
		{"pto", ActivityPTO},
		{"Holiday PTO", ActivityPTO},
		{"pto - vacation", ActivityPTO},
		{"Work", ActivityWork},
		{"WORK", ActivityWork},
		{"Leave", ActivityWork},
		{"", ActivityWork},
		{"Vacation", ActivityWork},
	}

	for _, tc := range cases {
		if got := ClassifyActivity(tc.raw); got != tc.want {
			t.Errorf("ClassifyActivity(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
