package identity

import (
	"os"
	"path/filepath"
	"testing"

	"timesift/timesheet"
)

func sampleMapping() Mapping {
	return Mapping{
		"jane.doe@paradigm.com": {
			Name:       "Jane Doe",
			EmployeeID: "E1001",
			Projects: map[string]ProjectRef{
				"paradigm":      {Project: "Data Platform", Hours: 8},
				"seymour whyte": {Project: "Seymour Whyte Connect", Hours: 7.6},
			},
		},
	}
}

func TestCleanEmail(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{"Jane Doe <Jane.Doe@Paradigm.com>", "jane.doe@paradigm.com"},
		{"  JANE.DOE@PARADIGM.COM  ", "jane.doe@paradigm.com"},
		{"jdoe@co.com", "jdoe@co.com"},
	}
	for _, tc := range cases {
		if got := CleanEmail(tc.in); got != tc.want {
			t.Errorf("CleanEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestUnmappedSenderFallsBackToLocalPart(t *testing.T) {
	t.Parallel()

	mapping := sampleMapping()
	if got := mapping.EmployeeName("jdoe@co.com"); got != "jdoe" {
		t.Errorf("EmployeeName = %q, want jdoe", got)
	}
	if got := mapping.EmployeeID("jdoe@co.com"); got != "jdoe" {
		t.Errorf("EmployeeID = %q, want jdoe", got)
	}
}

func TestMappedSenderResolved(t *testing.T) {
	t.Parallel()

	mapping := sampleMapping()
	if got := mapping.EmployeeName("Jane Doe <jane.doe@paradigm.com>"); got != "Jane Doe" {
		t.Errorf("EmployeeName = %q", got)
	}
	if got := mapping.EmployeeID("jane.doe@paradigm.com"); got != "E1001" {
		t.Errorf("EmployeeID = %q", got)
	}
}

func TestProjectFor_ClientKeyNormalization(t *testing.T) {
	t.Parallel()

	mapping := sampleMapping()

	// The vendor suffix in the pattern-matched client name is stripped
	// before the key lookup.
	got := mapping.ProjectFor("jane.doe@paradigm.com", "Paradigm Technology Consulting LLC")
	if got != "Data Platform" {
		t.Errorf("ProjectFor = %q, want Data Platform", got)
	}

	if got := mapping.ProjectFor("jane.doe@paradigm.com", "Nowhere Inc"); got != timesheet.UnknownProject {
		t.Errorf("unmapped client = %q, want sentinel", got)
	}
	if got := mapping.ProjectFor("stranger@co.com", "Paradigm"); got != timesheet.UnknownProject {
		t.Errorf("unmapped sender = %q, want sentinel", got)
	}
	if got := mapping.ProjectFor("jane.doe@paradigm.com", ""); got != timesheet.UnknownProject {
		t.Errorf("empty client = %q, want sentinel", got)
	}
}

func TestClientForProject(t *testing.T) {
	t.Parallel()

	mapping := sampleMapping()

	if got := mapping.ClientForProject("  seymour whyte connect "); got != "Seymour Whyte" {
		t.Errorf("ClientForProject = %q, want Seymour Whyte", got)
	}
	if got := mapping.ClientForProject("No Such Project"); got != timesheet.UnknownClient {
		t.Errorf("unmapped project = %q, want sentinel", got)
	}
	if got := mapping.ClientForProject(""); got != timesheet.UnknownClient {
		t.Errorf("empty project = %q, want sentinel", got)
	}
}

func TestPTOHoursFor(t *testing.T) {
	t.Parallel()

	mapping := sampleMapping()

	hours, ok := mapping.PTOHoursFor("jane.doe@paradigm.com", "Seymour Whyte")
	if !ok || hours != 7.6 {
		t.Errorf("PTOHoursFor = %v/%v, want 7.6/true", hours, ok)
	}
	if _, ok := mapping.PTOHoursFor("stranger@co.com", "Seymour Whyte"); ok {
		t.Error("expected miss for unmapped sender")
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mapping.json")
	content := `{
  "jane.doe@paradigm.com": {
    "name": "Jane Doe",
    "employee_id": "E1001",
    "projects": {
      "paradigm": {"project": "Data Platform", "hours": 8}
    }
  }
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write mapping: %v", err)
	}

	mapping, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mapping.EmployeeName("jane.doe@paradigm.com") != "Jane Doe" {
		t.Error("loaded mapping did not resolve employee name")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
