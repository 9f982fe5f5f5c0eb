package natsadapter

import "testing"

func TestSubjectFor(t *testing.T) {
	if got := SubjectFor("abc"); got != "territory.selection.abc" {
		t.Errorf("expected session subject, got %s", got)
	}
	if got := SubjectFor(""); got != "territory.selection.>" {
		t.Errorf("expected wildcard subject, got %s", got)
	}
}
