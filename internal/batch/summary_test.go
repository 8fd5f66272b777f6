package batch

import (
	"errors"
	"testing"
)

func TestSummaryCounts(t *testing.T) {
	var s Summary
	s.Succeed()
	s.Skip()
	s.Fail("imported-3", errors.New("boom"))
	s.Fail("imported-4", nil)

	if s.Total != 4 || s.Succeeded != 1 || s.Skipped != 1 || s.Failed() != 2 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if s.Failures[0].String() != "imported-3: boom" || s.Failures[1].Reason != "unknown error" {
		t.Fatalf("unexpected failures %+v", s.Failures)
	}
	if s.String() != "total=4 succeeded=1 skipped=1 failed=2" {
		t.Fatalf("String = %q", s.String())
	}
}
