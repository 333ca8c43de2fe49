package observ

import (
	"strings"
	"testing"
	"time"
)

func fakeClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(2 * time.Millisecond)

	endParse := tm.Track("parse")
	link := tm.Begin("link")
	endParse("files=3")
	tm.End(link, "")
	tm.End(42, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 || r.Phases[0].Name != "parse" || r.Phases[1].Name != "link" {
		t.Fatalf("phases: %+v", r.Phases)
	}
	// parse: begin at 2, end at 6; link: begin at 4, end at 8
	if r.Phases[0].DurationMS != 4 || r.Phases[1].DurationMS != 4 || r.TotalMS != 8 {
		t.Fatalf("durations: %+v", r)
	}
	s := tm.Summary()
	if !strings.Contains(s, "// files=3") || !strings.Contains(s, "total") {
		t.Fatalf("summary:\n%s", s)
	}
}

func TestNilTimerIsInert(t *testing.T) {
	var tm *Timer
	tm.Track("x")("y")
	if r := tm.Report(); len(r.Phases) != 0 {
		t.Fatalf("nil timer reported %+v", r)
	}
}
