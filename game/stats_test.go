package game

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

func TestRateStatsUpdate(t *testing.T) {
	now := time.Now()
	r := &RateStats{}
	r.update(100, now)
	if r.MinuteRate != 0 || r.HourRate != 0 {
		t.Errorf("first update should only set the baseline, got %+v", r)
	}
	r.update(60, now.Add(time.Minute))
	wantMinute := (1 - math.Exp(-1)) * 1.0
	wantHour := (1 - math.Exp(-60.0/3600.0)) * 1.0
	if math.Abs(r.MinuteRate-wantMinute) > 1e-9 {
		t.Errorf("minute rate %v, want %v", r.MinuteRate, wantMinute)
	}
	if math.Abs(r.HourRate-wantHour) > 1e-9 {
		t.Errorf("hour rate %v, want %v", r.HourRate, wantHour)
	}
	before := *r
	r.update(1000, now.Add(time.Minute))
	if *r != before {
		t.Errorf("an update without elapsed time changed the rates")
	}
}

func TestCommandStats(t *testing.T) {
	s := NewCommandStats()
	base := time.Now()
	s.updateRates(base)
	s.RecordCommand("look", 2*time.Millisecond, nil)
	s.RecordCommand("look", 4*time.Millisecond, nil)
	s.RecordCommand("take", time.Millisecond, errors.New("boom"))
	s.RecordCommand("drop", time.Millisecond, nil)
	s.RecordPanic()

	snap := s.Snapshot()
	if snap.Commands != 4 || snap.Errors != 1 || snap.Panics != 1 {
		t.Errorf("got %+v", snap)
	}
	want := []VerbSnapshot{
		{Verb: "look", Executions: 2, Mean: 3 * time.Millisecond, Max: 4 * time.Millisecond},
		{Verb: "drop", Executions: 1, Mean: time.Millisecond, Max: time.Millisecond},
	}
	if diff := cmp.Diff(want, s.TopVerbs(2)); diff != "" {
		t.Error(diff)
	}
	if got := len(s.TopVerbs(0)); got != 3 {
		t.Errorf("TopVerbs(0) returned %d verbs", got)
	}

	s.updateRates(base.Add(time.Second))
	if s.Snapshot().MinuteRate <= 0 {
		t.Errorf("rates didn't pick up the commands")
	}

	s.Reset()
	if snap := s.Snapshot(); snap.Commands != 0 || snap.Panics != 0 || snap.MinuteRate != 0 {
		t.Errorf("Reset left %+v", snap)
	}
	if got := s.TopVerbs(10); len(got) != 0 {
		t.Errorf("Reset left verbs %+v", got)
	}
}

func TestStatsCommand(t *testing.T) {
	withWorld(t, func(w *World) {
		wiz := wizard(t, w)
		w.Stats().Reset()
		wiz.send("look")
		wiz.send("look")
		wiz.send("i")
		got := wiz.send("@stats")
		for _, want := range []string{"Uptime: ", "Commands: 3 ", "Errors: 0  Panics: 0", "Verb", "Runs"} {
			if !strings.Contains(got, want) {
				t.Errorf("@stats lacks %q:\n%s", want, got)
			}
		}
		lines := strings.Split(got, "\n")
		var lookRow string
		for _, line := range lines {
			if strings.HasPrefix(line, "look ") {
				lookRow = line
			}
		}
		if fields := strings.Fields(lookRow); len(fields) < 3 || fields[1] != "2" {
			t.Errorf("look row is %q", lookRow)
		}
		got = wiz.send("@stats 1")
		if strings.Contains(got, "\ni ") {
			t.Errorf("@stats 1 listed more than one verb:\n%s", got)
		}
		wiz.expect("@stats many", "usage: @stats [n|reset]")
		wiz.expect("@stats reset", "Statistics cleared.")
		if snap := w.Stats().Snapshot(); snap.Commands != 1 {
			t.Errorf("after reset %d commands were counted", snap.Commands)
		}
	})
}
