package game

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/zond/azimuth/heap"
)

const (
	statsUpdateInterval = time.Second
)

// RateStats tracks EMA of event counts (events per second).
type RateStats struct {
	MinuteRate float64
	HourRate   float64
	lastUpdate time.Time
}

// update applies count events seen since the last update at now.
func (r *RateStats) update(count uint64, now time.Time) {
	if r.lastUpdate.IsZero() {
		r.lastUpdate = now
		return
	}
	elapsed := now.Sub(r.lastUpdate).Seconds()
	if elapsed <= 0 {
		return
	}
	instantRate := float64(count) / elapsed
	alphaMinute := 1 - math.Exp(-elapsed/60.0)
	alphaHour := 1 - math.Exp(-elapsed/3600.0)
	r.MinuteRate = alphaMinute*instantRate + (1-alphaMinute)*r.MinuteRate
	r.HourRate = alphaHour*instantRate + (1-alphaHour)*r.HourRate
	r.lastUpdate = now
}

type verbStats struct {
	executions uint64
	errors     uint64
	totalTime  time.Duration
	maxTime    time.Duration
}

// CommandStats aggregates how often and how fast the world runs commands.
type CommandStats struct {
	mu        sync.Mutex
	started   time.Time
	total     uint64
	prevTotal uint64
	errors    uint64
	panics    uint64
	rate      RateStats
	verbs     map[string]*verbStats
}

func NewCommandStats() *CommandStats {
	return &CommandStats{
		started: time.Now(),
		verbs:   map[string]*verbStats{},
	}
}

// runUpdateLoop updates the rates every statsUpdateInterval until ctx is done.
func (s *CommandStats) runUpdateLoop(ctx context.Context) {
	ticker := time.NewTicker(statsUpdateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.updateRates(now)
		}
	}
}

func (s *CommandStats) updateRates(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rate.update(s.total-s.prevTotal, now)
	s.prevTotal = s.total
}

// RecordCommand records one run of a command for verb.
func (s *CommandStats) RecordCommand(verb string, duration time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, found := s.verbs[verb]
	if !found {
		v = &verbStats{}
		s.verbs[verb] = v
	}
	s.total++
	v.executions++
	v.totalTime += duration
	if duration > v.maxTime {
		v.maxTime = duration
	}
	if err != nil {
		s.errors++
		v.errors++
	}
}

// RecordPanic records a job that panicked.
func (s *CommandStats) RecordPanic() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panics++
}

// Reset clears all statistics.
func (s *CommandStats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = time.Now()
	s.total, s.prevTotal, s.errors, s.panics = 0, 0, 0, 0
	s.rate = RateStats{}
	s.verbs = map[string]*verbStats{}
}

type StatsSnapshot struct {
	Uptime     time.Duration
	Commands   uint64
	Errors     uint64
	Panics     uint64
	MinuteRate float64
	HourRate   float64
}

func (s *CommandStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatsSnapshot{
		Uptime:     time.Since(s.started),
		Commands:   s.total,
		Errors:     s.errors,
		Panics:     s.panics,
		MinuteRate: s.rate.MinuteRate,
		HourRate:   s.rate.HourRate,
	}
}

type VerbSnapshot struct {
	Verb       string
	Executions uint64
	Errors     uint64
	Mean       time.Duration
	Max        time.Duration
}

// TopVerbs returns the n most run verbs, most run first. A non positive n
// returns all of them.
func (s *CommandStats) TopVerbs(n int) []VerbSnapshot {
	top := heap.NewTop(n, func(a, b VerbSnapshot) bool {
		if a.Executions != b.Executions {
			return a.Executions > b.Executions
		}
		return a.Verb < b.Verb
	})
	s.mu.Lock()
	defer s.mu.Unlock()
	for verb, v := range s.verbs {
		top.Push(VerbSnapshot{
			Verb:       verb,
			Executions: v.executions,
			Errors:     v.errors,
			Mean:       v.totalTime / time.Duration(v.executions),
			Max:        v.maxTime,
		})
	}
	return top.Sorted()
}
