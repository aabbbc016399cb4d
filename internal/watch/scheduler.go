package watch

import "time"

// Generation identifies one triggered run of the watched command. Generations
// start at 1 and are never reused.
type Generation uint64

// Scheduler decides when the next run is due and hands out generations.
// It is not safe for concurrent use; only the main loop calls it.
type Scheduler struct {
	interval time.Duration
	last     time.Time
	gen      Generation
}

// NewScheduler creates a scheduler whose first run is due one interval after
// start.
func NewScheduler(interval time.Duration, start time.Time) *Scheduler {
	return &Scheduler{interval: interval, last: start}
}

// Due reports whether at least one interval has elapsed since the last trigger.
func (s *Scheduler) Due(now time.Time) bool {
	return now.Sub(s.last) >= s.interval
}

// Trigger records a run at now and returns its generation.
func (s *Scheduler) Trigger(now time.Time) Generation {
	s.last = now
	s.gen++
	return s.gen
}

// Generation returns the most recently handed out generation, 0 if none.
func (s *Scheduler) Generation() Generation {
	return s.gen
}

// Interval returns the time between runs.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// SetInterval changes the time between runs. The time of the last trigger is
// kept, so a shorter interval may make a run due immediately.
func (s *Scheduler) SetInterval(d time.Duration) {
	s.interval = d
}
