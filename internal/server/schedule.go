package server

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/thurmanmarka/moonglide"
)

const (
	// lookaheadDays is how many local days Next searches for an event.
	lookaheadDays = 3

	// eventSlack is how late a job may run and still match its event.
	eventSlack = time.Minute

	retryDelay = time.Minute
)

// Event is a moonrise or moonset.
type Event struct {
	Kind string    `json:"kind"` // "rise" or "set"
	Time time.Time `json:"time"`
}

// MoonEventSchedule fires at every moonrise and moonset for Observer.
//
// This implements robfig/cron.Schedule.
type MoonEventSchedule struct {
	Calc     *moonglide.Calculator
	Observer moonglide.Observer
	Location *time.Location
	Log      *zap.Logger
}

// Events returns the rise and set events on days local calendar days
// starting with the day containing from, in time order.
func (s MoonEventSchedule) Events(from time.Time, days int) ([]Event, error) {
	local := from.In(s.location())
	y, m, d := local.Date()

	var events []Event
	for i := 0; i < days; i++ {
		day := time.Date(y, m, d+i, 0, 0, 0, 0, local.Location())
		mt, err := s.Calc.ComputeMoonTimes(s.Observer, day)
		if err != nil {
			return nil, err
		}
		if mt.Rise != nil {
			events = append(events, Event{Kind: "rise", Time: *mt.Rise})
		}
		if mt.Set != nil {
			events = append(events, Event{Kind: "set", Time: *mt.Set})
		}
	}

	sort.Slice(events, func(i, j int) bool { return events[i].Time.Before(events[j].Time) })
	return events, nil
}

// Next returns the first event strictly after now. With no event in the
// lookahead it returns the following local midnight so the search resumes
// from there; on error it retries a minute later.
func (s MoonEventSchedule) Next(now time.Time) time.Time {
	events, err := s.Events(now, lookaheadDays)
	if err != nil {
		s.logger().Error("moon event schedule", zap.Error(err))
		return now.Add(retryDelay)
	}

	for _, ev := range events {
		if ev.Time.After(now) {
			return ev.Time
		}
	}

	local := now.In(s.location())
	y, m, d := local.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, local.Location())
}

// Latest returns the event a job running at now was scheduled for: the last
// one within eventSlack of now.
func (s MoonEventSchedule) Latest(now time.Time) (Event, bool) {
	events, err := s.Events(now.AddDate(0, 0, -1), 2)
	if err != nil {
		s.logger().Error("moon event lookup", zap.Error(err))
		return Event{}, false
	}

	var (
		found Event
		ok    bool
	)
	for _, ev := range events {
		d := now.Sub(ev.Time)
		if d >= -eventSlack && d <= eventSlack {
			found, ok = ev, true
		}
	}
	return found, ok
}

func (s MoonEventSchedule) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

func (s MoonEventSchedule) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
