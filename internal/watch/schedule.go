package watch

import (
	"time"

	"github.com/robfig/cron/v3"
)

// ParseSchedule parses a five-field cron expression
func ParseSchedule(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return parser.Parse(expr)
}

// ScheduleGate gates full rebuilds on a cron schedule
type ScheduleGate struct {
	schedule cron.Schedule
	lastRun  time.Time
}

// NewScheduleGate creates a gate from a cron expression
func NewScheduleGate(expr string) (*ScheduleGate, error) {
	sched, err := ParseSchedule(expr)
	if err != nil {
		return nil, err
	}
	return &ScheduleGate{schedule: sched, lastRun: time.Now()}, nil
}

// Next returns when the next scheduled rebuild is due
func (g *ScheduleGate) Next() time.Time {
	return g.schedule.Next(g.lastRun)
}

// Due reports whether a scheduled rebuild is due at now, and if so marks it run
func (g *ScheduleGate) Due(now time.Time) bool {
	if now.Before(g.schedule.Next(g.lastRun)) {
		return false
	}
	g.lastRun = now
	return true
}
