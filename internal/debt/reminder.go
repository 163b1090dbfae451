package debt

import (
	"fmt"
	"time"

	"github.com/robfig/cron"
	"github.com/rs/zerolog"

	"github.com/voznikov/banknote/internal/domain"
)

// Reminder periodically sweeps the tracker and logs debts that are overdue
// or coming due. Pure observation: it never mutates state.
type Reminder struct {
	tracker *Tracker
	cron    *cron.Cron
	log     zerolog.Logger
	now     func() time.Time
}

// NewReminder schedules a sweep on the given cron expression (e.g. "@daily").
func NewReminder(tracker *Tracker, schedule string, log zerolog.Logger) (*Reminder, error) {
	r := &Reminder{
		tracker: tracker,
		cron:    cron.New(),
		log:     log,
		now:     time.Now,
	}
	if err := r.cron.AddFunc(schedule, r.Sweep); err != nil {
		return nil, fmt.Errorf("reminder schedule %q: %w", schedule, err)
	}
	return r, nil
}

// Start begins the schedule in its own goroutine.
func (r *Reminder) Start() {
	r.cron.Start()
}

// Stop halts the schedule. A sweep already in progress finishes.
func (r *Reminder) Stop() {
	r.cron.Stop()
}

// Sweep logs every unpaid debt that is overdue, due today or due within the
// next three days.
func (r *Reminder) Sweep() {
	now := r.now()
	for _, d := range r.tracker.Debts() {
		status := Status(d.DueDate, d.IsPaid, now)
		switch status.State {
		case domain.DebtOverdue:
			r.log.Warn().
				Int64("debt_id", d.ID).
				Str("description", d.Description).
				Int("days_past", status.DaysPast).
				Msg("Debt overdue")
		case domain.DebtDueToday:
			r.log.Info().
				Int64("debt_id", d.ID).
				Str("description", d.Description).
				Msg("Debt due today")
		case domain.DebtUpcoming:
			if status.DaysRemaining <= 3 {
				r.log.Info().
					Int64("debt_id", d.ID).
					Str("description", d.Description).
					Int("days_remaining", status.DaysRemaining).
					Msg("Debt due soon")
			}
		}
	}
}
