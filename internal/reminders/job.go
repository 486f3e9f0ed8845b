package reminders

import (
	"context"
	"fmt"
	"time"

	"medibook/pkg/logger"
	"medibook/pkg/model"
)

type Source interface {
	DueForReminder(ctx context.Context, date string) ([]*model.Appointment, error)
}

type Publisher interface {
	Reminders(ctx context.Context, appointments []*model.Appointment) error
}

// Job publishes a reminder for every confirmed appointment LeadDays ahead of
// the current local date.
type Job struct {
	source    Source
	publisher Publisher
	leadDays  int
	loc       *time.Location
	now       func() time.Time
	log       *logger.Logger
}

func NewJob(source Source, publisher Publisher, leadDays int, loc *time.Location, log *logger.Logger) *Job {
	if loc == nil {
		loc = time.UTC
	}
	return &Job{
		source:    source,
		publisher: publisher,
		leadDays:  leadDays,
		loc:       loc,
		now:       time.Now,
		log:       log,
	}
}

func (j *Job) TargetDate() string {
	return j.now().In(j.loc).AddDate(0, 0, j.leadDays).Format(time.DateOnly)
}

// Run returns how many reminders were published.
func (j *Job) Run(ctx context.Context) (int, error) {
	date := j.TargetDate()

	appointments, err := j.source.DueForReminder(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("load appointments for %s: %w", date, err)
	}
	if len(appointments) == 0 {
		j.log.Info("No reminders due", "date", date)
		return 0, nil
	}

	if err := j.publisher.Reminders(ctx, appointments); err != nil {
		return 0, fmt.Errorf("publish reminders for %s: %w", date, err)
	}

	j.log.Info("Reminders published", "date", date, "count", len(appointments))
	return len(appointments), nil
}
