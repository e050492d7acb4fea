package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/acadplan/acadplan-core/internal/models"
)

// CalendarRepository reads calendar events.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository constructs the repository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// ListAffecting returns the dated events flagged as perturbing activity
// scheduling.
func (r *CalendarRepository) ListAffecting(ctx context.Context) ([]models.CalendarEvent, error) {
	const query = `SELECT id, title, kind, start_date, end_date, affects_activities
		FROM calendar_events WHERE affects_activities = 1 AND start_date IS NOT NULL
		ORDER BY start_date, id`
	var events []models.CalendarEvent
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("list affecting calendar events: %w", err)
	}
	return events, nil
}
