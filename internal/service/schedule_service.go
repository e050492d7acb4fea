package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/acadplan/acadplan-core/internal/models"
	appErrors "github.com/acadplan/acadplan-core/pkg/errors"
)

type activityReader interface {
	ListScheduled(ctx context.Context) ([]models.Activity, error)
}

type activityTypeReader interface {
	List(ctx context.Context) ([]models.ActivityType, error)
}

type axisReader interface {
	List(ctx context.Context) ([]models.ThematicAxis, error)
}

type calendarReader interface {
	ListAffecting(ctx context.Context) ([]models.CalendarEvent, error)
}

// ScheduleConflict pairs an activity with a calendar event overlapping its
// date range.
type ScheduleConflict struct {
	Activity models.Activity      `json:"activity"`
	Event    models.CalendarEvent `json:"event"`
	Axis     string               `json:"axis"`
	Type     string               `json:"type"`
	Priority int                  `json:"priority"`
}

// ScheduleService finds activities whose dates collide with calendar
// events flagged as perturbing activity scheduling. Dates are ISO-8601
// text, so range comparison is lexicographic.
type ScheduleService struct {
	activities activityReader
	types      activityTypeReader
	axes       axisReader
	calendar   calendarReader
	logger     *zap.Logger
}

// NewScheduleService constructs ScheduleService.
func NewScheduleService(activities activityReader, types activityTypeReader, axes axisReader, calendar calendarReader, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{activities: activities, types: types, axes: axes, calendar: calendar, logger: logger}
}

// FindConflicts is the read-only advisory: every (activity, affecting
// event) pair with overlapping dates, highest type priority first.
func (s *ScheduleService) FindConflicts(ctx context.Context) ([]ScheduleConflict, error) {
	activities, err := s.activities.ListScheduled(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to list activities")
	}
	events, err := s.calendar.ListAffecting(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to list calendar events")
	}
	types, err := s.types.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to list activity types")
	}
	axes, err := s.axes.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to list thematic axes")
	}

	typesByID := make(map[int64]models.ActivityType, len(types))
	for _, t := range types {
		typesByID[t.ID] = t
	}
	axisNames := make(map[int64]string, len(axes))
	for _, a := range axes {
		axisNames[a.ID] = a.Name
	}

	var conflicts []ScheduleConflict
	for _, activity := range activities {
		aStart, aEnd, ok := dateRange(activity.StartDate, activity.EndDate)
		if !ok {
			continue
		}
		for _, event := range events {
			eStart, eEnd, ok := dateRange(event.StartDate, event.EndDate)
			if !ok {
				continue
			}
			if aStart > eEnd || eStart > aEnd {
				continue
			}
			conflict := ScheduleConflict{
				Activity: activity,
				Event:    event,
				Axis:     axisNames[activity.AxisID],
			}
			if t, found := typesByID[activity.ActivityTypeID]; found {
				conflict.Type = t.Name
				if t.Priority != nil {
					conflict.Priority = *t.Priority
				}
			}
			conflicts = append(conflicts, conflict)
		}
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		if conflicts[i].Priority != conflicts[j].Priority {
			return conflicts[i].Priority > conflicts[j].Priority
		}
		return *conflicts[i].Activity.StartDate < *conflicts[j].Activity.StartDate
	})

	if len(conflicts) > 0 {
		s.logger.Info("calendar conflicts found", zap.Int("count", len(conflicts)))
	}
	return conflicts, nil
}

// dateRange normalizes an optional ISO date pair: a missing end collapses
// the range onto its start, a missing start disqualifies the range.
func dateRange(start, end *string) (string, string, bool) {
	if start == nil || *start == "" {
		return "", "", false
	}
	if end == nil || *end == "" {
		return *start, *start, true
	}
	return *start, *end, true
}
