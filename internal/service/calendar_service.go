package service

import (
	"alcyxob/coach-app/internal/calendar"
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/storage"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

const exportReminderMinutes = 60

// CalendarExport is a published iCalendar file.
type CalendarExport struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
	Count     int       `json:"count"`
}

// CalendarService publishes a calendar feed of workouts.
type CalendarService interface {
	Export(ctx context.Context, actor domain.Actor, filter WorkoutListFilter) (*CalendarExport, error)
}

type calendarService struct {
	workouts WorkoutService
	files    storage.FileStorage
	expiry   time.Duration
}

// NewCalendarService creates a new instance of calendarService.
func NewCalendarService(workouts WorkoutService, files storage.FileStorage, expiry time.Duration) CalendarService {
	if expiry <= 0 {
		expiry = storage.DefaultPresignedURLExpiry
	}
	return &calendarService{workouts: workouts, files: files, expiry: expiry}
}

// Export renders the workouts List would return and uploads them as an .ics file.
func (s *calendarService) Export(ctx context.Context, actor domain.Actor, filter WorkoutListFilter) (*CalendarExport, error) {
	workouts, err := s.workouts.List(ctx, actor, filter)
	if err != nil {
		return nil, err
	}

	events := make([]calendar.Event, len(workouts))
	for i, w := range workouts {
		events[i] = calendar.Event{
			UID:      w.ID.Hex() + "@coach-app",
			Summary:  w.Title,
			Location: w.Location,
			Start:    w.Start,
			End:      w.End,
			Reminder: exportReminderMinutes,
		}
		if w.CoachNote != nil {
			events[i].Description = *w.CoachNote
		}
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("exports/%s/%s.ics", actor.ID.Hex(), uuid.NewString())
	if err := s.files.PutObject(ctx, key, calendar.ContentType, calendar.Render("Тренировки", events, now)); err != nil {
		return nil, fmt.Errorf("upload calendar export: %w", err)
	}
	url, err := s.files.GeneratePresignedDownloadURL(ctx, key, s.expiry)
	if err != nil {
		return nil, fmt.Errorf("presign calendar export: %w", err)
	}
	log.Printf("INFO: Exported %d workouts for user %s to %s", len(workouts), actor.ID.Hex(), key)
	return &CalendarExport{URL: url, ExpiresAt: now.Add(s.expiry), Count: len(workouts)}, nil
}
