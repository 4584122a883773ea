package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/exercise-tracker/internal/apperror"
	"github.com/sakif/exercise-tracker/internal/model"
	"github.com/sakif/exercise-tracker/internal/observability"
	"github.com/sakif/exercise-tracker/internal/repository"
)

// AppendActivityInput carries the raw fields of an add-exercise request.
// Duration and Date stay strings until the service has validated them.
type AppendActivityInput struct {
	UserID      string `json:"userId" validate:"required"`
	Description string `json:"description" validate:"required"`
	Duration    string `json:"duration" validate:"required"`
	Date        string `json:"date"`
}

func (in *AppendActivityInput) trim() {
	in.UserID = strings.TrimSpace(in.UserID)
	in.Description = strings.TrimSpace(in.Description)
	in.Duration = strings.TrimSpace(in.Duration)
	in.Date = strings.TrimSpace(in.Date)
}

// ActivityService appends exercise activities to user logs.
type ActivityService struct {
	store  repository.UserStore
	logger *slog.Logger
	now    func() time.Time
}

// NewActivityService creates an ActivityService backed by store.
func NewActivityService(store repository.UserStore, logger *slog.Logger) *ActivityService {
	return &ActivityService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// AppendActivity validates in, normalizes its date, and appends the activity
// to the user's log.
//
// A missing, empty or unparseable date becomes the current time. The date is
// resolved before the activity is built, so storage never sees an absent
// date. If the user does not exist or the save fails, the stored log is left
// as it was.
func (s *ActivityService) AppendActivity(ctx context.Context, in AppendActivityInput) (*model.ActivityReceipt, error) {
	in.trim()
	if err := validateInput(in); err != nil {
		return nil, err
	}

	duration, err := parseDuration(in.Duration)
	if err != nil {
		return nil, err
	}
	date := s.normalizeDate(in.Date)

	user, err := findUser(ctx, s.store, s.logger, in.UserID)
	if err != nil {
		return nil, err
	}

	activity := model.Activity{
		Description: in.Description,
		Duration:    duration,
		Date:        date,
	}

	// Build the new log in a fresh slice so a failed save cannot leak the
	// entry into the caller's copy of the user.
	updated := *user
	updated.Activities = make([]model.Activity, 0, len(user.Activities)+1)
	updated.Activities = append(updated.Activities, user.Activities...)
	updated.Activities = append(updated.Activities, activity)

	if err := s.store.SaveUser(ctx, &updated); err != nil {
		s.logger.Error("failed to save activity",
			slog.String("userId", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("appending activity: %w", err)
	}

	observability.RecordActivityAppended(s.now())
	s.logger.Info("activity appended",
		slog.String("userId", user.ID),
		slog.String("description", activity.Description),
		slog.Float64("duration", activity.Duration),
		slog.Time("date", activity.Date),
	)

	return &model.ActivityReceipt{
		ID:          user.ID,
		Username:    user.Username,
		Description: activity.Description,
		Duration:    activity.Duration,
		Date:        activity.Date,
	}, nil
}

// normalizeDate parses raw or falls back to the current time. Dates are kept
// at millisecond precision, the finest both stores can hold.
func (s *ActivityService) normalizeDate(raw string) time.Time {
	date, ok := model.ParseDate(raw)
	if !ok {
		date = s.now()
	}
	return date.UTC().Truncate(time.Millisecond)
}

// parseDuration accepts any finite positive number of minutes.
func parseDuration(raw string) (float64, error) {
	d, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, apperror.ValidationFailed("duration", "duration must be a number")
	}
	if d <= 0 {
		return 0, apperror.ValidationFailed("duration", "duration must be greater than 0")
	}
	return d, nil
}
