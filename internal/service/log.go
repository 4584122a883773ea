package service

import (
	"context"
	"log/slog"

	"github.com/sakif/exercise-tracker/internal/logquery"
	"github.com/sakif/exercise-tracker/internal/model"
	"github.com/sakif/exercise-tracker/internal/observability"
	"github.com/sakif/exercise-tracker/internal/repository"
)

// LogService answers log queries: one read of the user, then the filter,
// sort and truncate pipeline in logquery.
type LogService struct {
	store  repository.UserStore
	logger *slog.Logger
}

// NewLogService creates a LogService backed by store.
func NewLogService(store repository.UserStore, logger *slog.Logger) *LogService {
	return &LogService{
		store:  store,
		logger: logger,
	}
}

// QueryLog returns the user's activities dated within [from, to], newest
// first, cut to limit entries. Count always equals len(Log). An unknown user
// fails with apperror.ErrNotFound; malformed bounds and limits are ignored.
func (s *LogService) QueryLog(ctx context.Context, userID string, params logquery.Params) (*model.LogView, error) {
	user, err := findUser(ctx, s.store, s.logger, userID)
	if err != nil {
		return nil, err
	}

	q := params.Query()
	view := logquery.Run(user, q)

	observability.RecordLogQuery(view.Count)
	s.logger.Debug("log queried",
		slog.String("userId", view.ID),
		slog.Time("from", q.From),
		slog.Time("to", q.To),
		slog.Int("limit", q.Limit),
		slog.Int("count", view.Count),
	)

	return view, nil
}
