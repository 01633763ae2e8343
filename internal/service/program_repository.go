package service

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/kpenchev/tvprograma-go/internal/domain"
	"github.com/kpenchev/tvprograma-go/internal/service/database"
	"github.com/kpenchev/tvprograma-go/pkg/errors"
	"go.uber.org/zap"
)

// ProgramRepository persists one raw DaySchedule per date. Days older than
// the rolling window are pruned after each fetch.
type ProgramRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewProgramRepository(postgres *database.PostgresService, logger *zap.Logger) *ProgramRepository {
	return &ProgramRepository{
		db:     postgres.GetDB(),
		logger: logger,
	}
}

func (r *ProgramRepository) SaveDay(ctx context.Context, date string, schedule *domain.DaySchedule) error {
	payload, err := json.Marshal(schedule)
	if err != nil {
		return errors.NewStoreError("failed to marshal day schedule", "save", "program_days", err)
	}

	query := `
		INSERT INTO program_days (day, payload, fetched_at)
		VALUES ($1, $2, now())
		ON CONFLICT (day) DO UPDATE SET payload = $2, fetched_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, date, payload); err != nil {
		return errors.NewStoreError("failed to save day schedule", "save", "program_days", err)
	}

	r.logger.Info("Day schedule saved", zap.String("date", date))
	return nil
}

// LoadDay returns nil without error when the date has no stored schedule.
func (r *ProgramRepository) LoadDay(ctx context.Context, date string) (*domain.DaySchedule, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM program_days WHERE day = $1`, date).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStoreError("failed to load day schedule", "load", "program_days", err)
	}

	var schedule domain.DaySchedule
	if err := json.Unmarshal(payload, &schedule); err != nil {
		return nil, errors.NewStoreError("failed to unmarshal day schedule", "load", "program_days", err)
	}
	return &schedule, nil
}

// LoadWindow returns the stored schedules for the given dates, keyed by
// date. Missing days are simply absent.
func (r *ProgramRepository) LoadWindow(ctx context.Context, dates []string) (map[string]*domain.DaySchedule, error) {
	window := make(map[string]*domain.DaySchedule, len(dates))
	for _, date := range dates {
		schedule, err := r.LoadDay(ctx, date)
		if err != nil {
			return nil, err
		}
		if schedule != nil {
			window[date] = schedule
		}
	}
	return window, nil
}

// ListDates returns all stored dates, newest first.
func (r *ProgramRepository) ListDates(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT day FROM program_days ORDER BY day DESC`)
	if err != nil {
		return nil, errors.NewStoreError("failed to list stored dates", "list", "program_days", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, errors.NewStoreError("failed to scan stored date", "list", "program_days", err)
		}
		dates = append(dates, date)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError("failed to iterate stored dates", "list", "program_days", err)
	}
	return dates, nil
}

// DeleteOlderThan removes schedules before cutoff (YYYY-MM-DD, exclusive).
func (r *ProgramRepository) DeleteOlderThan(ctx context.Context, cutoff string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM program_days WHERE day < $1`, cutoff)
	if err != nil {
		return 0, errors.NewStoreError("failed to prune old schedules", "delete", "program_days", err)
	}

	deleted, _ := result.RowsAffected()
	if deleted > 0 {
		r.logger.Info("Pruned old schedules",
			zap.String("cutoff", cutoff),
			zap.Int64("deleted", deleted),
		)
	}
	return deleted, nil
}
