package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"

	"github.com/kpenchev/tvprograma-go/internal/domain"
	"github.com/kpenchev/tvprograma-go/internal/service/database"
	"github.com/kpenchev/tvprograma-go/pkg/errors"
	"go.uber.org/zap"
)

type ChannelRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewChannelRepository(postgres *database.PostgresService, logger *zap.Logger) *ChannelRepository {
	return &ChannelRepository{
		db:     postgres.GetDB(),
		logger: logger,
	}
}

func (r *ChannelRepository) List(ctx context.Context) ([]domain.Channel, error) {
	return r.query(ctx, `SELECT id, name, icon, active FROM channels ORDER BY name`)
}

func (r *ChannelRepository) ListActive(ctx context.Context) ([]domain.Channel, error) {
	return r.query(ctx, `SELECT id, name, icon, active FROM channels WHERE active ORDER BY name`)
}

func (r *ChannelRepository) query(ctx context.Context, query string) ([]domain.Channel, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewStoreError("failed to query channels", "list", "channels", err)
	}
	defer rows.Close()

	var channels []domain.Channel
	for rows.Next() {
		var ch domain.Channel
		if err := rows.Scan(&ch.ID, &ch.Name, &ch.Icon, &ch.Active); err != nil {
			return nil, errors.NewStoreError("failed to scan channel", "list", "channels", err)
		}
		channels = append(channels, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError("failed to iterate channels", "list", "channels", err)
	}

	return channels, nil
}

// UpsertAll replaces the attributes of every listed channel, inserting the
// ones not seen before.
func (r *ChannelRepository) UpsertAll(ctx context.Context, channels []domain.Channel) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStoreError("failed to begin channel update", "upsert", "channels", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO channels (id, name, icon, active)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = $2, icon = $3, active = $4
	`
	for _, ch := range channels {
		if _, err := tx.ExecContext(ctx, query, ch.ID, ch.Name, ch.Icon, ch.Active); err != nil {
			return errors.NewStoreError("failed to upsert channel", "upsert", "channels", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewStoreError("failed to commit channel update", "upsert", "channels", err)
	}
	return nil
}

// Toggle flips a channel's active flag and returns the new state.
func (r *ChannelRepository) Toggle(ctx context.Context, channelID string) (active bool, found bool, err error) {
	query := `UPDATE channels SET active = NOT active WHERE id = $1 RETURNING active`

	err = r.db.QueryRowContext(ctx, query, channelID).Scan(&active)
	if err == sql.ErrNoRows {
		return false, false, nil
	}
	if err != nil {
		return false, false, errors.NewStoreError("failed to toggle channel", "toggle", "channels", err)
	}
	return active, true, nil
}

func (r *ChannelRepository) Count(ctx context.Context) (total, active int, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT count(*), count(*) FILTER (WHERE active) FROM channels`,
	).Scan(&total, &active)
	if err != nil {
		return 0, 0, errors.NewStoreError("failed to count channels", "count", "channels", err)
	}
	return total, active, nil
}

// SeedFromFile imports channels from a bundled JSON file when the table is
// still empty. Used for first start; a missing file is not an error.
func (r *ChannelRepository) SeedFromFile(ctx context.Context, path string) error {
	total, _, err := r.Count(ctx)
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.Warn("Channel seed file missing, starting with no channels", zap.String("path", path))
			return nil
		}
		return err
	}

	var payload struct {
		Channels []domain.Channel `json:"channels"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return errors.NewStoreError("failed to parse channel seed file", "seed", "channels", err)
	}

	if err := r.UpsertAll(ctx, payload.Channels); err != nil {
		return err
	}

	r.logger.Info("Channels seeded",
		zap.String("path", path),
		zap.Int("channels", len(payload.Channels)),
	)
	return nil
}
