package exclusion

import (
	"context"
	"database/sql"

	"github.com/kpenchev/tvprograma-go/internal/domain"
	"github.com/kpenchev/tvprograma-go/internal/service/database"
	"github.com/kpenchev/tvprograma-go/pkg/errors"
	"go.uber.org/zap"
)

// Repository persists exclusion rules. Every mutation is flushed before the
// call returns so the store always reads its own writes.
type Repository interface {
	Load(ctx context.Context) ([]domain.ExclusionRule, error)
	Insert(ctx context.Context, rule domain.ExclusionRule) error
	Delete(ctx context.Context, rule domain.ExclusionRule) error
}

type PostgresRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresRepository(postgres *database.PostgresService, logger *zap.Logger) *PostgresRepository {
	return &PostgresRepository{
		db:     postgres.GetDB(),
		logger: logger,
	}
}

func (r *PostgresRepository) Load(ctx context.Context) ([]domain.ExclusionRule, error) {
	query := `
		SELECT title, scope, channel_id, air_date, air_time, description
		FROM exclusion_rules
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewStoreError("failed to load exclusion rules", "load", "exclusion_rules", err)
	}
	defer rows.Close()

	var rules []domain.ExclusionRule
	for rows.Next() {
		var rule domain.ExclusionRule
		var scope string
		if err := rows.Scan(&rule.Title, &scope, &rule.ChannelID, &rule.Date, &rule.Time, &rule.Description); err != nil {
			return nil, errors.NewStoreError("failed to scan exclusion rule", "load", "exclusion_rules", err)
		}
		rule.Scope = domain.ExclusionScope(scope)
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError("failed to iterate exclusion rules", "load", "exclusion_rules", err)
	}

	return rules, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, rule domain.ExclusionRule) error {
	query := `
		INSERT INTO exclusion_rules (title, normalized_key, scope, channel_id, air_date, air_time, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		rule.Title, rule.NormalizedKey(), string(rule.Scope),
		rule.ChannelID, rule.Date, rule.Time, rule.Description,
	)
	if err != nil {
		return errors.NewStoreError("failed to insert exclusion rule", "insert", "exclusion_rules", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, rule domain.ExclusionRule) error {
	query := `
		DELETE FROM exclusion_rules
		WHERE scope = $1 AND normalized_key = $2 AND channel_id = $3 AND air_date = $4 AND air_time = $5
	`

	_, err := r.db.ExecContext(ctx, query,
		string(rule.Scope), rule.NormalizedKey(), rule.ChannelID, rule.Date, rule.Time,
	)
	if err != nil {
		return errors.NewStoreError("failed to delete exclusion rule", "delete", "exclusion_rules", err)
	}
	return nil
}
