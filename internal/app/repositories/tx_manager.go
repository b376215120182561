package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/huskybridge/marketplace/internal/db"
)

// PgTxManager implements TxManager on a PostgreSQL pool
type PgTxManager struct {
	pg *db.PostgresDB
}

// NewPgTxManager creates a new PgTxManager
func NewPgTxManager(pg *db.PostgresDB) *PgTxManager {
	return &PgTxManager{pg: pg}
}

// WithTx runs fn with repositories bound to a fresh transaction
func (m *PgTxManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error {
	return m.pg.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &txRepositories{tx: tx})
	})
}

type txRepositories struct {
	tx pgx.Tx
}

func (r *txRepositories) Posts() IPostRepository {
	return NewPostRepository(r.tx)
}

func (r *txRepositories) Participants() IParticipantRepository {
	return NewParticipantRepository(r.tx)
}

func (r *txRepositories) Reports() IReportRepository {
	return NewReportRepository(r.tx)
}
