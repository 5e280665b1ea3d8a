package ledger

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/pointsfarmer/internal/ledger/migrations"
)

// gooseUpContext is a seam for testing migration wiring.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// PostgresStore keeps the snapshot in a reward_ledger table, replaced
// wholesale inside one transaction on every save.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the database, runs the embedded migrations and
// returns the store. The caller owns Close.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) Load(ctx context.Context) (Snapshot, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT account_key, balance FROM reward_ledger`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	s := Snapshot{}
	for rows.Next() {
		var key string
		var balance int64
		if err := rows.Scan(&key, &balance); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		s[key] = balance
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func (p *PostgresStore) Save(ctx context.Context, s Snapshot) (err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM reward_ledger`); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	for key, balance := range s {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO reward_ledger (account_key, balance, updated_at) VALUES ($1, $2, now())`,
			key, balance); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func (p *PostgresStore) Close() error {
	return p.db.Close()
}
