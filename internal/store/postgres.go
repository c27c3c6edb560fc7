package store

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Postgres persists the active order id per scope in a single table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	p := &Postgres{db: db}
	if err := p.migrate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Postgres) migrate() error {
	_, err := p.db.Exec(`CREATE TABLE IF NOT EXISTS tracked_orders (
        scope      TEXT PRIMARY KEY,
        order_id   BIGINT NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`)
	return err
}

func (p *Postgres) LoadActiveOrderID(ctx context.Context, scope string) (int64, error) {
	var id int64
	err := p.db.QueryRowContext(ctx, `SELECT order_id FROM tracked_orders WHERE scope=$1`, scope).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (p *Postgres) SaveActiveOrderID(ctx context.Context, scope string, orderID int64) error {
	_, err := p.db.ExecContext(ctx, `INSERT INTO tracked_orders (scope, order_id, updated_at) VALUES ($1,$2,now())
        ON CONFLICT (scope) DO UPDATE SET order_id=EXCLUDED.order_id, updated_at=now()`, scope, orderID)
	return err
}

func (p *Postgres) ClearActiveOrderID(ctx context.Context, scope string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM tracked_orders WHERE scope=$1`, scope)
	return err
}
