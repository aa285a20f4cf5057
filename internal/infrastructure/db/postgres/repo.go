package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/domain"
)

// Repo implements the durable ports of the views, reactions, bookmarks and
// reconciler packages over one connection pool.
type Repo struct {
	db *sql.DB
}

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func (r *Repo) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
		ReadOnly:  false,
	})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// itemArg binds a nullable list_item_id.
func itemArg(t domain.Target) any {
	if t.IsItem() {
		return *t.ListItemID
	}
	return nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// targetExists checks the list, or the item within that list.
func targetExists(ctx context.Context, q queryRower, t domain.Target) error {
	var one int
	var err error
	if t.IsItem() {
		err = q.QueryRowContext(ctx, itemExistsSQL, *t.ListItemID, t.ListID).Scan(&one)
	} else {
		err = q.QueryRowContext(ctx, listExistsSQL, t.ListID).Scan(&one)
	}
	if err == sql.ErrNoRows {
		if t.IsItem() {
			return domain.ErrNotFound("list item not found")
		}
		return domain.ErrNotFound("list not found")
	}
	if err != nil {
		return fmt.Errorf("check target: %w", err)
	}
	return nil
}
