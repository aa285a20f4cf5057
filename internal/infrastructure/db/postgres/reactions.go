package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/domain"
)

// ToggleReaction runs existence check, delete-or-insert and recount in one
// transaction so the returned count includes the caller's own change.
func (r *Repo) ToggleReaction(ctx context.Context, t domain.Target, userID string, rt domain.ReactionType) (domain.ToggleResult, error) {
	var res domain.ToggleResult
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if err := targetExists(ctx, tx, t); err != nil {
			return err
		}

		item := itemArg(t)
		deleted, err := tx.ExecContext(ctx, deleteReactionSQL, t.ListID, item, userID, string(rt))
		if err != nil {
			return fmt.Errorf("delete reaction: %w", err)
		}
		n, err := deleted.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if n == 0 {
			if _, err := tx.ExecContext(ctx, insertReactionSQL, t.ListID, item, userID, string(rt)); err != nil {
				return fmt.Errorf("insert reaction: %w", err)
			}
			res.Active = true
		}

		if err := tx.QueryRowContext(ctx, countReactionTypeSQL, t.ListID, item, string(rt)).Scan(&res.Count); err != nil {
			return fmt.Errorf("count reactions: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.ToggleResult{}, err
	}
	return res, nil
}

func (r *Repo) CountReactions(ctx context.Context, t domain.Target) (map[domain.ReactionType]int64, error) {
	rows, err := r.db.QueryContext(ctx, countReactionsSQL, t.ListID, itemArg(t))
	if err != nil {
		return nil, fmt.Errorf("count reactions: %w", err)
	}
	defer rows.Close()

	out := map[domain.ReactionType]int64{}
	for rows.Next() {
		var typ string
		var n int64
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		out[domain.ReactionType(typ)] = n
	}
	return out, rows.Err()
}

func (r *Repo) UserReactions(ctx context.Context, t domain.Target, userID string) ([]domain.ReactionType, error) {
	rows, err := r.db.QueryContext(ctx, userReactionsSQL, t.ListID, itemArg(t), userID)
	if err != nil {
		return nil, fmt.Errorf("query user reactions: %w", err)
	}
	defer rows.Close()

	out := []domain.ReactionType{}
	for rows.Next() {
		var typ string
		if err := rows.Scan(&typ); err != nil {
			return nil, err
		}
		out = append(out, domain.ReactionType(typ))
	}
	return out, rows.Err()
}
