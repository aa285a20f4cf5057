package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/domain"
)

// AddViews adds a drained delta to the row's views_count.
func (r *Repo) AddViews(ctx context.Context, kind domain.EntityKind, id string, delta int64) error {
	var query string
	switch kind {
	case domain.KindList:
		query = addListViewsSQL
	case domain.KindListItem:
		query = addItemViewsSQL
	default:
		return domain.ErrValidation("unknown entity kind")
	}

	result, err := r.db.ExecContext(ctx, query, id, delta)
	if err != nil {
		return fmt.Errorf("failed to add views: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound(fmt.Sprintf("%s not found: %s", kind, id))
	}
	return nil
}

func (r *Repo) ListViewCount(ctx context.Context, id string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, listViewsSQL, id).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, domain.ErrNotFound("list not found")
	}
	if err != nil {
		return 0, fmt.Errorf("query list views: %w", err)
	}
	return n, nil
}

// ItemViewCounts omits ids that have no row.
func (r *Repo) ItemViewCounts(ctx context.Context, ids []string) (map[string]int64, error) {
	out := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx, itemViewsSQL, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query item views: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}
