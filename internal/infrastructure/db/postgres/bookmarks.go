package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/domain"
)

func (r *Repo) ToggleBookmark(ctx context.Context, userID string, t domain.Target, newID string, at time.Time) (bool, error) {
	var bookmarked bool
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if err := targetExists(ctx, tx, t); err != nil {
			return err
		}

		item := itemArg(t)
		deleted, err := tx.ExecContext(ctx, deleteBookmarkSQL, userID, t.ListID, item)
		if err != nil {
			return fmt.Errorf("delete bookmark: %w", err)
		}
		n, err := deleted.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if n > 0 {
			return nil
		}

		if _, err := tx.ExecContext(ctx, insertBookmarkSQL, newID, userID, t.ListID, item, at); err != nil {
			return fmt.Errorf("insert bookmark: %w", err)
		}
		bookmarked = true
		return nil
	})
	return bookmarked, err
}

func (r *Repo) MoveBookmark(ctx context.Context, userID, bookmarkID string, collectionID *string) (bool, error) {
	var (
		result sql.Result
		err    error
	)
	if collectionID == nil {
		result, err = r.db.ExecContext(ctx, uncategorizeBookmarkSQL, bookmarkID, userID)
	} else {
		result, err = r.db.ExecContext(ctx, moveBookmarkSQL, bookmarkID, userID, *collectionID)
	}
	if err != nil {
		return false, fmt.Errorf("move bookmark: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n == 1, nil
}

func (r *Repo) ListBookmarks(ctx context.Context, userID string, f domain.BookmarkFilter) ([]domain.Bookmark, error) {
	query := listBookmarksSQL
	args := []any{userID}
	switch {
	case f.Uncategorized:
		query += ` AND collection_id IS NULL`
	case f.CollectionID != nil:
		query += ` AND collection_id = $2`
		args = append(args, *f.CollectionID)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	out := []domain.Bookmark{}
	for rows.Next() {
		var (
			b            domain.Bookmark
			itemID       sql.NullString
			collectionID sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.UserID, &b.Target.ListID, &itemID, &collectionID, &b.CreatedAt); err != nil {
			return nil, err
		}
		if itemID.Valid {
			b.Target.ListItemID = &itemID.String
		}
		if collectionID.Valid {
			b.CollectionID = &collectionID.String
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) CollectionNameExists(ctx context.Context, userID, name string) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, collectionNameExistsSQL, userID, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("check collection name: %w", err)
	}
	return exists, nil
}

func (r *Repo) CreateCollection(ctx context.Context, c *domain.Collection) error {
	_, err := r.db.ExecContext(ctx, insertCollectionSQL, c.ID, c.UserID, c.Name, c.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrConflict("collection already exists")
	}
	if err != nil {
		return fmt.Errorf("insert collection: %w", err)
	}
	return nil
}

func (r *Repo) GetCollection(ctx context.Context, id string) (*domain.Collection, error) {
	var c domain.Collection
	err := r.db.QueryRowContext(ctx, getCollectionSQL, id).Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound("collection not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}
	return &c, nil
}

func (r *Repo) ListCollections(ctx context.Context, userID string) ([]domain.Collection, error) {
	rows, err := r.db.QueryContext(ctx, listCollectionsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	out := []domain.Collection{}
	for rows.Next() {
		var c domain.Collection
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteCollection relies on ON DELETE SET NULL to uncategorize its bookmarks.
func (r *Repo) DeleteCollection(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, deleteCollectionSQL, id)
	if err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound("collection not found")
	}
	return nil
}
