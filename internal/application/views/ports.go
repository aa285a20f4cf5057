package views

import "context"

// Dispatcher hands work to a background executor without blocking.
type Dispatcher interface {
	TrySubmit(job func()) bool
}

// CountReader reads durable views_count columns.
type CountReader interface {
	ListViewCount(ctx context.Context, listID string) (int64, error)
	ItemViewCounts(ctx context.Context, itemIDs []string) (map[string]int64, error)
}
