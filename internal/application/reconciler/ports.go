package reconciler

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/domain"
)

// ViewsWriter adds a drained delta to the durable views_count column.
// A missing row is reported as a not_found AppError.
type ViewsWriter interface {
	AddViews(ctx context.Context, kind domain.EntityKind, id string, delta int64) error
}
