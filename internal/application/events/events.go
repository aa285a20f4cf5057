package events

import (
	"context"
	"strings"
	"time"
)

const (
	EventVersion  = 1
	EventProducer = "engagement-service"

	RoutingReactionToggled = "engagement.reaction.toggled"
	RoutingBookmarkToggled = "engagement.bookmark.toggled"
	RoutingViewsSynced     = "engagement.views.synced"
)

type EventPublisher interface {
	PublishEvent(ctx context.Context, routingKey string, payload any) error
}

type NoopPublisher struct{}

func (NoopPublisher) PublishEvent(ctx context.Context, routingKey string, payload any) error {
	return nil
}

// Envelope is the stable contract for all domain events emitted by engagement-service.
type Envelope[T any] struct {
	Version    int       `json:"version"`
	Producer   string    `json:"producer"`
	MessageID  string    `json:"message_id"`
	TraceID    string    `json:"trace_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    T         `json:"payload"`
}

// ReactionToggledPayload feeds the notification pipeline ("U reacted to your list").
type ReactionToggledPayload struct {
	ListID     string  `json:"list_id"`
	ListItemID *string `json:"list_item_id,omitempty"`
	UserID     string  `json:"user_id"`
	Type       string  `json:"type"`
	Active     bool    `json:"active"`
	Count      int64   `json:"count"`
}

type BookmarkToggledPayload struct {
	ListID     string  `json:"list_id"`
	ListItemID *string `json:"list_item_id,omitempty"`
	UserID     string  `json:"user_id"`
	Bookmarked bool    `json:"bookmarked"`
}

type ViewsSyncedPayload struct {
	ListsUpdated int `json:"lists_updated"`
	ItemsUpdated int `json:"items_updated"`
	Errors       int `json:"errors"`
	Skipped      int `json:"skipped"`
}

// ---- trace id plumbing ----
type ctxKey string

const ctxRequestID ctxKey = "request_id"

// WithRequestID can be called by HTTP middleware to inject request_id into context.
func WithRequestID(ctx context.Context, id string) context.Context {
	id = strings.TrimSpace(id)
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxRequestID, id)
}

// TraceIDFromContext reads request_id if available.
func TraceIDFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxRequestID); v != nil {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
