package counter

import (
	"fmt"
	"strings"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/domain"
)

const (
	PendingSetKey = "views:pending"

	counterPrefix = "views:"
	seenPrefix    = "views:seen:"
)

// CounterKey is views:<kind>:<id>.
func CounterKey(kind domain.EntityKind, id string) string {
	return fmt.Sprintf("%s%s:%s", counterPrefix, kind, id)
}

// SeenKey is the dedup marker for one visitor on one entity.
func SeenKey(kind domain.EntityKind, id string, visitor domain.VisitorID) string {
	return fmt.Sprintf("%s%s:%s:%s", seenPrefix, kind, id, visitor)
}

// ParseCounterKey is the inverse of CounterKey.
func ParseCounterKey(key string) (domain.EntityKind, string, error) {
	rest, ok := strings.CutPrefix(key, counterPrefix)
	if !ok || strings.HasPrefix(key, seenPrefix) {
		return "", "", fmt.Errorf("not a counter key: %q", key)
	}
	kind, id, ok := strings.Cut(rest, ":")
	if !ok || id == "" || !domain.EntityKind(kind).Valid() {
		return "", "", fmt.Errorf("malformed counter key: %q", key)
	}
	return domain.EntityKind(kind), id, nil
}
