package domain

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VisitorID is the dedup identity of whoever produced a view event.
type VisitorID string

const DefaultUnknownBucket = "unknown"

// VisitorResolver derives VisitorIDs. Client IPs are keyed-hashed so stored
// dedup markers cannot be mapped back to addresses without the salt.
type VisitorResolver struct {
	salt    []byte
	unknown string
}

func NewVisitorResolver(salt, unknownBucket string) VisitorResolver {
	unknownBucket = strings.TrimSpace(unknownBucket)
	if unknownBucket == "" {
		unknownBucket = DefaultUnknownBucket
	}
	return VisitorResolver{salt: []byte(salt), unknown: unknownBucket}
}

// Resolve never returns an empty id: with neither a user nor an IP every
// caller lands in the shared unknown bucket.
func (v VisitorResolver) Resolve(userID, clientIP string) VisitorID {
	if uid := strings.TrimSpace(userID); uid != "" {
		return VisitorID("user:" + uid)
	}
	ip := strings.TrimSpace(clientIP)
	if ip == "" {
		return VisitorID("ip:" + v.unknown)
	}
	mac := hmac.New(sha256.New, v.salt)
	mac.Write([]byte(ip))
	sum := mac.Sum(nil)
	return VisitorID("ip:" + hex.EncodeToString(sum[:16]))
}
