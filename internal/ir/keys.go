package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// KeyKind partitions the registry key space.
type KeyKind string

const (
	KindNextID        KeyKind = "next_id"
	KindAchievement   KeyKind = "achievement"
	KindOwnerIndex    KeyKind = "owner"
	KindCategoryIndex KeyKind = "category"
	KindAdmin         KeyKind = "admin"
	KindVerifier      KeyKind = "verifier"
)

const keySeparator = "/"

// Key addresses one entry in the durable store.
// Singleton keys (NextID, Admin) have an empty Subject.
type Key struct {
	Kind    KeyKind
	Subject string
}

// KeyNextID is the ID allocator counter.
func KeyNextID() Key { return Key{Kind: KindNextID} }

// KeyAchievement is the primary record for id.
func KeyAchievement(id uint64) Key {
	return Key{Kind: KindAchievement, Subject: strconv.FormatUint(id, 10)}
}

// KeyOwnerIndex is the ordered ID list for owner.
func KeyOwnerIndex(owner Identity) Key {
	return Key{Kind: KindOwnerIndex, Subject: string(owner)}
}

// KeyCategoryIndex is the ordered ID list for category.
func KeyCategoryIndex(category string) Key {
	return Key{Kind: KindCategoryIndex, Subject: category}
}

// KeyAdmin holds the admin identity.
func KeyAdmin() Key { return Key{Kind: KindAdmin} }

// KeyVerifier marks identity as a whitelisted verifier.
func KeyVerifier(identity Identity) Key {
	return Key{Kind: KindVerifier, Subject: string(identity)}
}

// String encodes the key as stored: "next_id", "achievement/7", "owner/<id>".
// Only the first separator is significant, so subjects may contain "/".
func (k Key) String() string {
	if k.Subject == "" && (k.Kind == KindNextID || k.Kind == KindAdmin) {
		return string(k.Kind)
	}
	return string(k.Kind) + keySeparator + k.Subject
}

// ParseKey decodes a stored key string.
func ParseKey(s string) (Key, error) {
	switch KeyKind(s) {
	case KindNextID, KindAdmin:
		return Key{Kind: KeyKind(s)}, nil
	}
	kind, subject, ok := strings.Cut(s, keySeparator)
	if !ok {
		return Key{}, fmt.Errorf("parse key %q: missing separator", s)
	}
	switch KeyKind(kind) {
	case KindAchievement:
		if _, err := strconv.ParseUint(subject, 10, 64); err != nil {
			return Key{}, fmt.Errorf("parse key %q: invalid achievement id: %w", s, err)
		}
	case KindOwnerIndex, KindCategoryIndex, KindVerifier:
	default:
		return Key{}, fmt.Errorf("parse key %q: unknown kind %q", s, kind)
	}
	return Key{Kind: KeyKind(kind), Subject: subject}, nil
}
