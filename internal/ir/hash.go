package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainEvent is the domain prefix for content-addressed event IDs.
// Version suffix enables future algorithm migration.
const DomainEvent = "accolade/event/v1"

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// EventID computes the content-addressed ID for an event.
// The ID covers everything except the ID field itself, so replaying the
// same operations with the same clock and call IDs yields the same IDs.
func EventID(ev Event) (string, error) {
	ev.ID = ""
	obj := ev.Canonical()
	delete(obj, "id")

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("EventID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainEvent, canonical), nil
}

// MustEventID is like EventID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustEventID(ev Event) string {
	id, err := EventID(ev)
	if err != nil {
		panic(err)
	}
	return id
}
