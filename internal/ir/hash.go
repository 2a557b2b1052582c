package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainManifest = "animpub/manifest/v1"
	DomainContent  = "animpub/content/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ManifestHash computes the content-addressed hash of a slot list.
// Slot order is significant: the miner emits a deterministic order, so two
// publishes of equivalent text produce the same hash.
func ManifestHash(slots []Slot) (string, error) {
	canonical, err := MarshalCanonical(slots)
	if err != nil {
		return "", fmt.Errorf("ManifestHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainManifest, canonical), nil
}

// ContentHash hashes published script text.
func ContentHash(text string) string {
	return hashWithDomain(DomainContent, []byte(text))
}
