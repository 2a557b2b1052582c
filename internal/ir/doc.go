// Package ir provides the manifest data model for animpub.
//
// This package contains the slot and manifest types plus their canonical
// serialization. All other internal packages import ir; ir imports nothing
// internal.
//
// Key design constraints:
//   - Slots are only ever built from rewritten text (see internal/schema)
//   - All JSON tags use snake_case
//   - Slot field order on the wire is name, slot, type, variant fields
//   - Hashes use RFC 8785 canonical JSON with domain separation
package ir
