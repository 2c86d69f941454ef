package models

import "strings"

// Fingerprint is a durable, order-independent key for a physical monitor,
// derived from stable identity fields. Enumeration indices change across
// reboots and port swaps; fingerprints do not.
type Fingerprint string

const (
	edidPrefix     = "edid:"
	degradedPrefix = "name:"
)

// NewFingerprint derives a fingerprint from EDID identity fields. When all
// identity fields are empty it falls back to a degraded pseudo-identity
// based on the display name, distinguishable by its prefix.
func NewFingerprint(vendor, product, serial, displayName string) Fingerprint {
	v := sanitizeField(vendor)
	p := sanitizeField(product)
	s := sanitizeField(serial)
	if v == "" && p == "" && s == "" {
		return Fingerprint(degradedPrefix + sanitizeField(displayName))
	}
	return Fingerprint(edidPrefix + v + "|" + p + "|" + s)
}

// Degraded reports whether the fingerprint was derived without EDID identity
// fields. Degraded fingerprints may collide between identical monitors.
func (f Fingerprint) Degraded() bool {
	return strings.HasPrefix(string(f), degradedPrefix)
}

func sanitizeField(s string) string {
	s = strings.TrimSpace(s)
	// "|" is the field separator; strip it so two different devices cannot
	// produce the same joined key.
	return strings.ReplaceAll(s, "|", "_")
}
