package adapter

import (
	"fmt"

	"github.com/minio/highwayhash"
)

// fingerprintKey is fixed so fingerprints are comparable across runs.
var fingerprintKey = []byte("cvariants/seed-fingerprint/v1...")

// Fingerprint returns the 64-bit HighwayHash of a seed's content.
func Fingerprint(content []byte) (uint64, error) {
	h, err := highwayhash.New64(fingerprintKey)
	if err != nil {
		return 0, fmt.Errorf("fingerprint: %w", err)
	}

	_, _ = h.Write(content)

	return h.Sum64(), nil
}

// FormatFingerprint renders a fingerprint the way manifests store it.
func FormatFingerprint(fp uint64) string {
	return fmt.Sprintf("%016x", fp)
}
