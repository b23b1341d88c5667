package services

import (
	"crypto/rand"
	"fmt"
)

const (
	trackingIDPrefix = "TDW-"
	trackingIDLength = 6
	// trackingAlphabet leaves out I, O, 0 and 1. Its 32 symbols divide 256 evenly,
	// so byte%32 picks each one with equal probability.
	trackingAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// NewTrackingID returns a public tracking id such as TDW-QW7RT9.
func NewTrackingID() (string, error) {
	buf := make([]byte, trackingIDLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate tracking id: %w", err)
	}
	for i, b := range buf {
		buf[i] = trackingAlphabet[int(b)%len(trackingAlphabet)]
	}
	return trackingIDPrefix + string(buf), nil
}
