// Package badge renders the QR code printed on employee badges. The payload
// is the employee matricule, which the scanner sends back verbatim.
package badge

import (
	"errors"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	DefaultSize = 256
	MinSize     = 64
	MaxSize     = 1024
)

var ErrEmptyPayload = errors.New("badge payload is empty")

// PNG encodes payload as a QR code of size×size pixels. Out-of-range sizes
// are clamped.
func PNG(payload string, size int) ([]byte, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}
	switch {
	case size <= 0:
		size = DefaultSize
	case size < MinSize:
		size = MinSize
	case size > MaxSize:
		size = MaxSize
	}
	return qrcode.Encode(payload, qrcode.Medium, size)
}
