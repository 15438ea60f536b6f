// Package qrcode renders short strings, such as otpauth:// provisioning URIs,
// as PNG QR codes.
package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrEmptyContent is returned when content is empty or only whitespace.
	ErrEmptyContent = errors.New("qrcode: content cannot be empty")
	// ErrGenerate wraps failures from the encoder.
	ErrGenerate = errors.New("qrcode: failed to generate")
)

// DefaultSize is the edge length in pixels used when size is not positive.
const DefaultSize = 256

const dataURIPrefix = "data:image/png;base64,"

// Generate encodes content as a PNG QR code with medium error correction.
func Generate(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = DefaultSize
	}

	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrGenerate, err)
	}

	return png, nil
}

// GenerateBase64Image returns the PNG as a data URI usable directly in an
// <img src> attribute.
func GenerateBase64Image(content string, size int) (string, error) {
	png, err := Generate(content, size)
	if err != nil {
		return "", err
	}

	return dataURIPrefix + base64.StdEncoding.EncodeToString(png), nil
}
