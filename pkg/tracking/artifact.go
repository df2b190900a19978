package tracking

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 300

// URL builds the public tracking link for a tracking id.
func URL(baseURL, trackingID string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return base + "?track=" + url.QueryEscape(trackingID)
}

// QRDataURL renders content as a PNG QR code data URL.
func QRDataURL(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("qr content is required")
	}
	png, err := qrcode.Encode(content, qrcode.Medium, qrSize)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// Generator produces the scannable artifact stored on an order.
type Generator interface {
	Generate(content string) (string, error)
}

// QRGenerator is the default Generator.
type QRGenerator struct{}

func (QRGenerator) Generate(content string) (string, error) {
	return QRDataURL(content)
}

// NoopGenerator leaves the artifact empty; used when QR rendering is disabled.
type NoopGenerator struct{}

func (NoopGenerator) Generate(string) (string, error) {
	return "", nil
}
