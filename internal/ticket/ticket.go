// Package ticket renders order tickets as QR codes. The encoded content is
// the ticket code issued by the backend; the admin scanner submits the
// decoded string back for validation.
package ticket

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the rendered edge length in pixels.
const DefaultSize = 256

// QRPNG renders the ticket code as a PNG.
func QRPNG(code string, size int) ([]byte, error) {
	if code == "" {
		return nil, fmt.Errorf("ticket code is empty")
	}
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(code, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

// QRDataURI renders the ticket code as a data:image/png URI for embedding.
func QRDataURI(code string, size int) (string, error) {
	png, err := QRPNG(code, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// SaveQR writes the ticket QR for an order to dir and returns the file path.
func SaveQR(dir, code string, orderID int64) (string, error) {
	if code == "" {
		return "", fmt.Errorf("ticket code is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create ticket dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("order-%d.png", orderID))
	if err := qrcode.WriteFile(code, qrcode.Medium, DefaultSize, path); err != nil {
		return "", fmt.Errorf("write qr: %w", err)
	}
	return path, nil
}
