package scan

import (
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
)

// ZXingDecoder decodes QR codes from frames using gozxing.
type ZXingDecoder struct {
	reader gozxing.Reader
}

// NewZXingDecoder returns a decoder restricted to QR codes.
func NewZXingDecoder() *ZXingDecoder {
	return &ZXingDecoder{reader: zxqrcode.NewQRCodeReader()}
}

// Decode extracts the QR payload from a frame. A frame without a readable
// code returns ErrNoCode so the scan loop keeps going.
func (d *ZXingDecoder) Decode(img image.Image) (string, error) {
	source := gozxing.NewLuminanceSourceFromImage(img)
	bitmap, err := gozxing.NewBinaryBitmap(gozxing.NewHybridBinarizer(source))
	if err != nil {
		return "", fmt.Errorf("binarize frame: %w", err)
	}

	result, err := d.reader.Decode(bitmap, nil)
	if err != nil {
		if _, ok := err.(gozxing.ReaderException); ok {
			return "", ErrNoCode
		}
		return "", fmt.Errorf("decode qr: %w", err)
	}
	return result.GetText(), nil
}
