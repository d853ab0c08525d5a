// Package scan runs the admin ticket scanning workflow: pick a camera, read
// frames until a QR code decodes, and submit the code for validation. The
// camera is released on every exit path.
package scan

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/fastorder/storefront/internal/api"
)

// Camera failure modes. Open implementations map their platform errors onto
// these so the workflow and the views can branch on cause.
var (
	// ErrPermissionDenied means camera access was refused.
	ErrPermissionDenied = errors.New("camera permission denied")
	// ErrNoCamera means no capture device exists.
	ErrNoCamera = errors.New("no camera found")
	// ErrCameraBusy means another process holds the device.
	ErrCameraBusy = errors.New("camera is in use")
	// ErrUnsupportedConstraints means the requested device cannot be opened
	// as asked; the workflow retries without a device preference.
	ErrUnsupportedConstraints = errors.New("unsupported camera constraints")
	// ErrNoCode means a frame held no decodable QR code.
	ErrNoCode = errors.New("no qr code in frame")
	// ErrTimeout means no code decoded before the deadline.
	ErrTimeout = errors.New("scan timed out")
)

// Device identifies one capture device.
type Device struct {
	ID    string
	Label string
}

// Camera yields frames until closed.
type Camera interface {
	// Read blocks for the next frame.
	Read(ctx context.Context) (image.Image, error)
	Close() error
}

// CameraProvider enumerates and opens capture devices. An empty deviceID
// asks for any camera.
type CameraProvider interface {
	Devices() ([]Device, error)
	Open(deviceID string) (Camera, error)
}

// Decoder extracts a QR payload from a frame. Returns ErrNoCode when the
// frame holds none.
type Decoder interface {
	Decode(img image.Image) (string, error)
}

// Validator submits a decoded ticket code to the backend.
type Validator interface {
	ScanQR(ctx context.Context, ticketCode string) (api.ScanResult, error)
}

// DefaultTimeout bounds one scanning session.
const DefaultTimeout = 60 * time.Second

// Workflow is the scan loop. One Run per scanned ticket.
type Workflow struct {
	cameras   CameraProvider
	decoder   Decoder
	validator Validator
	timeout   time.Duration
}

// NewWorkflow wires a scan workflow. timeout <= 0 uses DefaultTimeout.
func NewWorkflow(cameras CameraProvider, decoder Decoder, validator Validator, timeout time.Duration) *Workflow {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Workflow{cameras: cameras, decoder: decoder, validator: validator, timeout: timeout}
}

// Devices lists available cameras for the device picker.
func (w *Workflow) Devices() ([]Device, error) {
	devices, err := w.cameras.Devices()
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, ErrNoCamera
	}
	return devices, nil
}

// Run scans with the preferred device until a code decodes and validates, or
// the session times out. deviceID "" means any camera.
func (w *Workflow) Run(ctx context.Context, deviceID string) (api.ScanResult, error) {
	devices, err := w.cameras.Devices()
	if err != nil {
		return api.ScanResult{}, fmt.Errorf("enumerate cameras: %w", err)
	}
	if len(devices) == 0 {
		return api.ScanResult{}, ErrNoCamera
	}

	cam, err := w.open(deviceID)
	if err != nil {
		return api.ScanResult{}, err
	}
	defer cam.Close()

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	code, err := w.decodeLoop(ctx, cam)
	if err != nil {
		return api.ScanResult{}, err
	}

	result, err := w.validator.ScanQR(ctx, code)
	if err != nil {
		return api.ScanResult{}, fmt.Errorf("validate ticket: %w", err)
	}
	return result, nil
}

// open tries the preferred device first, then falls back to an unconstrained
// open when the device refuses the request.
func (w *Workflow) open(deviceID string) (Camera, error) {
	cam, err := w.cameras.Open(deviceID)
	if err == nil {
		return cam, nil
	}
	if deviceID != "" && errors.Is(err, ErrUnsupportedConstraints) {
		return w.cameras.Open("")
	}
	return nil, err
}

func (w *Workflow) decodeLoop(ctx context.Context, cam Camera) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", ErrTimeout
		}

		frame, err := cam.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return "", ErrTimeout
			}
			return "", fmt.Errorf("read frame: %w", err)
		}

		code, err := w.decoder.Decode(frame)
		if errors.Is(err, ErrNoCode) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("decode frame: %w", err)
		}
		return code, nil
	}
}

// UserMessage translates a scan failure into the message shown to the
// operator.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPermissionDenied):
		return "Camera access denied. Allow camera access and try again."
	case errors.Is(err, ErrNoCamera):
		return "No camera found on this device."
	case errors.Is(err, ErrCameraBusy):
		return "The camera is in use by another application."
	case errors.Is(err, ErrUnsupportedConstraints):
		return "The selected camera does not support the requested mode. Try another camera."
	case errors.Is(err, ErrTimeout):
		return "No QR code detected. Hold the ticket steady and try again."
	default:
		return "Could not start the scanner."
	}
}
