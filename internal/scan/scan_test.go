package scan

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"
	"time"

	qrgen "github.com/skip2/go-qrcode"

	"github.com/fastorder/storefront/internal/api"
)

type fakeCamera struct {
	frames []image.Image
	closed bool
}

func (c *fakeCamera) Read(ctx context.Context) (image.Image, error) {
	if len(c.frames) > 0 {
		f := c.frames[0]
		c.frames = c.frames[1:]
		return f, nil
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func (c *fakeCamera) Close() error {
	c.closed = true
	return nil
}

type fakeProvider struct {
	devices []Device
	openErr map[string]error
	cams    map[string]*fakeCamera
	opened  []string
}

func (p *fakeProvider) Devices() ([]Device, error) { return p.devices, nil }

func (p *fakeProvider) Open(deviceID string) (Camera, error) {
	p.opened = append(p.opened, deviceID)
	if err := p.openErr[deviceID]; err != nil {
		return nil, err
	}
	cam, ok := p.cams[deviceID]
	if !ok {
		cam = &fakeCamera{}
		if p.cams == nil {
			p.cams = map[string]*fakeCamera{}
		}
		p.cams[deviceID] = cam
	}
	return cam, nil
}

type fakeValidator struct {
	code   string
	result api.ScanResult
	err    error
}

func (v *fakeValidator) ScanQR(ctx context.Context, ticketCode string) (api.ScanResult, error) {
	v.code = ticketCode
	return v.result, v.err
}

func qrFrame(t *testing.T, code string) image.Image {
	t.Helper()
	data, err := qrgen.Encode(code, qrgen.Medium, 256)
	if err != nil {
		t.Fatalf("encode qr: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	return img
}

func blankFrame() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 64, 64))
}

func TestRunNoCamera(t *testing.T) {
	w := NewWorkflow(&fakeProvider{}, NewZXingDecoder(), &fakeValidator{}, time.Second)

	_, err := w.Run(context.Background(), "")
	if !errors.Is(err, ErrNoCamera) {
		t.Fatalf("expected ErrNoCamera, got %v", err)
	}
}

func TestRunDecodesAndValidates(t *testing.T) {
	cam := &fakeCamera{frames: []image.Image{blankFrame(), qrFrame(t, "ticket-123")}}
	provider := &fakeProvider{
		devices: []Device{{ID: "cam0", Label: "Front"}},
		cams:    map[string]*fakeCamera{"cam0": cam},
	}
	validator := &fakeValidator{result: api.ScanResult{Message: "Ticket accepted for order #9", OrderID: 9}}
	w := NewWorkflow(provider, NewZXingDecoder(), validator, 5*time.Second)

	result, err := w.Run(context.Background(), "cam0")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if validator.code != "ticket-123" {
		t.Errorf("expected decoded code ticket-123, got %q", validator.code)
	}
	if result.OrderID != 9 {
		t.Errorf("expected order 9, got %d", result.OrderID)
	}
	if !cam.closed {
		t.Error("camera not released")
	}
}

func TestRunTimeout(t *testing.T) {
	cam := &fakeCamera{}
	provider := &fakeProvider{
		devices: []Device{{ID: "cam0"}},
		cams:    map[string]*fakeCamera{"cam0": cam},
	}
	w := NewWorkflow(provider, NewZXingDecoder(), &fakeValidator{}, 50*time.Millisecond)

	_, err := w.Run(context.Background(), "cam0")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if !cam.closed {
		t.Error("camera not released after timeout")
	}
}

func TestRunFallsBackToAnyCamera(t *testing.T) {
	cam := &fakeCamera{frames: []image.Image{qrFrame(t, "ticket-456")}}
	provider := &fakeProvider{
		devices: []Device{{ID: "cam0"}, {ID: "cam1"}},
		openErr: map[string]error{"cam1": ErrUnsupportedConstraints},
		cams:    map[string]*fakeCamera{"": cam},
	}
	validator := &fakeValidator{result: api.ScanResult{OrderID: 3}}
	w := NewWorkflow(provider, NewZXingDecoder(), validator, 5*time.Second)

	if _, err := w.Run(context.Background(), "cam1"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(provider.opened) != 2 || provider.opened[0] != "cam1" || provider.opened[1] != "" {
		t.Errorf("unexpected open sequence: %v", provider.opened)
	}
}

func TestRunPermissionDenied(t *testing.T) {
	provider := &fakeProvider{
		devices: []Device{{ID: "cam0"}},
		openErr: map[string]error{"cam0": ErrPermissionDenied},
	}
	w := NewWorkflow(provider, NewZXingDecoder(), &fakeValidator{}, time.Second)

	_, err := w.Run(context.Background(), "cam0")
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestRunReleasesCameraOnValidatorError(t *testing.T) {
	cam := &fakeCamera{frames: []image.Image{qrFrame(t, "used-ticket")}}
	provider := &fakeProvider{
		devices: []Device{{ID: "cam0"}},
		cams:    map[string]*fakeCamera{"cam0": cam},
	}
	validator := &fakeValidator{err: errors.New("ticket already used")}
	w := NewWorkflow(provider, NewZXingDecoder(), validator, 5*time.Second)

	if _, err := w.Run(context.Background(), "cam0"); err == nil {
		t.Fatal("expected error")
	}
	if !cam.closed {
		t.Error("camera not released after validation failure")
	}
}

func TestZXingDecoderNoCode(t *testing.T) {
	if _, err := NewZXingDecoder().Decode(blankFrame()); !errors.Is(err, ErrNoCode) {
		t.Fatalf("expected ErrNoCode, got %v", err)
	}
}

func TestUserMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{ErrNoCamera, "No camera found on this device."},
		{ErrPermissionDenied, "Camera access denied. Allow camera access and try again."},
		{ErrCameraBusy, "The camera is in use by another application."},
		{ErrUnsupportedConstraints, "The selected camera does not support the requested mode. Try another camera."},
		{ErrTimeout, "No QR code detected. Hold the ticket steady and try again."},
		{errors.New("weird"), "Could not start the scanner."},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := UserMessage(tc.err); got != tc.want {
			t.Errorf("UserMessage(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
