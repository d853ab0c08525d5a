package scan

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
)

// DirProvider serves frames from PNG files in a directory. The terminal
// client uses it in place of hardware capture: the operator drops a ticket
// image into the directory and runs a scan.
type DirProvider struct {
	dir string
}

// NewDirProvider reads frames from dir.
func NewDirProvider(dir string) *DirProvider {
	return &DirProvider{dir: dir}
}

// Devices lists the directory as a single device when it holds any PNGs.
func (p *DirProvider) Devices() ([]Device, error) {
	frames, err := p.frames()
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, nil
	}
	return []Device{{ID: p.dir, Label: fmt.Sprintf("images in %s", p.dir)}}, nil
}

// Open yields the directory's images as frames. Any deviceID other than the
// directory itself is refused so the workflow falls back to unconstrained.
func (p *DirProvider) Open(deviceID string) (Camera, error) {
	if deviceID != "" && deviceID != p.dir {
		return nil, ErrUnsupportedConstraints
	}
	frames, err := p.frames()
	if err != nil {
		return nil, err
	}
	return &dirCamera{paths: frames}, nil
}

func (p *DirProvider) frames() ([]string, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read frame dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".png" {
			continue
		}
		paths = append(paths, filepath.Join(p.dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

type dirCamera struct {
	paths []string
}

// Read decodes the next image. Once the directory is exhausted it blocks
// until the scan deadline, matching a camera with nothing in front of it.
func (c *dirCamera) Read(ctx context.Context) (image.Image, error) {
	for len(c.paths) > 0 {
		path := c.paths[0]
		c.paths = c.paths[1:]

		f, err := os.Open(path)
		if err != nil {
			continue
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			continue
		}
		return img, nil
	}

	<-ctx.Done()
	return nil, ctx.Err()
}

func (c *dirCamera) Close() error { return nil }
