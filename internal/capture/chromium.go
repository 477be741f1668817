// Package capture screenshots the rendered week view with headless Chromium.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	appLog "meetcal/internal/log"
)

// Defaults for a full-HD week view.
const (
	DefaultWidth         = 1920
	DefaultHeight        = 1080
	DefaultTimeout       = 30 * time.Second
	DefaultReadySelector = `[data-ready="true"]`
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// Options defines parameters for one screenshot.
type Options struct {
	// URL of the renderer page, e.g. "http://127.0.0.1:3000/?week=1".
	URL string

	// OutputPath is where the PNG is written.
	OutputPath string

	// Width and Height are the viewport size in pixels.
	Width  int
	Height int

	// Timeout bounds the whole capture.
	Timeout time.Duration

	// ReadySelector is waited for before the screenshot is taken. The
	// renderer sets data-ready="true" once the meetings are laid out.
	ReadySelector string
}

func (o Options) withDefaults() (Options, error) {
	if o.URL == "" {
		return o, errors.New("capture: URL is required")
	}
	if o.OutputPath == "" {
		return o, errors.New("capture: OutputPath is required")
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.ReadySelector == "" {
		o.ReadySelector = DefaultReadySelector
	}
	return o, nil
}

// Capturer produces a PNG of the renderer.
type Capturer interface {
	Capture(ctx context.Context, opts Options) error
}

// Chromium captures through a chromedp-managed headless browser.
type Chromium struct{}

// Capture navigates to opts.URL, waits for the ready selector, and writes a
// full-page PNG to opts.OutputPath.
func (Chromium) Capture(parentCtx context.Context, opts Options) error {
	opts, err := opts.withDefaults()
	if err != nil {
		return err
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	start := time.Now()
	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(opts.ReadySelector, chromedp.ByQuery),
		// Let web fonts and the last paint settle.
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	}
	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if err := WritePNG(opts.OutputPath, png); err != nil {
		return err
	}
	appLog.Info("preview captured", "url", opts.URL, "output", opts.OutputPath,
		"bytes", len(png), "elapsed", time.Since(start).String())
	return nil
}

// WritePNG checks the PNG signature and writes data to path through a temp
// file, so readers never see a partial image.
func WritePNG(path string, data []byte) error {
	if !bytes.HasPrefix(data, pngSignature) {
		return errors.New("capture: screenshot is not a PNG")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("capture: create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".preview-*.png")
	if err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
