package invoicepdf

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"math"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-invoicepdf/internal/fileutil"
	"github.com/alnah/go-invoicepdf/internal/process"
	"github.com/alnah/go-invoicepdf/internal/render"
)

// rasterizer turns a rendered HTML document into a bitmap of one element.
// It abstracts the browser to enable testing without Chrome.
type rasterizer interface {
	Capture(ctx context.Context, htmlContent string, opts captureOptions) (*capture, error)
	Close() error
}

// Compile-time interface check.
var _ rasterizer = (*rodRasterizer)(nil)

// captureOptions controls a single capture.
type captureOptions struct {
	Selector string  // CSS selector of the captured element
	Scale    float64 // device pixel ratio
}

// capture is a PNG bitmap with its pixel dimensions.
type capture struct {
	PNG    []byte
	Width  int
	Height int
}

// measureElementJS returns the page position and full scroll extent of the
// element matching the selector, or null.
const measureElementJS = `(sel) => {
	const el = document.querySelector(sel);
	if (!el) return null;
	const r = el.getBoundingClientRect();
	return {x: r.left + window.scrollX, y: r.top + window.scrollY, w: el.scrollWidth, h: el.scrollHeight};
}`

// waitFontsJS resolves once web fonts referenced by the page are loaded.
const waitFontsJS = `() => document.fonts.ready.then(() => true)`

// rodRasterizer captures elements using headless Chrome via go-rod.
// Rod automatically downloads Chromium on first run if not found.
// Not safe for concurrent use; the pool hands each exporter its own.
type rodRasterizer struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	timeout  time.Duration
}

// newRodRasterizer creates a rodRasterizer with the given page load timeout.
func newRodRasterizer(timeout time.Duration) *rodRasterizer {
	return &rodRasterizer{timeout: timeout}
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRasterizer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		r.killLauncher(l)
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.launcher = l
	r.browser = browser
	return nil
}

// Close releases browser resources, including orphaned child processes.
func (r *rodRasterizer) Close() error {
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		r.killLauncher(r.launcher)
		r.launcher = nil
	}
	return err
}

func (r *rodRasterizer) killLauncher(l *launcher.Launcher) {
	// launcher.Kill covers whatever the tree kill missed
	_ = process.KillTree(l.PID())
	l.Kill()
}

// Capture loads the HTML in a fresh page and screenshots the selected element
// at its full scroll size, beyond the viewport.
func (r *rodRasterizer) Capture(ctx context.Context, htmlContent string, opts captureOptions) (*capture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Selector == "" {
		opts.Selector = "#" + render.ContainerID
	}
	if opts.Scale <= 0 {
		opts.Scale = DefaultCaptureScale
	}

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: "file://" + tmpPath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	// Timeout from context or default
	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	p := page.Context(ctx).Timeout(timeout)
	defer p.CancelTimeout()

	if err := p.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if _, err := p.Eval(waitFontsJS); err != nil {
		return nil, fmt.Errorf("%w: waiting for fonts: %v", ErrPageLoad, err)
	}

	box, err := measureElement(p, opts.Selector)
	if err != nil {
		return nil, err
	}

	// The viewport must hold the whole element for a sharp capture at scale.
	if err := p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             int(math.Ceil(box.X + box.Width)),
		Height:            int(math.Ceil(box.Y + box.Height)),
		DeviceScaleFactor: opts.Scale,
	}); err != nil {
		return nil, fmt.Errorf("setting viewport: %v", err)
	}

	data, err := p.Screenshot(false, &proto.PageCaptureScreenshot{
		Format:                proto.PageCaptureScreenshotFormatPng,
		Clip:                  &proto.PageViewport{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height, Scale: 1},
		CaptureBeyondViewport: true,
	})
	if err != nil {
		return nil, fmt.Errorf("taking screenshot: %v", err)
	}

	return decodeCapture(data)
}

// elementBox is an element's position and scroll extent in CSS pixels.
type elementBox struct {
	X, Y, Width, Height float64
}

func measureElement(p *rod.Page, selector string) (elementBox, error) {
	res, err := p.Eval(measureElementJS, selector)
	if err != nil {
		return elementBox{}, fmt.Errorf("measuring %s: %v", selector, err)
	}
	if res.Value.Nil() {
		return elementBox{}, fmt.Errorf("element %s not found", selector)
	}

	box := elementBox{
		X:      res.Value.Get("x").Num(),
		Y:      res.Value.Get("y").Num(),
		Width:  res.Value.Get("w").Num(),
		Height: res.Value.Get("h").Num(),
	}
	if box.Width <= 0 || box.Height <= 0 {
		return elementBox{}, fmt.Errorf("%w: %s is %vx%v", ErrEmptyCapture, selector, box.Width, box.Height)
	}
	return box, nil
}

// decodeCapture reads the pixel size from the PNG header.
func decodeCapture(data []byte) (*capture, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding screenshot: %v", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, ErrEmptyCapture
	}
	return &capture{PNG: data, Width: cfg.Width, Height: cfg.Height}, nil
}
