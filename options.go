package invoicepdf

import (
	"time"

	"github.com/rs/zerolog"
)

// Export defaults.
const (
	defaultTimeout      = 30 * time.Second
	DefaultCaptureScale = 2.0
)

// Option configures an Exporter.
type Option func(*Exporter)

// exporterConfig holds internal configuration for Exporter.
type exporterConfig struct {
	timeout       time.Duration
	styleInput    string // name, file path, or CSS content
	resolvedStyle string
	assetPath     string
	stylesheets   []string
	scale         float64
	useCORS       bool
}

// WithTimeout sets the page load timeout used while rasterizing.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("invoicepdf: WithTimeout duration must be positive")
	}
	return func(e *Exporter) {
		e.cfg.timeout = d
	}
}

// WithStyle sets the document CSS style.
// Accepts a built-in style name ("default", "monochrome"), a file path
// ("./custom.css") or raw CSS content (anything containing "{").
func WithStyle(style string) Option {
	return func(e *Exporter) {
		e.cfg.styleInput = style
	}
}

// WithAssetPath loads styles and templates from a directory, falling back to
// the embedded assets.
func WithAssetPath(path string) Option {
	return func(e *Exporter) {
		e.cfg.assetPath = path
	}
}

// WithAssetLoader sets a custom asset loader. It takes precedence over
// WithAssetPath.
func WithAssetLoader(loader AssetLoader) Option {
	return func(e *Exporter) {
		e.publicAssetLoader = loader
	}
}

// WithStylesheets adds external stylesheet URLs (typically web fonts) to the
// rendered document.
func WithStylesheets(urls ...string) Option {
	return func(e *Exporter) {
		e.cfg.stylesheets = append(e.cfg.stylesheets, urls...)
	}
}

// WithCaptureScale sets the device pixel ratio used for the capture.
// Panics if scale <= 0.
func WithCaptureScale(scale float64) Option {
	if scale <= 0 {
		panic("invoicepdf: WithCaptureScale scale must be positive")
	}
	return func(e *Exporter) {
		e.cfg.scale = scale
	}
}

// WithCORS controls whether external stylesheets are requested with
// crossorigin="anonymous" so they can be drawn into the capture.
func WithCORS(enabled bool) Option {
	return func(e *Exporter) {
		e.cfg.useCORS = enabled
	}
}

// WithLogger sets the logger used for export diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Exporter) {
		e.logger = logger
	}
}

// withRasterizer replaces the headless Chrome rasterizer (tests).
func withRasterizer(r rasterizer) Option {
	return func(e *Exporter) {
		e.rasterizer = r
	}
}

// withAssembler replaces the fpdf assembler factory (tests).
func withAssembler(newAssembler func() pdfAssembler) Option {
	return func(e *Exporter) {
		e.newAssembler = newAssembler
	}
}

// FormOption configures a Form.
type FormOption func(*Form)

// WithConfirmer sets the yes/no gate asked before a reset.
func WithConfirmer(c Confirmer) FormOption {
	return func(f *Form) {
		f.confirmer = c
	}
}

// WithNotifier sets where user-facing alerts go.
func WithNotifier(n Notifier) FormOption {
	return func(f *Form) {
		f.notifier = n
	}
}

// WithExporter sets the exporter used by the export action.
func WithExporter(e *Exporter) FormOption {
	return func(f *Form) {
		f.exporter = e
	}
}

// WithOutputDir sets the directory exported PDFs are written to.
// Empty means the current directory.
func WithOutputDir(dir string) FormOption {
	return func(f *Form) {
		f.outputDir = dir
	}
}

// WithNow sets the clock used for the initial issue date.
func WithNow(now func() time.Time) FormOption {
	return func(f *Form) {
		f.now = now
	}
}

// WithFormLogger sets the logger used by the form.
func WithFormLogger(logger zerolog.Logger) FormOption {
	return func(f *Form) {
		f.logger = logger
	}
}
