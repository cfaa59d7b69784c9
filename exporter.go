package invoicepdf

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-invoicepdf/internal/assets"
	"github.com/alnah/go-invoicepdf/internal/fileutil"
	"github.com/alnah/go-invoicepdf/internal/ledger"
	"github.com/alnah/go-invoicepdf/internal/render"
)

// ExportResult is the output of one export.
type ExportResult struct {
	Filename string // suggested file name, see Filename
	PDF      []byte
	HTML     []byte // rendered document, for debugging
	Pages    int
}

// Exporter renders a session, rasterizes it in headless Chrome and slices
// the bitmap into an A4 PDF. Create with NewExporter and Close when done.
// An Exporter is not safe for concurrent use; use an ExporterPool.
type Exporter struct {
	cfg               exporterConfig
	assetLoader       assets.AssetLoader
	publicAssetLoader AssetLoader
	renderer          *render.Renderer
	rasterizer        rasterizer
	newAssembler      func() pdfAssembler
	logger            zerolog.Logger
	now               func() time.Time
}

// NewExporter creates an Exporter with default configuration.
// Returns error if asset loading or template parsing fails.
func NewExporter(opts ...Option) (*Exporter, error) {
	e := &Exporter{
		cfg: exporterConfig{
			timeout: defaultTimeout,
			scale:   DefaultCaptureScale,
			useCORS: true,
		},
		assetLoader:  assets.NewEmbeddedLoader(),
		newAssembler: newFpdfAssembler,
		logger:       zerolog.Nop(),
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(e.cfg.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		e.assetLoader = resolver
	}

	// Public loaders share the internal method set.
	if e.publicAssetLoader != nil {
		e.assetLoader = e.publicAssetLoader
	}

	if err := e.resolveStyle(); err != nil {
		return nil, err
	}

	tmpl, err := e.assetLoader.LoadTemplate(assets.DocumentTemplateName)
	if err != nil {
		return nil, fmt.Errorf("loading document template: %w", convertAssetError(err))
	}
	e.renderer, err = render.NewRenderer(tmpl, e.cfg.resolvedStyle, nil)
	if err != nil {
		return nil, fmt.Errorf("initializing renderer: %w", err)
	}

	if e.rasterizer == nil {
		e.rasterizer = newRodRasterizer(e.cfg.timeout)
	}

	return e, nil
}

// RenderHTML renders the session without rasterizing it.
func (e *Exporter) RenderHTML(ctx context.Context, s ledger.Session) (string, error) {
	return e.renderer.Render(ctx, s, render.Options{
		Stylesheets: e.cfg.stylesheets,
		CrossOrigin: e.cfg.useCORS,
	})
}

// Export runs the pipeline on the session as given; callers hide the
// interactive controls first (see Form).
// Recovers from internal panics to prevent crashes from propagating to callers.
func (e *Exporter) Export(ctx context.Context, s ledger.Session) (result *ExportResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	name := Filename(s.Header.DocumentType, s.Header.CustomerName, s.Header.IssueDate)
	log := e.logger.With().Str("file", name).Logger()

	htmlContent, err := e.RenderHTML(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("rendering document: %w", err)
	}
	log.Debug().Int("rows", s.Len()).Int("bytes", len(htmlContent)).Msg("document rendered")

	shot, err := e.rasterizer.Capture(ctx, htmlContent, captureOptions{
		Selector: "#" + render.ContainerID,
		Scale:    e.cfg.scale,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRasterize, err)
	}
	log.Debug().Int("width", shot.Width).Int("height", shot.Height).Msg("document captured")

	pdfBytes, pages, err := assemblePDF(e.newAssembler(), shot, pdfMetadata{
		Title:   s.Title,
		Subject: s.Header.DocumentNumber,
		Author:  s.Header.CompanyName,
		Created: e.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPDFAssembly, err)
	}
	log.Debug().Int("pages", pages).Msg("PDF assembled")

	return &ExportResult{
		Filename: name,
		PDF:      pdfBytes,
		HTML:     []byte(htmlContent),
		Pages:    pages,
	}, nil
}

// Close releases resources (headless Chrome browser).
func (e *Exporter) Close() error {
	if e.rasterizer != nil {
		return e.rasterizer.Close()
	}
	return nil
}

// resolveStyle resolves the style input (name, path, or CSS content) to CSS
// content. An empty input selects the default style.
func (e *Exporter) resolveStyle() error {
	input := e.cfg.styleInput
	if input == "" {
		input = DefaultStyle
	}

	// File path? (contains / or \)
	if fileutil.IsFilePath(input) {
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return fmt.Errorf("loading style file %q: %w", input, err)
		}
		e.cfg.resolvedStyle = string(content)
		return nil
	}

	// CSS content? (contains {)
	if fileutil.IsCSS(input) {
		e.cfg.resolvedStyle = input
		return nil
	}

	css, err := e.assetLoader.LoadStyle(input)
	if err != nil {
		return fmt.Errorf("loading style %q: %w", input, convertAssetError(err))
	}
	e.cfg.resolvedStyle = css
	return nil
}
