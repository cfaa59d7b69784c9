package invoicepdf

import "errors"

// Sentinel errors for library operations.
var (
	ErrUnknownAction = errors.New("unknown action")
	ErrNoExporter    = errors.New("form has no exporter")
	ErrInternal      = errors.New("internal error")
	ErrExportFailed  = errors.New("export failed")

	// Export pipeline errors.
	ErrRasterize      = errors.New("rasterization failed")
	ErrPDFAssembly    = errors.New("PDF assembly failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrEmptyCapture   = errors.New("captured image is empty")
	ErrWritePDF       = errors.New("failed to write PDF file")

	ErrInvalidAssetPath = errors.New("invalid asset path")
)
