package invoicepdf

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

// captureImageName registers the capture once; every page reuses it.
const captureImageName = "capture"

// pdfMetadata is written to the document information dictionary.
type pdfMetadata struct {
	Title   string
	Subject string
	Author  string
	Created time.Time
}

// pdfAssembler abstracts the PDF writer to enable testing pagination
// without producing real documents.
type pdfAssembler interface {
	PageSize() (width, height float64)
	SetMetadata(meta pdfMetadata)
	RegisterImage(name string, data []byte) error
	AddPage()
	PlaceImage(name string, x, y, w, h float64)
	Output(w io.Writer) error
}

// Compile-time interface check.
var _ pdfAssembler = (*fpdfAssembler)(nil)

// fpdfAssembler writes A4 portrait pages measured in millimetres.
type fpdfAssembler struct {
	pdf *fpdf.Fpdf
}

// newFpdfAssembler creates an empty A4 document without margins.
func newFpdfAssembler() pdfAssembler {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	return &fpdfAssembler{pdf: pdf}
}

func (a *fpdfAssembler) PageSize() (float64, float64) {
	return a.pdf.GetPageSize()
}

func (a *fpdfAssembler) SetMetadata(meta pdfMetadata) {
	a.pdf.SetTitle(meta.Title, true)
	a.pdf.SetSubject(meta.Subject, true)
	a.pdf.SetAuthor(meta.Author, true)
	a.pdf.SetCreator("go-invoicepdf", true)
	if !meta.Created.IsZero() {
		a.pdf.SetCreationDate(meta.Created)
	}
}

func (a *fpdfAssembler) RegisterImage(name string, data []byte) error {
	a.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(data))
	return a.pdf.Error()
}

func (a *fpdfAssembler) AddPage() {
	a.pdf.AddPage()
}

func (a *fpdfAssembler) PlaceImage(name string, x, y, w, h float64) {
	a.pdf.ImageOptions(name, x, y, w, h, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
}

func (a *fpdfAssembler) Output(w io.Writer) error {
	return a.pdf.Output(w)
}

// assemblePDF scales the capture to the page width and slices it across as
// many pages as its height needs. Returns the PDF and its page count.
func assemblePDF(a pdfAssembler, c *capture, meta pdfMetadata) ([]byte, int, error) {
	if c == nil || len(c.PNG) == 0 {
		return nil, 0, ErrEmptyCapture
	}

	pageWidth, pageHeight := a.PageSize()
	imgHeight := ScaledHeight(c.Width, c.Height, pageWidth)
	if imgHeight <= 0 {
		return nil, 0, fmt.Errorf("%w: %dx%d", ErrEmptyCapture, c.Width, c.Height)
	}

	a.SetMetadata(meta)
	if err := a.RegisterImage(captureImageName, c.PNG); err != nil {
		return nil, 0, fmt.Errorf("registering image: %v", err)
	}

	offsets := PageOffsets(imgHeight, pageHeight)
	for _, y := range offsets {
		a.AddPage()
		a.PlaceImage(captureImageName, 0, y, pageWidth, imgHeight)
	}

	var buf bytes.Buffer
	if err := a.Output(&buf); err != nil {
		return nil, 0, fmt.Errorf("writing PDF: %v", err)
	}
	return buf.Bytes(), len(offsets), nil
}
