package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrRemarksConversion indicates the remarks Markdown could not be converted.
var ErrRemarksConversion = errors.New("remarks conversion failed")

// RemarksConverter renders the free-text remarks field from Markdown.
type RemarksConverter interface {
	ToHTML(ctx context.Context, markdown string) (template.HTML, error)
}

// GoldmarkRemarks converts remarks using goldmark with GFM tables and
// strikethrough. Raw HTML in the input is dropped.
type GoldmarkRemarks struct {
	md goldmark.Markdown
}

// NewGoldmarkRemarks creates a GoldmarkRemarks converter.
func NewGoldmarkRemarks() *GoldmarkRemarks {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			extension.Linkify,
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	return &GoldmarkRemarks{md: md}
}

// ToHTML converts Markdown remarks to an HTML fragment.
// Goldmark does not take a context, so conversion runs in a goroutine and
// the caller stops waiting on cancellation.
func (g *GoldmarkRemarks) ToHTML(ctx context.Context, markdown string) (template.HTML, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if markdown == "" {
		return "", nil
	}

	type result struct {
		html template.HTML
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := g.md.Convert([]byte(markdown), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrRemarksConversion, err)}
			return
		}
		// #nosec G203 -- goldmark output without WithUnsafe escapes raw HTML
		done <- result{html: template.HTML(buf.String())}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}
