package invoicepdf

// ScaledHeight returns the image height in page units when an image of
// pxWidth x pxHeight pixels is drawn at the full page width.
func ScaledHeight(pxWidth, pxHeight int, pageWidth float64) float64 {
	if pxWidth <= 0 || pxHeight <= 0 {
		return 0
	}
	return float64(pxHeight) * pageWidth / float64(pxWidth)
}

// PageOffsets returns the vertical position of the image on each page.
//
// The first page places the image at 0. Every further page places the same
// image shifted up so that the next pageHeight slice shows; the last page may
// show the tail of the image followed by blank space. The number of offsets
// is ceil(imgHeight / pageHeight), and at least one.
func PageOffsets(imgHeight, pageHeight float64) []float64 {
	offsets := []float64{0}
	if imgHeight <= 0 || pageHeight <= 0 {
		return offsets
	}

	heightLeft := imgHeight - pageHeight
	for heightLeft > 0 {
		offsets = append(offsets, heightLeft-imgHeight)
		heightLeft -= pageHeight
	}
	return offsets
}
