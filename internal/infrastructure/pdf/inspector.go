package pdf

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/avansign/avansign/internal/core/domain"
)

// Inspector parses uploaded PDF bytes so submit validation can reject
// broken files and out-of-range visual placement before anything is
// stored.
type Inspector struct{}

func NewInspector() *Inspector {
	return &Inspector{}
}

func (i *Inspector) Inspect(raw []byte) (*domain.PDFInfo, error) {
	if len(raw) == 0 {
		return nil, errors.New("empty pdf")
	}

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}

	pages := reader.NumPage()
	if pages < 1 {
		return nil, errors.New("pdf has no pages")
	}
	return &domain.PDFInfo{Pages: pages}, nil
}
