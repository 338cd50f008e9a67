package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image/jpeg"

	"github.com/ledongthuc/pdf"
)

// MIMEJPEG is the declared type of every payload.
const MIMEJPEG = "image/jpeg"

// ErrMissingInput is returned when no resume file was supplied.
var ErrMissingInput = errors.New("no file uploaded")

// ProcessingError reports a PDF that could not be parsed or rasterized.
type ProcessingError struct {
	Cause error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("process pdf: %v", e.Cause)
}

func (e *ProcessingError) Unwrap() error { return e.Cause }

// Payload is the first resume page, encoded for transport to the model.
type Payload struct {
	MIMEType  string
	Data      []byte
	Base64    string
	PageCount int
}

// Rasterizer renders the first page of a PDF as JPEG bytes.
type Rasterizer interface {
	FirstPageJPEG(ctx context.Context, pdfData []byte) ([]byte, error)
}

// Extractor turns uploaded PDF bytes into a Payload.
type Extractor struct {
	Rasterizer Rasterizer
}

// New constructs an Extractor.
func New(r Rasterizer) *Extractor {
	return &Extractor{Rasterizer: r}
}

// FirstPage validates data as a PDF and encodes its first page. Later pages
// are ignored; PageCount lets callers tell the user so.
func (e *Extractor) FirstPage(ctx context.Context, data []byte) (Payload, error) {
	if len(data) == 0 {
		return Payload{}, ErrMissingInput
	}
	if err := ctx.Err(); err != nil {
		return Payload{}, err
	}

	pages, err := CountPages(data)
	if err != nil {
		return Payload{}, &ProcessingError{Cause: err}
	}
	if pages == 0 {
		return Payload{}, &ProcessingError{Cause: errors.New("pdf has no pages")}
	}

	img, err := e.Rasterizer.FirstPageJPEG(ctx, data)
	if err != nil {
		return Payload{}, &ProcessingError{Cause: err}
	}
	if _, err := jpeg.DecodeConfig(bytes.NewReader(img)); err != nil {
		return Payload{}, &ProcessingError{Cause: fmt.Errorf("rendered page is not a jpeg: %w", err)}
	}

	return Payload{
		MIMEType:  MIMEJPEG,
		Data:      img,
		Base64:    base64.StdEncoding.EncodeToString(img),
		PageCount: pages,
	}, nil
}

// CountPages parses data with github.com/ledongthuc/pdf and returns its page count.
func CountPages(data []byte) (n int, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			n, err = 0, fmt.Errorf("malformed pdf: %v", rec)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	return r.NumPage(), nil
}
