package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

const defaultDPI = 150

// Pdftoppm rasterizes with poppler's pdftoppm. The PDF goes in on stdin and
// the JPEG comes back on stdout, so nothing touches the filesystem.
type Pdftoppm struct {
	Path string
	DPI  int
}

// NewPdftoppm constructs a Pdftoppm rasterizer.
func NewPdftoppm(path string, dpi int) *Pdftoppm {
	if strings.TrimSpace(path) == "" {
		path = "pdftoppm"
	}
	if dpi <= 0 {
		dpi = defaultDPI
	}
	return &Pdftoppm{Path: path, DPI: dpi}
}

// Args returns the command-line arguments used for page 1.
func (p *Pdftoppm) Args() []string {
	return []string{"-jpeg", "-r", strconv.Itoa(p.DPI), "-f", "1", "-l", "1", "-singlefile", "-"}
}

// FirstPageJPEG implements Rasterizer.
func (p *Pdftoppm) FirstPageJPEG(ctx context.Context, pdfData []byte) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.Path, p.Args()...)
	cmd.Stdin = bytes.NewReader(pdfData)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("pdftoppm failed: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("pdftoppm failed: %w", err)
	}
	if stdout.Len() == 0 {
		return nil, errors.New("pdftoppm produced no output")
	}
	return stdout.Bytes(), nil
}

var _ Rasterizer = (*Pdftoppm)(nil)
