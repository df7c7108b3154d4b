package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
)

// Format is a raster or print format derived from SVG.
type Format string

const (
	PDF Format = "pdf"
	PNG Format = "png"
)

const rsvgConvert = "rsvg-convert"

// ErrConverterMissing is returned when rsvg-convert is not on PATH.
var ErrConverterMissing = errors.New(rsvgConvert + " not found; install librsvg (brew install librsvg, apt install librsvg2-bin)")

// Available reports whether rsvg-convert is on PATH.
func Available() bool {
	_, err := exec.LookPath(rsvgConvert)
	return err == nil
}

// Convert turns svg into f with rsvg-convert. Scale applies to PNG only;
// values of zero or less mean 1. The converter is killed if ctx ends.
func Convert(ctx context.Context, svg []byte, f Format, scale float64) ([]byte, error) {
	args := []string{"-f", string(f)}
	switch f {
	case PDF:
	case PNG:
		if scale <= 0 {
			scale = 1
		}
		args = append(args, "-z", strconv.FormatFloat(scale, 'f', 2, 64))
	default:
		return nil, fmt.Errorf("convert: unsupported format %q", f)
	}
	if !Available() {
		return nil, ErrConverterMissing
	}

	var out, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, rsvgConvert, args...)
	cmd.Stdin = bytes.NewReader(svg)
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w: %s", rsvgConvert, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return out.Bytes(), nil
}
