package raster

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os/exec"

	"github.com/rotisserie/eris"
)

// ExecCapture captures the screen by running a platform screenshot tool that
// writes a PNG to stdout (e.g. "screencap -p" via adb).
type ExecCapture struct {
	binPath string
	args    []string
}

// NewExecCapture creates an ExecCapture for the given command line.
func NewExecCapture(binPath string, args ...string) *ExecCapture {
	return &ExecCapture{binPath: binPath, args: args}
}

// Capture runs the tool and decodes its stdout as PNG.
func (c *ExecCapture) Capture(ctx context.Context) (image.Image, error) {
	cmd := exec.CommandContext(ctx, c.binPath, c.args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, eris.Wrapf(err, "raster: %s failed: %s", c.binPath, stderr.String())
	}

	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, eris.Wrapf(err, "raster: decode %s output", c.binPath)
	}
	return img, nil
}

// ExecRecognizer recognizes text by piping a PNG into a CLI recognizer that
// writes plain text to stdout (e.g. "tesseract stdin stdout -l por").
type ExecRecognizer struct {
	binPath string
	args    []string
}

// NewExecRecognizer creates an ExecRecognizer for the given command line.
func NewExecRecognizer(binPath string, args ...string) *ExecRecognizer {
	return &ExecRecognizer{binPath: binPath, args: args}
}

// Recognize encodes img as PNG, feeds it to the tool, and returns stdout.
func (r *ExecRecognizer) Recognize(ctx context.Context, img image.Image) (string, error) {
	var stdin bytes.Buffer
	if err := png.Encode(&stdin, img); err != nil {
		return "", eris.Wrap(err, "raster: encode image")
	}

	cmd := exec.CommandContext(ctx, r.binPath, r.args...)
	cmd.Stdin = &stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "raster: %s failed: %s", r.binPath, stderr.String())
	}

	return stdout.String(), nil
}
