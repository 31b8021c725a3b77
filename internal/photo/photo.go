// Package photo turns an uploaded image file into a data URL that can be
// embedded directly as an <img src>.
//
// The declared media type is checked by the validator; here the bytes
// themselves are sniffed with gabriel-vasile/mimetype and the image header
// is parsed, so a .png that is really a text file is rejected.
package photo

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"

	// Register decoders for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/gabriel-vasile/mimetype"

	"github.com/aanand-mishra/student-registry/internal/types"
)

// ErrDecode is the decode error category: the file could not be converted
// into a displayable image.
var ErrDecode = errors.New("photo could not be decoded")

// DefaultMaxBytes caps uploads when the decoder is built without a limit.
const DefaultMaxBytes int64 = 5 << 20

var allowed = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Decoder converts photo selections into data URLs.
type Decoder struct {
	MaxBytes int64
}

// NewDecoder returns a decoder that refuses files larger than maxBytes.
func NewDecoder(maxBytes int64) *Decoder {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Decoder{MaxBytes: maxBytes}
}

// Result is the single value delivered by DecodeAsync.
type Result struct {
	DataURL string
	Err     error
}

// DecodeAsync runs Decode in its own goroutine. Exactly one Result is sent
// on the returned channel, which is buffered so the goroutine never blocks
// if the caller stops waiting.
func (d *Decoder) DecodeAsync(ctx context.Context, sel *types.PhotoSelection) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		url, err := d.Decode(ctx, sel)
		out <- Result{DataURL: url, Err: err}
	}()
	return out
}

// Decode reads the selected file and returns it as a base64 data URL.
// Every failure wraps ErrDecode.
func (d *Decoder) Decode(ctx context.Context, sel *types.PhotoSelection) (string, error) {
	if sel == nil || sel.Open == nil {
		return "", fmt.Errorf("no file selected: %w", ErrDecode)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("decode %s: %w: %w", sel.Filename, ErrDecode, err)
	}

	rc, err := sel.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w: %w", sel.Filename, ErrDecode, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, d.MaxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w: %w", sel.Filename, ErrDecode, err)
	}
	if int64(len(data)) > d.MaxBytes {
		return "", fmt.Errorf("%s is larger than %d bytes: %w", sel.Filename, d.MaxBytes, ErrDecode)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%s is empty: %w", sel.Filename, ErrDecode)
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowed...) {
		return "", fmt.Errorf("%s has content type %s: %w", sel.Filename, mtype.String(), ErrDecode)
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("parse %s: %w: %w", sel.Filename, ErrDecode, err)
	}

	return "data:" + mtype.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
