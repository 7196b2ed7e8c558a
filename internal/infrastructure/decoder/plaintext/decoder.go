package plaintext

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"
)

var ErrBinaryContent = errors.New("content is not valid UTF-8 text")

// Decoder accepts certificates that were already exported to text, e.g.
// by an upstream OCR step.
type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

func (d *Decoder) Decode(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", ErrBinaryContent
	}
	return strings.TrimSpace(strings.TrimPrefix(string(data), "\ufeff")), nil
}
