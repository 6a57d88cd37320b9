// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package record

import (
	"github.com/danjacques/gow3replay/support/logging"

	"golang.org/x/text/encoding"
)

// DefaultMaxStringLength is the default bound on the length of a single
// NUL-terminated string field.
const DefaultMaxStringLength = 4096

// Options controls record decoding.
//
// A nil *Options is valid, and uses defaults.
type Options struct {
	// Encoding, if not nil, is the text encoding of string fields. Strings are
	// converted from it to UTF-8.
	//
	// If nil, string bytes are used as-is. Reforged and most classic replays
	// store UTF-8; some older localized replays use a regional code page, such
	// as charmap.Windows1252 or korean.EUCKR.
	Encoding encoding.Encoding

	// MaxStringLength, if >0, bounds the length of string fields. If <=0,
	// DefaultMaxStringLength is used.
	MaxStringLength int

	// Logger, if not nil, receives decoding diagnostics.
	Logger logging.L
}

func (o *Options) maxStringLength() int {
	if o == nil || o.MaxStringLength <= 0 {
		return DefaultMaxStringLength
	}
	return o.MaxStringLength
}

func (o *Options) logger() logging.L {
	if o == nil {
		return logging.Nop
	}
	return logging.Must(o.Logger)
}

// decodeString converts raw string field bytes to a Go string.
func (o *Options) decodeString(v []byte) (string, error) {
	if o == nil || o.Encoding == nil {
		return string(v), nil
	}
	d, err := o.Encoding.NewDecoder().Bytes(v)
	if err != nil {
		return "", err
	}
	return string(d), nil
}
