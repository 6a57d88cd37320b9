// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dataio

import (
	"io"

	"github.com/pkg/errors"
)

// ErrStringTooLong is returned by ReadCString when a string exceeds its
// maximum length before a NUL terminator is found.
var ErrStringTooLong = errors.New("string exceeds maximum length")

// ReadFull reads from r until buf is full, or until an error is encountered.
//
// This accommodates the fact that io.Reader is allowed to return less than the
// full buffer size without erroring.
//
// If r ends before buf is full, ReadFull returns io.EOF if nothing was read,
// and io.ErrUnexpectedEOF otherwise.
func ReadFull(r io.Reader, buf []byte) error {
	// Read until we fill our buffer or encounter an error.
	for remaining := buf; len(remaining) > 0; {
		amt, err := r.Read(remaining)
		remaining = remaining[amt:]
		if err != nil {
			switch {
			case len(remaining) == 0:
				// Finished read; the error belongs to the next read.
				return nil
			case err == io.EOF && len(remaining) < len(buf):
				return io.ErrUnexpectedEOF
			default:
				return err
			}
		}
	}
	return nil
}

// ReadCString reads a NUL-terminated byte string from r. The terminator is
// consumed, but not returned.
//
// If max is >0 and no terminator is found within max bytes, ReadCString
// returns ErrStringTooLong. If r ends before a terminator, ReadCString returns
// io.ErrUnexpectedEOF.
func ReadCString(r io.ByteReader, max int) ([]byte, error) {
	const initialBufferSize = 32

	buf := make([]byte, 0, initialBufferSize)
	for {
		switch v, err := r.ReadByte(); {
		case err == io.EOF:
			return buf, io.ErrUnexpectedEOF
		case err != nil:
			return buf, err
		case v == 0x00:
			return buf, nil
		case max > 0 && len(buf) >= max:
			return buf, ErrStringTooLong
		default:
			buf = append(buf, v)
		}
	}
}
