// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dataio

import (
	"io"
)

// Reader represents a Reader that can read both individual bytes and
// sequences of bytes.
type Reader interface {
	io.Reader
	io.ByteReader
}

// MakeReader returns a Reader for the specified Reader.
//
// If r already implements Reader, it is returned directly. Otherwise, single
// byte reads are simulated through r's Read method, which is inefficient for
// unbuffered sources.
func MakeReader(r io.Reader) Reader {
	if dr, ok := r.(Reader); ok {
		return dr
	}
	return &simulatedReader{r}
}

type simulatedReader struct {
	io.Reader
}

func (r *simulatedReader) ReadByte() (v byte, err error) {
	var d [1]byte
	var amt int

	amt, err = r.Read(d[:])
	switch {
	case amt == 1:
		// A Reader may return data alongside an error. The data wins; the
		// error will be returned again on the next call.
		return d[0], nil
	case err == nil:
		// A zero-length read without an error is legal, but unhelpful.
		return 0, io.ErrNoProgress
	default:
		return 0, err
	}
}

// CountingReader is a Reader that tracks the number of bytes that have been
// consumed through it.
//
// CountingReader is not safe for concurrent use.
type CountingReader struct {
	// R is the underlying Reader.
	R Reader

	// Count is the number of bytes read so far. It may be set to establish a
	// base offset.
	Count int64
}

// Read implements io.Reader.
func (cr *CountingReader) Read(b []byte) (int, error) {
	amt, err := cr.R.Read(b)
	cr.Count += int64(amt)
	return amt, err
}

// ReadByte implements io.ByteReader.
func (cr *CountingReader) ReadByte() (byte, error) {
	b, err := cr.R.ReadByte()
	if err == nil {
		cr.Count++
	}
	return b, err
}
