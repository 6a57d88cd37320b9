// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package byteslicereader offers R, a forward-only slice-backed Reader with
// zero-copy options.
//
// Standard io.Reader methods require that data be copied into a target buffer.
// The zero-copy option, Next, returns data as slices of R's underlying Buffer.
//
// Holding a reference to an underlying Buffer means that the Buffer must
// persist as long as that reference is valid. R never writes to its Buffer.
package byteslicereader

import (
	"io"
)

// R is a forward-only reader over a byte slice.
//
// R can act like an io.Reader and io.ByteReader, allowing it to interface with
// other APIs at the expense of copying.
//
// R can be copied, creating a snapshot of its current state.
type R struct {
	// Buffer is the backing buffer for this reader.
	Buffer []byte

	// pos is the R's position within Buffer.
	pos int
}

var _ interface {
	io.Reader
	io.ByteReader
} = (*R)(nil)

func (r *R) remainingSlice() []byte {
	if r.pos >= len(r.Buffer) {
		return nil
	}
	return r.Buffer[r.pos:]
}

// Remaining returns the number of bytes remaining in the reader, from the
// current position.
func (r *R) Remaining() int { return len(r.remainingSlice()) }

// Read implements io.Reader.
//
// Read returns io.EOF only once no data remains, never alongside data.
func (r *R) Read(b []byte) (int, error) {
	remaining := r.remainingSlice()
	if len(remaining) == 0 {
		if len(b) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}

	amt := copy(b, remaining)
	r.pos += amt
	return amt, nil
}

// ReadByte implements io.ByteReader.
func (r *R) ReadByte() (b byte, err error) {
	if r.pos >= len(r.Buffer) {
		return 0, io.EOF
	}

	b, r.pos = r.Buffer[r.pos], r.pos+1
	return
}

// Next returns the next n bytes in r, advancing r.
//
// Next is a zero-copy equivalent to Read, and returns a slice of the
// underlying Buffer.
//
// If there are fewer than n bytes in r, Next will return as many bytes as it
// can and io.EOF as an error. Next will never return an error if all requested
// bytes are returned.
func (r *R) Next(n int) (v []byte, err error) {
	v = r.remainingSlice()
	if n <= len(v) {
		v = v[:n]
	} else {
		err = io.EOF
	}

	r.pos += len(v)
	return
}
