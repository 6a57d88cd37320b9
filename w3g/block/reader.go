// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package block

import (
	"io"
)

// Reader reads the concatenated content of a Stream's Segments as one
// continuous byte stream.
//
// Reader only decodes a block when the previous block's content has been
// fully consumed, so it holds at most one decompressed block at a time.
//
// Reader is not safe for concurrent use.
type Reader struct {
	s *Stream

	// cur is the unread remainder of the current Segment.
	cur []byte
	// block is the index of the current Segment, or -1 before the first.
	block int
	// offset is the offset of the next unread byte in the logical stream.
	offset int64

	err error
}

var _ interface {
	io.Reader
	io.ByteReader
} = (*Reader)(nil)

// NewReader returns a Reader over s's Segments.
func NewReader(s *Stream) *Reader {
	return &Reader{
		s:     s,
		block: -1,
	}
}

// Offset returns the offset of the next unread byte in the logical stream.
func (r *Reader) Offset() int64 { return r.offset }

// Block returns the index of the block that the most recently read byte came
// from, or -1 if nothing has been read.
func (r *Reader) Block() int { return r.block }

// fill ensures that cur has data, pulling Segments from the Stream as needed.
// Empty Segments are skipped.
func (r *Reader) fill() error {
	for len(r.cur) == 0 {
		if r.err != nil {
			return r.err
		}

		seg, err := r.s.Next()
		if err != nil {
			r.err = err
			return err
		}
		r.cur, r.block = seg.Data, seg.Index
	}
	return nil
}

// Read implements io.Reader.
//
// Read returns data from at most one Segment per call. It returns io.EOF once
// every block has been consumed, or the Stream's error if a block failed to
// decode.
func (r *Reader) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	if err := r.fill(); err != nil {
		return 0, err
	}

	amt := copy(b, r.cur)
	r.cur = r.cur[amt:]
	r.offset += int64(amt)
	return amt, nil
}

// ReadByte implements io.ByteReader.
func (r *Reader) ReadByte() (byte, error) {
	if err := r.fill(); err != nil {
		return 0, err
	}

	b := r.cur[0]
	r.cur = r.cur[1:]
	r.offset++
	return b, nil
}

// PeekByte returns the next byte without consuming it.
func (r *Reader) PeekByte() (byte, error) {
	if err := r.fill(); err != nil {
		return 0, err
	}
	return r.cur[0], nil
}
