// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package block

import (
	"bufio"
	"io"

	"github.com/danjacques/gow3replay/support/bufferpool"
	"github.com/danjacques/gow3replay/support/byteslicereader"
	"github.com/danjacques/gow3replay/support/dataio"
)

const (
	// streamBufferSize is the read-ahead buffer size of a stream Source. It
	// comfortably holds several 8KiB blocks.
	streamBufferSize = 64 * 1024
)

// payloadPool holds reusable buffers for stream Source reads.
var payloadPool = bufferpool.Pool{Size: 16 * 1024}

// Source supplies raw bytes of the block region.
//
// A Source is consumed strictly forwards and is not safe for concurrent use.
type Source interface {
	// Next returns exactly the next n bytes, advancing the Source.
	//
	// The returned slice is only valid until the next call to Next.
	//
	// If the Source ends first, Next returns io.EOF if no bytes were
	// available and io.ErrUnexpectedEOF otherwise.
	Next(n int) ([]byte, error)

	// Remaining returns the number of bytes remaining in the Source, or -1 if
	// that is not known.
	Remaining() int64
}

// streamSource is a Source backed by a blocking io.Reader.
type streamSource struct {
	br        *bufio.Reader
	remaining int64

	buf *bufferpool.Buffer
}

// NewStreamSource returns a Source that reads from r.
//
// remaining is the number of bytes available in r, or -1 if it is not known.
// It is used to reject implausible block sizes before reading them.
//
// Reads block on r. r is not closed by the Source.
func NewStreamSource(r io.Reader, remaining int64) Source {
	return &streamSource{
		br:        bufio.NewReaderSize(r, streamBufferSize),
		remaining: remaining,
	}
}

func (s *streamSource) Next(n int) ([]byte, error) {
	s.release()

	s.buf = payloadPool.Get(n)
	data := s.buf.Bytes()
	if err := dataio.ReadFull(s.br, data); err != nil {
		// The amount consumed is no longer known.
		s.remaining = -1
		return nil, err
	}

	if s.remaining >= 0 {
		s.remaining -= int64(n)
		if s.remaining < 0 {
			s.remaining = 0
		}
	}
	return data, nil
}

func (s *streamSource) Remaining() int64 { return s.remaining }

func (s *streamSource) release() {
	if s.buf != nil {
		s.buf.Release()
		s.buf = nil
	}
}

// bufferSource is a Source backed by an in-memory buffer. It never blocks,
// and returns slices of the buffer without copying.
type bufferSource struct {
	r byteslicereader.R
}

// NewBufferSource returns a Source that reads from data.
func NewBufferSource(data []byte) Source {
	return &bufferSource{r: byteslicereader.R{Buffer: data}}
}

func (s *bufferSource) Next(n int) ([]byte, error) {
	if s.r.Remaining() == 0 && n > 0 {
		return nil, io.EOF
	}

	data, err := s.r.Next(n)
	if err != nil {
		return nil, io.ErrUnexpectedEOF
	}
	return data, nil
}

func (s *bufferSource) Remaining() int64 { return int64(s.r.Remaining()) }

// releaseSource returns any resources held by src to their pools.
func releaseSource(src Source) {
	if ss, ok := src.(*streamSource); ok {
		ss.release()
	}
}
