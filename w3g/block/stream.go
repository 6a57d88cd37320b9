// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package block

import (
	"bytes"
	"fmt"
	"io"

	"github.com/danjacques/gow3replay/support/fmtutil"
	"github.com/danjacques/gow3replay/support/logging"
	"github.com/danjacques/gow3replay/w3g/decodeerr"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
)

// Segment is the decompressed content of a single block.
type Segment struct {
	// Index is the index of the block, starting at zero.
	Index int
	// Offset is the offset of the block's header within the block region.
	Offset int64
	// Header is the block's decoded header.
	Header Header
	// Data is the decompressed block content. It is owned by the caller.
	Data []byte
}

// Stream decodes a fixed number of blocks from a Source.
//
// Stream must be instantiated using NewStream. It is not safe for concurrent
// use.
type Stream struct {
	src        Source
	opts       *Options
	numBlocks  int
	headerSize int

	// next is the index of the next block to decode.
	next int
	// offset is the offset of the next block within the block region.
	offset int64

	// zr is a reusable zlib reader, created with the first block.
	zr io.ReadCloser
	// payload feeds zr.
	payload bytes.Reader

	// err is the sticky terminal state of the Stream.
	err error
}

// NewStream returns a Stream that decodes numBlocks blocks from src.
//
// headerSize is the block header layout, either ClassicHeaderSize or
// ReforgedHeaderSize. Error offsets are relative to the start of src.
func NewStream(src Source, numBlocks, headerSize int, opts *Options) *Stream {
	s := Stream{
		src:        src,
		opts:       opts,
		numBlocks:  numBlocks,
		headerSize: headerSize,
	}
	if !validHeaderSize(headerSize) {
		s.err = errors.Errorf("invalid block header size %d", headerSize)
	}
	return &s
}

// NumBlocks returns the number of blocks that the Stream will decode.
func (s *Stream) NumBlocks() int { return s.numBlocks }

// Next decodes and returns the next block's Segment.
//
// After all blocks have been decoded, Next returns io.EOF; any bytes
// remaining in the Source are ignored. If a block fails to decode, its error
// is returned by this and every subsequent call.
func (s *Stream) Next() (*Segment, error) {
	if s.err != nil {
		return nil, s.err
	}

	if s.next >= s.numBlocks {
		s.finish(io.EOF)
		return nil, io.EOF
	}

	seg, err := s.decodeBlock(s.next)
	if err != nil {
		blockErrors.WithLabelValues(decodeerr.KindOf(err).String()).Inc()
		s.finish(err)
		return nil, err
	}

	s.next++
	blocksDecoded.Inc()
	decompressedBytes.Add(float64(len(seg.Data)))
	return seg, nil
}

func (s *Stream) finish(err error) {
	s.err = err
	releaseSource(s.src)
	if s.zr != nil {
		_ = s.zr.Close()
		s.zr = nil
	}
}

func (s *Stream) decodeBlock(index int) (*Segment, error) {
	ctx := fmt.Sprintf("block #%d", index)
	seg := Segment{
		Index:  index,
		Offset: s.offset,
	}

	// Read the block header. Its bytes are needed again for the checksum, so
	// retain a copy; the Source's buffer is reused by the next read.
	var rawHeader [ReforgedHeaderSize]byte
	raw, err := s.src.Next(s.headerSize)
	if err != nil {
		return nil, sourceError(err, ctx, s.offset, "reading block header")
	}
	copy(rawHeader[:], raw)
	s.offset += int64(s.headerSize)

	if seg.Header, err = DecodeHeader(rawHeader[:s.headerSize]); err != nil {
		return nil, decodeerr.Wrap(err, decodeerr.BlockHeader, ctx, seg.Offset)
	}
	h := &seg.Header

	// Reject implausible sizes before reading any payload.
	maxSize := s.opts.maxBlockSize()
	switch {
	case h.CompressedSize == 0:
		return nil, decodeerr.New(decodeerr.BlockHeader, ctx, seg.Offset, "compressed size is zero")
	case int64(h.CompressedSize) > int64(maxSize):
		return nil, decodeerr.New(decodeerr.BlockHeader, ctx, seg.Offset,
			"compressed size %d exceeds maximum %d", h.CompressedSize, maxSize)
	case int64(h.DecompressedSize) > int64(maxSize):
		return nil, decodeerr.New(decodeerr.BlockHeader, ctx, seg.Offset,
			"decompressed size %d exceeds maximum %d", h.DecompressedSize, maxSize)
	}
	if rem := s.src.Remaining(); rem >= 0 && int64(h.CompressedSize) > rem {
		return nil, decodeerr.New(decodeerr.BlockHeader, ctx, seg.Offset,
			"compressed size %d exceeds %d remaining bytes", h.CompressedSize, rem)
	}

	payload, err := s.src.Next(int(h.CompressedSize))
	if err != nil {
		return nil, sourceError(err, ctx, s.offset, "reading block payload")
	}
	s.offset += int64(h.CompressedSize)
	compressedBytes.Add(float64(len(payload)))

	if policy := s.opts.checksum(); policy != ChecksumIgnore {
		computed := ComputeChecksum(rawHeader[:s.headerSize], payload)
		mismatch, err := policy.Verify(s.opts.logger(), ctx, seg.Offset, h.Checksum, computed)
		if mismatch {
			checksumMismatches.Inc()
		}
		if err != nil {
			return nil, err
		}
	}

	data, de := s.decompress(payload, int(h.DecompressedSize))
	if de != nil {
		de.Context, de.Offset = ctx, seg.Offset
		if de.Kind == decodeerr.DecompressFailure {
			de.Message = fmt.Sprintf("payload %s", fmtutil.HexSlice(payload[:min(len(payload), 16)]))
		}
		return nil, errors.Wrap(de, "decompressing")
	}
	seg.Data = data

	logging.With(s.opts.logger(), ctx).Debugf("decoded %d => %d bytes", h.CompressedSize, len(seg.Data))
	return &seg, nil
}

// decompress inflates payload, which must produce exactly size bytes.
//
// The returned error has no context; the caller supplies it.
func (s *Stream) decompress(payload []byte, size int) ([]byte, *decodeerr.Error) {
	s.payload.Reset(payload)

	if s.zr == nil {
		zr, err := zlib.NewReader(&s.payload)
		if err != nil {
			return nil, &decodeerr.Error{Kind: decodeerr.DecompressFailure, Err: err}
		}
		s.zr = zr
	} else if err := s.zr.(zlib.Resetter).Reset(&s.payload, nil); err != nil {
		return nil, &decodeerr.Error{Kind: decodeerr.DecompressFailure, Err: err}
	}

	data := make([]byte, size)
	switch amt, err := io.ReadFull(s.zr, data); err {
	case nil:
	case io.EOF, io.ErrUnexpectedEOF:
		// The stream ended (cleanly or not) before producing the declared size.
		return nil, &decodeerr.Error{
			Kind:    decodeerr.BlockSizeMismatch,
			Message: fmt.Sprintf("decompressed %d bytes, declared %d", amt, size),
			Err:     err,
		}
	default:
		return nil, &decodeerr.Error{Kind: decodeerr.DecompressFailure, Err: err}
	}

	// The stream must end here. A missing zlib trailer is tolerated, since the
	// declared content was produced in full.
	var extra [1]byte
	switch amt, err := io.ReadFull(s.zr, extra[:]); {
	case amt > 0:
		return nil, &decodeerr.Error{
			Kind:    decodeerr.BlockSizeMismatch,
			Message: fmt.Sprintf("decompressed more than the declared %d bytes", size),
		}
	case err == io.EOF, err == io.ErrUnexpectedEOF:
		return data, nil
	default:
		return nil, &decodeerr.Error{Kind: decodeerr.DecompressFailure, Err: err}
	}
}

// sourceError converts an error returned by a Source into a decoding error.
func sourceError(err error, ctx string, offset int64, what string) error {
	switch err {
	case io.EOF, io.ErrUnexpectedEOF:
		return errors.Wrap(decodeerr.Wrap(err, decodeerr.Truncated, ctx, offset), what)
	default:
		return errors.Wrap(err, what)
	}
}
