// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package w3g

import (
	"bytes"
	"io"
	"os"

	"github.com/danjacques/gow3replay/support/logging"
	"github.com/danjacques/gow3replay/w3g/block"
	"github.com/danjacques/gow3replay/w3g/decodeerr"
	"github.com/danjacques/gow3replay/w3g/record"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
)

// ErrConsumed is returned by the iterator of a Replay whose records have
// already been requested.
var ErrConsumed = errors.New("replay records have already been consumed")

// ErrClosed is returned by the iterator of a Replay that has been closed.
var ErrClosed = errors.New("replay is closed")

// Options controls replay decoding.
//
// A nil *Options is valid, and uses defaults.
type Options struct {
	// Checksum is the policy applied to the header and block checksums.
	Checksum block.ChecksumPolicy

	// MaxBlockSize bounds block sizes. See block.Options.
	MaxBlockSize int

	// Encoding is the text encoding of record strings. See record.Options.
	Encoding encoding.Encoding
	// MaxStringLength bounds record string lengths. See record.Options.
	MaxStringLength int

	// Logger, if not nil, receives warnings and diagnostics from all decoding
	// stages.
	Logger logging.L
}

func (o *Options) checksum() block.ChecksumPolicy {
	if o == nil {
		return block.ChecksumIgnore
	}
	return o.Checksum
}

func (o *Options) logger() logging.L {
	if o == nil {
		return logging.Nop
	}
	return logging.Must(o.Logger)
}

func (o *Options) blockOptions() *block.Options {
	if o == nil {
		return nil
	}
	return &block.Options{
		Checksum:     o.Checksum,
		MaxBlockSize: o.MaxBlockSize,
		Logger:       o.Logger,
	}
}

func (o *Options) recordOptions() *record.Options {
	if o == nil {
		return nil
	}
	return &record.Options{
		Encoding:        o.Encoding,
		MaxStringLength: o.MaxStringLength,
		Logger:          o.Logger,
	}
}

// Replay is an open replay file.
//
// A Replay holds its decoded Header. Its records are decoded lazily, in a
// single pass, through the Iterator returned by Records.
//
// Replay is not safe for concurrent use.
type Replay struct {
	// Header is the replay's decoded header.
	Header *Header

	opts   *Options
	src    block.Source
	closer io.Closer

	consumed bool
	closed   bool
}

// Open opens the replay file at path and decodes its header.
//
// The returned Replay owns the file, and must be closed.
func Open(path string, opts *Options) (*Replay, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening replay")
	}

	st, err := fd.Stat()
	if err != nil {
		_ = fd.Close()
		return nil, errors.Wrap(err, "stat replay")
	}

	rp, err := NewReplay(fd, st.Size(), opts)
	if err != nil {
		_ = fd.Close()
		return nil, errors.Wrapf(err, "decoding %q", path)
	}
	rp.closer = fd
	return rp, nil
}

// NewReplay decodes a replay's header from r, which must be positioned at the
// start of the replay.
//
// size is the total size of the replay in r, or -1 if it is not known. The
// Replay does not close r.
func NewReplay(r io.Reader, size int64, opts *Options) (*Replay, error) {
	h, err := ReadHeader(r)
	if err != nil {
		headerErrors.WithLabelValues(decodeerr.KindOf(err).String()).Inc()
		return nil, err
	}

	remaining := int64(-1)
	if size >= 0 {
		if remaining = size - int64(h.HeaderSize); remaining < 0 {
			remaining = 0
		}
	}
	return newReplay(h, block.NewStreamSource(r, remaining), opts)
}

// FromBuffer decodes a replay held entirely in data. It performs no I/O, and
// Segment payloads are sliced directly from data.
func FromBuffer(data []byte, opts *Options) (*Replay, error) {
	h, err := ReadHeader(bytes.NewReader(data))
	if err != nil {
		headerErrors.WithLabelValues(decodeerr.KindOf(err).String()).Inc()
		return nil, err
	}
	return newReplay(h, block.NewBufferSource(data[h.HeaderSize:]), opts)
}

func newReplay(h *Header, src block.Source, opts *Options) (*Replay, error) {
	l := opts.logger()
	l.Debugf("decoded replay %s", h)
	if len(h.Extra) > 0 {
		l.Debugf("skipped %d surplus header byte(s)", len(h.Extra))
	}

	if policy := opts.checksum(); policy != block.ChecksumIgnore {
		computed, err := h.ComputeChecksum()
		if err != nil {
			return nil, errors.Wrap(err, "computing header checksum")
		}
		mismatch, err := policy.Verify(l, headerContext, 0, h.Checksum, computed)
		if mismatch {
			headerChecksumMismatches.Inc()
		}
		if err != nil {
			headerErrors.WithLabelValues(decodeerr.KindOf(err).String()).Inc()
			return nil, err
		}
	}

	replaysOpened.Inc()
	return &Replay{
		Header: h,
		opts:   opts,
		src:    src,
	}, nil
}

// Records returns an Iterator over the replay's records.
//
// Records may only be called once; subsequent calls return an Iterator that
// fails with ErrConsumed. After Close, the Iterator fails with ErrClosed, and
// an Iterator already in progress fails with ErrClosed at its next read.
func (rp *Replay) Records() *record.Iterator {
	switch {
	case rp.closed:
		return record.FailedIterator(ErrClosed)
	case rp.consumed:
		return record.FailedIterator(ErrConsumed)
	}
	rp.consumed = true

	s := block.NewStream(rp.src, int(rp.Header.NumBlocks), rp.Header.BlockHeaderSize(), rp.opts.blockOptions())
	return record.NewIterator(&closedGuard{rp: rp, r: block.NewReader(s)}, rp.opts.recordOptions())
}

// Close releases the Replay's resources. It is safe to call Close more than
// once, and at any point during iteration.
func (rp *Replay) Close() error {
	if rp.closed {
		return nil
	}
	rp.closed = true

	if rp.closer != nil {
		return rp.closer.Close()
	}
	return nil
}

// closedGuard fails reads from a Replay's block stream once the Replay has
// been closed.
type closedGuard struct {
	rp *Replay
	r  *block.Reader
}

func (g *closedGuard) Read(b []byte) (int, error) {
	if g.rp.closed {
		return 0, ErrClosed
	}
	return g.r.Read(b)
}

func (g *closedGuard) ReadByte() (byte, error) {
	if g.rp.closed {
		return 0, ErrClosed
	}
	return g.r.ReadByte()
}

// Block returns the index of the block holding the most recently read byte.
func (g *closedGuard) Block() int { return g.r.Block() }
