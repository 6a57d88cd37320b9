// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package record

import (
	"fmt"
	"io"

	"github.com/danjacques/gow3replay/support/dataio"
	"github.com/danjacques/gow3replay/w3g/decodeerr"

	"github.com/pkg/errors"
)

// blockLocator is implemented by sources that can report which block the most
// recently read byte came from, such as block.Reader.
type blockLocator interface {
	Block() int
}

// Cursor walks a decompressed replay stream, decoding one record per step.
//
// A Cursor is always positioned at the start of a record. It reaches a
// terminal state at a clean end of data, at an end-of-replay tag, or at the
// first decoding error; that state is then returned by every subsequent call.
// There is no attempt to resynchronize after an error, since record boundaries
// cannot be rediscovered.
//
// Cursor is not safe for concurrent use.
type Cursor struct {
	cr     dataio.CountingReader
	blocks blockLocator
	opts   *Options

	// last is the offset of the most recently decoded record.
	last int64
	err  error
}

// NewCursor returns a Cursor that reads records from r.
//
// r should be buffered, as records are decoded with many small reads. A
// block.Reader is suitable.
func NewCursor(r io.Reader, opts *Options) *Cursor {
	c := Cursor{
		cr:   dataio.CountingReader{R: dataio.MakeReader(r)},
		opts: opts,
		last: -1,
	}
	c.blocks, _ = r.(blockLocator)
	return &c
}

// Offset returns the stream offset at which the next record begins.
func (c *Cursor) Offset() int64 { return c.cr.Count }

// LastOffset returns the stream offset at which the most recently decoded
// record began, or -1 if no record has been decoded.
func (c *Cursor) LastOffset() int64 { return c.last }

// Next decodes and returns the next record.
//
// Next returns io.EOF when the stream ends cleanly at a record boundary, or an
// end-of-replay tag is read.
func (c *Cursor) Next() (Record, error) {
	if c.err != nil {
		return nil, c.err
	}

	rec, err := c.next()
	if err != nil {
		c.err = err
		if err != io.EOF {
			recordErrors.WithLabelValues(decodeerr.KindOf(err).String()).Inc()
		}
		return nil, err
	}
	recordsDecoded.WithLabelValues(typeLabel(rec.TypeID())).Inc()
	return rec, nil
}

func (c *Cursor) next() (Record, error) {
	start := c.cr.Count

	tagByte, err := c.cr.ReadByte()
	switch {
	case err == io.EOF:
		// Clean end of data, at a record boundary.
		return nil, io.EOF
	case err != nil:
		if decodeerr.KindOf(err) != decodeerr.Unknown {
			return nil, errors.Wrap(err, "reading record tag")
		}
		return nil, decodeerr.Wrap(err, decodeerr.Unknown, c.context(TypeEndOfReplay, false), start)
	}

	tag := TypeID(tagByte)
	if tag == TypeEndOfReplay {
		c.opts.logger().Debugf("end of replay at offset %d", start)
		return nil, io.EOF
	}

	rec := newRecord(tag)
	if rec == nil {
		return nil, decodeerr.New(decodeerr.UnknownRecordTag, c.context(tag, true), start,
			"no known layout for tag 0x%02x", tagByte)
	}

	fr := fieldReader{
		r:    &c.cr,
		opts: c.opts,
	}
	if err := rec.decode(&fr); err != nil {
		return nil, c.annotate(err, tag, start)
	}

	c.last = start
	return rec, nil
}

// annotate attaches record context to a decoding error.
//
// Field errors have no context, and are given the record's. Errors from a
// lower stage (e.g., a block that failed to decompress while the record was
// being read) keep their own context, and are wrapped with the record's.
func (c *Cursor) annotate(err error, tag TypeID, start int64) error {
	ctx := c.context(tag, true)
	if de := decodeerr.As(err); de != nil && de.Context == "" {
		de.Context, de.Offset = ctx, start
		return de
	}
	return errors.Wrapf(err, "decoding %s @%d", ctx, start)
}

func (c *Cursor) context(tag TypeID, known bool) string {
	ctx := "record tag"
	if known {
		ctx = fmt.Sprintf("record %s", tag)
	}
	if c.blocks != nil {
		ctx = fmt.Sprintf("%s (block #%d)", ctx, c.blocks.Block())
	}
	return ctx
}

func typeLabel(t TypeID) string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Unknown"
}
