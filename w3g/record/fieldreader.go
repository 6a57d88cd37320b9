// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package record

import (
	"encoding/binary"
	"io"

	"github.com/danjacques/gow3replay/support/byteslicereader"
	"github.com/danjacques/gow3replay/support/dataio"
	"github.com/danjacques/gow3replay/w3g/decodeerr"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

// fieldReader reads the fields of a single record.
//
// Errors returned by fieldReader methods are *decodeerr.Error values with no
// Context; the Cursor supplies it. Errors that already carry a decoding Kind
// (e.g., a block that failed to decompress) pass through unchanged.
type fieldReader struct {
	r    dataio.Reader
	opts *Options

	// bounded is true if r holds exactly the bytes of a length-prefixed
	// region. Running out of data within it means that the length prefix was
	// wrong, rather than that the stream was truncated.
	bounded bool
}

func (fr *fieldReader) fail(field string, err error) error {
	if decodeerr.KindOf(err) != decodeerr.Unknown {
		return err
	}

	kind := decodeerr.Unknown
	switch {
	case err == io.EOF, err == io.ErrUnexpectedEOF:
		if fr.bounded {
			kind = decodeerr.MalformedRecordField
		} else {
			kind = decodeerr.Truncated
		}
	case err == dataio.ErrStringTooLong:
		kind = decodeerr.MalformedRecordField
	}
	return &decodeerr.Error{
		Kind:    kind,
		Offset:  -1,
		Message: "field " + field,
		Err:     err,
	}
}

func (fr *fieldReader) malformed(field, format string, args ...interface{}) error {
	return &decodeerr.Error{
		Kind:    decodeerr.MalformedRecordField,
		Offset:  -1,
		Message: "field " + field,
		Err:     errors.Errorf(format, args...),
	}
}

func (fr *fieldReader) u8(field string) (uint8, error) {
	v, err := fr.r.ReadByte()
	if err != nil {
		return 0, fr.fail(field, err)
	}
	return v, nil
}

func (fr *fieldReader) u16(field string) (uint16, error) {
	var buf [2]byte
	if err := fr.full(field, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func (fr *fieldReader) u32(field string) (uint32, error) {
	var buf [4]byte
	if err := fr.full(field, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func (fr *fieldReader) full(field string, buf []byte) error {
	if err := dataio.ReadFull(fr.r, buf); err != nil {
		if err == io.EOF {
			// Mid-record, running out of data is never a clean end.
			err = io.ErrUnexpectedEOF
		}
		return fr.fail(field, err)
	}
	return nil
}

// bytes reads an n-byte blob into a newly-allocated slice.
func (fr *fieldReader) bytes(field string, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := fr.full(field, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// rawCString reads a NUL-terminated string without decoding its text.
func (fr *fieldReader) rawCString(field string) ([]byte, error) {
	v, err := dataio.ReadCString(fr.r, fr.opts.maxStringLength())
	if err != nil {
		return nil, fr.fail(field, err)
	}
	return v, nil
}

// cstring reads a NUL-terminated string and decodes its text.
func (fr *fieldReader) cstring(field string) (string, error) {
	raw, err := fr.rawCString(field)
	if err != nil {
		return "", err
	}

	v, err := fr.opts.decodeString(raw)
	if err != nil {
		return "", fr.malformed(field, "invalid text: %s", err)
	}
	return v, nil
}

// unpack reads a fixed-layout struct.
func (fr *fieldReader) unpack(field string, v interface{}) error {
	if err := struc.Unpack(fr.r, v); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return fr.fail(field, err)
	}
	return nil
}

// region reads an n-byte length-prefixed region, and returns a fieldReader
// bounded to it.
func (fr *fieldReader) region(field string, n int) (*fieldReader, error) {
	buf, err := fr.bytes(field, n)
	if err != nil {
		return nil, err
	}
	return &fieldReader{
		r:       &byteslicereader.R{Buffer: buf},
		opts:    fr.opts,
		bounded: true,
	}, nil
}

// remaining returns the number of unread bytes in a bounded region.
func (fr *fieldReader) remaining() int {
	if br, ok := fr.r.(*byteslicereader.R); ok {
		return br.Remaining()
	}
	return -1
}

// rest reads all remaining bytes of a bounded region.
func (fr *fieldReader) rest(field string) ([]byte, error) {
	n := fr.remaining()
	if n < 0 {
		return nil, fr.malformed(field, "not within a bounded region")
	}
	return fr.bytes(field, n)
}

// expectEnd asserts that a bounded region has been fully consumed.
func (fr *fieldReader) expectEnd(field string) error {
	if n := fr.remaining(); n > 0 {
		return fr.malformed(field, "%d unconsumed bytes in length-prefixed region", n)
	}
	return nil
}
