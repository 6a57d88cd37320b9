// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package decodeerr defines the error taxonomy shared by the replay decoding
// stages.
//
// Every decoding failure is reported as an *Error, which identifies the kind
// of failure and the stage that produced it (the header, a block index, or a
// record tag and offset). Callers may add further context with
// github.com/pkg/errors; KindOf and As see through that wrapping.
package decodeerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is a class of decoding failure.
type Kind int

const (
	// Unknown is the Kind of errors that did not originate from decoding, such
	// as I/O errors from the underlying source.
	Unknown Kind = iota
	// MagicMismatch means that the header's magic signature was wrong.
	MagicMismatch
	// InvalidHeader means that a header field has an unsupported value.
	InvalidHeader
	// Truncated means that the input ended before a stage was complete.
	Truncated
	// BlockHeader means that a block header declared implausible sizes.
	BlockHeader
	// BlockSizeMismatch means that a block decompressed to a different number
	// of bytes than it declared.
	BlockSizeMismatch
	// DecompressFailure means that the compression layer rejected a block.
	DecompressFailure
	// ChecksumMismatch means that a stored checksum did not match its data,
	// and checksums are being enforced.
	ChecksumMismatch
	// UnknownRecordTag means that a record tag has no known layout, so its
	// length cannot be determined.
	UnknownRecordTag
	// MalformedRecordField means that a record field violates its own
	// encoding.
	MalformedRecordField
)

func (k Kind) String() string {
	switch k {
	case Unknown:
		return "Unknown"
	case MagicMismatch:
		return "MagicMismatch"
	case InvalidHeader:
		return "InvalidHeader"
	case Truncated:
		return "Truncated"
	case BlockHeader:
		return "BlockHeader"
	case BlockSizeMismatch:
		return "BlockSizeMismatch"
	case DecompressFailure:
		return "DecompressFailure"
	case ChecksumMismatch:
		return "ChecksumMismatch"
	case UnknownRecordTag:
		return "UnknownRecordTag"
	case MalformedRecordField:
		return "MalformedRecordField"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is a decoding error.
type Error struct {
	// Kind is the class of failure.
	Kind Kind
	// Context identifies the stage that failed, e.g. "header", "block #2", or
	// "record 0x1f".
	Context string
	// Offset is the byte offset at which the failing element began, within the
	// stream that the stage reads. It is -1 if unknown.
	Offset int64

	// Message describes the failure. It may be empty if Err is set.
	Message string
	// Err is the underlying cause, if there is one.
	Err error
}

// New returns a new *Error with a formatted message.
func New(kind Kind, context string, offset int64, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Context: context,
		Offset:  offset,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap returns a new *Error of the specified Kind caused by err.
//
// If err is nil, Wrap returns nil.
func Wrap(err error, kind Kind, context string, offset int64) error {
	if err == nil {
		return nil
	}
	return &Error{
		Kind:    kind,
		Context: context,
		Offset:  offset,
		Err:     err,
	}
}

func (e *Error) Error() string {
	msg := e.Message
	switch {
	case msg == "" && e.Err != nil:
		msg = e.Err.Error()
	case e.Err != nil:
		msg = msg + ": " + e.Err.Error()
	}

	if e.Offset >= 0 {
		return fmt.Sprintf("%s @%d: %s: %s", e.Context, e.Offset, e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Context, e.Kind, msg)
}

// Unwrap implements the standard library's error unwrapping.
//
// Error does not implement the pkg/errors causer interface; errors.Cause
// stops at the decoding error.
func (e *Error) Unwrap() error { return e.Err }

// As returns the outermost *Error in err's chain, or nil if there is none.
func As(err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return nil
}

// KindOf returns the Kind of the outermost *Error in err's chain, or Unknown
// if there is none.
func KindOf(err error) Kind {
	if de := As(err); de != nil {
		return de.Kind
	}
	return Unknown
}

// Is returns true if err's chain contains an *Error of the specified Kind at
// its outermost decoding error.
func Is(err error, kind Kind) bool { return err != nil && KindOf(err) == kind }
