// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package record

import (
	"io"
)

// Iterator is a lazy, single-pass sequence of records.
//
// Iterator can be driven directly through Next, or in the style of
// bufio.Scanner:
//
//	for it.Scan() {
//		rec := it.Record()
//		...
//	}
//	if err := it.Err(); err != nil {
//		...
//	}
//
// Records that have already been returned remain valid after an error.
type Iterator struct {
	c   *Cursor
	rec Record
	err error
}

// NewIterator returns an Iterator over the records in r.
func NewIterator(r io.Reader, opts *Options) *Iterator {
	return &Iterator{c: NewCursor(r, opts)}
}

// FailedIterator returns an Iterator that yields no records, and fails with
// err.
func FailedIterator(err error) *Iterator {
	return &Iterator{err: err}
}

// Next returns the next record, or io.EOF at the end of the sequence.
func (it *Iterator) Next() (Record, error) {
	if it.err != nil {
		it.rec = nil
		return nil, it.err
	}

	it.rec, it.err = it.c.Next()
	return it.rec, it.err
}

// Scan advances to the next record, which is then available through Record.
// It returns false at the end of the sequence or on error.
func (it *Iterator) Scan() bool {
	_, err := it.Next()
	return err == nil
}

// Record returns the record read by the most recent Scan.
func (it *Iterator) Record() Record { return it.rec }

// Err returns the error that ended the sequence, or nil if it ended cleanly.
func (it *Iterator) Err() error {
	if it.err == io.EOF {
		return nil
	}
	return it.err
}

// Offset returns the stream offset at which the most recently returned record
// began, or -1.
func (it *Iterator) Offset() int64 {
	if it.c == nil {
		return -1
	}
	return it.c.LastOffset()
}

// Collect reads all remaining records.
//
// On error, the records read before the error are returned alongside it.
func (it *Iterator) Collect() ([]Record, error) {
	var recs []Record
	for it.Scan() {
		recs = append(recs, it.rec)
	}
	return recs, it.Err()
}
