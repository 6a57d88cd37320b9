// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package record decodes the continuous decompressed replay stream into typed
// records.
//
// Each record begins with a one-byte tag (TypeID) that selects its layout.
// There is no universal length prefix: a record's length is only discoverable
// by decoding its fields, which are fixed-width little-endian integers,
// length-prefixed blobs, or NUL-terminated strings. Consequently, a record
// with an unknown tag cannot be skipped, and is a fatal decoding error.
//
// Records may span the boundaries of the compressed blocks that carry them, so
// a Cursor always reads from the logical concatenation of all blocks (see
// block.Reader), never from an individual block.
//
// A zero tag marks the zero padding that follows the final record, and ends
// the stream.
package record
