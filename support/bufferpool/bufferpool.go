// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package bufferpool maintains pools of reusable byte buffers for block
// payloads.
package bufferpool

import (
	"sync"
)

// Pool maintains a pool of buffers. It offers a new buffer when one is
// unavailable.
//
// Buffers in a Pool have a capacity of at least Size bytes. Requests larger
// than Size are satisfied by a one-off allocation that is not returned to the
// pool, so a single outsized block cannot inflate the pool permanently.
type Pool struct {
	// Size is the minimum capacity of buffers in this pool.
	Size int

	base sync.Pool
}

// Get returns a Buffer with exactly n readable bytes, allocating one if one is
// not available.
//
// The caller should return the buffer to the pool by calling its Release
// method when done with it.
func (bp *Pool) Get(n int) *Buffer {
	if n > bp.Size {
		return &Buffer{bytes: make([]byte, n)}
	}

	b, ok := bp.base.Get().(*Buffer)
	if !ok {
		// Create a blank buffer. When it is released, it will be added back to
		// pool.
		b = &Buffer{
			bytes: make([]byte, bp.Size),
		}
	}
	b.pool = bp
	b.bytes = b.bytes[:n]
	return b
}

// Buffer contains a byte buffer that can be released into a Pool for reuse.
//
// Failure to release Buffer will not cause a memory leak, but will prevent the
// reuse of the Buffer.
type Buffer struct {
	bytes []byte
	pool  *Pool
}

// Bytes returns this buffer's byte slice.
func (b *Buffer) Bytes() []byte { return b.bytes }

// Len returns the number of bytes in the buffer.
func (b *Buffer) Len() int { return len(b.bytes) }

// Release returns the buffer to its buffer pool.
//
// A Buffer must only be released once, and its Bytes must not be used
// afterwards.
func (b *Buffer) Release() {
	var pool *Pool
	pool, b.pool = b.pool, nil
	if pool != nil {
		b.bytes = b.bytes[:cap(b.bytes)]
		pool.base.Put(b)
	}
}
