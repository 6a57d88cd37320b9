// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package block decodes the compressed block region of a replay into a single
// continuous stream of decompressed bytes.
//
// The block region is a sequence of blocks. Each block is a small fixed-size
// block header followed by a zlib stream:
//
//	- 8-byte headers (classic replays): uint16 compressed size, uint16
//	  decompressed size, uint32 checksum.
//	- 12-byte headers (Reforged replays): uint32 compressed size, uint32
//	  decompressed size, uint32 checksum.
//
// Blocks are read from a Source, which is either a blocking stream (see
// NewStreamSource) or an in-memory buffer (see NewBufferSource). A Stream
// yields one decompressed Segment per block, and a Reader stitches Segments
// together into an io.Reader over the logical byte stream.
//
// Block checksums are not verified by default: replay producers are not
// consistent about them. Options.Checksum selects whether mismatches are
// ignored, logged, or treated as errors.
package block
