// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package block

import (
	"bytes"
	"hash/crc32"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

const (
	// ClassicHeaderSize is the size of a block header with 16-bit sizes.
	ClassicHeaderSize = 8
	// ReforgedHeaderSize is the size of a block header with 32-bit sizes.
	ReforgedHeaderSize = 12

	// checksumFieldSize is the size of the trailing checksum field, present in
	// both header layouts.
	checksumFieldSize = 4
)

// Header is a decoded block header.
type Header struct {
	// CompressedSize is the number of payload bytes following the header.
	CompressedSize uint32
	// DecompressedSize is the number of bytes that the payload decompresses
	// to.
	DecompressedSize uint32
	// Checksum is the stored block checksum.
	Checksum uint32
}

// classicHeader is the on-wire layout of an 8-byte block header.
type classicHeader struct {
	CompressedSize   uint16 `struc:",little"`
	DecompressedSize uint16 `struc:",little"`
	Checksum         uint32 `struc:",little"`
}

// reforgedHeader is the on-wire layout of a 12-byte block header.
type reforgedHeader struct {
	CompressedSize   uint32 `struc:",little"`
	DecompressedSize uint32 `struc:",little"`
	Checksum         uint32 `struc:",little"`
}

func validHeaderSize(size int) bool {
	return size == ClassicHeaderSize || size == ReforgedHeaderSize
}

// DecodeHeader decodes a block header from raw, whose length selects the
// header layout.
func DecodeHeader(raw []byte) (Header, error) {
	r := bytes.NewReader(raw)
	switch len(raw) {
	case ClassicHeaderSize:
		var ch classicHeader
		if err := struc.Unpack(r, &ch); err != nil {
			return Header{}, err
		}
		return Header{
			CompressedSize:   uint32(ch.CompressedSize),
			DecompressedSize: uint32(ch.DecompressedSize),
			Checksum:         ch.Checksum,
		}, nil

	case ReforgedHeaderSize:
		var rh reforgedHeader
		if err := struc.Unpack(r, &rh); err != nil {
			return Header{}, err
		}
		return Header(rh), nil

	default:
		return Header{}, errors.Errorf("invalid block header size %d", len(raw))
	}
}

// Encode encodes h using the layout selected by size.
//
// Encode fails if h's sizes do not fit in the selected layout.
func (h *Header) Encode(size int) ([]byte, error) {
	var buf bytes.Buffer
	switch size {
	case ClassicHeaderSize:
		if h.CompressedSize > 0xFFFF || h.DecompressedSize > 0xFFFF {
			return nil, errors.Errorf("block sizes (%d, %d) exceed 16 bits", h.CompressedSize, h.DecompressedSize)
		}
		ch := classicHeader{
			CompressedSize:   uint16(h.CompressedSize),
			DecompressedSize: uint16(h.DecompressedSize),
			Checksum:         h.Checksum,
		}
		if err := struc.Pack(&buf, &ch); err != nil {
			return nil, err
		}

	case ReforgedHeaderSize:
		rh := reforgedHeader(*h)
		if err := struc.Pack(&buf, &rh); err != nil {
			return nil, err
		}

	default:
		return nil, errors.Errorf("invalid block header size %d", size)
	}
	return buf.Bytes(), nil
}

// ComputeChecksum computes the checksum of a block from its raw header bytes
// and its compressed payload.
//
// The header is hashed with its checksum field zeroed. Each CRC-32 is folded
// onto its low 16 bits; the header's forms the low half of the result and the
// payload's the high half.
func ComputeChecksum(rawHeader, payload []byte) uint32 {
	fold := func(v uint32) uint32 { return (v ^ (v >> 16)) & 0xFFFF }

	var hdr [ReforgedHeaderSize]byte
	n := copy(hdr[:], rawHeader)
	for i := n - checksumFieldSize; i >= 0 && i < n; i++ {
		hdr[i] = 0
	}

	return fold(crc32.ChecksumIEEE(hdr[:n])) | (fold(crc32.ChecksumIEEE(payload)) << 16)
}
