// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package w3g

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"io"
	"time"

	"github.com/danjacques/gow3replay/support/dataio"
	"github.com/danjacques/gow3replay/support/fmtutil"
	"github.com/danjacques/gow3replay/w3g/block"
	"github.com/danjacques/gow3replay/w3g/decodeerr"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

// Magic is the signature that begins every replay file.
var Magic = []byte("Warcraft III recorded game\x1A\x00")

const (
	// magicLen is a constant equal to the length of Magic.
	magicLen = 28

	// MinSize is the size of the smallest (version 0) header.
	MinSize = baseHeaderSize + subHeaderV0Size
	// Size is the size of a version 1 header.
	Size = baseHeaderSize + subHeaderV1Size
	// MaxHeaderSize is the largest declared header size that will be accepted.
	// Declared bytes beyond the known layout are retained in Header.Extra.
	MaxHeaderSize = 0x400

	// ReforgedVersion is the first game version that uses Reforged block
	// headers.
	ReforgedVersion = 10032

	// FlagMultiplayer is set in Header.Flags for multiplayer games.
	FlagMultiplayer = 0x8000

	baseHeaderSize  = 0x30
	subHeaderV0Size = 0x10
	subHeaderV1Size = 0x14

	headerContext = "header"
)

// baseHeader is the layout shared by all header versions.
//
//	char     magic[28];
//	uint32_t header_size;
//	uint32_t file_size;
//	uint32_t header_version;
//	uint32_t decompressed_size;
//	uint32_t num_blocks;
type baseHeader struct {
	Magic            [magicLen]byte
	HeaderSize       uint32 `struc:",little"`
	FileSize         uint32 `struc:",little"`
	HeaderVersion    uint32 `struc:",little"`
	DecompressedSize uint32 `struc:",little"`
	NumBlocks        uint32 `struc:",little"`
}

// subHeaderV0 follows baseHeader when HeaderVersion is 0 (game versions up to
// 1.06).
type subHeaderV0 struct {
	Unknown    uint16 `struc:",little"`
	Version    uint16 `struc:",little"`
	Build      uint16 `struc:",little"`
	Flags      uint16 `struc:",little"`
	DurationMS uint32 `struc:",little"`
	Checksum   uint32 `struc:",little"`
}

// subHeaderV1 follows baseHeader when HeaderVersion is 1.
type subHeaderV1 struct {
	Product    [4]byte
	Version    uint32 `struc:",little"`
	Build      uint16 `struc:",little"`
	Flags      uint16 `struc:",little"`
	DurationMS uint32 `struc:",little"`
	Checksum   uint32 `struc:",little"`
}

// Header is a decoded replay file header.
type Header struct {
	// HeaderSize is the declared size of the header, in bytes. The block region
	// begins at this offset.
	HeaderSize uint32
	// FileSize is the declared size of the whole file, or 0 if unknown.
	FileSize uint32
	// HeaderVersion is the header layout version (0 or 1).
	HeaderVersion uint32
	// DecompressedSize is the declared total size of the decompressed blocks.
	DecompressedSize uint32
	// NumBlocks is the number of compressed blocks following the header.
	NumBlocks uint32

	// Product is the reversed game identifier ("PX3W" for The Frozen Throne).
	// It is only present in version 1 headers.
	Product [4]byte
	// Unknown is an unidentified field, only present in version 0 headers.
	Unknown uint16

	// Version is the game's patch version (e.g., 26 for 1.26, or 10032 for
	// 1.32).
	Version uint32
	// Build is the game's build number.
	Build uint16
	// Flags holds header flags (see FlagMultiplayer).
	Flags uint16
	// DurationMS is the replay duration, in milliseconds.
	DurationMS uint32
	// Checksum is the stored header checksum. See ComputeChecksum.
	Checksum uint32

	// Extra holds declared header bytes beyond the known layout.
	Extra []byte
}

// DecodeHeader decodes a Header from the beginning of data.
//
// DecodeHeader performs no I/O; data must hold at least the full header.
func DecodeHeader(data []byte) (*Header, error) {
	return ReadHeader(bytes.NewReader(data))
}

// ReadHeader reads a Header from r, which must be positioned at the start of
// the replay. Exactly HeaderSize bytes are consumed on success.
//
// The first MinSize bytes are read before anything is interpreted; a shorter
// input is truncated whatever it holds. The magic signature is then verified
// before any other field.
func ReadHeader(r io.Reader) (*Header, error) {
	var buf [MinSize]byte
	if err := dataio.ReadFull(r, buf[:]); err != nil {
		return nil, headerReadError(err, 0)
	}
	if !bytes.Equal(buf[:magicLen], Magic) {
		return nil, decodeerr.New(decodeerr.MagicMismatch, headerContext, 0,
			"invalid magic %s", fmtutil.Quoted(buf[:magicLen]))
	}

	var bh baseHeader
	if err := struc.Unpack(bytes.NewReader(buf[:baseHeaderSize]), &bh); err != nil {
		return nil, errors.Wrap(err, "unpacking base header")
	}
	h := Header{
		HeaderSize:       bh.HeaderSize,
		FileSize:         bh.FileSize,
		HeaderVersion:    bh.HeaderVersion,
		DecompressedSize: bh.DecompressedSize,
		NumBlocks:        bh.NumBlocks,
	}

	parsed := h.layoutSize()
	switch {
	case parsed == 0:
		return nil, decodeerr.New(decodeerr.InvalidHeader, headerContext, 0x24,
			"unsupported header version %d", h.HeaderVersion)
	case h.HeaderSize < uint32(parsed):
		return nil, decodeerr.New(decodeerr.InvalidHeader, headerContext, 0x1C,
			"header size %d is smaller than version %d layout (%d)", h.HeaderSize, h.HeaderVersion, parsed)
	case h.HeaderSize > MaxHeaderSize:
		return nil, decodeerr.New(decodeerr.InvalidHeader, headerContext, 0x1C,
			"header size %d exceeds maximum %d", h.HeaderSize, MaxHeaderSize)
	}

	// The sub-header starts in buf, and may continue in r.
	sub := io.MultiReader(bytes.NewReader(buf[baseHeaderSize:]), r)
	switch h.HeaderVersion {
	case 0:
		var sh subHeaderV0
		if err := struc.Unpack(sub, &sh); err != nil {
			return nil, headerReadError(err, baseHeaderSize)
		}
		h.Unknown, h.Version, h.Build, h.Flags = sh.Unknown, uint32(sh.Version), sh.Build, sh.Flags
		h.DurationMS, h.Checksum = sh.DurationMS, sh.Checksum

	case 1:
		var sh subHeaderV1
		if err := struc.Unpack(sub, &sh); err != nil {
			return nil, headerReadError(err, baseHeaderSize)
		}
		h.Product, h.Version, h.Build, h.Flags = sh.Product, sh.Version, sh.Build, sh.Flags
		h.DurationMS, h.Checksum = sh.DurationMS, sh.Checksum
	}

	if extra := int(h.HeaderSize) - parsed; extra > 0 {
		h.Extra = make([]byte, extra)
		if err := dataio.ReadFull(r, h.Extra); err != nil {
			return nil, headerReadError(err, int64(parsed))
		}
	}
	return &h, nil
}

func headerReadError(err error, offset int64) error {
	switch err {
	case io.EOF, io.ErrUnexpectedEOF:
		return decodeerr.Wrap(io.ErrUnexpectedEOF, decodeerr.Truncated, headerContext, offset)
	default:
		return errors.Wrap(err, "reading header")
	}
}

// layoutSize returns the size of h's known layout, or 0 if its version is not
// supported.
func (h *Header) layoutSize() int {
	switch h.HeaderVersion {
	case 0:
		return MinSize
	case 1:
		return Size
	default:
		return 0
	}
}

// encode encodes h. If zeroChecksum is true, the checksum field is encoded as
// zero, as it is when computing the checksum.
func (h *Header) encode(zeroChecksum bool) ([]byte, error) {
	if h.layoutSize() == 0 {
		return nil, errors.Errorf("unsupported header version %d", h.HeaderVersion)
	}

	var buf bytes.Buffer
	bh := baseHeader{
		HeaderSize:       h.HeaderSize,
		FileSize:         h.FileSize,
		HeaderVersion:    h.HeaderVersion,
		DecompressedSize: h.DecompressedSize,
		NumBlocks:        h.NumBlocks,
	}
	copy(bh.Magic[:], Magic)
	if err := struc.Pack(&buf, &bh); err != nil {
		return nil, err
	}

	checksum := h.Checksum
	if zeroChecksum {
		checksum = 0
	}

	var sub interface{}
	if h.HeaderVersion == 0 {
		if h.Version > 0xFFFF {
			return nil, errors.Errorf("version %d does not fit a version 0 header", h.Version)
		}
		sub = &subHeaderV0{
			Unknown:    h.Unknown,
			Version:    uint16(h.Version),
			Build:      h.Build,
			Flags:      h.Flags,
			DurationMS: h.DurationMS,
			Checksum:   checksum,
		}
	} else {
		sub = &subHeaderV1{
			Product:    h.Product,
			Version:    h.Version,
			Build:      h.Build,
			Flags:      h.Flags,
			DurationMS: h.DurationMS,
			Checksum:   checksum,
		}
	}
	if err := struc.Pack(&buf, sub); err != nil {
		return nil, err
	}

	buf.Write(h.Extra)
	return buf.Bytes(), nil
}

// WriteTo writes h's encoded form to w.
//
// A Header decoded by ReadHeader is re-encoded byte-for-byte.
func (h *Header) WriteTo(w io.Writer) (int64, error) {
	data, err := h.encode(false)
	if err != nil {
		return 0, err
	}
	amt, err := w.Write(data)
	return int64(amt), err
}

// ComputeChecksum computes the header checksum: the CRC-32 (IEEE) of the
// encoded header with its checksum field zeroed.
func (h *Header) ComputeChecksum() (uint32, error) {
	data, err := h.encode(true)
	if err != nil {
		return 0, err
	}
	return crc32.ChecksumIEEE(data), nil
}

// BlockHeaderSize returns the size of the block headers in this replay.
func (h *Header) BlockHeaderSize() int {
	if h.IsReforged() {
		return block.ReforgedHeaderSize
	}
	return block.ClassicHeaderSize
}

// IsReforged returns true if this replay was recorded by Reforged (1.32+).
func (h *Header) IsReforged() bool {
	return h.HeaderVersion >= 1 && h.Version >= ReforgedVersion
}

// IsMultiplayer returns true if the replay is of a multiplayer game.
func (h *Header) IsMultiplayer() bool { return h.Flags&FlagMultiplayer != 0 }

// Duration returns the replay's duration.
func (h *Header) Duration() time.Duration {
	return time.Duration(h.DurationMS) * time.Millisecond
}

// GameID returns the game identifier in reading order (e.g., "W3XP"), or an
// empty string if the header does not carry one.
func (h *Header) GameID() string {
	if h.HeaderVersion == 0 {
		return ""
	}
	p := h.Product
	return string([]byte{p[3], p[2], p[1], p[0]})
}

func (h *Header) String() string {
	return fmt.Sprintf(
		"Header{version=%d, game=%q, patch=%d, build=%d, flags=0x%04x, duration=%s, "+
			"blocks=%d, decompressed_size=%d, checksum=0x%08x}",
		h.HeaderVersion, h.GameID(), h.Version, h.Build, h.Flags, h.Duration(),
		h.NumBlocks, h.DecompressedSize, h.Checksum)
}
