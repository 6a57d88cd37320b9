// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package w3gtest builds synthetic replay data for tests.
//
// Builders panic on failure, since they only ever operate on in-memory
// buffers with valid test input.
package w3gtest

import (
	"bytes"
	"encoding/binary"

	"github.com/danjacques/gow3replay/w3g"
	"github.com/danjacques/gow3replay/w3g/block"
	"github.com/danjacques/gow3replay/w3g/record"

	"github.com/klauspost/compress/zlib"
)

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Compress returns the zlib stream of data.
func Compress(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write(data)
	must(err)
	must(zw.Close())
	return buf.Bytes()
}

// EncodeBlock returns a complete block, with a valid checksum, holding the
// compressed form of data.
func EncodeBlock(headerSize int, data []byte) []byte {
	payload := Compress(data)
	return EncodeRawBlock(headerSize, block.Header{
		CompressedSize:   uint32(len(payload)),
		DecompressedSize: uint32(len(data)),
	}, payload, true)
}

// EncodeRawBlock returns a block with header h followed by payload, as-is.
//
// If fixChecksum is true, h's Checksum is replaced with the correct value for
// the resulting block.
func EncodeRawBlock(headerSize int, h block.Header, payload []byte, fixChecksum bool) []byte {
	if fixChecksum {
		h.Checksum = 0
		raw, err := h.Encode(headerSize)
		must(err)
		h.Checksum = block.ComputeChecksum(raw, payload)
	}

	raw, err := h.Encode(headerSize)
	must(err)
	return append(raw, payload...)
}

// EncodeBlocks splits data into chunks and encodes each as a block.
func EncodeBlocks(headerSize int, chunks ...[]byte) [][]byte {
	blocks := make([][]byte, len(chunks))
	for i, c := range chunks {
		blocks[i] = EncodeBlock(headerSize, c)
	}
	return blocks
}

// ClassicHeader returns a version 1 header for a pre-Reforged replay.
func ClassicHeader() *w3g.Header {
	return &w3g.Header{
		HeaderSize:    w3g.Size,
		HeaderVersion: 1,
		Product:       [4]byte{'P', 'X', '3', 'W'},
		Version:       26,
		Build:         6059,
		Flags:         w3g.FlagMultiplayer,
		DurationMS:    754000,
	}
}

// ReforgedHeader returns a version 1 header for a Reforged replay, which uses
// 12-byte block headers.
func ReforgedHeader() *w3g.Header {
	h := ClassicHeader()
	h.Version = w3g.ReforgedVersion
	h.Build = 6105
	return h
}

// LegacyHeader returns a version 0 header.
func LegacyHeader() *w3g.Header {
	return &w3g.Header{
		HeaderSize:    w3g.MinSize,
		HeaderVersion: 0,
		Version:       6,
		Build:         4656,
		Flags:         w3g.FlagMultiplayer,
		DurationMS:    120000,
	}
}

// EncodeHeader returns h's encoded form, as-is.
func EncodeHeader(h *w3g.Header) []byte {
	var buf bytes.Buffer
	_, err := h.WriteTo(&buf)
	must(err)
	return buf.Bytes()
}

// BuildReplay assembles a replay file from a header and encoded blocks.
//
// A copy of h is updated to be consistent with blocks: its NumBlocks,
// FileSize, and Checksum fields are set. DecompressedSize is left as-is.
func BuildReplay(h *w3g.Header, blocks ...[]byte) []byte {
	hc := *h
	hc.NumBlocks = uint32(len(blocks))

	size := int(hc.HeaderSize)
	for _, b := range blocks {
		size += len(b)
	}
	hc.FileSize = uint32(size)

	var err error
	hc.Checksum, err = hc.ComputeChecksum()
	must(err)

	buf := bytes.NewBuffer(make([]byte, 0, size))
	buf.Write(EncodeHeader(&hc))
	for _, b := range blocks {
		buf.Write(b)
	}
	return buf.Bytes()
}

// Split splits data into consecutive chunks of the specified sizes. Any data
// beyond the sum of sizes forms a final chunk.
func Split(data []byte, sizes ...int) [][]byte {
	chunks := make([][]byte, 0, len(sizes)+1)
	for _, n := range sizes {
		if n > len(data) {
			n = len(data)
		}
		chunks = append(chunks, data[:n])
		data = data[n:]
	}
	if len(data) > 0 {
		chunks = append(chunks, data)
	}
	return chunks
}

// EncodeSettingsString applies the game settings string encoding to data. It
// is the inverse of record.DecodeSettingsString.
func EncodeSettingsString(data []byte) []byte {
	var out []byte
	for i := 0; i < len(data); i += 7 {
		end := i + 7
		if end > len(data) {
			end = len(data)
		}

		mask := byte(0x01)
		chunk := make([]byte, 0, 7)
		for j, b := range data[i:end] {
			if b%2 == 0 {
				chunk = append(chunk, b+1)
			} else {
				chunk = append(chunk, b)
				mask |= 1 << uint(j+1)
			}
		}
		out = append(out, mask)
		out = append(out, chunk...)
	}
	return out
}

// Records builds raw record stream bytes.
//
// The zero value is ready to use, and methods can be chained:
//
//	data := new(w3gtest.Records).GameStart().TimeSlot(100).Bytes()
type Records struct {
	buf bytes.Buffer
}

// Bytes returns the bytes built so far.
func (r *Records) Bytes() []byte { return r.buf.Bytes() }

// Len returns the number of bytes built so far.
func (r *Records) Len() int { return r.buf.Len() }

// Tag writes a record tag.
func (r *Records) Tag(t record.TypeID) *Records { return r.U8(uint8(t)) }

// U8 writes a byte.
func (r *Records) U8(v uint8) *Records {
	must(r.buf.WriteByte(v))
	return r
}

// U16 writes a little-endian uint16.
func (r *Records) U16(v uint16) *Records {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return r.Raw(b[:]...)
}

// U32 writes a little-endian uint32.
func (r *Records) U32(v uint32) *Records {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return r.Raw(b[:]...)
}

// Raw writes bytes as-is.
func (r *Records) Raw(v ...byte) *Records {
	_, err := r.buf.Write(v)
	must(err)
	return r
}

// CString writes a NUL-terminated string.
func (r *Records) CString(v string) *Records {
	_, err := r.buf.WriteString(v)
	must(err)
	return r.U8(0)
}

// Player writes a player body with a single zero extra byte.
func (r *Records) Player(id uint8, name string) *Records {
	return r.U8(id).CString(name).U8(1).U8(0)
}

// GameInfo writes a GameInfo record hosted by player 1, whose settings
// string encodes settings.
func (r *Records) GameInfo(host, game string, settings []byte) *Records {
	r.Tag(record.TypeGameInfo).Raw(0, 0, 0)
	r.U8(0).Player(1, host)
	r.CString(game).U8(0)
	r.Raw(EncodeSettingsString(settings)...).U8(0)
	return r.U32(12).U32(0x09).U32(0x18F4)
}

// PlayerInfo writes a PlayerInfo record.
func (r *Records) PlayerInfo(id uint8, name string) *Records {
	return r.Tag(record.TypePlayerInfo).Player(id, name).U32(0)
}

// PlayerLeft writes a PlayerLeft record.
func (r *Records) PlayerLeft(id uint8, reason, result uint32) *Records {
	return r.Tag(record.TypePlayerLeft).U32(reason).U8(id).U32(result).U32(1)
}

// SlotInfo writes a SlotInfo record whose slots have the given raw layouts.
// All slots must have the same length.
func (r *Records) SlotInfo(seed uint32, slots ...[]byte) *Records {
	size := 1 + 6
	for _, s := range slots {
		size += len(s)
	}
	r.Tag(record.TypeSlotInfo).U16(uint16(size)).U8(uint8(len(slots)))
	for _, s := range slots {
		r.Raw(s...)
	}
	return r.U32(seed).U8(0).U8(uint8(len(slots)))
}

// GameStart writes the CountdownStart, CountdownEnd, and GameStart records.
func (r *Records) GameStart() *Records {
	r.Tag(record.TypeCountdownStart).U32(1)
	r.Tag(record.TypeCountdownEnd).U32(1)
	return r.Tag(record.TypeGameStart).U32(1)
}

// TimeSlot writes a TimeSlot record.
func (r *Records) TimeSlot(ms uint16, actions ...record.Action) *Records {
	return r.timeSlot(record.TypeTimeSlot, ms, actions)
}

// TimeSlotFragment writes a TimeSlotFragment record.
func (r *Records) TimeSlotFragment(ms uint16, actions ...record.Action) *Records {
	return r.timeSlot(record.TypeTimeSlotFragment, ms, actions)
}

func (r *Records) timeSlot(t record.TypeID, ms uint16, actions []record.Action) *Records {
	size := 2
	for _, a := range actions {
		size += 3 + len(a.Data)
	}
	r.Tag(t).U16(uint16(size)).U16(ms)
	for _, a := range actions {
		r.U8(a.PlayerID).U16(uint16(len(a.Data))).Raw(a.Data...)
	}
	return r
}

// Chat writes an in-game ChatMessage record.
func (r *Records) Chat(player uint8, mode uint32, text string) *Records {
	return r.Tag(record.TypeChatMessage).U8(player).
		U16(uint16(1 + 4 + len(text) + 1)).
		U8(record.ChatFlagNormal).U32(mode).CString(text)
}

// StartupChat writes a loading-screen ChatMessage record, which has no mode.
func (r *Records) StartupChat(player uint8, text string) *Records {
	return r.Tag(record.TypeChatMessage).U8(player).
		U16(uint16(1 + len(text) + 1)).
		U8(record.ChatFlagStartup).CString(text)
}

// TimeSlotAck writes a TimeSlotAck record.
func (r *Records) TimeSlotAck(checksum ...byte) *Records {
	return r.Tag(record.TypeTimeSlotAck).U8(uint8(len(checksum))).Raw(checksum...)
}

// EndTimer writes an EndTimer record.
func (r *Records) EndTimer(mode, seconds uint32) *Records {
	return r.Tag(record.TypeEndTimer).U32(mode).U32(seconds)
}

// ProtoBuf writes a ProtoBuf record.
func (r *Records) ProtoBuf(subtype uint8, data []byte) *Records {
	return r.Tag(record.TypeProtoBuf).U8(subtype).U32(uint32(len(data))).Raw(data...)
}

// Padding writes n end-of-replay zero bytes.
func (r *Records) Padding(n int) *Records {
	return r.Raw(make([]byte, n)...)
}
