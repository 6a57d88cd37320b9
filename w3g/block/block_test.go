// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package block_test

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"testing"
	"testing/iotest"

	"github.com/danjacques/gow3replay/w3g/block"
	"github.com/danjacques/gow3replay/w3g/decodeerr"
	"github.com/danjacques/gow3replay/w3g/w3gtest"

	"github.com/spf13/pflag"

	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

// collect drains s, returning the Segments decoded before it ended.
func collect(s *block.Stream) ([]*block.Segment, error) {
	var segs []*block.Segment
	for {
		seg, err := s.Next()
		if err != nil {
			return segs, err
		}
		segs = append(segs, seg)
	}
}

func segmentData(segs []*block.Segment) [][]byte {
	data := make([][]byte, len(segs))
	for i, seg := range segs {
		data[i] = seg.Data
	}
	return data
}

func join(blocks ...[]byte) []byte { return bytes.Join(blocks, nil) }

var sourceKinds = []struct {
	name string
	new  func(data []byte) block.Source

	// sized is true if the source knows how many bytes remain.
	sized bool
}{
	{"buffer", block.NewBufferSource, true},
	{"stream", func(data []byte) block.Source {
		return block.NewStreamSource(bytes.NewReader(data), int64(len(data)))
	}, true},
	{"unbounded one-byte stream", func(data []byte) block.Source {
		return block.NewStreamSource(iotest.OneByteReader(bytes.NewReader(data)), -1)
	}, false},
}

var _ = Describe("Header", func() {
	table.DescribeTable("round-trips through its encoding",
		func(size int, h block.Header) {
			raw, err := h.Encode(size)
			Expect(err).ToNot(HaveOccurred())
			Expect(raw).To(HaveLen(size))

			dec, err := block.DecodeHeader(raw)
			Expect(err).ToNot(HaveOccurred())
			Expect(dec).To(Equal(h))
		},
		table.Entry("classic", block.ClassicHeaderSize, block.Header{CompressedSize: 0x1234, DecompressedSize: 0x2000, Checksum: 0xCAFEF00D}),
		table.Entry("reforged", block.ReforgedHeaderSize, block.Header{CompressedSize: 0x12345, DecompressedSize: 0x20000, Checksum: 1}),
	)

	It("decodes the classic layout", func() {
		h, err := block.DecodeHeader([]byte{0x34, 0x12, 0x00, 0x20, 0x0D, 0xF0, 0xFE, 0xCA})
		Expect(err).ToNot(HaveOccurred())
		Expect(h).To(Equal(block.Header{CompressedSize: 0x1234, DecompressedSize: 0x2000, Checksum: 0xCAFEF00D}))
	})

	It("refuses to encode sizes that do not fit the classic layout", func() {
		h := block.Header{CompressedSize: 0x10000}
		_, err := h.Encode(block.ClassicHeaderSize)
		Expect(err).To(HaveOccurred())
	})

	It("rejects unknown header sizes", func() {
		_, err := block.DecodeHeader(make([]byte, 10))
		Expect(err).To(HaveOccurred())
	})

	It("computes checksums over the zeroed header and the payload", func() {
		h := block.Header{CompressedSize: 4, DecompressedSize: 16, Checksum: 0xFFFFFFFF}
		raw, err := h.Encode(block.ClassicHeaderSize)
		Expect(err).ToNot(HaveOccurred())
		payload := []byte{1, 2, 3, 4}

		zeroed := append([]byte(nil), raw...)
		binary.LittleEndian.PutUint32(zeroed[4:], 0)
		fold := func(v uint32) uint32 { return (v ^ (v >> 16)) & 0xFFFF }
		want := fold(crc32.ChecksumIEEE(zeroed)) | fold(crc32.ChecksumIEEE(payload))<<16

		Expect(block.ComputeChecksum(raw, payload)).To(Equal(want))
		Expect(block.ComputeChecksum(zeroed, payload)).To(Equal(want))
	})
})

var _ = Describe("ChecksumPolicy", func() {
	It("parses policy names", func() {
		for _, p := range []block.ChecksumPolicy{block.ChecksumIgnore, block.ChecksumWarn, block.ChecksumEnforce} {
			parsed, err := block.ParseChecksumPolicy(p.String())
			Expect(err).ToNot(HaveOccurred())
			Expect(parsed).To(Equal(p))
		}

		_, err := block.ParseChecksumPolicy("sometimes")
		Expect(err).To(HaveOccurred())
	})

	It("can be bound to a command-line flag", func() {
		var cf block.ChecksumPolicyFlag
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		fs.Var(&cf, "checksum", fmt.Sprintf("Checksum policy (%s).", block.ChecksumPolicyFlagValues()))

		Expect(fs.Parse([]string{"--checksum", "ENFORCE"})).To(Succeed())
		Expect(cf.Value()).To(Equal(block.ChecksumEnforce))
		Expect(cf.String()).To(Equal("enforce"))

		Expect(fs.Parse([]string{"--checksum", "bogus"})).ToNot(Succeed())
	})
})

var _ = Describe("Stream", func() {
	chunks := [][]byte{
		bytes.Repeat([]byte("first block "), 100),
		[]byte("second block"),
		bytes.Repeat([]byte{0x00, 0xFF}, 4096),
	}

	for _, hs := range []int{block.ClassicHeaderSize, block.ReforgedHeaderSize} {
		for _, sk := range sourceKinds {
			hs, sk := hs, sk

			Context(fmt.Sprintf("with %d-byte headers and a %s source", hs, sk.name), func() {
				var blocks [][]byte

				BeforeEach(func() {
					blocks = w3gtest.EncodeBlocks(hs, chunks...)
				})

				newStream := func(data []byte, numBlocks int, opts *block.Options) *block.Stream {
					return block.NewStream(sk.new(data), numBlocks, hs, opts)
				}

				It("yields each declared block, then EOF", func() {
					s := newStream(join(blocks...), len(blocks), nil)
					Expect(s.NumBlocks()).To(Equal(3))

					segs, err := collect(s)
					Expect(err).To(Equal(io.EOF))
					Expect(segmentData(segs)).To(Equal(chunks))

					var offset int64
					for i, seg := range segs {
						Expect(seg.Index).To(Equal(i))
						Expect(seg.Offset).To(Equal(offset))
						Expect(seg.Header.DecompressedSize).To(BeEquivalentTo(len(chunks[i])))
						offset += int64(len(blocks[i]))
					}

					// Terminal state is sticky.
					_, err = s.Next()
					Expect(err).To(Equal(io.EOF))
				})

				It("ignores bytes following the declared blocks", func() {
					data := join(append(blocks, []byte("trailing garbage that is not a block"))...)
					segs, err := collect(newStream(data, len(blocks), nil))
					Expect(err).To(Equal(io.EOF))
					Expect(segmentData(segs)).To(Equal(chunks))
				})

				It("yields nothing when no blocks are declared", func() {
					segs, err := collect(newStream(join(blocks...), 0, nil))
					Expect(err).To(Equal(io.EOF))
					Expect(segs).To(BeEmpty())
				})

				It("decodes identically on repeated runs", func() {
					data := join(blocks...)
					first, err := collect(newStream(data, len(blocks), nil))
					Expect(err).To(Equal(io.EOF))
					second, err := collect(newStream(data, len(blocks), nil))
					Expect(err).To(Equal(io.EOF))
					Expect(segmentData(second)).To(Equal(segmentData(first)))
				})

				It("reports a decompressed size mismatch before yielding the block", func() {
					payload := w3gtest.Compress(chunks[1])
					bad := w3gtest.EncodeRawBlock(hs, block.Header{
						CompressedSize:   uint32(len(payload)),
						DecompressedSize: uint32(len(chunks[1]) + 1),
					}, payload, true)

					s := newStream(join(blocks[0], bad, blocks[2]), 3, nil)
					seg, err := s.Next()
					Expect(err).ToNot(HaveOccurred())
					Expect(seg.Data).To(Equal(chunks[0]))

					seg, err = s.Next()
					Expect(seg).To(BeNil())
					Expect(decodeerr.KindOf(err)).To(Equal(decodeerr.BlockSizeMismatch))
					Expect(decodeerr.As(err).Context).To(Equal("block #1"))
					Expect(decodeerr.As(err).Offset).To(BeEquivalentTo(len(blocks[0])))

					// Errors are sticky.
					_, again := s.Next()
					Expect(again).To(Equal(err))
				})

				It("reports output beyond the declared size as a size mismatch", func() {
					payload := w3gtest.Compress(chunks[0])
					bad := w3gtest.EncodeRawBlock(hs, block.Header{
						CompressedSize:   uint32(len(payload)),
						DecompressedSize: uint32(len(chunks[0]) - 1),
					}, payload, true)

					_, err := collect(newStream(bad, 1, nil))
					Expect(decodeerr.KindOf(err)).To(Equal(decodeerr.BlockSizeMismatch))
				})

				It("reports a payload that is not a zlib stream", func() {
					bad := w3gtest.EncodeRawBlock(hs, block.Header{
						CompressedSize:   8,
						DecompressedSize: 16,
					}, []byte("not zlib"), true)

					_, err := collect(newStream(bad, 1, nil))
					Expect(decodeerr.KindOf(err)).To(Equal(decodeerr.DecompressFailure))
					Expect(err.Error()).To(ContainSubstring("[8]byte{0x6E, 0x6F, 0x74"))
				})

				It("rejects a zero compressed size", func() {
					bad := w3gtest.EncodeRawBlock(hs, block.Header{DecompressedSize: 16}, nil, true)
					_, err := collect(newStream(join(bad, blocks[0]), 2, nil))
					Expect(decodeerr.KindOf(err)).To(Equal(decodeerr.BlockHeader))
				})

				It("rejects sizes beyond the configured maximum", func() {
					_, err := collect(newStream(join(blocks...), len(blocks), &block.Options{MaxBlockSize: 1024}))
					Expect(decodeerr.KindOf(err)).To(Equal(decodeerr.BlockHeader))
					Expect(decodeerr.As(err).Context).To(Equal("block #0"))
				})

				It("reports blocks missing from the input as truncated", func() {
					segs, err := collect(newStream(join(blocks...), len(blocks)+1, nil))
					Expect(segmentData(segs)).To(Equal(chunks))
					Expect(decodeerr.KindOf(err)).To(Equal(decodeerr.Truncated))
					Expect(decodeerr.As(err).Context).To(Equal("block #3"))
				})

				It("reports a truncated block header", func() {
					data := join(blocks[0], blocks[1][:hs-1])
					_, err := collect(newStream(data, 2, nil))
					Expect(decodeerr.KindOf(err)).To(Equal(decodeerr.Truncated))
					Expect(decodeerr.As(err).Context).To(Equal("block #1"))
				})

				It("reports a block payload that the input cannot hold", func() {
					data := join(blocks[0], blocks[1][:len(blocks[1])-1])
					segs, err := collect(newStream(data, 2, nil))
					Expect(segs).To(HaveLen(1))
					Expect(decodeerr.As(err).Context).To(Equal("block #1"))

					// A sized source rejects the header up front; an unsized one runs out
					// while reading the payload.
					if sk.sized {
						Expect(decodeerr.KindOf(err)).To(Equal(decodeerr.BlockHeader))
					} else {
						Expect(decodeerr.KindOf(err)).To(Equal(decodeerr.Truncated))
					}
				})

				It("rejects a compressed size larger than the remaining input", func() {
					bad := w3gtest.EncodeRawBlock(hs, block.Header{
						CompressedSize:   60000,
						DecompressedSize: 16,
					}, make([]byte, 18), true)

					_, err := collect(newStream(bad, 1, nil))
					Expect(decodeerr.As(err).Context).To(Equal("block #0"))
					if sk.sized {
						Expect(decodeerr.KindOf(err)).To(Equal(decodeerr.BlockHeader))
						Expect(decodeerr.As(err).Offset).To(BeEquivalentTo(0))
					} else {
						Expect(decodeerr.KindOf(err)).To(Equal(decodeerr.Truncated))
					}
				})

				Context("with a corrupt checksum", func() {
					var data []byte

					BeforeEach(func() {
						payload := w3gtest.Compress(chunks[0])
						data = w3gtest.EncodeRawBlock(hs, block.Header{
							CompressedSize:   uint32(len(payload)),
							DecompressedSize: uint32(len(chunks[0])),
							Checksum:         0xDEADBEEF,
						}, payload, false)
					})

					It("ignores it by default", func() {
						segs, err := collect(newStream(data, 1, nil))
						Expect(err).To(Equal(io.EOF))
						Expect(segmentData(segs)).To(Equal(chunks[:1]))
					})

					It("logs it when warning", func() {
						var l w3gtest.Logger
						segs, err := collect(newStream(data, 1, &block.Options{Checksum: block.ChecksumWarn, Logger: &l}))
						Expect(err).To(Equal(io.EOF))
						Expect(segs).To(HaveLen(1))
						Expect(l.Warnings).To(ConsistOf(ContainSubstring("block #0")))
					})

					It("fails when enforcing", func() {
						segs, err := collect(newStream(data, 1, &block.Options{Checksum: block.ChecksumEnforce}))
						Expect(segs).To(BeEmpty())
						Expect(decodeerr.KindOf(err)).To(Equal(decodeerr.ChecksumMismatch))
					})
				})

				It("accepts valid checksums when enforcing", func() {
					segs, err := collect(newStream(join(blocks...), len(blocks), &block.Options{Checksum: block.ChecksumEnforce}))
					Expect(err).To(Equal(io.EOF))
					Expect(segmentData(segs)).To(Equal(chunks))
				})
			})
		}
	}

	It("decodes the same content from stream and buffer sources", func() {
		blocks := w3gtest.EncodeBlocks(block.ClassicHeaderSize, chunks...)
		data := join(blocks...)

		fromBuffer, err := collect(block.NewStream(block.NewBufferSource(data), 3, block.ClassicHeaderSize, nil))
		Expect(err).To(Equal(io.EOF))
		fromStream, err := collect(block.NewStream(
			block.NewStreamSource(bytes.NewReader(data), int64(len(data))), 3, block.ClassicHeaderSize, nil))
		Expect(err).To(Equal(io.EOF))

		Expect(segmentData(fromStream)).To(Equal(segmentData(fromBuffer)))
	})

	It("fails when constructed with an invalid header size", func() {
		_, err := block.NewStream(block.NewBufferSource(nil), 1, 10, nil).Next()
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Reader", func() {
	It("reads blocks as one continuous stream", func() {
		blocks := w3gtest.EncodeBlocks(block.ClassicHeaderSize,
			[]byte("hello, "), nil, []byte("world"), []byte("!"))
		r := block.NewReader(block.NewStream(block.NewBufferSource(join(blocks...)), len(blocks), block.ClassicHeaderSize, nil))
		Expect(r.Block()).To(Equal(-1))

		b, err := r.PeekByte()
		Expect(err).ToNot(HaveOccurred())
		Expect(b).To(Equal(byte('h')))
		Expect(r.Offset()).To(BeEquivalentTo(0))

		buf := make([]byte, 7)
		Expect(io.ReadFull(r, buf)).To(Equal(7))
		Expect(string(buf)).To(Equal("hello, "))
		Expect(r.Block()).To(Equal(0))

		// The empty block is skipped.
		b, err = r.ReadByte()
		Expect(err).ToNot(HaveOccurred())
		Expect(b).To(Equal(byte('w')))
		Expect(r.Block()).To(Equal(2))
		Expect(r.Offset()).To(BeEquivalentTo(8))

		rest, err := io.ReadAll(r)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(rest)).To(Equal("orld!"))
		Expect(r.Block()).To(Equal(3))

		_, err = r.ReadByte()
		Expect(err).To(Equal(io.EOF))
	})

	It("returns the Stream's error once earlier blocks are consumed", func() {
		good := w3gtest.EncodeBlock(block.ClassicHeaderSize, []byte("abc"))
		r := block.NewReader(block.NewStream(block.NewBufferSource(good), 2, block.ClassicHeaderSize, nil))

		data, err := io.ReadAll(r)
		Expect(string(data)).To(Equal("abc"))
		Expect(decodeerr.KindOf(err)).To(Equal(decodeerr.Truncated))
	})
})

func TestBlock(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Testing block")
}
