// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dataio

import (
	"bytes"
	"io"
	"testing"
	"testing/iotest"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("dataio", func() {
	Context("ReadFull", func() {
		It("fills the buffer across short reads", func() {
			r := iotest.OneByteReader(bytes.NewReader([]byte{1, 2, 3, 4}))
			buf := make([]byte, 4)
			Expect(ReadFull(r, buf)).To(Succeed())
			Expect(buf).To(Equal([]byte{1, 2, 3, 4}))
		})

		It("returns io.EOF when nothing could be read", func() {
			Expect(ReadFull(bytes.NewReader(nil), make([]byte, 2))).To(Equal(io.EOF))
		})

		It("returns io.ErrUnexpectedEOF on a partial read", func() {
			Expect(ReadFull(bytes.NewReader([]byte{1}), make([]byte, 2))).To(Equal(io.ErrUnexpectedEOF))
		})
	})

	Context("ReadCString", func() {
		It("reads up to and consumes the terminator", func() {
			r := bytes.NewReader([]byte("abc\x00d"))
			v, err := ReadCString(r, 0)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(v)).To(Equal("abc"))

			b, err := r.ReadByte()
			Expect(err).ToNot(HaveOccurred())
			Expect(b).To(Equal(byte('d')))
		})

		It("reads an empty string", func() {
			v, err := ReadCString(bytes.NewReader([]byte{0}), 4)
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(BeEmpty())
		})

		It("fails on an unterminated string", func() {
			_, err := ReadCString(bytes.NewReader([]byte("abc")), 0)
			Expect(err).To(Equal(io.ErrUnexpectedEOF))
		})

		It("fails when the string is too long", func() {
			_, err := ReadCString(bytes.NewReader([]byte("abcdef\x00")), 4)
			Expect(err).To(Equal(ErrStringTooLong))

			v, err := ReadCString(bytes.NewReader([]byte("abcd\x00")), 4)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(v)).To(Equal("abcd"))
		})
	})

	Context("CountingReader", func() {
		It("counts bytes read through both methods", func() {
			cr := CountingReader{R: MakeReader(iotest.OneByteReader(bytes.NewReader([]byte{1, 2, 3, 4}))), Count: 10}
			_, err := cr.ReadByte()
			Expect(err).ToNot(HaveOccurred())
			Expect(ReadFull(&cr, make([]byte, 3))).To(Succeed())
			Expect(cr.Count).To(Equal(int64(14)))

			_, err = cr.ReadByte()
			Expect(err).To(Equal(io.EOF))
			Expect(cr.Count).To(Equal(int64(14)))
		})
	})
})

func TestDataIO(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Testing dataio")
}
