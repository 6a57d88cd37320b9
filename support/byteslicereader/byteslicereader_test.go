// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package byteslicereader

import (
	"io"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("R", func() {
	var r *R

	BeforeEach(func() {
		r = &R{}
	})

	Context("Read", func() {
		Context("with no data", func() {
			It("should read 0 bytes and return EOF", func() {
				v, err := r.Read(make([]byte, 16))
				Expect(v).To(Equal(0))
				Expect(err).To(Equal(io.EOF))
			})
		})

		Context("with multiple bytes of data", func() {
			BeforeEach(func() {
				r.Buffer = []byte{0, 1, 2, 3}
			})

			It("reads the whole buffer, then returns EOF", func() {
				buf := make([]byte, 1024)
				v, err := r.Read(buf)
				Expect(v).To(Equal(4))
				Expect(err).ToNot(HaveOccurred())

				v, err = r.Read(buf)
				Expect(v).To(Equal(0))
				Expect(err).To(Equal(io.EOF))
			})

			It("reads part of the buffer on first read, remainder on second", func() {
				buf := make([]byte, 3)

				By("reading the first part of the buffer")
				v, err := r.Read(buf)
				Expect(err).ToNot(HaveOccurred())
				Expect(buf[:v]).To(Equal([]byte{0, 1, 2}))
				Expect(r.Remaining()).To(Equal(1))

				By("reading the remainder")
				v, err = r.Read(buf)
				Expect(err).ToNot(HaveOccurred())
				Expect(buf[:v]).To(Equal([]byte{3}))
				Expect(r.Remaining()).To(Equal(0))
			})
		})
	})

	Context("ReadByte", func() {
		BeforeEach(func() {
			r.Buffer = []byte{7, 8}
		})

		It("reads through to EOF", func() {
			b, err := r.ReadByte()
			Expect(err).ToNot(HaveOccurred())
			Expect(b).To(Equal(byte(7)))
			Expect(r.Remaining()).To(Equal(1))

			b, err = r.ReadByte()
			Expect(err).ToNot(HaveOccurred())
			Expect(b).To(Equal(byte(8)))

			_, err = r.ReadByte()
			Expect(err).To(Equal(io.EOF))
		})
	})

	Context("Next", func() {
		BeforeEach(func() {
			r.Buffer = []byte{0, 1, 2, 3}
		})

		It("asking for 0 should read 0 bytes", func() {
			buf, err := r.Next(0)
			Expect(err).ToNot(HaveOccurred())
			Expect(buf).To(BeEmpty())
		})

		It("asking for exactly the remainder should not return EOF", func() {
			buf, err := r.Next(4)
			Expect(err).ToNot(HaveOccurred())
			Expect(buf).To(Equal(r.Buffer))
			Expect(&buf[0]).To(BeIdenticalTo(&r.Buffer[0]))
		})

		It("asking for many bytes should read the full buffer and return EOF", func() {
			buf, err := r.Next(1337)
			Expect(err).To(Equal(io.EOF))
			Expect(buf).To(Equal(r.Buffer))
		})

		It("asking incrementally will return subslices, ending with EOF", func() {
			buf, err := r.Next(3)
			Expect(err).ToNot(HaveOccurred())
			Expect(buf).To(Equal(r.Buffer[0:3]))

			buf, err = r.Next(2)
			Expect(err).To(Equal(io.EOF))
			Expect(buf).To(Equal(r.Buffer[3:4]))

			buf, err = r.Next(1)
			Expect(err).To(Equal(io.EOF))
			Expect(buf).To(BeEmpty())
		})
	})

	It("maintains state when copied", func() {
		r.Buffer = []byte{1, 2, 3, 4}
		_, err := r.Next(2)
		Expect(err).ToNot(HaveOccurred())

		clone := *r
		b, err := r.ReadByte()
		Expect(err).ToNot(HaveOccurred())
		Expect(b).To(Equal(byte(3)))

		b, err = clone.ReadByte()
		Expect(err).ToNot(HaveOccurred())
		Expect(b).To(Equal(byte(3)))
	})
})

func TestR(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Testing a byteslicereader.R")
}
