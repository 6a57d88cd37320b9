// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bufferpool

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Pool", func() {
	var bp *Pool

	BeforeEach(func() {
		bp = &Pool{Size: 64}
	})

	It("returns buffers of the requested length", func() {
		b := bp.Get(10)
		Expect(b.Len()).To(Equal(10))
		Expect(b.Bytes()).To(HaveLen(10))
		Expect(cap(b.Bytes())).To(BeNumerically(">=", 64))
		b.Release()
	})

	It("allocates oversized buffers outside of the pool", func() {
		b := bp.Get(128)
		Expect(b.Len()).To(Equal(128))
		Expect(b.pool).To(BeNil())

		// Releasing an unpooled buffer is a no-op.
		b.Release()
	})

	It("can be released once", func() {
		b := bp.Get(64)
		b.Release()
		Expect(b.pool).To(BeNil())
	})
})

func TestBufferPool(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Testing bufferpool")
}
