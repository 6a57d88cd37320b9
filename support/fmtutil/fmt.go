// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package fmtutil contains formatting helpers.
package fmtutil

import (
	"bytes"
	"fmt"
)

// maxHexSliceBytes is the number of bytes HexSlice renders before eliding the
// rest.
const maxHexSliceBytes = 32

// HexSlice is a byte slice that renders as a sequence of hex bytes, instead
// of the default decimal bytes.
//
// Output as: "[4]byte{0x10, 0x20, 0x30, 0x40}". Slices longer than 32 bytes
// are elided after the 32nd byte: "[100]byte{0x10, ..., ...}".
//
// It can be used for easy lazy hex dumping in errors and log lines.
type HexSlice []byte

func (hs HexSlice) String() string {
	shown := []byte(hs)
	if len(shown) > maxHexSliceBytes {
		shown = shown[:maxHexSliceBytes]
	}

	var sb bytes.Buffer
	sb.Grow((6 * len(shown)) + 16) // 16 is more than we need for static content.
	fmt.Fprintf(&sb, "[%d]byte{", len(hs))
	for i, b := range shown {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "0x%02X", b)
	}
	if len(shown) < len(hs) {
		sb.WriteString(", ...")
	}
	sb.WriteString("}")
	return sb.String()
}

// Quoted renders a byte slice as a Go-quoted string, which is friendlier than
// hex for mostly-ASCII data such as magic signatures.
type Quoted []byte

func (q Quoted) String() string { return fmt.Sprintf("%q", []byte(q)) }
