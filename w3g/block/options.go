// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package block

import (
	"fmt"
	"strings"

	"github.com/danjacques/gow3replay/support/logging"
	"github.com/danjacques/gow3replay/w3g/decodeerr"
	"github.com/pkg/errors"
)

// DefaultMaxBlockSize is the default upper bound on a block's compressed and
// decompressed sizes. Real replays use 8KiB blocks.
const DefaultMaxBlockSize = 1024 * 1024

// ChecksumPolicy controls how stored checksums are treated.
type ChecksumPolicy int

const (
	// ChecksumIgnore does not verify checksums.
	ChecksumIgnore ChecksumPolicy = iota
	// ChecksumWarn verifies checksums and logs mismatches, but does not fail.
	ChecksumWarn
	// ChecksumEnforce verifies checksums and fails on mismatch.
	ChecksumEnforce
)

var checksumPolicyNames = []string{
	ChecksumIgnore:  "ignore",
	ChecksumWarn:    "warn",
	ChecksumEnforce: "enforce",
}

func (p ChecksumPolicy) String() string {
	if p >= 0 && int(p) < len(checksumPolicyNames) {
		return checksumPolicyNames[p]
	}
	return fmt.Sprintf("ChecksumPolicy(%d)", int(p))
}

// ParseChecksumPolicy parses the name of a ChecksumPolicy.
func ParseChecksumPolicy(v string) (ChecksumPolicy, error) {
	for i, name := range checksumPolicyNames {
		if strings.EqualFold(v, name) {
			return ChecksumPolicy(i), nil
		}
	}
	return ChecksumIgnore, errors.Errorf("unknown checksum policy: %q", v)
}

// Verify compares a stored checksum against a computed one.
//
// Verify should only be called when p is not ChecksumIgnore. On mismatch,
// ChecksumWarn logs to l and returns (true, nil); ChecksumEnforce returns
// (true, err) with a decodeerr.ChecksumMismatch error.
func (p ChecksumPolicy) Verify(l logging.L, context string, offset int64, stored, computed uint32) (bool, error) {
	if stored == computed {
		return false, nil
	}

	if p == ChecksumEnforce {
		return true, decodeerr.New(decodeerr.ChecksumMismatch, context, offset,
			"stored checksum 0x%08x, computed 0x%08x", stored, computed)
	}
	logging.Must(l).Warnf("%s: stored checksum 0x%08x does not match computed 0x%08x (ignored)",
		context, stored, computed)
	return true, nil
}

// Options controls block decoding.
//
// A nil *Options is valid, and uses defaults.
type Options struct {
	// Checksum is the block checksum policy.
	Checksum ChecksumPolicy

	// MaxBlockSize, if >0, bounds each block's compressed and decompressed
	// sizes. If <=0, DefaultMaxBlockSize is used.
	MaxBlockSize int

	// Logger, if not nil, receives checksum warnings and diagnostics.
	Logger logging.L
}

func (o *Options) checksum() ChecksumPolicy {
	if o == nil {
		return ChecksumIgnore
	}
	return o.Checksum
}

func (o *Options) maxBlockSize() int {
	if o == nil || o.MaxBlockSize <= 0 {
		return DefaultMaxBlockSize
	}
	return o.MaxBlockSize
}

func (o *Options) logger() logging.L {
	if o == nil {
		return logging.Nop
	}
	return logging.Must(o.Logger)
}
