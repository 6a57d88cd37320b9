// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package block

import (
	"strings"

	"github.com/spf13/pflag"
)

// ChecksumPolicyFlag is a pflag.Value implementation that stores a checksum
// policy.
type ChecksumPolicyFlag ChecksumPolicy

var _ pflag.Value = (*ChecksumPolicyFlag)(nil)

func (cf *ChecksumPolicyFlag) String() string { return ChecksumPolicy(*cf).String() }

// Set implements pflag.Value.
func (cf *ChecksumPolicyFlag) Set(v string) error {
	p, err := ParseChecksumPolicy(v)
	if err != nil {
		return err
	}
	*cf = ChecksumPolicyFlag(p)
	return nil
}

// Type implements pflag.Value.
func (cf *ChecksumPolicyFlag) Type() string { return "block.ChecksumPolicy" }

// Value returns the checksum policy held by this flag.
func (cf ChecksumPolicyFlag) Value() ChecksumPolicy { return ChecksumPolicy(cf) }

// ChecksumPolicyFlagValues returns the list of possible values for a
// ChecksumPolicyFlag, in policy order.
func ChecksumPolicyFlagValues() string { return strings.Join(checksumPolicyNames, ", ") }
