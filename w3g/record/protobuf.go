// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package record

import (
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// maxProtoBufSize bounds the payload of a ProtoBuf record.
const maxProtoBufSize = 1024 * 1024

// Reforged ProtoBuf record subtypes.
const (
	// ProtoBufPlayerMetadata carries player profile data (battle tag, clan,
	// portrait).
	ProtoBufPlayerMetadata = 0x03
)

// ProtoField is a single top-level field of a protobuf message.
//
// Exactly one value field is meaningful, selected by Type.
type ProtoField struct {
	Number protowire.Number
	Type   protowire.Type

	// Varint holds VarintType values.
	Varint uint64
	// Fixed32 holds Fixed32Type values.
	Fixed32 uint32
	// Fixed64 holds Fixed64Type values.
	Fixed64 uint64
	// Bytes holds BytesType values, and the raw content of groups. It
	// references the record's Data.
	Bytes []byte
}

// Fields decodes the top-level wire fields of the record's protobuf message,
// without a schema.
//
// Length-delimited fields may themselves be messages; they can be decoded by
// passing Bytes to DecodeProtoFields.
func (r *ProtoBuf) Fields() ([]ProtoField, error) { return DecodeProtoFields(r.Data) }

// DecodeProtoFields decodes the top-level wire fields of a protobuf message.
func DecodeProtoFields(b []byte) ([]ProtoField, error) {
	var fields []ProtoField
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fields, errors.Wrap(protowire.ParseError(n), "decoding field tag")
		}
		b = b[n:]

		f := ProtoField{Number: num, Type: typ}
		switch typ {
		case protowire.VarintType:
			f.Varint, n = protowire.ConsumeVarint(b)
		case protowire.Fixed32Type:
			f.Fixed32, n = protowire.ConsumeFixed32(b)
		case protowire.Fixed64Type:
			f.Fixed64, n = protowire.ConsumeFixed64(b)
		case protowire.BytesType:
			f.Bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n >= 0 {
				f.Bytes = b[:n]
			}
		}
		if n < 0 {
			return fields, errors.Wrapf(protowire.ParseError(n), "decoding field %d", num)
		}
		b = b[n:]
		fields = append(fields, f)
	}
	return fields, nil
}
