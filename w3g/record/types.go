// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package record

import (
	"fmt"
)

// TypeID is a record's leading tag byte.
type TypeID uint8

const (
	// TypeEndOfReplay is the zero padding that follows the final record.
	TypeEndOfReplay TypeID = 0x00

	TypeGameInfo         TypeID = 0x10
	TypePlayerInfo       TypeID = 0x16
	TypePlayerLeft       TypeID = 0x17
	TypeSlotInfo         TypeID = 0x19
	TypeCountdownStart   TypeID = 0x1A
	TypeCountdownEnd     TypeID = 0x1B
	TypeGameStart        TypeID = 0x1C
	TypeTimeSlotFragment TypeID = 0x1E
	TypeTimeSlot         TypeID = 0x1F
	TypeChatMessage      TypeID = 0x20
	TypeTimeSlotAck      TypeID = 0x22
	TypeDesync           TypeID = 0x23
	TypeEndTimer         TypeID = 0x2F
	TypeProtoBuf         TypeID = 0x39
)

var typeNames = map[TypeID]string{
	TypeEndOfReplay:      "EndOfReplay",
	TypeGameInfo:         "GameInfo",
	TypePlayerInfo:       "PlayerInfo",
	TypePlayerLeft:       "PlayerLeft",
	TypeSlotInfo:         "SlotInfo",
	TypeCountdownStart:   "CountdownStart",
	TypeCountdownEnd:     "CountdownEnd",
	TypeGameStart:        "GameStart",
	TypeTimeSlotFragment: "TimeSlotFragment",
	TypeTimeSlot:         "TimeSlot",
	TypeChatMessage:      "ChatMessage",
	TypeTimeSlotAck:      "TimeSlotAck",
	TypeDesync:           "Desync",
	TypeEndTimer:         "EndTimer",
	TypeProtoBuf:         "ProtoBuf",
}

func (t TypeID) String() string {
	if name, ok := typeNames[t]; ok {
		return fmt.Sprintf("%s(0x%02x)", name, uint8(t))
	}
	return fmt.Sprintf("UNKNOWN(0x%02x)", uint8(t))
}

// Known returns true if t has a known layout.
func (t TypeID) Known() bool {
	_, ok := typeNames[t]
	return ok && t != TypeEndOfReplay
}

// Record is a single decoded replay record.
//
// The concrete type of a Record is determined by its TypeID; use a type switch
// to access its fields.
type Record interface {
	// TypeID is the tag of this record.
	TypeID() TypeID

	// decode reads the record's content, following its tag.
	decode(fr *fieldReader) error
}

// newRecord returns an empty Record for the specified tag, or nil if the tag
// has no known layout.
func newRecord(t TypeID) Record {
	switch t {
	case TypeGameInfo:
		return &GameInfo{}
	case TypePlayerInfo:
		return &PlayerInfo{}
	case TypePlayerLeft:
		return &PlayerLeft{}
	case TypeSlotInfo:
		return &SlotInfo{}
	case TypeCountdownStart:
		return &CountdownStart{}
	case TypeCountdownEnd:
		return &CountdownEnd{}
	case TypeGameStart:
		return &GameStart{}
	case TypeTimeSlotFragment:
		return &TimeSlotFragment{}
	case TypeTimeSlot:
		return &TimeSlot{}
	case TypeChatMessage:
		return &ChatMessage{}
	case TypeTimeSlotAck:
		return &TimeSlotAck{}
	case TypeDesync:
		return &Desync{}
	case TypeEndTimer:
		return &EndTimer{}
	case TypeProtoBuf:
		return &ProtoBuf{}
	default:
		return nil
	}
}
