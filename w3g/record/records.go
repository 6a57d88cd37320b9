// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package record

import (
	"encoding/binary"
)

// hostSlotTag precedes the host player's body within GameInfo.
const hostSlotTag = 0x00

// Player is a player's identity, as recorded in GameInfo and PlayerInfo.
//
//	uint8   player_id;
//	char    name[];          // NUL-terminated
//	uint8   extra_size;
//	uint8   extra[extra_size];
type Player struct {
	ID   uint8
	Name string

	// Extra is the player's additional data. It is a single zero byte for
	// custom games, and runtime and race for ladder games (see Ladder).
	Extra []byte
}

// Ladder returns the ladder runtime and race fields, if Extra holds them.
func (p *Player) Ladder() (runtime, race uint32, ok bool) {
	if len(p.Extra) != 8 {
		return 0, 0, false
	}
	return binary.LittleEndian.Uint32(p.Extra[0:4]), binary.LittleEndian.Uint32(p.Extra[4:8]), true
}

func (p *Player) decode(fr *fieldReader) (err error) {
	if p.ID, err = fr.u8("player.id"); err != nil {
		return
	}
	if p.Name, err = fr.cstring("player.name"); err != nil {
		return
	}

	var size uint8
	if size, err = fr.u8("player.extra_size"); err != nil {
		return
	}
	p.Extra, err = fr.bytes("player.extra", int(size))
	return
}

// GameInfo is the first record of a replay. It describes the game and its
// host.
type GameInfo struct {
	Unknown [3]byte

	// Host is the player who hosted the game.
	Host Player

	GameName string

	// EncodedSettings is the game's encoded settings string. See Settings.
	EncodedSettings []byte

	PlayerCount uint32
	GameType    uint32
	LanguageID  uint32
}

// TypeID implements Record.
func (*GameInfo) TypeID() TypeID { return TypeGameInfo }

func (r *GameInfo) decode(fr *fieldReader) error {
	if err := fr.full("unknown", r.Unknown[:]); err != nil {
		return err
	}

	switch slot, err := fr.u8("host.slot"); {
	case err != nil:
		return err
	case slot != hostSlotTag:
		return fr.malformed("host.slot", "expected host slot tag 0x%02x, got 0x%02x", hostSlotTag, slot)
	}
	if err := r.Host.decode(fr); err != nil {
		return err
	}

	var err error
	if r.GameName, err = fr.cstring("game_name"); err != nil {
		return err
	}
	if _, err = fr.u8("game_name.pad"); err != nil {
		return err
	}
	if r.EncodedSettings, err = fr.rawCString("settings"); err != nil {
		return err
	}

	var tail struct {
		PlayerCount uint32 `struc:",little"`
		GameType    uint32 `struc:",little"`
		LanguageID  uint32 `struc:",little"`
	}
	if err := fr.unpack("game", &tail); err != nil {
		return err
	}
	r.PlayerCount, r.GameType, r.LanguageID = tail.PlayerCount, tail.GameType, tail.LanguageID
	return nil
}

// PlayerInfo describes an additional (non-host) player.
type PlayerInfo struct {
	Player

	Unknown uint32
}

// TypeID implements Record.
func (*PlayerInfo) TypeID() TypeID { return TypePlayerInfo }

func (r *PlayerInfo) decode(fr *fieldReader) (err error) {
	if err = r.Player.decode(fr); err != nil {
		return
	}
	r.Unknown, err = fr.u32("unknown")
	return
}

// PlayerLeft records a player leaving the game.
type PlayerLeft struct {
	Reason   uint32 `struc:",little"`
	PlayerID uint8
	Result   uint32 `struc:",little"`
	Unknown  uint32 `struc:",little"`
}

// TypeID implements Record.
func (*PlayerLeft) TypeID() TypeID { return TypePlayerLeft }

func (r *PlayerLeft) decode(fr *fieldReader) error { return fr.unpack("player_left", r) }

// Slot status values.
const (
	SlotEmpty    = 0x00
	SlotClosed   = 0x01
	SlotOccupied = 0x02
)

// minSlotSize is the size of the oldest slot layout.
const minSlotSize = 7

// slotInfoTrailerSize is the size of the fields following the slots in a
// SlotInfo record.
const slotInfoTrailerSize = 6

// Slot is a single lobby slot.
//
// Slot layouts have grown over time. The first seven fields are always
// present; AIStrength and Handicap are present in longer layouts, and any
// further bytes are retained in Extra.
type Slot struct {
	PlayerID        uint8
	DownloadPercent uint8
	Status          uint8
	Computer        uint8
	Team            uint8
	Color           uint8
	Race            uint8

	AIStrength uint8
	Handicap   uint8

	Extra []byte
}

// IsComputer returns true if the slot is occupied by a computer player.
func (s *Slot) IsComputer() bool { return s.Computer != 0 }

// SlotInfo is the lobby state at the time the game started.
type SlotInfo struct {
	// SlotSize is the on-wire size of each slot.
	SlotSize int
	Slots    []Slot

	RandomSeed     uint32
	SelectMode     uint8
	StartSpotCount uint8
}

// TypeID implements Record.
func (*SlotInfo) TypeID() TypeID { return TypeSlotInfo }

func (r *SlotInfo) decode(fr *fieldReader) error {
	size, err := fr.u16("size")
	if err != nil {
		return err
	}
	if size < 1+slotInfoTrailerSize {
		return fr.malformed("size", "size %d is too small", size)
	}
	body, err := fr.region("body", int(size))
	if err != nil {
		return err
	}

	count, err := body.u8("slot_count")
	if err != nil {
		return err
	}
	slotBytes := int(size) - 1 - slotInfoTrailerSize
	switch {
	case count == 0 && slotBytes != 0:
		return fr.malformed("slot_count", "no slots, but %d slot bytes", slotBytes)
	case count > 0 && slotBytes%int(count) != 0:
		return fr.malformed("slot_count", "%d slot bytes do not divide into %d slots", slotBytes, count)
	case count > 0:
		r.SlotSize = slotBytes / int(count)
		if r.SlotSize < minSlotSize {
			return fr.malformed("slot_count", "slot size %d is too small", r.SlotSize)
		}
	}

	r.Slots = make([]Slot, count)
	for i := range r.Slots {
		raw, err := body.bytes("slot", r.SlotSize)
		if err != nil {
			return err
		}

		s := &r.Slots[i]
		s.PlayerID, s.DownloadPercent, s.Status, s.Computer = raw[0], raw[1], raw[2], raw[3]
		s.Team, s.Color, s.Race = raw[4], raw[5], raw[6]
		if len(raw) > 7 {
			s.AIStrength = raw[7]
		}
		if len(raw) > 8 {
			s.Handicap = raw[8]
		}
		if len(raw) > 9 {
			s.Extra = raw[9:]
		}
	}

	if r.RandomSeed, err = body.u32("random_seed"); err != nil {
		return err
	}
	if r.SelectMode, err = body.u8("select_mode"); err != nil {
		return err
	}
	if r.StartSpotCount, err = body.u8("start_spot_count"); err != nil {
		return err
	}
	return body.expectEnd("body")
}

// CountdownStart records the start of the lobby countdown.
type CountdownStart struct {
	Unknown uint32 `struc:",little"`
}

// TypeID implements Record.
func (*CountdownStart) TypeID() TypeID { return TypeCountdownStart }

func (r *CountdownStart) decode(fr *fieldReader) error { return fr.unpack("unknown", r) }

// CountdownEnd records the end of the lobby countdown.
type CountdownEnd struct {
	Unknown uint32 `struc:",little"`
}

// TypeID implements Record.
func (*CountdownEnd) TypeID() TypeID { return TypeCountdownEnd }

func (r *CountdownEnd) decode(fr *fieldReader) error { return fr.unpack("unknown", r) }

// GameStart records the start of the game proper.
type GameStart struct {
	Unknown uint32 `struc:",little"`
}

// TypeID implements Record.
func (*GameStart) TypeID() TypeID { return TypeGameStart }

func (r *GameStart) decode(fr *fieldReader) error { return fr.unpack("unknown", r) }

// Action is a single player's action data within a TimeSlot. Its content is
// not interpreted.
//
//	uint8   player_id;
//	uint16  size;
//	uint8   data[size];
type Action struct {
	PlayerID uint8
	Data     []byte
}

// TimeSlot advances game time and carries the player actions issued during
// that time.
type TimeSlot struct {
	// TimeIncrementMS is the game time, in milliseconds, covered by the slot.
	TimeIncrementMS uint16
	Actions         []Action
}

// TypeID implements Record.
func (*TimeSlot) TypeID() TypeID { return TypeTimeSlot }

func (r *TimeSlot) decode(fr *fieldReader) error {
	size, err := fr.u16("size")
	if err != nil {
		return err
	}
	if size < 2 {
		return fr.malformed("size", "size %d is too small", size)
	}
	body, err := fr.region("body", int(size))
	if err != nil {
		return err
	}

	if r.TimeIncrementMS, err = body.u16("time_increment"); err != nil {
		return err
	}
	r.Actions = nil
	for body.remaining() > 0 {
		var a Action
		if a.PlayerID, err = body.u8("action.player_id"); err != nil {
			return err
		}
		n, err := body.u16("action.size")
		if err != nil {
			return err
		}
		if a.Data, err = body.bytes("action.data", int(n)); err != nil {
			return err
		}
		r.Actions = append(r.Actions, a)
	}
	return nil
}

// TimeSlotFragment is a TimeSlot that is continued by the next TimeSlot
// record.
type TimeSlotFragment struct {
	TimeSlot
}

// TypeID implements Record.
func (*TimeSlotFragment) TypeID() TypeID { return TypeTimeSlotFragment }

// Chat flags.
const (
	// ChatFlagStartup marks a message sent during the loading screen. Such
	// messages carry no chat mode.
	ChatFlagStartup = 0x10
	// ChatFlagNormal marks an in-game message.
	ChatFlagNormal = 0x20
)

// Chat modes. Modes at or above ChatModePrivate address a single player.
const (
	ChatModeAll       = 0x00
	ChatModeAllies    = 0x01
	ChatModeObservers = 0x02
	ChatModePrivate   = 0x03
)

// ChatMessage is a chat message.
type ChatMessage struct {
	PlayerID uint8
	Flags    uint8
	// Mode is the chat mode. It is zero for startup messages.
	Mode uint32
	Text string
}

// TypeID implements Record.
func (*ChatMessage) TypeID() TypeID { return TypeChatMessage }

// PrivateRecipient returns the slot index addressed by a private message.
func (r *ChatMessage) PrivateRecipient() (int, bool) {
	if r.Flags == ChatFlagStartup || r.Mode < ChatModePrivate {
		return 0, false
	}
	return int(r.Mode - ChatModePrivate), true
}

func (r *ChatMessage) decode(fr *fieldReader) (err error) {
	if r.PlayerID, err = fr.u8("player_id"); err != nil {
		return
	}
	var size uint16
	if size, err = fr.u16("size"); err != nil {
		return
	}
	body, err := fr.region("body", int(size))
	if err != nil {
		return
	}

	if r.Flags, err = body.u8("flags"); err != nil {
		return
	}
	if r.Flags != ChatFlagStartup {
		if r.Mode, err = body.u32("mode"); err != nil {
			return
		}
	}
	if r.Text, err = body.cstring("text"); err != nil {
		return
	}
	return body.expectEnd("body")
}

// TimeSlotAck acknowledges a TimeSlot with a game state checksum.
type TimeSlotAck struct {
	Checksum []byte
}

// TypeID implements Record.
func (*TimeSlotAck) TypeID() TypeID { return TypeTimeSlotAck }

func (r *TimeSlotAck) decode(fr *fieldReader) error {
	size, err := fr.u8("size")
	if err != nil {
		return err
	}
	r.Checksum, err = fr.bytes("checksum", int(size))
	return err
}

// Desync is a fixed-size record whose content is not understood.
type Desync struct {
	Unknown [10]byte
}

// TypeID implements Record.
func (*Desync) TypeID() TypeID { return TypeDesync }

func (r *Desync) decode(fr *fieldReader) error { return fr.full("unknown", r.Unknown[:]) }

// EndTimer records a forced game end countdown.
type EndTimer struct {
	Mode             uint32 `struc:",little"`
	CountdownSeconds uint32 `struc:",little"`
}

// TypeID implements Record.
func (*EndTimer) TypeID() TypeID { return TypeEndTimer }

func (r *EndTimer) decode(fr *fieldReader) error { return fr.unpack("end_timer", r) }

// ProtoBuf is a Reforged record carrying a protobuf-encoded message. See
// Fields.
type ProtoBuf struct {
	Subtype uint8
	Data    []byte
}

// TypeID implements Record.
func (*ProtoBuf) TypeID() TypeID { return TypeProtoBuf }

func (r *ProtoBuf) decode(fr *fieldReader) (err error) {
	if r.Subtype, err = fr.u8("subtype"); err != nil {
		return
	}
	var size uint32
	if size, err = fr.u32("size"); err != nil {
		return
	}
	if size > maxProtoBufSize {
		return fr.malformed("size", "size %d exceeds maximum %d", size, maxProtoBufSize)
	}
	r.Data, err = fr.bytes("data", int(size))
	return
}
