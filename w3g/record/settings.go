// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package record

import (
	"github.com/danjacques/gow3replay/support/byteslicereader"
	"github.com/danjacques/gow3replay/w3g/decodeerr"
)

// Game speeds, held in the low bits of GameSettings.Flags.
const (
	GameSpeedSlow   = 0
	GameSpeedNormal = 1
	GameSpeedFast   = 2
)

// GameSettings are the decoded contents of GameInfo.EncodedSettings.
type GameSettings struct {
	// Flags holds the game options (speed, visibility, observers, teams).
	Flags uint32

	MapWidth    uint16
	MapHeight   uint16
	MapChecksum uint32
	MapPath     string
	HostName    string

	// Extra holds any bytes following HostName. Newer versions append a map
	// hash here.
	Extra []byte
}

// Speed returns the game speed (GameSpeedSlow, GameSpeedNormal, or
// GameSpeedFast).
func (gs *GameSettings) Speed() int { return int(gs.Flags & 0x03) }

// DecodeSettingsString reverses the settings string encoding.
//
// The encoding works in groups of eight bytes: a mask byte, followed by up to
// seven data bytes. A data byte whose mask bit (1 << position) is clear was
// incremented by one during encoding, which keeps the encoded string free of
// NUL bytes.
func DecodeSettingsString(enc []byte) []byte {
	out := make([]byte, 0, len(enc))
	for i := 0; i < len(enc); i += 8 {
		mask := enc[i]
		for j := 1; j < 8 && i+j < len(enc); j++ {
			b := enc[i+j]
			if mask&(1<<uint(j)) == 0 {
				b--
			}
			out = append(out, b)
		}
	}
	return out
}

// Settings decodes the game's EncodedSettings.
//
// The map path and host name are decoded as opts dictates. A failure here
// does not invalidate the GameInfo record.
func (r *GameInfo) Settings(opts *Options) (_ *GameSettings, err error) {
	defer func() {
		if de := decodeerr.As(err); de != nil && de.Context == "" {
			de.Context = "game settings"
		}
	}()

	fr := fieldReader{
		r:       &byteslicereader.R{Buffer: DecodeSettingsString(r.EncodedSettings)},
		opts:    opts,
		bounded: true,
	}

	var gs GameSettings
	if gs.Flags, err = fr.u32("settings.flags"); err != nil {
		return nil, err
	}
	if _, err = fr.u8("settings.pad"); err != nil {
		return nil, err
	}
	if gs.MapWidth, err = fr.u16("settings.map_width"); err != nil {
		return nil, err
	}
	if gs.MapHeight, err = fr.u16("settings.map_height"); err != nil {
		return nil, err
	}
	if gs.MapChecksum, err = fr.u32("settings.map_checksum"); err != nil {
		return nil, err
	}
	if gs.MapPath, err = fr.cstring("settings.map_path"); err != nil {
		return nil, err
	}
	if gs.HostName, err = fr.cstring("settings.host_name"); err != nil {
		return nil, err
	}
	if gs.Extra, err = fr.rest("settings.extra"); err != nil {
		return nil, err
	}
	return &gs, nil
}
