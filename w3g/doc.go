// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package w3g decodes Warcraft III replay (".w3g") files.
//
// A replay file consists of:
//
//	- A fixed-layout Header, identifying the file and its game version, and
//	  declaring the number of compressed blocks that follow.
//	- A block region of zlib-compressed blocks (see the block package), which
//	  decompress into one continuous byte stream.
//	- Within that stream, a sequence of self-describing records (see the
//	  record package).
//
// Decoding is lazy and pull-based. A Replay is opened with Open, NewReplay, or
// FromBuffer, which read and validate only the Header. Records then decodes
// blocks on demand, one at a time, as the caller advances through records:
//
//	rp, err := w3g.Open(path, nil)
//	if err != nil {
//		return err
//	}
//	defer rp.Close()
//
//	it := rp.Records()
//	for it.Scan() {
//		switch rec := it.Record().(type) {
//		case *record.ChatMessage:
//			fmt.Println(rec.Text)
//		}
//	}
//	return it.Err()
//
// All decoding failures are *decodeerr.Error values, identifying the failing
// stage (header, block, or record).
package w3g
