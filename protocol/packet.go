// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package protocol implements the binary wire packet codec spoken between
// the hub and its light nodes.
//
// The codec is pure and performs no I/O: it only encodes and decodes the
// fixed packet header plus payload described by the wire format. An
// unknown-magic datagram is expected on the same broadcast domain (other
// applications sharing the LAN), so decode failures are reported as typed
// errors rather than panics, letting callers silently ignore foreign
// traffic.
package protocol

import (
	"bytes"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

// Magic precedes every packet on the wire. A datagram that does not begin
// with Magic is not ours, and is ignored by callers rather than treated as
// a protocol violation.
var Magic = [2]byte{0xA1, 0x1E}

// headerSize is the length, in bytes, of the fixed packet header.
const headerSize = 2 + 1 + 2 // Magic + ID + Len

// ID identifies a packet's type.
type ID uint8

// Packet IDs used by the core protocol.
const (
	// Ping is broadcast by the hub to solicit Info replies.
	Ping ID = 0x01
	// Info is sent by a node in reply to a Ping, describing its strips.
	Info ID = 0x02
	// UpdateAnalog carries a full pixel snapshot for a single-pixel strip.
	UpdateAnalog ID = 0x03
	// UpdateDigital carries a full pixel snapshot for a linear strip.
	UpdateDigital ID = 0x04
	// UpdateMatrix carries a full pixel snapshot for a 2D strip.
	UpdateMatrix ID = 0x05
	// Ack is sent by a node to acknowledge a prior packet by ID.
	Ack ID = 0x06
	// WiFiConnect instructs a node to join an access point. Its payload is
	// opaque to the core.
	WiFiConnect ID = 0x07
	// WiFiAP instructs a node to host an access point. Its payload is opaque
	// to the core.
	WiFiAP ID = 0x08
)

func (id ID) String() string {
	switch id {
	case Ping:
		return "PING"
	case Info:
		return "INFO"
	case UpdateAnalog:
		return "UPDATE_ANALOG"
	case UpdateDigital:
		return "UPDATE_DIGITAL"
	case UpdateMatrix:
		return "UPDATE_MATRIX"
	case Ack:
		return "ACK"
	case WiFiConnect:
		return "WIFI_CONNECT"
	case WiFiAP:
		return "WIFI_AP"
	default:
		return "UNKNOWN"
	}
}

// ErrInvalidHeader is returned by Decode when a datagram does not begin
// with Magic, or names an unrecognized ID.
var ErrInvalidHeader = errors.New("protocol: invalid packet header")

// ErrInvalidSize is returned by Decode when the declared payload length
// does not match the number of remaining bytes.
var ErrInvalidSize = errors.New("protocol: invalid packet size")

// Packet is a single decoded wire packet: an ID and its raw payload.
type Packet struct {
	ID      ID
	Payload []byte
}

// header is the fixed, struc-packed portion of the wire format:
//
//	[MAGIC (2 bytes), ID (1 byte), LEN (2 bytes, big-endian)]
type header struct {
	Magic [2]byte
	ID    uint8
	Len   uint16 `struc:"big"`
}

// knownIDs enumerates every ID Decode will accept. Entries absent from this
// set cause Decode to fail with ErrInvalidHeader, since an unrecognized ID
// is as likely to be foreign traffic as a Magic mismatch.
var knownIDs = map[ID]bool{
	Ping: true, Info: true,
	UpdateAnalog: true, UpdateDigital: true, UpdateMatrix: true,
	Ack: true,
	WiFiConnect: true, WiFiAP: true,
}

// Encode serializes a Packet with the given id and payload to its wire
// representation.
func Encode(id ID, payload []byte) []byte {
	w := bytes.NewBuffer(make([]byte, 0, headerSize+len(payload)))

	h := header{Magic: Magic, ID: uint8(id), Len: uint16(len(payload))}
	// struc.Pack cannot fail against a bytes.Buffer; the error is only
	// possible for malformed struct tags, which is a programmer error.
	if err := struc.Pack(w, &h); err != nil {
		panic(errors.Wrap(err, "protocol: failed to pack header"))
	}
	w.Write(payload)
	return w.Bytes()
}

// Decode parses a wire datagram into a Packet.
//
// Decode fails with ErrInvalidHeader if data is too short to contain a
// header, the magic marker is absent, or the ID is unrecognized. It fails
// with ErrInvalidSize if the declared length does not match the number of
// remaining bytes.
func Decode(data []byte) (Packet, error) {
	if len(data) < headerSize {
		return Packet{}, errors.Wrap(ErrInvalidHeader, "datagram shorter than header")
	}

	var h header
	if err := struc.Unpack(bytes.NewReader(data[:headerSize]), &h); err != nil {
		// struc only fails here on a short read, which we've already ruled out.
		return Packet{}, errors.Wrap(ErrInvalidHeader, err.Error())
	}

	if h.Magic != Magic {
		return Packet{}, errors.Wrap(ErrInvalidHeader, "magic mismatch")
	}
	if !knownIDs[ID(h.ID)] {
		return Packet{}, errors.Wrapf(ErrInvalidHeader, "unknown packet id 0x%02x", h.ID)
	}

	payload := data[headerSize:]
	if int(h.Len) != len(payload) {
		return Packet{}, errors.Wrapf(ErrInvalidSize,
			"declared length %d does not match remaining %d bytes", h.Len, len(payload))
	}

	return Packet{ID: ID(h.ID), Payload: payload}, nil
}
