// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package protocol

import (
	"github.com/pkg/errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Packet codec", func() {
	It("round-trips for all valid (id, payload) pairs", func() {
		for _, id := range []ID{Ping, Info, UpdateAnalog, UpdateDigital, UpdateMatrix, Ack, WiFiConnect, WiFiAP} {
			for _, payload := range [][]byte{nil, {}, {0x01}, bytes(256)} {
				data := Encode(id, payload)
				pkt, err := Decode(data)
				Expect(err).ToNot(HaveOccurred())
				Expect(pkt.ID).To(Equal(id))
				if len(payload) == 0 {
					Expect(pkt.Payload).To(BeEmpty())
				} else {
					Expect(pkt.Payload).To(Equal(payload))
				}
			}
		}
	})

	It("rejects a datagram with no magic", func() {
		data := Encode(Ping, nil)
		data[0] ^= 0xFF

		_, err := Decode(data)
		Expect(err).To(HaveOccurred())
		Expect(errors.Cause(err)).To(Equal(ErrInvalidHeader))
	})

	It("rejects an unknown packet ID", func() {
		data := Encode(Ping, nil)
		data[2] = 0xEE // Corrupt the ID byte.

		_, err := Decode(data)
		Expect(err).To(HaveOccurred())
		Expect(errors.Cause(err)).To(Equal(ErrInvalidHeader))
	})

	It("rejects a declared length that does not match the payload", func() {
		data := Encode(Info, []byte{0x01, 0x02, 0x03})
		data = data[:len(data)-1] // Truncate a payload byte without fixing LEN.

		_, err := Decode(data)
		Expect(err).To(HaveOccurred())
		Expect(errors.Cause(err)).To(Equal(ErrInvalidSize))
	})

	It("rejects a datagram shorter than the header", func() {
		_, err := Decode([]byte{0xA1})
		Expect(err).To(HaveOccurred())
		Expect(errors.Cause(err)).To(Equal(ErrInvalidHeader))
	})

	It("ignores foreign traffic without a magic marker", func() {
		_, err := Decode([]byte("GET / HTTP/1.1\r\n"))
		Expect(err).To(HaveOccurred())
	})
})

func bytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}
