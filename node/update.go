// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package node

import (
	"github.com/EricMiddleton1/AlexaHub/color"
	"github.com/EricMiddleton1/AlexaHub/protocol"
	"github.com/EricMiddleton1/AlexaHub/strip"
)

// Update reads the committed pixel state of every strip and enqueues one
// reliable update packet per strip. A fresh Update for a strip whose
// prior update is still queued (but not yet in flight) supersedes it.
func (n *LightNode) Update() {
	for i, s := range n.strips {
		n.updateStrip(i, s)
	}
}

// updateKey gives each strip index its own coalescing key, offset by one
// so it never collides with wifiConnectKey (0) or wifiAPKey (all-ones).
func updateKey(stripIndex int) uint64 { return uint64(stripIndex) + 1 }

func (n *LightNode) updateStrip(index int, s *strip.LightStrip) {
	pixels := s.ReadCommitted()

	switch s.StripType() {
	case strip.Analog:
		c := color.Black
		if len(pixels) > 0 {
			c = pixels[0]
		}
		payload := []byte{byte(index), c.Red, c.Green, c.Blue}
		n.send(updateKey(index), protocol.UpdateAnalog, payload)

	case strip.Digital:
		count := len(pixels)
		payload := make([]byte, 3, 3+count*3)
		payload[0] = byte(index)
		payload[1] = byte(count >> 8)
		payload[2] = byte(count)
		for _, c := range pixels {
			payload = append(payload, c.Red, c.Green, c.Blue)
		}
		n.send(updateKey(index), protocol.UpdateDigital, payload)

	case strip.Matrix:
		w, h := s.Dimensions()
		payload := make([]byte, 3, 3+w*h*3)
		payload[0] = byte(index)
		payload[1] = byte(w)
		payload[2] = byte(h)
		for _, c := range pixels {
			payload = append(payload, c.Red, c.Green, c.Blue)
		}
		n.send(updateKey(index), protocol.UpdateMatrix, payload)
	}
}
