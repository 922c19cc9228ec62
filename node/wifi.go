// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package node

import (
	"bytes"

	"github.com/EricMiddleton1/AlexaHub/protocol"
	"github.com/EricMiddleton1/AlexaHub/support/dataio"
)

// wifiConnectKey and wifiAPKey are fixed coalescing keys: only the most
// recently requested WiFi command of each kind is meaningful.
const (
	wifiConnectKey uint64 = 0
	wifiAPKey      uint64 = ^uint64(0)
)

// WiFiConnect instructs the node to join an access point. Semantics are
// node-defined; the core only guarantees reliable delivery of the
// request.
func (n *LightNode) WiFiConnect(ssid, psk string) {
	n.send(wifiConnectKey, protocol.WiFiConnect, wifiCredentialPayload(ssid, psk))
}

// WiFiStartAP instructs the node to host its own access point.
func (n *LightNode) WiFiStartAP(ssid, psk string) {
	n.send(wifiAPKey, protocol.WiFiAP, wifiCredentialPayload(ssid, psk))
}

// wifiCredentialPayload packs ssid and psk as back-to-back
// NUL-terminated strings.
func wifiCredentialPayload(ssid, psk string) []byte {
	var buf bytes.Buffer
	w := dataio.MakeWriter(&buf)

	w.Write([]byte(ssid))
	w.WriteByte(0)
	w.Write([]byte(psk))
	w.WriteByte(0)

	return buf.Bytes()
}
