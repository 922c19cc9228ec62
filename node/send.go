// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package node

import "github.com/EricMiddleton1/AlexaHub/protocol"

// send enqueues payload under id for reliable delivery, keyed by key.
//
// If a packet with the same key is already queued (but not yet in
// flight), it is replaced: the protocol carries full snapshots, so only
// the newest state under a given key is ever useful. A packet already in
// flight under key is left to complete its own retry cycle; the newer
// state will be sent once that cycle resolves.
func (n *LightNode) send(key uint64, id protocol.ID, payload []byte) {
	n.queueMu.Lock()
	if _, exists := n.queue[key]; !exists {
		n.queueOrder = append(n.queueOrder, key)
	}
	n.queue[key] = &pendingPacket{key: key, id: id, payload: payload}
	n.queueMu.Unlock()

	n.pump()
}

// pump dispatches the next queued packet if nothing is currently in
// flight.
func (n *LightNode) pump() {
	n.queueMu.Lock()
	if n.inflight != nil || len(n.queueOrder) == 0 {
		n.queueMu.Unlock()
		return
	}

	key := n.queueOrder[0]
	n.queueOrder = n.queueOrder[1:]
	pp := n.queue[key]
	delete(n.queue, key)
	n.inflight = pp
	n.sendAttempts = 0
	n.queueMu.Unlock()

	n.transmit(pp)
}

func (n *LightNode) transmit(pp *pendingPacket) {
	n.sendAttempts++
	if err := n.sender.SendTo(n.addr, protocol.Encode(pp.id, pp.payload)); err != nil {
		n.logger().Warnf("node %s: failed to send %s: %s", n.name, pp.id, err)
	}
	n.sendWatchdog.Start(n.opts.SendTimeout, func() { n.onSendTimeout(pp) })
}

func (n *LightNode) onSendTimeout(pp *pendingPacket) {
	n.queueMu.Lock()
	if n.inflight != pp {
		// Already acked (or this is a stale timer firing after a fresh
		// pump); nothing to do.
		n.queueMu.Unlock()
		return
	}

	if n.sendAttempts >= n.opts.RetryCount {
		n.inflight = nil
		n.queue = make(map[uint64]*pendingPacket)
		n.queueOrder = nil
		n.queueMu.Unlock()

		n.setState(Disconnected)
		return
	}
	n.queueMu.Unlock()

	n.transmit(pp)
}

// handleAck completes the in-flight send if its id matches, then
// dispatches the next queued packet.
func (n *LightNode) handleAck(id protocol.ID) {
	n.queueMu.Lock()
	if n.inflight == nil || n.inflight.id != id {
		n.queueMu.Unlock()
		return
	}
	n.inflight = nil
	n.queueMu.Unlock()

	n.sendWatchdog.Cancel()
	n.pump()
}
