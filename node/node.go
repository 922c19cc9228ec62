// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package node implements LightNode, the per-device connection state
// machine and reliable packet transport spoken between the hub and a
// single light node.
package node

import (
	"net"
	"sync"
	"time"

	"github.com/EricMiddleton1/AlexaHub/protocol"
	"github.com/EricMiddleton1/AlexaHub/strip"
	"github.com/EricMiddleton1/AlexaHub/support/logging"
	"github.com/EricMiddleton1/AlexaHub/timer"
)

// State is a LightNode's position in the connection state machine.
type State int

const (
	// Disconnected is the state a node enters when its connect retries are
	// exhausted or its receive watchdog expires. The hub keeps the node's
	// registry entry; a subsequent Ping reply restores it to Connected.
	Disconnected State = iota
	// Connecting is the initial state. A connect probe is retried on
	// ConnectTimeout until a reply arrives or RetryCount attempts are spent.
	Connecting
	// Connected is entered on the node's first reply. Every received packet
	// resets the receive watchdog while in this state.
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "DISCONNECTED"
	case Connecting:
		return "CONNECTING"
	case Connected:
		return "CONNECTED"
	default:
		return "UNKNOWN"
	}
}

// PacketSender sends a raw datagram to a node's address. The hub's UDP
// socket satisfies this; nodes do not own their own sockets.
type PacketSender interface {
	SendTo(addr *net.UDPAddr, data []byte) error
}

// Options configures the protocol timing constants for a LightNode.
type Options struct {
	// ConnectTimeout is how long to wait for a connect reply before
	// retrying the probe.
	ConnectTimeout time.Duration
	// SendTimeout is how long to wait for an Ack before retransmitting.
	SendTimeout time.Duration
	// RecvTimeout is how long a Connected node may go without receiving any
	// packet before it is declared Disconnected.
	RecvTimeout time.Duration
	// RetryCount is the number of connect or send attempts before giving up.
	RetryCount int
}

// DefaultOptions returns the historical AlexaHub protocol constants:
// CONNECT_TIMEOUT=1s, SEND_TIMEOUT=1s, RECV_TIMEOUT=3s,
// PACKET_RETRY_COUNT=3.
func DefaultOptions() Options {
	return Options{
		ConnectTimeout: time.Second,
		SendTimeout:    time.Second,
		RecvTimeout:    3 * time.Second,
		RetryCount:     3,
	}
}

// pendingPacket is one packet waiting to be sent or currently in flight.
type pendingPacket struct {
	key     uint64
	id      protocol.ID
	payload []byte
}

// LightNode tracks the connection state of, and reliably delivers packets
// to, a single light node.
type LightNode struct {
	// Logger, if not nil, is used for warnings about foreign/lost packets.
	Logger logging.L
	// OnStateChange, if not nil, is invoked synchronously after every state
	// transition with the previous and new State.
	OnStateChange func(previous, current State)

	name   string
	addr   *net.UDPAddr
	sender PacketSender
	opts   Options
	strips []*strip.LightStrip

	stateMu sync.Mutex
	state   State

	connectWatchdog timer.WatchdogTimer
	connectAttempts int

	recvWatchdog timer.WatchdogTimer

	sendWatchdog timer.WatchdogTimer
	queueMu      sync.Mutex
	queueOrder   []uint64
	queue        map[uint64]*pendingPacket
	inflight     *pendingPacket
	sendAttempts int
}

// New constructs a LightNode for addr and begins its connect handshake
// immediately. strips is the ordered set of strips this node reports;
// strip index within the node protocol is the slice index.
func New(name string, addr *net.UDPAddr, sender PacketSender, strips []*strip.LightStrip, opts Options) *LightNode {
	n := &LightNode{
		name:   name,
		addr:   addr,
		sender: sender,
		opts:   opts,
		strips: strips,
		state:  Connecting,
		queue:  make(map[uint64]*pendingPacket),
	}
	n.beginConnect()
	return n
}

// Name returns the node's reported name.
func (n *LightNode) Name() string { return n.name }

// Addr returns the node's UDP address.
func (n *LightNode) Addr() *net.UDPAddr { return n.addr }

// Strips returns the node's strips in protocol index order.
func (n *LightNode) Strips() []*strip.LightStrip { return n.strips }

// State returns the node's current connection state.
func (n *LightNode) State() State {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.state
}

func (n *LightNode) setState(s State) {
	n.stateMu.Lock()
	prev := n.state
	if prev == s {
		n.stateMu.Unlock()
		return
	}
	n.state = s
	n.stateMu.Unlock()

	if cb := n.OnStateChange; cb != nil {
		cb(prev, s)
	}
}

func (n *LightNode) logger() logging.L { return logging.Must(n.Logger) }

// beginConnect arms the connect handshake: a Ping is sent immediately and
// resent every ConnectTimeout, for opts.RetryCount probes in total
// (including the first) before the node is declared Disconnected.
func (n *LightNode) beginConnect() {
	n.connectAttempts = 0
	n.sendConnectProbe()
}

func (n *LightNode) sendConnectProbe() {
	n.connectAttempts++
	if err := n.sender.SendTo(n.addr, protocol.Encode(protocol.Ping, nil)); err != nil {
		n.logger().Warnf("node %s: failed to send connect probe: %s", n.name, err)
	}
	n.connectWatchdog.Start(n.opts.ConnectTimeout, n.onConnectTimeout)
}

func (n *LightNode) onConnectTimeout() {
	if n.State() != Connecting {
		return
	}
	if n.connectAttempts >= n.opts.RetryCount {
		n.setState(Disconnected)
		return
	}
	n.sendConnectProbe()
}

func (n *LightNode) completeConnect() {
	n.connectWatchdog.Cancel()
	n.recvWatchdog.Start(n.opts.RecvTimeout, n.onRecvTimeout)
	n.setState(Connected)
}

func (n *LightNode) onRecvTimeout() {
	n.recvWatchdog.Cancel()
	n.setState(Disconnected)
}

// HandlePacket delivers a packet received from this node's address. It
// resets the receive watchdog, advances Connecting (or Disconnected) to
// Connected on the first reply, and dispatches Ack handling to the send
// pipeline.
func (n *LightNode) HandlePacket(pkt protocol.Packet) {
	switch n.State() {
	case Connecting, Disconnected:
		n.completeConnect()
	case Connected:
		n.recvWatchdog.Reset(n.opts.RecvTimeout)
	}

	if pkt.ID == protocol.Ack {
		if len(pkt.Payload) < 1 {
			return
		}
		n.handleAck(protocol.ID(pkt.Payload[0]))
	}
}
