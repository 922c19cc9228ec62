// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package hub implements LightHub, the fleet registry and discovery loop
// that binds the node protocol together: it owns the single UDP socket,
// periodically broadcasts for nodes, and demultiplexes inbound datagrams
// to the node they came from.
package hub

import (
	"net"
	"time"

	"github.com/EricMiddleton1/AlexaHub/node"
	"github.com/EricMiddleton1/AlexaHub/protocol"
	"github.com/EricMiddleton1/AlexaHub/support/fmtutil"
	"github.com/EricMiddleton1/AlexaHub/support/logging"
	"github.com/EricMiddleton1/AlexaHub/support/network"
	"github.com/EricMiddleton1/AlexaHub/timer"
)

// Config configures a LightHub.
type Config struct {
	// Port is the UDP port the hub listens and sends discovery traffic on.
	Port int
	// DiscoveryPeriod is the interval between discover() broadcasts.
	DiscoveryPeriod time.Duration
	// NodeOptions configures the per-node connection state machine.
	NodeOptions node.Options
	// Logger, if not nil, receives warnings about malformed Info payloads and
	// failed discovery broadcasts, and debug logs about foreign traffic.
	Logger logging.L
	// OnNodeDiscover, if not nil, is invoked whenever a new node is
	// registered from a parsed Info payload.
	OnNodeDiscover func(*node.LightNode)
}

// DefaultConfig returns a Config using the historical discovery port and
// a 3-second discovery period.
func DefaultConfig() Config {
	return Config{
		Port:            5492,
		DiscoveryPeriod: 3 * time.Second,
		NodeOptions:     node.DefaultOptions(),
	}
}

// LightHub is the fleet registry and discovery loop.
type LightHub struct {
	cfg  Config
	conn *net.UDPConn
	reg  *registry

	broadcastAddr *net.UDPAddr
	discoveryLoop *timer.PeriodicTimer
}

// New opens the hub's UDP socket, performs an initial discover(), and
// starts both the periodic discovery loop and the inbound receive loop.
func New(cfg Config) (*LightHub, error) {
	conn, err := openSocket(cfg.Port)
	if err != nil {
		return nil, err
	}

	h := &LightHub{
		cfg:  cfg,
		conn: conn,
		reg:  newRegistry(),
		broadcastAddr: &net.UDPAddr{
			IP:   network.AllHostsMulticastIP4Address(),
			Port: cfg.Port,
		},
	}

	go h.recvLoop()

	h.discover()
	h.discoveryLoop = timer.StartPeriodic(cfg.DiscoveryPeriod, h.discover)

	return h, nil
}

// Close tears down the discovery loop and closes the UDP socket. Nodes'
// own timers are unaffected; a LightHub is not normally recreated within
// a process, so per-node teardown is left to process exit.
func (h *LightHub) Close() error {
	h.discoveryLoop.Cancel()
	return h.conn.Close()
}

// SendTo implements node.PacketSender by writing directly to the hub's
// shared socket.
func (h *LightHub) SendTo(addr *net.UDPAddr, data []byte) error {
	_, err := h.conn.WriteToUDP(data, addr)
	return err
}

// discover broadcasts a Ping to the L3 broadcast address on the
// configured port.
func (h *LightHub) discover() {
	if _, err := h.conn.WriteToUDP(protocol.Encode(protocol.Ping, nil), h.broadcastAddr); err != nil {
		discoverySendErrors.Inc()
		h.logger().Warnf("hub: failed to broadcast discovery ping: %s", err)
	}
}

func (h *LightHub) logger() logging.L { return logging.Must(h.cfg.Logger) }

// recvLoop services the hub's single outstanding read. Each datagram is
// decoded, routed to its owning node if known, or treated as a fresh
// Info reply otherwise.
func (h *LightHub) recvLoop() {
	buf := make([]byte, network.MaxUDPSize)
	for {
		n, addr, err := h.conn.ReadFromUDP(buf)
		if err != nil {
			// The socket has been closed; stop servicing reads.
			return
		}

		udpAddr, ok := addr.(*net.UDPAddr)
		if !ok {
			continue
		}
		h.handleDatagram(udpAddr, append([]byte(nil), buf[:n]...))
	}
}

func (h *LightHub) handleDatagram(addr *net.UDPAddr, data []byte) {
	pkt, err := protocol.Decode(data)
	if err != nil {
		// Foreign traffic sharing the broadcast domain; log and ignore.
		foreignDatagrams.Inc()
		h.logger().Debugf("hub: dropping undecodable datagram from %s: %s\n%s", addr, err, fmtutil.Hex(data))
		return
	}

	if n, err := h.reg.getByAddress(addr); err == nil {
		n.HandlePacket(pkt)
		h.updateNodeMetrics()
		return
	}

	if pkt.ID != protocol.Info {
		return
	}
	h.handleInfo(addr, pkt.Payload)
}

func (h *LightHub) handleInfo(addr *net.UDPAddr, payload []byte) {
	name, strips, err := parseInfoPayload(payload)
	if err != nil {
		h.logger().Warnf("hub: invalid Info payload from %s: %s", addr, err)
		return
	}

	n := node.New(name, addr, h, strips, h.cfg.NodeOptions)
	n.OnStateChange = func(_, current node.State) { nodeStateGauge.WithLabelValues(name).Set(float64(current)) }

	h.reg.add(n)
	registrySizeGauge.Set(float64(h.reg.size()))
	registryConnectedGauge.Set(float64(h.reg.connectedCount()))

	if cb := h.cfg.OnNodeDiscover; cb != nil {
		cb(n)
	}
}

func (h *LightHub) updateNodeMetrics() {
	registryConnectedGauge.Set(float64(h.reg.connectedCount()))
}

// GetNodeByName performs an exact-match lookup by node name.
func (h *LightHub) GetNodeByName(name string) (*node.LightNode, error) { return h.reg.getByName(name) }

// GetNodeByAddress performs an exact-match lookup by node address.
func (h *LightHub) GetNodeByAddress(addr *net.UDPAddr) (*node.LightNode, error) {
	return h.reg.getByAddress(addr)
}

// Nodes returns a snapshot of every registered node.
func (h *LightHub) Nodes() []*node.LightNode { return h.reg.nodes() }

// ConnectedCount returns the number of nodes currently Connected.
func (h *LightHub) ConnectedCount() int { return h.reg.connectedCount() }
