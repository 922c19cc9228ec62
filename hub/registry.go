// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package hub

import (
	"net"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/EricMiddleton1/AlexaHub/node"
)

// ErrNotFound is returned by registry lookups that match nothing.
var ErrNotFound = errors.New("hub: not found")

// registry is the fleet of known nodes, keyed by both address and name;
// both keys are unique. It is read-mostly: discovery adds entries far
// less often than directive handlers and the wire dispatch loop read
// them.
type registry struct {
	mu     sync.RWMutex
	byAddr map[string]*node.LightNode
	byName map[string]*node.LightNode
}

func newRegistry() *registry {
	return &registry{
		byAddr: make(map[string]*node.LightNode),
		byName: make(map[string]*node.LightNode),
	}
}

// add registers n under both its address and its name. If either key is
// already taken by a different node, add replaces that registration —
// discovery payloads are treated as authoritative for the sender that
// produced them.
func (r *registry) add(n *node.LightNode) {
	r.mu.Lock()
	defer r.mu.Unlock()

	addrKey := n.Addr().String()
	if old, ok := r.byAddr[addrKey]; ok && old != n && r.byName[old.Name()] == old {
		delete(r.byName, old.Name())
	}
	if old, ok := r.byName[n.Name()]; ok && old != n && r.byAddr[old.Addr().String()] == old {
		delete(r.byAddr, old.Addr().String())
	}

	r.byAddr[addrKey] = n
	r.byName[n.Name()] = n
}

// getByAddress returns the node registered for addr, or ErrNotFound.
func (r *registry) getByAddress(addr *net.UDPAddr) (*node.LightNode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.byAddr[addr.String()]
	if !ok {
		return nil, ErrNotFound
	}
	return n, nil
}

// getByName returns the node registered under name, or ErrNotFound.
func (r *registry) getByName(name string) (*node.LightNode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.byName[name]
	if !ok {
		return nil, ErrNotFound
	}
	return n, nil
}

// nodes returns a snapshot of every registered node, sorted by name for
// deterministic iteration.
func (r *registry) nodes() []*node.LightNode {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*node.LightNode, 0, len(r.byName))
	for _, n := range r.byName {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// connectedCount counts nodes whose state is Connected.
func (r *registry) connectedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, n := range r.byName {
		if n.State() == node.Connected {
			count++
		}
	}
	return count
}

// size returns the number of registered nodes.
func (r *registry) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}
