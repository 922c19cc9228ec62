// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package hub

import (
	"context"
	"fmt"
	"net"
	"syscall"

	"github.com/pkg/errors"
)

// openSocket opens the hub's single UDP socket, bound to port on every
// interface, with SO_REUSEADDR (so a restarted hub can rebind promptly)
// and SO_BROADCAST (required to transmit to the L3 broadcast address)
// set before bind.
//
// No library in the dependency set exposes these socket options; setting
// them is inherent OS socket configuration with no third-party
// equivalent, so this is one of the few places the core reaches directly
// into syscall.
func openSocket(port int) (*net.UDPConn, error) {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var sockErr error
			if err := c.Control(func(fd uintptr) {
				if sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1); sockErr != nil {
					return
				}
				sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_BROADCAST, 1)
			}); err != nil {
				return err
			}
			return sockErr
		},
	}

	pc, err := lc.ListenPacket(context.Background(), "udp4", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open discovery socket on port %d", port)
	}

	conn, ok := pc.(*net.UDPConn)
	if !ok {
		pc.Close()
		return nil, errors.New("discovery socket is not a UDP connection")
	}
	return conn, nil
}
