// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package cloudtcp implements the line-framed TCP shim the cloud voice
// front-end speaks: one client at a time, messages delimited by
// "\r\n\r\n", an empty reply closing the connection.
package cloudtcp

import (
	"bytes"
	"net"

	"github.com/EricMiddleton1/AlexaHub/support/logging"
)

// delimiter terminates every inbound and outbound message.
const delimiter = "\r\n\r\n"

// Handler processes one framed message and returns the framed reply. An
// empty return value closes the connection.
type Handler func(message []byte) []byte

// Server accepts one client at a time on a TCP port and frames messages
// with Handler.
type Server struct {
	// Logger, if not nil, receives connection lifecycle and I/O errors.
	Logger logging.L

	ln      net.Listener
	handler Handler
}

// Listen opens addr and returns a Server ready to Serve.
func Listen(addr string, handler Handler) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{ln: ln, handler: handler}, nil
}

// Addr returns the server's bound address.
func (s *Server) Addr() net.Addr { return s.ln.Addr() }

// Close stops accepting new connections.
func (s *Server) Close() error { return s.ln.Close() }

// Serve accepts connections until Close is called, handling exactly one
// client connection at a time — a second client cannot connect until the
// first disconnects, matching the historical cloud shim's single-socket
// design.
func (s *Server) Serve() error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return err
		}
		s.serveOne(conn)
	}
}

func (s *Server) logger() logging.L { return logging.Must(s.Logger) }

// serveOne services a single client connection to completion before
// returning to Accept, per the shim's one-client-at-a-time contract.
func (s *Server) serveOne(conn net.Conn) {
	defer conn.Close()

	var buf bytes.Buffer
	readBuf := make([]byte, 4096)

	for {
		n, err := conn.Read(readBuf)
		if err != nil {
			if n == 0 {
				s.logger().Infof("cloudtcp: client %s disconnected: %s", conn.RemoteAddr(), err)
				return
			}
		}
		buf.Write(readBuf[:n])

		for {
			msg, ok := splitMessage(&buf)
			if !ok {
				break
			}

			reply := s.handler(msg)
			if len(reply) == 0 {
				s.logger().Infof("cloudtcp: empty reply, closing connection to %s", conn.RemoteAddr())
				return
			}

			if _, err := conn.Write(append(reply, delimiter...)); err != nil {
				s.logger().Warnf("cloudtcp: failed to write reply to %s: %s", conn.RemoteAddr(), err)
				return
			}
		}

		if err != nil {
			return
		}
	}
}

// splitMessage pulls one "\r\n\r\n"-terminated message off the front of
// buf, if one is present.
func splitMessage(buf *bytes.Buffer) (msg []byte, ok bool) {
	data := buf.Bytes()
	idx := bytes.Index(data, []byte(delimiter))
	if idx < 0 {
		return nil, false
	}

	msg = append([]byte(nil), data[:idx]...)
	remaining := append([]byte(nil), data[idx+len(delimiter):]...)
	buf.Reset()
	buf.Write(remaining)
	return msg, true
}
