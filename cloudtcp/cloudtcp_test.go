// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package cloudtcp

import (
	"bufio"
	"net"
	"testing"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func dial(addr net.Addr) net.Conn {
	conn, err := net.DialTimeout("tcp", addr.String(), time.Second)
	Expect(err).ToNot(HaveOccurred())
	return conn
}

func readFramedMessage(conn net.Conn) string {
	r := bufio.NewReader(conn)
	var msg []byte
	for {
		line, err := r.ReadString('\n')
		Expect(err).ToNot(HaveOccurred())
		msg = append(msg, line...)
		if len(msg) >= 4 && string(msg[len(msg)-4:]) == "\r\n\r\n" {
			return string(msg[:len(msg)-4])
		}
	}
}

var _ = Describe("cloudtcp.Server", func() {
	var s *Server

	AfterEach(func() { s.Close() })

	It("frames a reply and keeps the connection open for a non-empty reply", func() {
		var err error
		s, err = Listen("127.0.0.1:0", func(message []byte) []byte {
			return append([]byte("echo:"), message...)
		})
		Expect(err).ToNot(HaveOccurred())
		go s.Serve()

		conn := dial(s.Addr())
		defer conn.Close()

		_, err = conn.Write([]byte("hello\r\n\r\n"))
		Expect(err).ToNot(HaveOccurred())

		Expect(readFramedMessage(conn)).To(Equal("echo:hello"))

		_, err = conn.Write([]byte("again\r\n\r\n"))
		Expect(err).ToNot(HaveOccurred())
		Expect(readFramedMessage(conn)).To(Equal("echo:again"))
	})

	It("closes the connection when the handler returns an empty reply", func() {
		var err error
		s, err = Listen("127.0.0.1:0", func(message []byte) []byte { return nil })
		Expect(err).ToNot(HaveOccurred())
		go s.Serve()

		conn := dial(s.Addr())
		defer conn.Close()

		_, err = conn.Write([]byte("bye\r\n\r\n"))
		Expect(err).ToNot(HaveOccurred())

		buf := make([]byte, 16)
		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, err = conn.Read(buf)
		Expect(err).To(HaveOccurred()) // EOF: server closed its end.
	})

	It("splits back-to-back messages delivered in a single read", func() {
		var received []string
		var err error
		s, err = Listen("127.0.0.1:0", func(message []byte) []byte {
			received = append(received, string(message))
			return []byte("ok")
		})
		Expect(err).ToNot(HaveOccurred())
		go s.Serve()

		conn := dial(s.Addr())
		defer conn.Close()

		_, err = conn.Write([]byte("first\r\n\r\nsecond\r\n\r\n"))
		Expect(err).ToNot(HaveOccurred())

		Expect(readFramedMessage(conn)).To(Equal("ok"))
		Expect(readFramedMessage(conn)).To(Equal("ok"))
		Eventually(func() []string { return received }).Should(Equal([]string{"first", "second"}))
	})

	It("serves only one client at a time", func() {
		var err error
		s, err = Listen("127.0.0.1:0", func(message []byte) []byte {
			return append([]byte("echo:"), message...)
		})
		Expect(err).ToNot(HaveOccurred())
		go s.Serve()

		first := dial(s.Addr())
		defer first.Close()

		second := dial(s.Addr())
		defer second.Close()

		_, err = first.Write([]byte("ping\r\n\r\n"))
		Expect(err).ToNot(HaveOccurred())
		Expect(readFramedMessage(first)).To(Equal("echo:ping"))

		second.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		buf := make([]byte, 1)
		_, err = second.Read(buf)
		Expect(err).To(HaveOccurred()) // No reply: second connection isn't served yet.
	})
})

func TestCloudTCP(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "CloudTCP Tests")
}
