// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Command hub runs the AlexaHub process: it discovers and tracks light
// nodes over UDP, and exposes a line-framed TCP shim for a cloud voice
// front-end to issue directives against them.
package main

import (
	"net"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/EricMiddleton1/AlexaHub/cloudtcp"
	"github.com/EricMiddleton1/AlexaHub/directive"
	"github.com/EricMiddleton1/AlexaHub/hub"
	"github.com/EricMiddleton1/AlexaHub/node"
)

var (
	discoveryPort   = pflag.Int("discovery-port", 5492, "UDP port for node discovery and control.")
	cloudPort       = pflag.Int("cloud-port", 8080, "TCP port for the cloud directive shim.")
	discoveryPeriod = pflag.Duration("discovery-period", 3*time.Second, "Interval between discovery broadcasts.")
	connectTimeout  = pflag.Duration("connect-timeout", time.Second, "Per-attempt timeout while connecting to a node.")
	sendTimeout     = pflag.Duration("send-timeout", time.Second, "Timeout before retransmitting an unacked packet.")
	recvTimeout     = pflag.Duration("recv-timeout", 3*time.Second, "Idle time before a Connected node is declared disconnected.")
	retryCount      = pflag.Int("retry-count", 3, "Connect/send attempts before giving up on a node.")
	logLevel        = pflag.String("log-level", "info", "Log level: debug, info, warn, or error.")
)

func main() {
	pflag.Parse()

	logger, err := newLogger(*logLevel)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	if err := run(sugar); err != nil {
		sugar.Errorf("hub: fatal error: %s", err)
		os.Exit(1)
	}
}

func run(logger *zap.SugaredLogger) error {
	hub.RegisterMonitoring(prometheus.DefaultRegisterer)

	h, err := hub.New(hub.Config{
		Port:            *discoveryPort,
		DiscoveryPeriod: *discoveryPeriod,
		NodeOptions: node.Options{
			ConnectTimeout: *connectTimeout,
			SendTimeout:    *sendTimeout,
			RecvTimeout:    *recvTimeout,
			RetryCount:     *retryCount,
		},
		Logger: logger,
		OnNodeDiscover: func(n *node.LightNode) {
			logger.Infof("hub: discovered node %q at %s with %d strips", n.Name(), n.Addr(), len(n.Strips()))
		},
	})
	if err != nil {
		return errors.Wrap(err, "failed to start hub")
	}
	defer h.Close()

	adapter := &directive.Adapter{Hub: h}

	server, err := cloudtcp.Listen(cloudListenAddr(*cloudPort), adapter.Handle)
	if err != nil {
		return errors.Wrap(err, "failed to start cloud TCP shim")
	}
	server.Logger = logger
	defer server.Close()

	logger.Infof("hub: listening for nodes on UDP %d, cloud directives on TCP %d", *discoveryPort, *cloudPort)
	return server.Serve()
}

func cloudListenAddr(port int) string {
	return net.JoinHostPort("", strconv.Itoa(port))
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}
	return cfg.Build()
}
