// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package hub

import "github.com/prometheus/client_golang/prometheus"

var (
	registrySizeGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hub_registered_nodes",
		Help: "Count of light nodes currently known to the hub registry.",
	})

	registryConnectedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hub_connected_nodes",
		Help: "Count of light nodes currently in the Connected state.",
	})

	nodeStateGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hub_node_state",
		Help: "Connection state of a node: 0=Disconnected, 1=Connecting, 2=Connected.",
	},
		[]string{"node"})

	discoverySendErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hub_discovery_send_errors",
		Help: "Count of errors encountered broadcasting discovery Pings.",
	})

	foreignDatagrams = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hub_foreign_datagrams",
		Help: "Count of datagrams dropped for failing to decode as a node packet.",
	})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		registrySizeGauge,
		registryConnectedGauge,
		nodeStateGauge,
		discoverySendErrors,
		foreignDatagrams,
	)
}
