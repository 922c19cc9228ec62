// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package directive

import (
	"encoding/json"
	"net"
	"testing"

	"github.com/EricMiddleton1/AlexaHub/color"
	"github.com/EricMiddleton1/AlexaHub/node"
	"github.com/EricMiddleton1/AlexaHub/strip"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

type nopSender struct{}

func (nopSender) SendTo(*net.UDPAddr, []byte) error { return nil }

type fakeHub struct {
	n []*node.LightNode
}

func (f *fakeHub) Nodes() []*node.LightNode { return f.n }

var testAddr = &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 5492}

func newTestNode(name string, strips ...*strip.LightStrip) *node.LightNode {
	return node.New(name, testAddr, nopSender{}, strips, node.DefaultOptions())
}

var _ = Describe("Directive adapter", func() {
	var lamp *node.LightNode
	var a *Adapter

	BeforeEach(func() {
		lamp = newTestNode("porch", strip.NewDigital(10))
		a = &Adapter{Hub: &fakeHub{n: []*node.LightNode{lamp}}}
	})

	It("discovers lights using a <node>:<index> endpoint id and friendly name", func() {
		resp := a.Handle([]byte(`{"directive":{"header":{"namespace":"Alexa.Discovery","name":"Discover"}}}`))

		var decoded map[string]interface{}
		Expect(json.Unmarshal(resp, &decoded)).To(Succeed())

		event := decoded["event"].(map[string]interface{})
		Expect(event["header"].(map[string]interface{})["name"]).To(Equal("Discover.Response"))

		endpoints := event["payload"].(map[string]interface{})["endpoints"].([]interface{})
		Expect(endpoints).To(HaveLen(1))

		ep := endpoints[0].(map[string]interface{})
		Expect(ep["endpointId"]).To(Equal("porch:0"))
		Expect(ep["friendlyName"]).To(Equal("porch 0"))
	})

	It("turns a light on by setting every pixel to full white, even if it was off", func() {
		Expect(lamp.Strips()[0].SetAll(color.Black)).To(Succeed())

		resp := a.Handle([]byte(`{"directive":{"header":{"namespace":"Alexa.PowerController","name":"TurnOn","messageId":"m1"},"endpoint":{"endpointId":"porch:0"}}}`))

		var decoded map[string]interface{}
		Expect(json.Unmarshal(resp, &decoded)).To(Succeed())
		event := decoded["event"].(map[string]interface{})
		Expect(event["header"].(map[string]interface{})["name"]).To(Equal("Response"))

		for _, c := range lamp.Strips()[0].ReadCommitted() {
			Expect(c).To(Equal(color.White))
		}
	})

	It("turns a light off by setting every pixel to black", func() {
		Expect(lamp.Strips()[0].SetAll(color.White)).To(Succeed())

		resp := a.Handle([]byte(`{"directive":{"header":{"namespace":"Alexa.PowerController","name":"TurnOff","messageId":"m1b"},"endpoint":{"endpointId":"porch:0"}}}`))

		var decoded map[string]interface{}
		Expect(json.Unmarshal(resp, &decoded)).To(Succeed())
		event := decoded["event"].(map[string]interface{})
		Expect(event["header"].(map[string]interface{})["name"]).To(Equal("Response"))

		for _, c := range lamp.Strips()[0].ReadCommitted() {
			Expect(c).To(Equal(color.Black))
		}
	})

	It("sets color from an Alexa.ColorController SetColor directive", func() {
		msg := `{"directive":{"header":{"namespace":"Alexa.ColorController","name":"SetColor","messageId":"m2"},
			"endpoint":{"endpointId":"porch:0"},
			"payload":{"color":{"hue":120,"saturation":1,"brightness":1}}}}`
		resp := a.Handle([]byte(msg))

		var decoded map[string]interface{}
		Expect(json.Unmarshal(resp, &decoded)).To(Succeed())
		event := decoded["event"].(map[string]interface{})
		Expect(event["header"].(map[string]interface{})["name"]).To(Equal("Response"))

		for _, c := range lamp.Strips()[0].ReadCommitted() {
			Expect(c.Green).To(Equal(uint8(255)))
			Expect(c.Red).To(Equal(uint8(0)))
		}
	})

	It("returns an error event for an unknown endpoint", func() {
		msg := `{"directive":{"header":{"namespace":"Alexa.PowerController","name":"TurnOn","messageId":"m3"},"endpoint":{"endpointId":"ghost:0"}}}`
		resp := a.Handle([]byte(msg))

		var decoded map[string]interface{}
		Expect(json.Unmarshal(resp, &decoded)).To(Succeed())
		event := decoded["event"].(map[string]interface{})
		Expect(event["header"].(map[string]interface{})["name"]).To(Equal("ErrorResponse"))
	})
})

func TestDirective(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Directive Tests")
}
