// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package directive translates cloud voice-assistant directives into
// strip mutations against the core: hub.Nodes(), node.Strips(),
// strip.Write(f), and node.Update().
//
// Endpoints are named "<node.Name()>:<strip-index>", matching the
// AlexaHub convention recovered from the original C++ project.
package directive

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/EricMiddleton1/AlexaHub/color"
	"github.com/EricMiddleton1/AlexaHub/node"
	"github.com/EricMiddleton1/AlexaHub/strip"
)

// Hub is the subset of *hub.LightHub the adapter depends on.
type Hub interface {
	Nodes() []*node.LightNode
}

// Adapter translates directive JSON messages against a Hub.
type Adapter struct {
	Hub Hub
}

type envelope struct {
	Directive struct {
		Header struct {
			Namespace      string `json:"namespace"`
			Name           string `json:"name"`
			MessageID      string `json:"messageId"`
			PayloadVersion string `json:"payloadVersion"`
		} `json:"header"`
		Endpoint struct {
			EndpointID string `json:"endpointId"`
		} `json:"endpoint"`
		Payload json.RawMessage `json:"payload"`
	} `json:"directive"`
}

// Handle parses a single directive message and returns the JSON-encoded
// response event. It never returns an error for a malformed or
// unrecognized directive; instead it returns an ErrorResponse event, per
// the Alexa Smart Home contract that every directive gets a reply.
func (a *Adapter) Handle(msg []byte) []byte {
	var env envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		return mustMarshal(errorEvent("INVALID_DIRECTIVE", err.Error()))
	}

	hdr := env.Directive.Header
	switch {
	case hdr.Namespace == "Alexa.Discovery" && hdr.Name == "Discover":
		return mustMarshal(a.discover())
	case hdr.Namespace == "Alexa.PowerController" && hdr.Name == "TurnOn":
		return a.setPower(hdr.MessageID, env.Directive.Endpoint.EndpointID, color.White)
	case hdr.Namespace == "Alexa.PowerController" && hdr.Name == "TurnOff":
		return a.setPower(hdr.MessageID, env.Directive.Endpoint.EndpointID, color.Black)
	case hdr.Namespace == "Alexa.BrightnessController" && hdr.Name == "SetBrightness":
		var p struct {
			Brightness float64 `json:"brightness"`
		}
		if err := json.Unmarshal(env.Directive.Payload, &p); err != nil {
			return mustMarshal(errorEvent("INVALID_VALUE", err.Error()))
		}
		return a.setValue(hdr.MessageID, env.Directive.Endpoint.EndpointID, p.Brightness/100, "Alexa.BrightnessController")
	case hdr.Namespace == "Alexa.ColorController" && hdr.Name == "SetColor":
		var p struct {
			Color struct {
				Hue        float64 `json:"hue"`
				Saturation float64 `json:"saturation"`
				Brightness float64 `json:"brightness"`
			} `json:"color"`
		}
		if err := json.Unmarshal(env.Directive.Payload, &p); err != nil {
			return mustMarshal(errorEvent("INVALID_VALUE", err.Error()))
		}
		return a.setColor(hdr.MessageID, env.Directive.Endpoint.EndpointID, p.Color.Hue, p.Color.Saturation, p.Color.Brightness)
	default:
		return mustMarshal(errorEvent("INVALID_DIRECTIVE", "unrecognized namespace/name: "+hdr.Namespace+"/"+hdr.Name))
	}
}

// findEndpoint resolves a "<node.Name()>:<strip-index>" endpoint id to
// its node and strip.
func (a *Adapter) findEndpoint(endpointID string) (*node.LightNode, *strip.LightStrip, error) {
	sep := strings.LastIndex(endpointID, ":")
	if sep < 0 {
		return nil, nil, errors.Errorf("malformed endpoint id %q", endpointID)
	}
	nodeName, indexStr := endpointID[:sep], endpointID[sep+1:]

	index, err := strconv.Atoi(indexStr)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "malformed strip index in endpoint id %q", endpointID)
	}

	for _, n := range a.Hub.Nodes() {
		if n.Name() != nodeName {
			continue
		}
		strips := n.Strips()
		if index < 0 || index >= len(strips) {
			return nil, nil, errors.Errorf("strip index %d out of range for node %q", index, nodeName)
		}
		return n, strips[index], nil
	}
	return nil, nil, errors.Errorf("no such node %q", nodeName)
}

// setPower turns a light fully on or off by overwriting every pixel with c,
// matching the original LightStrip::tcpTurnOn/tcpTurnOff (white-at-full-value
// and white-at-zero-value, i.e. black) rather than rescaling whatever hue the
// strip happened to already hold.
func (a *Adapter) setPower(messageID, endpointID string, c color.Color) []byte {
	n, s, err := a.findEndpoint(endpointID)
	if err != nil {
		return mustMarshal(errorEvent("NO_SUCH_ENDPOINT", err.Error()))
	}

	if err := s.SetAll(c); err != nil {
		return mustMarshal(errorEvent("INTERNAL_ERROR", err.Error()))
	}
	n.Update()

	return mustMarshal(confirmation(messageID, "Alexa.PowerController"))
}

func (a *Adapter) setValue(messageID, endpointID string, value float64, ns string) []byte {
	n, s, err := a.findEndpoint(endpointID)
	if err != nil {
		return mustMarshal(errorEvent("NO_SUCH_ENDPOINT", err.Error()))
	}

	err = s.Write(func(scratch []color.Color) error {
		for i := range scratch {
			scratch[i] = scratch[i].WithValue(value)
		}
		return nil
	})
	if err != nil {
		return mustMarshal(errorEvent("INTERNAL_ERROR", err.Error()))
	}
	n.Update()

	return mustMarshal(confirmation(messageID, ns))
}

func (a *Adapter) setColor(messageID, endpointID string, hue, saturation, brightness float64) []byte {
	n, s, err := a.findEndpoint(endpointID)
	if err != nil {
		return mustMarshal(errorEvent("NO_SUCH_ENDPOINT", err.Error()))
	}

	c := color.HSV(hue, saturation, brightness)
	if err := s.SetAll(c); err != nil {
		return mustMarshal(errorEvent("INTERNAL_ERROR", err.Error()))
	}
	n.Update()

	return mustMarshal(confirmation(messageID, "Alexa.ColorController"))
}

func mustMarshal(v interface{}) []byte {
	// v is always one of this package's own response structs; a marshal
	// failure here would be a programmer error, not a runtime condition.
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
