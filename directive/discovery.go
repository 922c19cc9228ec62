// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package directive

import (
	"fmt"
	"strings"

	"github.com/EricMiddleton1/AlexaHub/strip"
)

// discoveryEndpoint describes one light as an Alexa Discovery endpoint.
//
// This shape, and the friendly-name derivation below, are recovered from
// the original AlexaHub.cpp's processDiscover(): every node's
// non-Matrix strips are enumerated as individually addressable lights.
type discoveryEndpoint struct {
	EndpointID        string       `json:"endpointId"`
	ManufacturerName  string       `json:"manufacturerName"`
	FriendlyName      string       `json:"friendlyName"`
	Description       string       `json:"description"`
	DisplayCategories []string     `json:"displayCategories"`
	Capabilities      []capability `json:"capabilities"`
}

type capability struct {
	Type      string `json:"type"`
	Interface string `json:"interface"`
	Version   string `json:"version"`
}

func (a *Adapter) discover() interface{} {
	var endpoints []discoveryEndpoint

	for _, n := range a.Hub.Nodes() {
		for index, s := range n.Strips() {
			// Matrix strips have no natural single-color representation and
			// are not exposed to the cloud as lights.
			if s.StripType() == strip.Matrix {
				continue
			}

			id := fmt.Sprintf("%s:%d", n.Name(), index)
			endpoints = append(endpoints, discoveryEndpoint{
				EndpointID:       id,
				ManufacturerName: "AlexaHub",
				FriendlyName:     friendlyName(id),
				Description:      friendlyName(id) + " connected via AlexaHub",
				DisplayCategories: []string{"LIGHT"},
				Capabilities: []capability{
					{Type: "AlexaInterface", Interface: "Alexa.PowerController", Version: "3"},
					{Type: "AlexaInterface", Interface: "Alexa.BrightnessController", Version: "3"},
					{Type: "AlexaInterface", Interface: "Alexa.ColorController", Version: "3"},
				},
			})
		}
	}

	return map[string]interface{}{
		"event": map[string]interface{}{
			"header": map[string]interface{}{
				"namespace":      "Alexa.Discovery",
				"name":           "Discover.Response",
				"payloadVersion": "3",
			},
			"payload": map[string]interface{}{
				"endpoints": endpoints,
			},
		},
	}
}

// friendlyName replaces the ":" separating a node name from its strip
// index with a space, matching the original getLightName-derived
// friendlyName field.
func friendlyName(endpointID string) string {
	return strings.ReplaceAll(endpointID, ":", " ")
}

func confirmation(messageID, namespace string) interface{} {
	return map[string]interface{}{
		"event": map[string]interface{}{
			"header": map[string]interface{}{
				"namespace":      namespace,
				"name":           "Response",
				"messageId":      messageID,
				"payloadVersion": "3",
			},
			"payload": map[string]interface{}{},
		},
	}
}

func errorEvent(errType, message string) interface{} {
	return map[string]interface{}{
		"event": map[string]interface{}{
			"header": map[string]interface{}{
				"namespace":      "Alexa",
				"name":           "ErrorResponse",
				"payloadVersion": "3",
			},
			"payload": map[string]interface{}{
				"type":    errType,
				"message": message,
			},
		},
	}
}
