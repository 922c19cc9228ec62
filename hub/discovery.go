// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package hub

import (
	"github.com/pkg/errors"

	"github.com/EricMiddleton1/AlexaHub/strip"
	"github.com/EricMiddleton1/AlexaHub/support/byteslicereader"
)

// ErrInvalidPayload is returned when an Info payload is malformed: shorter
// than its fixed header or than its own declared counts require, or
// declaring a zero-sized digital strip or matrix dimension.
var ErrInvalidPayload = errors.New("hub: invalid info payload")

// parseInfoPayload decodes an Info packet payload into a node name and
// its ordered strips (analog first, then digital, then matrix), per the
// wire layout:
//
//	[analogCount, digitalCount, matrixCount, reserved,
//	 (digitalSize_hi, digitalSize_lo)×digitalCount,
//	 (matrixW, matrixH)×matrixCount,
//	 nameBytes...]
func parseInfoPayload(payload []byte) (name string, strips []*strip.LightStrip, err error) {
	if len(payload) < 4 {
		return "", nil, errors.Wrap(ErrInvalidPayload, "payload shorter than fixed header")
	}

	analogCount := int(payload[0])
	digitalCount := int(payload[1])
	matrixCount := int(payload[2])
	// payload[3] is reserved.

	minLen := 4 + 2*(digitalCount+matrixCount)
	if len(payload) < minLen {
		return "", nil, errors.Wrapf(ErrInvalidPayload,
			"payload length %d shorter than required %d for %d digital, %d matrix strips",
			len(payload), minLen, digitalCount, matrixCount)
	}

	r := byteslicereader.R{Buffer: payload[4:]}

	out := make([]*strip.LightStrip, 0, analogCount+digitalCount+matrixCount)
	for i := 0; i < analogCount; i++ {
		out = append(out, strip.NewAnalog())
	}

	// r.Next(2) returns io.EOF whenever it hands back the last bytes in the
	// buffer, even when all 2 requested bytes were returned (e.g. a trailer
	// with no name following it) — so truncation is judged by the length of
	// the returned slice, not by the error.
	digitalSizes := make([]int, digitalCount)
	for i := 0; i < digitalCount; i++ {
		b, _ := r.Next(2)
		if len(b) < 2 {
			return "", nil, errors.Wrap(ErrInvalidPayload, "truncated digital strip size")
		}
		size := int(b[0])<<8 | int(b[1])
		if size < 1 {
			return "", nil, errors.Wrap(ErrInvalidPayload, "digital strip size must be at least 1")
		}
		digitalSizes[i] = size
	}
	for _, size := range digitalSizes {
		out = append(out, strip.NewDigital(size))
	}

	type matrixDims struct{ w, h int }
	matrices := make([]matrixDims, matrixCount)
	for i := 0; i < matrixCount; i++ {
		b, _ := r.Next(2)
		if len(b) < 2 {
			return "", nil, errors.Wrap(ErrInvalidPayload, "truncated matrix dimensions")
		}
		w, h := int(b[0]), int(b[1])
		if w < 1 || h < 1 {
			return "", nil, errors.Wrap(ErrInvalidPayload, "matrix dimensions must be at least 1x1")
		}
		matrices[i] = matrixDims{w: w, h: h}
	}
	for _, m := range matrices {
		out = append(out, strip.NewMatrix(m.w, m.h))
	}

	name = string(r.Peek(r.Remaining()))
	return name, out, nil
}
