// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package strip defines the pixel-holding LightStrip type and its
// StripType classification.
package strip

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/EricMiddleton1/AlexaHub/color"
)

// Type classifies a strip's pixel topology.
type Type int

const (
	// Analog strips hold a single pixel.
	Analog Type = iota
	// Digital strips are a linear run of N pixels.
	Digital
	// Matrix strips are a 2D grid of W*H pixels, row-major.
	Matrix
)

func (t Type) String() string {
	switch t {
	case Analog:
		return "ANALOG"
	case Digital:
		return "DIGITAL"
	case Matrix:
		return "MATRIX"
	default:
		return "UNKNOWN"
	}
}

// nextID is the process-wide monotonic strip id counter. It starts at 0.
var nextID int64 = -1

func allocID() int64 { return atomic.AddInt64(&nextID, 1) }

// LightStrip holds the committed and in-progress pixel state for a single
// strip on a node.
//
// A LightStrip uses two locks. bufferMu is held for the entire duration of
// a Write call, excluding other writers for as long as the closure runs.
// pixelMu is held only briefly, while committed is copied into or out of,
// so that ReadCommitted never observes a partially written frame.
type LightStrip struct {
	id int64

	stripType Type
	// width and height are only meaningful for Matrix strips; for Analog and
	// Digital strips, width holds the pixel count and height is 1.
	width, height int

	bufferMu sync.Mutex
	scratch  []color.Color

	pixelMu   sync.Mutex
	committed []color.Color
}

// NewAnalog constructs a single-pixel LightStrip.
func NewAnalog() *LightStrip { return newStrip(Analog, 1, 1) }

// NewDigital constructs a linear LightStrip of n pixels.
func NewDigital(n int) *LightStrip { return newStrip(Digital, n, 1) }

// NewMatrix constructs a w*h LightStrip addressed row-major.
func NewMatrix(w, h int) *LightStrip { return newStrip(Matrix, w, h) }

func newStrip(t Type, w, h int) *LightStrip {
	n := w * h
	return &LightStrip{
		id:        allocID(),
		stripType: t,
		width:     w,
		height:    h,
		scratch:   make([]color.Color, n),
		committed: make([]color.Color, n),
	}
}

// ID returns this strip's process-unique id.
func (s *LightStrip) ID() int64 { return s.id }

// Size returns the fixed pixel count N of the strip.
func (s *LightStrip) Size() int { return len(s.committed) }

// StripType returns the strip's constant topology classification.
func (s *LightStrip) StripType() Type { return s.stripType }

// Dimensions returns (width, height) for a Matrix strip. For Analog and
// Digital strips it returns (Size(), 1).
func (s *LightStrip) Dimensions() (width, height int) { return s.width, s.height }

// ReadCommitted returns a snapshot copy of the committed pixel state. It is
// safe to call concurrently with Write.
func (s *LightStrip) ReadCommitted() []color.Color {
	s.pixelMu.Lock()
	defer s.pixelMu.Unlock()

	out := make([]color.Color, len(s.committed))
	copy(out, s.committed)
	return out
}

// ErrWriteFailed is an error a write closure may return to signal failure.
// Write never produces it on its own: it returns whatever error the closure
// returned (ErrWriteFailed or any other), and committed is left unchanged.
var ErrWriteFailed = errors.New("strip: write failed")

// Write acquires the buffer lock, exposes scratch to f, and on f's
// successful return commits scratch into committed under the pixel lock.
//
// f may mutate scratch in place via the slice it is given. If f returns a
// non-nil error, committed is left unchanged and scratch is discarded; the
// error is returned unwrapped to the caller.
//
// Only one writer may be in Write at a time; concurrent callers block on
// the buffer lock.
func (s *LightStrip) Write(f func(scratch []color.Color) error) error {
	s.bufferMu.Lock()
	defer s.bufferMu.Unlock()

	// Start scratch from the last committed frame so that a partial update
	// (e.g. one pixel) composes with the rest of the strip's state.
	s.pixelMu.Lock()
	copy(s.scratch, s.committed)
	s.pixelMu.Unlock()

	if err := f(s.scratch); err != nil {
		return err
	}

	s.pixelMu.Lock()
	copy(s.committed, s.scratch)
	s.pixelMu.Unlock()
	return nil
}

// SetAll is a convenience wrapper that fills every pixel with c via Write.
func (s *LightStrip) SetAll(c color.Color) error {
	return s.Write(func(scratch []color.Color) error {
		for i := range scratch {
			scratch[i] = c
		}
		return nil
	})
}
