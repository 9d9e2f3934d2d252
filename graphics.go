package main

import "fmt"

type BlendFactor int

const (
	BlendOne BlendFactor = iota
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
)

func (f BlendFactor) String() string {
	switch f {
	case BlendOne:
		return "ONE"
	case BlendSrcAlpha:
		return "SRC_ALPHA"
	case BlendOneMinusSrcAlpha:
		return "ONE_MINUS_SRC_ALPHA"
	default:
		return fmt.Sprintf("BlendFactor(%d)", int(f))
	}
}

type Primitive int

const (
	Points Primitive = iota
	LineStrip
)

func (p Primitive) String() string {
	switch p {
	case Points:
		return "POINTS"
	case LineStrip:
		return "LINE_STRIP"
	default:
		return fmt.Sprintf("Primitive(%d)", int(p))
	}
}

// ClientState names a per-vertex attribute array that can be switched on
// or off before a draw call.
type ClientState int

const (
	VertexArray ClientState = iota
	ColorArray
	TextureCoordArray
)

func (cs ClientState) String() string {
	switch cs {
	case VertexArray:
		return "VERTEX_ARRAY"
	case ColorArray:
		return "COLOR_ARRAY"
	case TextureCoordArray:
		return "TEXTURE_COORD_ARRAY"
	default:
		return fmt.Sprintf("ClientState(%d)", int(cs))
	}
}

// Graphics is the frame geometry submission interface used by render
// items. Implementations own whatever device state these calls map to;
// errors are left to the underlying API.
type Graphics interface {
	BlendFunc(src, dst BlendFactor)
	LineWidth(width float32)
	PointSize(size float32)
	EnableClientState(cs ClientState)
	DisableClientState(cs ClientState)
	VertexPointer(positions [][2]float32)
	ColorPointer(colors [][4]float32)
	DrawArrays(mode Primitive, count int)
	DisableLineStipple()
}

const strokeReferenceSize = 512

// strokeWidth returns the line width / point size for a render target of
// texsize pixels. Up to 512 the width is 1 (2 when thick); above that it
// grows linearly with texsize/512.
func strokeWidth(texsize int, thick bool) float32 {
	var w float32
	if texsize <= strokeReferenceSize {
		w = 1
	} else {
		w = float32(texsize) / strokeReferenceSize
	}
	if thick {
		w *= 2
	}
	return w
}

// renderState is the blend mode and stroke a render item asks for.
type renderState struct {
	additive bool
	thick    bool
	texsize  int
}

func applyRenderState(g Graphics, rs renderState) {
	if rs.additive {
		g.BlendFunc(BlendSrcAlpha, BlendOne)
	} else {
		g.BlendFunc(BlendSrcAlpha, BlendOneMinusSrcAlpha)
	}
	w := strokeWidth(rs.texsize, rs.thick)
	g.LineWidth(w)
	g.PointSize(w)
}

// restoreRenderState puts g back into the baseline every render item
// expects on entry: thin stroke for texsize, no stipple, alpha blending.
// The baseline is fixed; the caller's previous state is not consulted.
func restoreRenderState(g Graphics, texsize int) {
	w := strokeWidth(texsize, false)
	g.PointSize(w)
	g.LineWidth(w)
	g.DisableLineStipple()
	g.BlendFunc(BlendSrcAlpha, BlendOneMinusSrcAlpha)
}

// withRenderState applies rs, runs draw and restores the baseline on every
// exit path, panics included.
func withRenderState(g Graphics, rs renderState, draw func() error) error {
	applyRenderState(g, rs)
	defer restoreRenderState(g, rs.texsize)
	return draw()
}
