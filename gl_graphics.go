package main

import (
	gl "github.com/go-gl/gl/v3.1/gles2"
	mgl "github.com/go-gl/mathgl/mgl32"
)

const (
	waveVertexShader = `
    precision highp float;
    attribute vec2 a_position;
    attribute vec4 a_color;
    uniform mat4 u_transform;
    uniform float u_pointSize;
    varying vec4 v_color;
    void main(void) {
      gl_Position = u_transform * vec4(a_position, 0.0, 1.0);
      gl_PointSize = u_pointSize;
      v_color = a_color;
    }` + "\x00"
	waveFragmentShader = `
    precision mediump float;
    varying vec4 v_color;
    void main(void) {
      gl_FragColor = v_color;
    }` + "\x00"
)

// glGraphics implements Graphics on OpenGL ES 2. Vertex and color arrays
// live in two vertex buffer objects which are re-uploaded on every draw.
// Points are given in the unit square with y pointing up.
type glGraphics struct {
	program     Program
	positions   Buffer
	colors      Buffer
	a_position  int32
	a_color     int32
	u_transform int32
	u_pointSize int32
	enabled     map[ClientState]bool
	pointSize   float32
	nvertices   int
}

func CreateGLGraphics() (*glGraphics, error) {
	program, err := CreateProgram(waveVertexShader, waveFragmentShader)
	if err != nil {
		return nil, err
	}
	positions, err := CreateBuffer()
	if err != nil {
		program.Close()
		return nil, err
	}
	colors, err := CreateBuffer()
	if err != nil {
		positions.Close()
		program.Close()
		return nil, err
	}
	g := &glGraphics{
		program:     program,
		positions:   positions,
		colors:      colors,
		a_position:  program.GetAttribLocation("a_position\x00"),
		a_color:     program.GetAttribLocation("a_color\x00"),
		u_transform: program.GetUniformLocation("u_transform\x00"),
		u_pointSize: program.GetUniformLocation("u_pointSize\x00"),
		enabled:     make(map[ClientState]bool),
		pointSize:   1,
	}
	return g, nil
}

func glBlendFactor(f BlendFactor) uint32 {
	switch f {
	case BlendSrcAlpha:
		return gl.SRC_ALPHA
	case BlendOneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	default:
		return gl.ONE
	}
}

// unitTransform maps the unit square to clip space.
func unitTransform() mgl.Mat4 {
	mScale := mgl.Scale3D(2, 2, 1)
	mTranslate := mgl.Translate3D(-1, -1, 0)
	return mTranslate.Mul4(mScale)
}

// Begin prepares the pipeline for a frame of render items.
func (g *glGraphics) Begin() {
	g.program.Use()
	transform := unitTransform()
	gl.UniformMatrix4fv(g.u_transform, 1, false, &transform[0])
	gl.Enable(gl.BLEND)
	gl.BlendEquation(gl.FUNC_ADD)
}

// End releases the attribute arrays enabled during the frame.
func (g *glGraphics) End() {
	for cs, on := range g.enabled {
		if on {
			g.DisableClientState(cs)
		}
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.Disable(gl.BLEND)
}

func (g *glGraphics) BlendFunc(src, dst BlendFactor) {
	gl.BlendFunc(glBlendFactor(src), glBlendFactor(dst))
}

func (g *glGraphics) LineWidth(width float32) {
	gl.LineWidth(width)
}

func (g *glGraphics) PointSize(size float32) {
	g.pointSize = size
	gl.Uniform1f(g.u_pointSize, size)
}

func (g *glGraphics) attrib(cs ClientState) int32 {
	switch cs {
	case VertexArray:
		return g.a_position
	case ColorArray:
		return g.a_color
	default:
		// this program has no texture coordinates
		return -1
	}
}

func (g *glGraphics) EnableClientState(cs ClientState) {
	g.enabled[cs] = true
	if loc := g.attrib(cs); loc >= 0 {
		gl.EnableVertexAttribArray(uint32(loc))
	}
}

func (g *glGraphics) DisableClientState(cs ClientState) {
	g.enabled[cs] = false
	if loc := g.attrib(cs); loc >= 0 {
		gl.DisableVertexAttribArray(uint32(loc))
	}
}

func (g *glGraphics) VertexPointer(positions [][2]float32) {
	g.nvertices = len(positions)
	if len(positions) == 0 {
		return
	}
	g.positions.Upload(len(positions)*2*4, &positions[0][0])
	gl.VertexAttribPointer(uint32(g.a_position), 2, gl.FLOAT, false, 0, nil)
}

func (g *glGraphics) ColorPointer(colors [][4]float32) {
	if len(colors) == 0 {
		return
	}
	g.colors.Upload(len(colors)*4*4, &colors[0][0])
	gl.VertexAttribPointer(uint32(g.a_color), 4, gl.FLOAT, false, 0, nil)
}

func (g *glGraphics) DrawArrays(mode Primitive, count int) {
	count = min(count, g.nvertices)
	if count == 0 {
		return
	}
	switch mode {
	case Points:
		gl.DrawArrays(gl.POINTS, 0, int32(count))
	case LineStrip:
		gl.DrawArrays(gl.LINE_STRIP, 0, int32(count))
	}
}

// DisableLineStipple is a no-op: OpenGL ES has no line stipple.
func (g *glGraphics) DisableLineStipple() {}

func (g *glGraphics) Close() error {
	g.colors.Close()
	g.positions.Close()
	return g.program.Close()
}
