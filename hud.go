package main

import (
	"unsafe"

	gl "github.com/go-gl/gl/v3.1/gles2"
	mgl "github.com/go-gl/mathgl/mgl32"
)

const (
	hudVertexShader = `
    precision highp float;
    attribute vec2 a_position;
    attribute vec2 a_texcoord;
    uniform mat4 u_transform;
    varying vec2 v_texcoord;
    void main(void) {
      gl_Position = u_transform * vec4(a_position, 0.0, 1.0);
      v_texcoord = a_texcoord;
    }` + "\x00"
	hudFragmentShader = `
    precision highp float;
    uniform sampler2D u_tex;
    uniform vec4 u_color;
    varying vec2 v_texcoord;
    void main(void) {
      gl_FragColor = u_color * texture2D(u_tex, v_texcoord).a;
    }` + "\x00"
)

const hudFontSize FontSizeInPoints = 12

type hudVertex struct {
	position [2]float32
	texcoord [2]float32
}

// HUD draws a few lines of status text in the top left corner of the
// framebuffer, one textured quad per rune.
type HUD struct {
	atlas       *GlyphAtlas
	tex         Texture
	vbo         Buffer
	program     Program
	a_position  int32
	a_texcoord  int32
	u_transform int32
	u_tex       int32
	u_color     int32
	vertices    []hudVertex
}

func CreateHUD(f *Font) (*HUD, error) {
	atlas, err := f.Atlas(hudFontSize, asciiGrid)
	if err != nil {
		return nil, err
	}
	program, err := CreateProgram(hudVertexShader, hudFragmentShader)
	if err != nil {
		return nil, err
	}
	tex, err := CreateTexture(gl.NEAREST)
	if err != nil {
		program.Close()
		return nil, err
	}
	tex.UploadAlpha(atlas.Image)
	vbo, err := CreateBuffer()
	if err != nil {
		tex.Close()
		program.Close()
		return nil, err
	}
	hud := &HUD{
		atlas:       atlas,
		tex:         tex,
		vbo:         vbo,
		program:     program,
		a_position:  program.GetAttribLocation("a_position\x00"),
		a_texcoord:  program.GetAttribLocation("a_texcoord\x00"),
		u_transform: program.GetUniformLocation("u_transform\x00"),
		u_tex:       program.GetUniformLocation("u_tex\x00"),
		u_color:     program.GetUniformLocation("u_color\x00"),
	}
	return hud, nil
}

func (hud *HUD) Clear() {
	hud.vertices = hud.vertices[:0]
}

// DrawRune queues r at text cell (x, y).
func (hud *HUD) DrawRune(x, y int, r rune) {
	hud.vertices = appendGlyphQuad(hud.vertices, hud.atlas, x, y, r)
}

// appendGlyphQuad appends the two triangles covering text cell (x, y),
// textured with the atlas tile of r.
func appendGlyphQuad(vertices []hudVertex, atlas *GlyphAtlas, x, y int, r rune) []hudVertex {
	s0, t0, s1, t1 := atlas.TexCoords(r)
	x0, y0 := float32(x), float32(y)
	x1, y1 := x0+1, y0+1
	return append(vertices,
		hudVertex{position: [2]float32{x0, y0}, texcoord: [2]float32{s0, t0}},
		hudVertex{position: [2]float32{x0, y1}, texcoord: [2]float32{s0, t1}},
		hudVertex{position: [2]float32{x1, y1}, texcoord: [2]float32{s1, t1}},
		hudVertex{position: [2]float32{x1, y1}, texcoord: [2]float32{s1, t1}},
		hudVertex{position: [2]float32{x1, y0}, texcoord: [2]float32{s1, t0}},
		hudVertex{position: [2]float32{x0, y0}, texcoord: [2]float32{s0, t0}},
	)
}

func (hud *HUD) DrawString(x, y int, s string) {
	offset := 0
	for _, r := range s {
		hud.DrawRune(x+offset, y, r)
		offset++
	}
}

func (hud *HUD) DrawLines(lines []string) {
	for y, line := range lines {
		hud.DrawString(1, y+1, line)
	}
}

// Render draws the queued runes on a framebuffer of fb pixels.
func (hud *HUD) Render(fb Size) {
	if len(hud.vertices) == 0 || fb.X == 0 || fb.Y == 0 {
		return
	}
	hud.program.Use()
	gl.ActiveTexture(gl.TEXTURE0)
	hud.tex.Bind()
	gl.Uniform1i(hud.u_tex, 0)
	gl.Uniform4f(hud.u_color, 1, 1, 1, 0.8)
	stride := int32(unsafe.Sizeof(hudVertex{}))
	hud.vbo.Upload(len(hud.vertices)*int(stride), &hud.vertices[0])
	gl.EnableVertexAttribArray(uint32(hud.a_position))
	gl.VertexAttribPointer(uint32(hud.a_position), 2, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(uint32(hud.a_texcoord))
	gl.VertexAttribPointer(uint32(hud.a_texcoord), 2, gl.FLOAT, false, stride,
		gl.PtrOffset(int(unsafe.Offsetof(hudVertex{}.texcoord))))
	ux := 2.0 / float32(fb.X)
	uy := 2.0 / float32(fb.Y)
	tile := hud.atlas.Tile
	mScale := mgl.Scale3D(ux*float32(tile.X), -uy*float32(tile.Y), 1)
	mTranslate := mgl.Translate3D(-1, 1, 0)
	mTransform := mTranslate.Mul4(mScale)
	gl.UniformMatrix4fv(hud.u_transform, 1, false, &mTransform[0])
	gl.Enable(gl.BLEND)
	gl.BlendEquation(gl.FUNC_ADD)
	gl.BlendFunc(gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(hud.vertices)))
	gl.Disable(gl.BLEND)
	gl.DisableVertexAttribArray(uint32(hud.a_position))
	gl.DisableVertexAttribArray(uint32(hud.a_texcoord))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func (hud *HUD) Close() error {
	hud.vbo.Close()
	hud.tex.Close()
	return hud.program.Close()
}
