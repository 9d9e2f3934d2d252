package main

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

type FontSizeInPoints = float64

// asciiGrid covers the printable ASCII range and then some.
var asciiGrid = Size{X: 16, Y: 8}

type Font struct {
	font  *opentype.Font
	faces map[FontSizeInPoints]font.Face
}

func LoadFontFromBytes(bytes []byte) (*Font, error) {
	f, err := opentype.Parse(bytes)
	if err != nil {
		return nil, err
	}
	return &Font{
		font:  f,
		faces: make(map[FontSizeInPoints]font.Face),
	}, nil
}

// LoadDefaultFont returns the Go Mono face shipped with x/image.
func LoadDefaultFont() (*Font, error) {
	return LoadFontFromBytes(gomono.TTF)
}

func (f *Font) face(size FontSizeInPoints) (font.Face, error) {
	if face, ok := f.faces[size]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(f.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     96,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	f.faces[size] = face
	return face, nil
}

// GlyphAtlas is a monospace glyph sheet: rune i sits in tile
// (i % Grid.X, i / Grid.X), every tile is Tile pixels.
type GlyphAtlas struct {
	Image *image.Alpha
	Tile  Size
	Grid  Size
}

// Atlas renders runes 0..grid.X*grid.Y-1 at the given size. The tile
// width is the advance of 'm'.
func (f *Font) Atlas(size FontSizeInPoints, grid Size) (*GlyphAtlas, error) {
	if grid.X <= 0 || grid.Y <= 0 {
		return nil, fmt.Errorf("atlas grid must be positive, got %v", grid)
	}
	face, err := f.face(size)
	if err != nil {
		return nil, err
	}
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	tileHeight := metrics.Height.Ceil()
	if tileHeight == 0 {
		tileHeight = ascent + metrics.Descent.Ceil()
	}
	adv, ok := face.GlyphAdvance('m')
	if !ok {
		return nil, fmt.Errorf("font face has no glyph for 'm'")
	}
	tile := Size{X: adv.Ceil(), Y: tileHeight}
	img := image.NewAlpha(image.Rect(0, 0, tile.X*grid.X, tile.Y*grid.Y))
	for i := range grid.X * grid.Y {
		dot := fixed.Point26_6{
			X: fixed.I((i % grid.X) * tile.X),
			Y: fixed.I((i/grid.X)*tile.Y + ascent),
		}
		dr, mask, maskPt, _, ok := face.Glyph(dot, rune(i))
		if !ok || mask == nil {
			continue
		}
		draw.Draw(img, dr, mask, maskPt, draw.Src)
	}
	return &GlyphAtlas{Image: img, Tile: tile, Grid: grid}, nil
}

// TexCoords returns the normalized texture rectangle of r. Runes outside
// the grid map to '?'.
func (a *GlyphAtlas) TexCoords(r rune) (s0, t0, s1, t1 float32) {
	if r < 0 || int(r) >= a.Grid.X*a.Grid.Y {
		r = '?'
	}
	col := int(r) % a.Grid.X
	row := int(r) / a.Grid.X
	s0 = float32(col) / float32(a.Grid.X)
	s1 = float32(col+1) / float32(a.Grid.X)
	t0 = float32(row) / float32(a.Grid.Y)
	t1 = float32(row+1) / float32(a.Grid.Y)
	return
}
