// Native PNG rendering of observation tables.

package fsmfile

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Grid is a table ready for rendering: a header line, one line per row and a
// marker for rows drawn as short rows.
type Grid struct {
	Title  string
	Header []string
	Rows   [][]string
	Short  []bool
}

// PNGOptions configures PNG rendering.
type PNGOptions struct {
	FontSize    int
	CellPadding int
	Scale       int // supersampling factor
}

// DefaultPNGOptions returns sensible defaults for PNG rendering.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{
		FontSize:    13,
		CellPadding: 6,
		Scale:       2,
	}
}

// Colors used in rendering
var (
	colorWhite  = color.RGBA{255, 255, 255, 255}
	colorBlack  = color.RGBA{51, 51, 51, 255}    // #333
	colorGray   = color.RGBA{189, 189, 189, 255} // #bdbdbd
	colorHeader = color.RGBA{227, 242, 253, 255} // #e3f2fd
	colorShort  = color.RGBA{232, 245, 233, 255} // #e8f5e9
)

type renderContext struct {
	img   *image.RGBA
	face  font.Face
	scale int
}

func newRenderContext(img *image.RGBA, size float64) (*renderContext, error) {
	fnt, err := opentype.Parse(gomono.TTF)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone, // supersampled instead
	})
	if err != nil {
		return nil, err
	}
	return &renderContext{img: img, face: face}, nil
}

// RenderPNG draws the grid with a monospaced font. Short rows get a green
// background; the header is blue.
func RenderPNG(g Grid, w io.Writer, opts PNGOptions) error {
	if len(g.Header) == 0 {
		return fmt.Errorf("grid has no columns")
	}
	if opts.Scale < 1 {
		opts.Scale = 1
	}
	s := opts.Scale
	size := float64(opts.FontSize * s)
	pad := opts.CellPadding * s

	sizer, err := newRenderContext(nil, size)
	if err != nil {
		return err
	}
	widths := make([]int, len(g.Header))
	measure := func(cells []string) {
		for c := range widths {
			if c < len(cells) {
				if n := font.MeasureString(sizer.face, cells[c]).Ceil(); n > widths[c] {
					widths[c] = n
				}
			}
		}
	}
	measure(g.Header)
	for _, r := range g.Rows {
		measure(r)
	}
	m := sizer.face.Metrics()
	lineHeight := (m.Ascent + m.Descent).Ceil() + 2*pad

	titleHeight := 0
	if g.Title != "" {
		titleHeight = lineHeight
	}
	width := 0
	for _, cw := range widths {
		width += cw + 2*pad
	}
	height := titleHeight + lineHeight*(len(g.Rows)+1)

	img := image.NewRGBA(image.Rect(0, 0, width+1, height+1))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorWhite), image.Point{}, draw.Src)
	ctx := &renderContext{img: img, face: sizer.face, scale: s}

	if g.Title != "" {
		drawText(ctx, pad, pad+m.Ascent.Ceil(), g.Title, colorBlack)
	}
	drawRow(ctx, g.Header, widths, titleHeight, lineHeight, pad, colorHeader)
	for i, r := range g.Rows {
		bg := colorWhite
		if i < len(g.Short) && g.Short[i] {
			bg = colorShort
		}
		drawRow(ctx, r, widths, titleHeight+lineHeight*(i+1), lineHeight, pad, bg)
	}

	out := image.Image(img)
	if s > 1 {
		small := image.NewRGBA(image.Rect(0, 0, (width+1)/s, (height+1)/s))
		draw.CatmullRom.Scale(small, small.Bounds(), img, img.Bounds(), draw.Over, nil)
		out = small
	}
	return png.Encode(w, out)
}

func drawRow(ctx *renderContext, cells []string, widths []int, top, height, pad int, bg color.Color) {
	x := 0
	ascent := ctx.face.Metrics().Ascent.Ceil()
	for c, cw := range widths {
		cell := image.Rect(x, top, x+cw+2*pad, top+height)
		draw.Draw(ctx.img, cell, image.NewUniform(bg), image.Point{}, draw.Src)
		drawBox(ctx, cell, colorGray)
		if c < len(cells) {
			drawText(ctx, x+pad, top+pad+ascent, cells[c], colorBlack)
		}
		x += cw + 2*pad
	}
}

// drawBox outlines a rectangle with lines scale pixels wide.
func drawBox(ctx *renderContext, r image.Rectangle, c color.Color) {
	src := image.NewUniform(c)
	t := ctx.scale
	for _, edge := range []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X+1, r.Min.Y+t),
		image.Rect(r.Min.X, r.Max.Y-t+1, r.Max.X+1, r.Max.Y+1),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y+1),
		image.Rect(r.Max.X-t+1, r.Min.Y, r.Max.X+1, r.Max.Y+1),
	} {
		draw.Draw(ctx.img, edge, src, image.Point{}, draw.Src)
	}
}

func drawText(ctx *renderContext, x, baseline int, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  ctx.img,
		Src:  image.NewUniform(c),
		Face: ctx.face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(baseline)},
	}
	d.DrawString(text)
}
