package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/swayamn72/aegis-sub001/models"
)

const (
	padding    = 16
	rowHeight  = 22
	cellGap    = 18
	maxNameLen = 28
)

var (
	background = color.RGBA{R: 0x14, G: 0x17, B: 0x1f, A: 0xff}
	stripe     = color.RGBA{R: 0x1d, G: 0x21, B: 0x2b, A: 0xff}
	headerFg   = color.RGBA{R: 0xf5, G: 0xb7, B: 0x2c, A: 0xff}
	textFg     = color.RGBA{R: 0xe8, G: 0xea, B: 0xef, A: 0xff}
)

// RenderPNG draws the table with a fixed-width font and encodes it as PNG.
func RenderPNG(w io.Writer, label string, rows []models.StandingsRow) error {
	face := basicfont.Face7x13
	charWidth := face.Advance

	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		c := cells(row)
		c[1] = truncate(c[1], maxNameLen)
		table = append(table, c)
	}

	widths := make([]int, len(Columns))
	for i, col := range Columns {
		widths[i] = len(col)
	}
	for _, c := range table {
		for i, v := range c {
			if n := len([]rune(v)); n > widths[i] {
				widths[i] = n
			}
		}
	}

	width := padding * 2
	for _, n := range widths {
		width += n*charWidth + cellGap
	}
	if lw := padding*2 + len([]rune(label))*charWidth; lw > width {
		width = lw
	}
	height := padding*2 + rowHeight*(len(table)+2)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	d := &font.Drawer{Dst: img, Face: face}
	line := func(y int, fg color.Color, values []string) {
		d.Src = image.NewUniform(fg)
		x := padding
		for i, v := range values {
			d.Dot = fixed.P(x, y)
			d.DrawString(v)
			x += widths[i]*charWidth + cellGap
		}
	}

	baseline := padding + face.Ascent
	d.Src = image.NewUniform(headerFg)
	d.Dot = fixed.P(padding, baseline)
	d.DrawString(label)

	line(baseline+rowHeight, headerFg, Columns)
	for i, c := range table {
		top := padding + rowHeight*(i+2)
		if i%2 == 0 {
			draw.Draw(img, image.Rect(0, top-4, width, top-4+rowHeight), &image.Uniform{C: stripe}, image.Point{}, draw.Src)
		}
		line(baseline+rowHeight*(i+2), textFg, c)
	}

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}
