package export

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"gonum.org/v1/gonum/graph/layout"

	"github.com/ritzau/dystonia-kg/pkg/graph"
	"github.com/ritzau/dystonia-kg/pkg/model"
)

// ImageOptions sizes the rendered visualization.
type ImageOptions struct {
	Width      int
	Height     int
	Iterations int
}

// DefaultImageOptions matches the low resolution render of the reference
// pipeline.
func DefaultImageOptions() ImageOptions {
	return ImageOptions{Width: 1500, Height: 1500, Iterations: 100}
}

var (
	colorGray     = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	colorEdge     = color.RGBA{R: 0xc8, G: 0xc8, B: 0xc8, A: 0xff}
	supranodeTint = map[string]color.RGBA{
		model.SupranodeGene:        {R: 0xff, A: 0xff},
		model.SupranodeProtein:     {B: 0xff, A: 0xff},
		model.SupranodeDisease:     {R: 0xff, G: 0xa5, A: 0xff},
		model.SupranodePhenotype:   {G: 0x80, A: 0xff},
		model.SupranodeInheritance: {G: 0x80, A: 0xff},
		model.SupranodeBP:          {G: 0xff, B: 0xff, A: 0xff},
		model.SupranodeCC:          {G: 0xff, B: 0xff, A: 0xff},
		model.SupranodeMF:          {G: 0xff, B: 0xff, A: 0xff},
	}
)

// ColorFor returns the fill color of a node with the given supranode.
func ColorFor(supranode string) color.RGBA {
	if c, ok := supranodeTint[supranode]; ok {
		return c
	}
	return colorGray
}

// RenderPNG lays g out with a force directed layout and draws edges as
// lines and nodes as dots colored by supranode.
func RenderPNG(w io.Writer, g *graph.AttributedGraph, opts ImageOptions) error {
	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	if g.NodeCount() > 0 {
		points := place(g, opts)
		for _, e := range g.Edges() {
			a, b := points[e.Source.ID()], points[e.Target.ID()]
			line(img, a, b, colorEdge)
		}
		radius := nodeRadius(g.NodeCount(), opts)
		for _, n := range g.Nodes() {
			disc(img, points[n.ID()], radius, ColorFor(n.Supranode()))
		}
	}

	return png.Encode(w, img)
}

// place runs the layout and maps coordinates onto the canvas with a margin.
func place(g *graph.AttributedGraph, opts ImageOptions) map[int64]image.Point {
	eades := layout.EadesR2{
		Updates:   opts.Iterations,
		Repulsion: 1,
		Rate:      0.05,
		Theta:     0.2,
	}
	o := layout.NewOptimizerR2(g.Undirected(), eades.Update)
	for o.Update() {
	}

	nodes := g.Nodes()
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		v := o.Coord2(n.ID())
		minX, maxX = math.Min(minX, v.X), math.Max(maxX, v.X)
		minY, maxY = math.Min(minY, v.Y), math.Max(maxY, v.Y)
	}

	margin := 0.05 * float64(min(opts.Width, opts.Height))
	spanX, spanY := maxX-minX, maxY-minY
	scale := func(v, lo, span float64, size int) int {
		if span == 0 || math.IsNaN(span) {
			return size / 2
		}
		return int(margin + (v-lo)/span*(float64(size)-2*margin))
	}

	points := make(map[int64]image.Point, len(nodes))
	for _, n := range nodes {
		v := o.Coord2(n.ID())
		points[n.ID()] = image.Point{
			X: scale(v.X, minX, spanX, opts.Width),
			Y: scale(v.Y, minY, spanY, opts.Height),
		}
	}
	return points
}

func nodeRadius(nodes int, opts ImageOptions) int {
	r := min(opts.Width, opts.Height) / (4 * int(math.Sqrt(float64(nodes))+1))
	return max(2, min(r, 12))
}

// line draws a segment with Bresenham's algorithm.
func line(img *image.RGBA, a, b image.Point, c color.RGBA) {
	dx, dy := abs(b.X-a.X), -abs(b.Y-a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	e := dx + dy
	x, y := a.X, a.Y
	for {
		img.SetRGBA(x, y, c)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

func disc(img *image.RGBA, p image.Point, r int, c color.RGBA) {
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y <= r*r {
				img.SetRGBA(p.X+x, p.Y+y, c)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
