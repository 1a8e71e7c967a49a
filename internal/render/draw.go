package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"strings"

	"github.com/anthonynsimon/bild/blend"
	"github.com/disintegration/imaging"
	"github.com/paulmach/orb"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/terralens/spatialval/internal/eval"
	"github.com/terralens/spatialval/internal/geom"
	"github.com/terralens/spatialval/internal/raster"
)

// Style collects the rendering parameters of a facet map.
type Style struct {
	// PolygonOverlay toggles drawing the reference polygons on each facet.
	PolygonOverlay bool
	// PolygonColor is the overlay color as "#RRGGBB" or "#RRGGBBAA".
	PolygonColor string
	// PolygonFill fills polygon interiors in addition to outlines.
	PolygonFill bool
	// OutlineWidth is the polygon outline width in output pixels.
	OutlineWidth int
	// Opacity scales the overlay's alpha, 0 (invisible) to 1 (opaque).
	Opacity float64
	// FacetCols is the number of facet columns in the output grid.
	FacetCols int
	// CellPixels is the output edge length of one raster cell.
	CellPixels int
	// StripTextScale multiplies the strip label text size.
	StripTextScale int
}

// DefaultStyle returns the styling defaults used by the CLI and tool server.
func DefaultStyle() Style {
	return Style{
		PolygonOverlay: true,
		PolygonColor:   "#222222",
		PolygonFill:    false,
		OutlineWidth:   2,
		Opacity:        0.8,
		FacetCols:      2,
		CellPixels:     24,
		StripTextScale: 1,
	}
}

func (s Style) normalized() Style {
	if s.PolygonColor == "" {
		s.PolygonColor = "#222222"
	}
	if s.OutlineWidth <= 0 {
		s.OutlineWidth = 1
	}
	// Zero is a valid opacity (invisible overlay); only out-of-range values
	// fall back to the default.
	if s.Opacity < 0 || s.Opacity > 1 {
		s.Opacity = 0.8
	}
	if s.FacetCols <= 0 {
		s.FacetCols = 2
	}
	if s.CellPixels <= 0 {
		s.CellPixels = 24
	}
	if s.StripTextScale <= 0 {
		s.StripTextScale = 1
	}
	return s
}

// MapResult contains a rendered facet map encoded as base64 PNG.
type MapResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Facets      int    `json:"facets"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// WritePNG decodes the rendered image and writes it to path.
func (r *MapResult) WritePNG(path string) error {
	data, err := base64.StdEncoding.DecodeString(r.ImageBase64)
	if err != nil {
		return fmt.Errorf("corrupt image payload: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write map: %w", err)
	}
	return nil
}

// Renderer renders a facet map from an evaluated stack. It is the rendering
// collaborator consumed by the entry points; PNGRenderer is the default
// implementation.
type Renderer interface {
	RenderFacetMap(stack *raster.Stack, table eval.MetricsTable, mode LabelMode, polygons *geom.PolygonSet, style Style) (*MapResult, error)
}

// PNGRenderer draws facet maps as PNG images.
type PNGRenderer struct {
	// Reprojector reconciles the polygon CRS with each layer's CRS before
	// drawing the overlay. Defaults to WebMercatorReprojector when nil.
	Reprojector geom.Reprojector
}

func (r *PNGRenderer) reprojector() geom.Reprojector {
	if r.Reprojector != nil {
		return r.Reprojector
	}
	return geom.WebMercatorReprojector{}
}

// RenderFacetMap implements Renderer. Facets appear in metrics-table order,
// laid out row by row across style.FacetCols columns. All layers are assumed
// to share the first layer's grid shape; verifying that is the caller's
// responsibility.
func (r *PNGRenderer) RenderFacetMap(stack *raster.Stack, table eval.MetricsTable, mode LabelMode, polygons *geom.PolygonSet, style Style) (*MapResult, error) {
	if stack == nil || stack.Len() == 0 {
		return nil, fmt.Errorf("empty raster stack")
	}
	if stack.Len() != len(table) {
		return nil, fmt.Errorf("stack has %d layers but metrics table has %d rows", stack.Len(), len(table))
	}
	style = style.normalized()

	overlayColor, err := ParseHexColor(style.PolygonColor)
	if err != nil {
		return nil, err
	}
	// Opacity scales the overlay alpha once, before compositing.
	overlayColor.A = uint8(float64(overlayColor.A) * style.Opacity)

	palette := stackPalette(stack)

	first := stack.Layers()[0]
	facetW := first.Cols * style.CellPixels
	stripH := stripHeight(style.StripTextScale)
	facetH := first.Rows*style.CellPixels + stripH

	n := stack.Len()
	cols := style.FacetCols
	if cols > n {
		cols = n
	}
	rows := (n + cols - 1) / cols

	const gap = 4
	canvas := image.NewNRGBA(image.Rect(0, 0, cols*facetW+(cols+1)*gap, rows*facetH+(rows+1)*gap))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	for i, layer := range stack.Layers() {
		facet, err := r.renderFacet(layer, table[i], mode, polygons, palette, overlayColor, style, stripH)
		if err != nil {
			return nil, fmt.Errorf("facet %q: %w", layer.Name, err)
		}
		col := i % cols
		row := i / cols
		origin := image.Pt(gap+col*(facetW+gap), gap+row*(facetH+gap))
		draw.Draw(canvas, facet.Bounds().Add(origin), facet, image.Point{}, draw.Over)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("failed to encode facet map: %w", err)
	}

	return &MapResult{
		Width:       canvas.Bounds().Dx(),
		Height:      canvas.Bounds().Dy(),
		Facets:      n,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// stackPalette builds one palette over the union of all layers' class
// labels so a class keeps its color across facets.
func stackPalette(stack *raster.Stack) map[string]color.NRGBA {
	var labels []string
	seen := map[string]bool{}
	for _, layer := range stack.Layers() {
		for _, label := range layer.Categories.Labels() {
			if !seen[label] {
				seen[label] = true
				labels = append(labels, label)
			}
		}
	}
	return ClassPalette(labels)
}

func (r *PNGRenderer) renderFacet(layer *raster.Layer, m eval.LayerMetrics, mode LabelMode, polygons *geom.PolygonSet, palette map[string]color.NRGBA, overlayColor color.NRGBA, style Style, stripH int) (image.Image, error) {
	cp := style.CellPixels
	w := layer.Cols * cp
	h := layer.Rows * cp

	// Draw from the long-form cell rows; missing cells stay white.
	base := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(base, base.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	facetLabel := FacetLabel(m, mode)
	for _, pr := range layerRows(layer, facetLabel) {
		col := int((pr.X - layer.Origin[0]) / layer.CellWidth)
		row := int((layer.Origin[1] - pr.Y) / layer.CellHeight)
		rect := image.Rect(col*cp, row*cp, (col+1)*cp, (row+1)*cp)
		draw.Draw(base, rect, image.NewUniform(palette[pr.Class]), image.Point{}, draw.Src)
	}

	var body image.Image = base
	if style.PolygonOverlay && polygons != nil && polygons.Len() > 0 {
		overlay, err := r.polygonOverlay(layer, polygons, overlayColor, style, w, h)
		if err != nil {
			return nil, err
		}
		body = blend.Normal(base, overlay)
	}

	facet := image.NewNRGBA(image.Rect(0, 0, w, h+stripH))
	draw.Draw(facet, facet.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	drawStrip(facet, facetLabel, w, stripH, style.StripTextScale)
	draw.Draw(facet, image.Rect(0, stripH, w, h+stripH), body, image.Point{}, draw.Src)
	return facet, nil
}

// polygonOverlay rasterizes the reference polygons into a transparent layer
// in the facet's pixel space, with outlines and optional interior fill.
func (r *PNGRenderer) polygonOverlay(layer *raster.Layer, polygons *geom.PolygonSet, col color.NRGBA, style Style, w, h int) (image.Image, error) {
	if !geom.SameCRS(layer.CRS, polygons.CRS) {
		reprojected, err := r.reprojector().Reproject(polygons, layer.CRS)
		if err != nil {
			return nil, err
		}
		polygons = reprojected
	}

	cp := float64(style.CellPixels)
	toPx := func(x, y float64) (float64, float64) {
		px := (x - layer.Origin[0]) / layer.CellWidth * cp
		py := (layer.Origin[1] - y) / layer.CellHeight * cp
		return px, py
	}

	overlay := image.NewNRGBA(image.Rect(0, 0, w, h))

	if style.PolygonFill {
		fill := col
		// Interior fill at half the outline alpha keeps class colors legible.
		fill.A /= 2
		for py := 0; py < h; py++ {
			for px := 0; px < w; px++ {
				x := layer.Origin[0] + (float64(px)+0.5)/cp*layer.CellWidth
				y := layer.Origin[1] - (float64(py)+0.5)/cp*layer.CellHeight
				if polygons.Contains(orb.Point{x, y}) {
					overlay.SetNRGBA(px, py, fill)
				}
			}
		}
	}

	for _, poly := range polygons.Polygons {
		for _, ring := range poly {
			for i := 1; i < len(ring); i++ {
				x0, y0 := toPx(ring[i-1][0], ring[i-1][1])
				x1, y1 := toPx(ring[i][0], ring[i][1])
				drawLine(overlay, x0, y0, x1, y1, col, style.OutlineWidth)
			}
		}
	}
	return overlay, nil
}

// drawLine draws a straight segment by stamping squares of the given width
// along the longer axis.
func drawLine(img *image.NRGBA, x0, y0, x1, y1 float64, col color.NRGBA, width int) {
	dx := x1 - x0
	dy := y1 - y0
	steps := int(max(math.Abs(dx), math.Abs(dy))) + 1
	half := width / 2
	bounds := img.Bounds()
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		cx := int(x0 + t*dx)
		cy := int(y0 + t*dy)
		for oy := -half; oy <= half; oy++ {
			for ox := -half; ox <= half; ox++ {
				px, py := cx+ox, cy+oy
				if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
					img.SetNRGBA(px, py, col)
				}
			}
		}
	}
}

// stripHeight returns the strip band height for two lines of label text.
func stripHeight(scale int) int {
	return (2*13 + 6) * scale
}

// drawStrip renders the facet label (layer name plus metrics) into the strip
// band at the top of the facet. Text is drawn with the basic 7x13 face and
// upscaled with nearest-neighbour when a larger strip text size is asked for.
func drawStrip(dst *image.NRGBA, label string, w, stripH, scale int) {
	strip := image.NewNRGBA(image.Rect(0, 0, w/max(scale, 1), stripH/max(scale, 1)))
	draw.Draw(strip, strip.Bounds(), image.NewUniform(color.NRGBA{R: 238, G: 238, B: 238, A: 255}), image.Point{}, draw.Src)

	d := font.Drawer{
		Dst:  strip,
		Src:  image.NewUniform(color.NRGBA{A: 255}),
		Face: basicfont.Face7x13,
	}
	for i, line := range strings.Split(label, "\n") {
		d.Dot = fixed.P(4, 13*(i+1))
		d.DrawString(line)
	}

	var band image.Image = strip
	if scale > 1 {
		band = imaging.Resize(strip, w, stripH, imaging.NearestNeighbor)
	}
	draw.Draw(dst, image.Rect(0, 0, w, stripH), band, image.Point{}, draw.Src)
}
