package raster

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// Category pairs one integer cell code with its class label.
type Category struct {
	Code  int    `json:"code"`
	Label string `json:"label"`
}

// CategoryTable is the ordered mapping of cell code to class label for one
// layer. Order is the order classes were declared and is preserved in every
// derived output (palettes, legends, facet tables).
type CategoryTable []Category

// Labels returns the class labels in table order, without deduplication.
func (t CategoryTable) Labels() []string {
	labels := make([]string, len(t))
	for i, c := range t {
		labels[i] = c.Label
	}
	return labels
}

// LabelFor returns the label for code, or "" if the code is not in the table.
func (t CategoryTable) LabelFor(code int) string {
	for _, c := range t {
		if c.Code == code {
			return c.Label
		}
	}
	return ""
}

// CodesFor returns every distinct code mapped to label, in table order.
func (t CategoryTable) CodesFor(label string) []int {
	var codes []int
	for _, c := range t {
		if c.Label != label {
			continue
		}
		dup := false
		for _, seen := range codes {
			if seen == c.Code {
				dup = true
				break
			}
		}
		if !dup {
			codes = append(codes, c.Code)
		}
	}
	return codes
}

// HasCode reports whether code appears in the table.
func (t CategoryTable) HasCode(code int) bool {
	for _, c := range t {
		if c.Code == code {
			return true
		}
	}
	return false
}

// Layer is one categorical raster layer: a row-major grid of integer codes
// plus the metadata needed to place it in space.
type Layer struct {
	// Name identifies the layer in metrics tables and facet strips.
	Name string

	// Cells holds the grid values in row-major order, northernmost row first.
	Cells []int

	// Cols and Rows are the grid dimensions.
	Cols, Rows int

	// Categories maps cell codes to class labels. A nil table means the
	// layer is not categorical and cannot be evaluated.
	Categories CategoryTable

	// CellWidth and CellHeight are the cell dimensions in CRS linear units.
	CellWidth, CellHeight float64

	// Origin is the north-west corner of the grid (west edge, north edge).
	Origin orb.Point

	// CRS identifies the coordinate reference system, e.g. "EPSG:32629".
	CRS string

	// NoData is the missing-value code; only meaningful when HasNoData is set.
	NoData    int
	HasNoData bool
}

// IsCategorical reports whether the layer carries a category table.
func (l *Layer) IsCategorical() bool {
	return l != nil && len(l.Categories) > 0
}

// At returns the value at (col, row) and whether it is a real (non-missing)
// observation. Out-of-range indices are reported as missing.
func (l *Layer) At(col, row int) (int, bool) {
	if col < 0 || col >= l.Cols || row < 0 || row >= l.Rows {
		return 0, false
	}
	v := l.Cells[row*l.Cols+col]
	if l.HasNoData && v == l.NoData {
		return 0, false
	}
	return v, true
}

// CellCenter returns the geographic coordinate of the center of cell
// (col, row).
func (l *Layer) CellCenter(col, row int) orb.Point {
	x := l.Origin[0] + (float64(col)+0.5)*l.CellWidth
	y := l.Origin[1] - (float64(row)+0.5)*l.CellHeight
	return orb.Point{x, y}
}

// PixelArea returns the area of one cell in squared CRS linear units.
func (l *Layer) PixelArea() float64 {
	return l.CellWidth * l.CellHeight
}

// Validate checks the structural invariants a layer must satisfy before
// evaluation: a name, positive dimensions matching the cell slice, and a
// positive resolution.
func (l *Layer) Validate() error {
	if l == nil {
		return fmt.Errorf("nil layer")
	}
	if l.Cols <= 0 || l.Rows <= 0 {
		return fmt.Errorf("layer %q: invalid dimensions %dx%d", l.Name, l.Cols, l.Rows)
	}
	if len(l.Cells) != l.Cols*l.Rows {
		return fmt.Errorf("layer %q: %d cells for %dx%d grid", l.Name, len(l.Cells), l.Cols, l.Rows)
	}
	if l.CellWidth <= 0 || l.CellHeight <= 0 {
		return fmt.Errorf("layer %q: invalid cell size %gx%g", l.Name, l.CellWidth, l.CellHeight)
	}
	return nil
}

// Stack is an ordered collection of named layers. Order is semantic: metrics
// tables and facet layouts follow it exactly.
type Stack struct {
	layers []*Layer
}

// NewStack creates a stack over the given layers, preserving their order.
func NewStack(layers ...*Layer) *Stack {
	s := &Stack{}
	s.layers = append(s.layers, layers...)
	return s
}

// Append adds a layer at the end of the stack.
func (s *Stack) Append(l *Layer) {
	s.layers = append(s.layers, l)
}

// Len returns the number of layers.
func (s *Stack) Len() int { return len(s.layers) }

// Layers returns the layers in stack order. The returned slice must not be
// modified.
func (s *Stack) Layers() []*Layer { return s.layers }

// Names returns the layer names in stack order.
func (s *Stack) Names() []string {
	names := make([]string, len(s.layers))
	for i, l := range s.layers {
		names[i] = l.Name
	}
	return names
}

// ClassRef identifies a class either by its string label or directly by its
// integer cell code. The zero value is invalid; use ByLabel or ByCode.
type ClassRef struct {
	label  string
	code   int
	byCode bool
}

// ByLabel references a class by its label in the category table.
func ByLabel(label string) ClassRef {
	return ClassRef{label: label}
}

// ByCode references a class directly by its integer cell code.
func ByCode(code int) ClassRef {
	return ClassRef{code: code, byCode: true}
}

// IsCode reports whether the reference carries a code rather than a label.
func (r ClassRef) IsCode() bool { return r.byCode }

// Label returns the referenced label; "" for code references.
func (r ClassRef) Label() string { return r.label }

// Code returns the referenced code; only meaningful when IsCode is true.
func (r ClassRef) Code() int { return r.code }

// String renders the reference for error messages and logs.
func (r ClassRef) String() string {
	if r.byCode {
		return fmt.Sprintf("code %d", r.code)
	}
	return fmt.Sprintf("%q", r.label)
}

// ParseClassRef interprets s as a ClassRef for CLI and config inputs. A value
// of the form "code:N" is a code reference; anything else is a label.
func ParseClassRef(s string) (ClassRef, error) {
	if rest, ok := strings.CutPrefix(s, "code:"); ok {
		var code int
		if _, err := fmt.Sscanf(rest, "%d", &code); err != nil {
			return ClassRef{}, fmt.Errorf("invalid class code %q: %w", rest, err)
		}
		return ByCode(code), nil
	}
	if s == "" {
		return ClassRef{}, fmt.Errorf("empty class reference")
	}
	return ByLabel(s), nil
}
