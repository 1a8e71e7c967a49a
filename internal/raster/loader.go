package raster

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/paulmach/orb"
)

// StackCache provides thread-safe caching of loaded layers so the tool server
// can answer repeated calls over the same grids without re-reading them.
//
// Layers are keyed by "gridPath|categoriesPath". Cached layers remain in
// memory until explicitly removed via Evict or Clear.
type StackCache struct {
	mu     sync.RWMutex
	layers map[string]*Layer
}

// NewStackCache creates an empty layer cache ready for concurrent use.
func NewStackCache() *StackCache {
	return &StackCache{layers: make(map[string]*Layer)}
}

func cacheKey(gridPath, categoriesPath string) string {
	return gridPath + "|" + categoriesPath
}

// Load returns the layer for the given grid file and category sidecar,
// reading from disk only on the first call for that pair. The layer name
// defaults to the grid path's base name; callers may override Name on a copy
// but must not mutate the cached layer's cells.
func (c *StackCache) Load(gridPath, categoriesPath string) (*Layer, error) {
	key := cacheKey(gridPath, categoriesPath)

	c.mu.RLock()
	if l, ok := c.layers[key]; ok {
		c.mu.RUnlock()
		return l, nil
	}
	c.mu.RUnlock()

	l, err := LoadLayer(gridPath, categoriesPath)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.layers[key] = l
	c.mu.Unlock()

	return l, nil
}

// Evict removes one cached layer. Unknown keys are ignored.
func (c *StackCache) Evict(gridPath, categoriesPath string) {
	c.mu.Lock()
	delete(c.layers, cacheKey(gridPath, categoriesPath))
	c.mu.Unlock()
}

// Clear empties the cache.
func (c *StackCache) Clear() {
	c.mu.Lock()
	c.layers = make(map[string]*Layer)
	c.mu.Unlock()
}

// categorySidecar is the on-disk JSON shape of a category table.
type categorySidecar struct {
	CRS        string     `json:"crs"`
	NoData     *int       `json:"nodata,omitempty"`
	Categories []Category `json:"categories"`
}

// LoadLayer reads an ESRI ASCII grid plus its JSON category sidecar and
// assembles a Layer. The sidecar is optional: with an empty categoriesPath
// the layer is loaded without a category table (and will be rejected by the
// evaluator as not categorical).
//
// An ESRI ASCII grid is a small header followed by whitespace-separated cell
// values, for example:
//
//	ncols 4
//	nrows 4
//	xllcorner 500000
//	yllcorner 830000
//	cellsize 10
//	nodata_value -9999
//	1 1 1 1
//	...
func LoadLayer(gridPath, categoriesPath string) (*Layer, error) {
	f, err := os.Open(gridPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open grid: %w", err)
	}
	defer f.Close()

	l, err := parseASCIIGrid(bufio.NewScanner(f))
	if err != nil {
		return nil, fmt.Errorf("grid %s: %w", gridPath, err)
	}
	l.Name = baseName(gridPath)

	if categoriesPath != "" {
		data, err := os.ReadFile(categoriesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read category table: %w", err)
		}
		var sidecar categorySidecar
		if err := json.Unmarshal(data, &sidecar); err != nil {
			return nil, fmt.Errorf("category table %s: %w", categoriesPath, err)
		}
		l.Categories = sidecar.Categories
		if sidecar.CRS != "" {
			l.CRS = sidecar.CRS
		}
		if sidecar.NoData != nil {
			l.NoData = *sidecar.NoData
			l.HasNoData = true
		}
	}

	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// parseASCIIGrid reads the header and cell values from an ESRI ASCII grid.
func parseASCIIGrid(scanner *bufio.Scanner) (*Layer, error) {
	scanner.Split(bufio.ScanWords)

	header := map[string]float64{}
	var firstValue string

	// Header keys are lowercase words followed by one numeric value. The
	// header ends at the first token that is not a known key.
	for scanner.Scan() {
		tok := strings.ToLower(scanner.Text())
		switch tok {
		case "ncols", "nrows", "xllcorner", "yllcorner", "xllcenter", "yllcenter", "cellsize", "nodata_value":
			if !scanner.Scan() {
				return nil, fmt.Errorf("header key %q missing value", tok)
			}
			v, err := strconv.ParseFloat(scanner.Text(), 64)
			if err != nil {
				return nil, fmt.Errorf("header key %q: %w", tok, err)
			}
			header[tok] = v
		default:
			firstValue = scanner.Text()
		}
		if firstValue != "" {
			break
		}
	}

	cols := int(header["ncols"])
	rows := int(header["nrows"])
	cellsize, ok := header["cellsize"]
	if cols <= 0 || rows <= 0 || !ok || cellsize <= 0 {
		return nil, fmt.Errorf("incomplete grid header (need ncols, nrows, cellsize)")
	}

	xll, xok := header["xllcorner"]
	yll, yok := header["yllcorner"]
	if !xok {
		// Center-registered grids shift by half a cell.
		if xc, ok := header["xllcenter"]; ok {
			xll = xc - cellsize/2
			xok = true
		}
	}
	if !yok {
		if yc, ok := header["yllcenter"]; ok {
			yll = yc - cellsize/2
			yok = true
		}
	}
	if !xok || !yok {
		return nil, fmt.Errorf("incomplete grid header (need xllcorner, yllcorner)")
	}

	l := &Layer{
		Cols:       cols,
		Rows:       rows,
		CellWidth:  cellsize,
		CellHeight: cellsize,
		// Header gives the lower-left corner; the grid origin is upper-left.
		Origin: orb.Point{xll, yll + float64(rows)*cellsize},
	}
	if nd, ok := header["nodata_value"]; ok {
		l.NoData = int(nd)
		l.HasNoData = true
	}

	l.Cells = make([]int, 0, cols*rows)
	appendCell := func(tok string) error {
		v, err := strconv.Atoi(tok)
		if err != nil {
			return fmt.Errorf("cell %d: %w", len(l.Cells), err)
		}
		l.Cells = append(l.Cells, v)
		return nil
	}

	if firstValue != "" {
		if err := appendCell(firstValue); err != nil {
			return nil, err
		}
	}
	for scanner.Scan() {
		if err := appendCell(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}

	if len(l.Cells) != cols*rows {
		return nil, fmt.Errorf("expected %d cells, got %d", cols*rows, len(l.Cells))
	}
	return l, nil
}

func baseName(path string) string {
	base := path
	if i := strings.LastIndexAny(base, "/\\"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}

// LayerInfo contains metadata about a loaded layer without exposing the grid
// itself.
type LayerInfo struct {
	Name       string  `json:"name"`
	Cols       int     `json:"cols"`
	Rows       int     `json:"rows"`
	CellWidth  float64 `json:"cell_width"`
	CellHeight float64 `json:"cell_height"`
	CRS        string  `json:"crs"`
	Classes    int     `json:"classes"`
	ClassList  string  `json:"class_list"`
	HasNoData  bool    `json:"has_nodata"`
}

// Info summarizes a layer for tool responses and logs.
func Info(l *Layer) *LayerInfo {
	return &LayerInfo{
		Name:       l.Name,
		Cols:       l.Cols,
		Rows:       l.Rows,
		CellWidth:  l.CellWidth,
		CellHeight: l.CellHeight,
		CRS:        l.CRS,
		Classes:    len(l.Categories),
		ClassList:  strings.Join(l.Categories.Labels(), ", "),
		HasNoData:  l.HasNoData,
	}
}
