package eval

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/terralens/spatialval/internal/geom"
	"github.com/terralens/spatialval/internal/raster"
)

// LayerEvaluator runs the full pipeline for a single layer: reproject
// polygons to the layer CRS when they differ, verify the layer is
// categorical, resolve the target class, mask, accumulate confusion counts,
// and compute metrics. Any sub-step failure propagates unchanged; no partial
// record is returned.
type LayerEvaluator struct {
	// Reprojector reconciles polygon and raster coordinate systems.
	// Defaults to WebMercatorReprojector when nil.
	Reprojector geom.Reprojector
}

func (e *LayerEvaluator) reprojector() geom.Reprojector {
	if e.Reprojector != nil {
		return e.Reprojector
	}
	return geom.WebMercatorReprojector{}
}

// preparePolygons returns the polygon set in the layer's CRS, reprojecting
// when needed. A CRS mismatch is a recovered path, not an error.
func (e *LayerEvaluator) preparePolygons(layer *raster.Layer, polygons *geom.PolygonSet) (*geom.PolygonSet, error) {
	if polygons == nil {
		return nil, &InvalidInputTypeError{Argument: "polygons", Want: "polygon set"}
	}
	if geom.SameCRS(layer.CRS, polygons.CRS) {
		return polygons, nil
	}
	slog.Debug("reprojecting polygons to layer CRS",
		"layer", layer.Name, "from", polygons.CRS, "to", layer.CRS)
	reprojected, err := e.reprojector().Reproject(polygons, layer.CRS)
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", layer.Name, err)
	}
	return reprojected, nil
}

// Evaluate produces the metrics record for one layer against the reference
// polygons and target class.
func (e *LayerEvaluator) Evaluate(layer *raster.Layer, polygons *geom.PolygonSet, target raster.ClassRef) (LayerMetrics, error) {
	if layer == nil {
		return LayerMetrics{}, &InvalidInputTypeError{Argument: "layer", Want: "categorical raster layer"}
	}

	polygons, err := e.preparePolygons(layer, polygons)
	if err != nil {
		return LayerMetrics{}, err
	}

	code, err := ResolveClass(layer, target)
	if err != nil {
		return LayerMetrics{}, err
	}

	masked, err := Mask(layer, polygons)
	if err != nil {
		return LayerMetrics{}, err
	}

	counts := Accumulate(masked, code)
	m := ComputeMetrics(counts, layer.PixelArea(), polygons.Area())
	m.Layer = layer.Name
	return m, nil
}

// BatchEvaluator evaluates an ordered stack of layers against one polygon
// set. Results are assembled in input layer order regardless of evaluation
// order; if any layer fails the whole batch fails with the first error and
// no partial table is returned.
type BatchEvaluator struct {
	LayerEvaluator

	// Workers bounds concurrent layer evaluations. Values below 2 evaluate
	// sequentially, like the reference.
	Workers int
}

// EvaluateStack evaluates every layer of the stack in order and assembles
// the metrics table.
func (b *BatchEvaluator) EvaluateStack(stack *raster.Stack, polygons *geom.PolygonSet, target raster.ClassRef) (MetricsTable, error) {
	if stack == nil || stack.Len() == 0 {
		return nil, &InvalidInputTypeError{Argument: "stack", Want: "non-empty raster stack"}
	}

	layers := stack.Layers()
	table := make(MetricsTable, len(layers))

	if b.Workers > 1 {
		g, ctx := errgroup.WithContext(context.Background())
		g.SetLimit(b.Workers)
		for i, layer := range layers {
			i, layer := i, layer
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				m, err := b.Evaluate(layer, polygons, target)
				if err != nil {
					return err
				}
				// Each goroutine owns exactly one slot; input order is
				// preserved structurally.
				table[i] = m
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return table, nil
	}

	for i, layer := range layers {
		m, err := b.Evaluate(layer, polygons, target)
		if err != nil {
			return nil, err
		}
		table[i] = m
	}
	return table, nil
}
