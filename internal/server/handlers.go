package server

import (
	"encoding/json"
	"fmt"

	"github.com/terralens/spatialval/internal/geom"
	"github.com/terralens/spatialval/internal/raster"
	"github.com/terralens/spatialval/internal/render"
)

// ToolCallParams are the parameters of a tools/call request.
type ToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall executes the named tool and wraps its result in MCP's
// content format. Tool failures become JSON-RPC errors with code -32000.
func (s *Server) handleToolsCall(req *Request) *Response {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches to the tool handlers.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "raster_stack_load":
		return s.handleStackLoad(args)
	case "spatial_accuracy":
		return s.handleSpatialAccuracy(args)
	case "calculate_area":
		return s.handleCalculateArea(args)
	case "render_facet_map":
		return s.handleRenderFacetMap(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

func (s *Server) errorResponse(id interface{}, code int, message, data string) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &RPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Argument types ===

type layerArg struct {
	Name       string `json:"name"`
	GridPath   string `json:"grid_path"`
	Categories string `json:"categories_path"`
}

// classArg accepts the target class either as a string label or as a bare
// integer cell code, resolved later by the evaluator.
type classArg struct {
	ref raster.ClassRef
}

func (c *classArg) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		c.ref = raster.ByLabel(label)
		return nil
	}
	var code int
	if err := json.Unmarshal(data, &code); err == nil {
		c.ref = raster.ByCode(code)
		return nil
	}
	return fmt.Errorf("target_class must be a string label or an integer code, got %s", string(data))
}

type styleArgs struct {
	LabelMode      string   `json:"label_mode"`
	PolygonOverlay *bool    `json:"polygon_overlay"`
	PolygonColor   string   `json:"polygon_color"`
	PolygonFill    bool     `json:"polygon_fill"`
	OutlineWidth   int      `json:"outline_width"`
	Opacity        *float64 `json:"opacity"`
	FacetCols      int      `json:"facet_cols"`
	CellPixels     int      `json:"cell_pixels"`
	StripTextScale int      `json:"strip_text_scale"`
}

func (a styleArgs) style() render.Style {
	st := render.DefaultStyle()
	if a.PolygonOverlay != nil {
		st.PolygonOverlay = *a.PolygonOverlay
	}
	if a.PolygonColor != "" {
		st.PolygonColor = a.PolygonColor
	}
	st.PolygonFill = a.PolygonFill
	if a.OutlineWidth > 0 {
		st.OutlineWidth = a.OutlineWidth
	}
	if a.Opacity != nil {
		st.Opacity = *a.Opacity
	}
	if a.FacetCols > 0 {
		st.FacetCols = a.FacetCols
	}
	if a.CellPixels > 0 {
		st.CellPixels = a.CellPixels
	}
	if a.StripTextScale > 0 {
		st.StripTextScale = a.StripTextScale
	}
	return st
}

func (a styleArgs) labelMode() (render.LabelMode, error) {
	if a.LabelMode == "" {
		return render.LabelAccuracy, nil
	}
	return render.ParseLabelMode(a.LabelMode)
}

// loadStack loads the requested layers through the cache, preserving the
// argument order.
func (s *Server) loadStack(specs []layerArg) (*raster.Stack, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("no layers given")
	}
	stack := raster.NewStack()
	for i, spec := range specs {
		l, err := s.cache.Load(spec.GridPath, spec.Categories)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		if spec.Name != "" && spec.Name != l.Name {
			renamed := *l
			renamed.Name = spec.Name
			l = &renamed
		}
		stack.Append(l)
	}
	return stack, nil
}

// === Tool handlers ===

type stackLoadArgs struct {
	Layers []layerArg `json:"layers"`
}

func (s *Server) handleStackLoad(args json.RawMessage) (interface{}, error) {
	var a stackLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	stack, err := s.loadStack(a.Layers)
	if err != nil {
		return nil, err
	}
	infos := make([]*raster.LayerInfo, stack.Len())
	for i, l := range stack.Layers() {
		infos[i] = raster.Info(l)
	}
	return map[string]interface{}{"layers": infos}, nil
}

type spatialAccuracyArgs struct {
	styleArgs
	Layers      []layerArg `json:"layers"`
	Polygons    string     `json:"polygons_path"`
	PolygonsCRS string     `json:"polygons_crs"`
	TargetClass classArg   `json:"target_class"`
	IncludeMap  bool       `json:"include_map"`
	Workers     int        `json:"workers"`
}

func (s *Server) handleSpatialAccuracy(args json.RawMessage) (interface{}, error) {
	var a spatialAccuracyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	stack, err := s.loadStack(a.Layers)
	if err != nil {
		return nil, err
	}
	polygons, err := geom.LoadGeoJSONFile(a.Polygons, a.PolygonsCRS)
	if err != nil {
		return nil, err
	}

	batch := *s.batch
	batch.Workers = a.Workers
	table, err := batch.EvaluateStack(stack, polygons, a.TargetClass.ref)
	if err != nil {
		return nil, err
	}

	result := map[string]interface{}{"metrics": table}
	if a.IncludeMap {
		mode, err := a.labelMode()
		if err != nil {
			return nil, err
		}
		m, err := s.renderer.RenderFacetMap(stack, table, mode, polygons, a.style())
		if err != nil {
			return nil, err
		}
		result["map"] = m
	}
	return result, nil
}

type calculateAreaArgs struct {
	Layer       layerArg `json:"layer"`
	Polygons    string   `json:"polygons_path"`
	PolygonsCRS string   `json:"polygons_crs"`
	TargetClass classArg `json:"target_class"`
}

func (s *Server) handleCalculateArea(args json.RawMessage) (interface{}, error) {
	var a calculateAreaArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	stack, err := s.loadStack([]layerArg{a.Layer})
	if err != nil {
		return nil, err
	}
	polygons, err := geom.LoadGeoJSONFile(a.Polygons, a.PolygonsCRS)
	if err != nil {
		return nil, err
	}

	return s.batch.CalculateArea(stack.Layers()[0], polygons, a.TargetClass.ref)
}

type renderFacetMapArgs struct {
	styleArgs
	Layers      []layerArg `json:"layers"`
	Polygons    string     `json:"polygons_path"`
	PolygonsCRS string     `json:"polygons_crs"`
	TargetClass classArg   `json:"target_class"`
}

func (s *Server) handleRenderFacetMap(args json.RawMessage) (interface{}, error) {
	var a renderFacetMapArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	stack, err := s.loadStack(a.Layers)
	if err != nil {
		return nil, err
	}
	polygons, err := geom.LoadGeoJSONFile(a.Polygons, a.PolygonsCRS)
	if err != nil {
		return nil, err
	}

	table, err := s.batch.EvaluateStack(stack, polygons, a.TargetClass.ref)
	if err != nil {
		return nil, err
	}

	mode, err := a.labelMode()
	if err != nil {
		return nil, err
	}
	return s.renderer.RenderFacetMap(stack, table, mode, polygons, a.style())
}
