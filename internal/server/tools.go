package server

// Tool is an MCP tool definition.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// layerSchema describes one raster layer argument: the grid file and its
// category sidecar, plus an optional display name.
func layerSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"name": map[string]interface{}{
				"type":        "string",
				"description": "Display name for the layer. Defaults to the grid file name.",
			},
			"grid_path": map[string]interface{}{
				"type":        "string",
				"description": "Path to the ESRI ASCII grid (.asc) file",
			},
			"categories_path": map[string]interface{}{
				"type":        "string",
				"description": "Path to the JSON category table sidecar",
			},
		},
		"required": []string{"grid_path", "categories_path"},
	}
}

func polygonProps() map[string]interface{} {
	return map[string]interface{}{
		"polygons_path": map[string]interface{}{
			"type":        "string",
			"description": "Path to the reference polygons (GeoJSON)",
		},
		"polygons_crs": map[string]interface{}{
			"type":        "string",
			"description": "CRS of the polygons, e.g. EPSG:4326. Defaults to EPSG:4326.",
		},
	}
}

func targetClassProp() map[string]interface{} {
	return map[string]interface{}{
		"description": "Target class, as its label (string) or its integer cell code",
	}
}

func styleProps() map[string]interface{} {
	return map[string]interface{}{
		"label_mode": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"accuracy", "scr", "both"},
			"description": "What metrics appear in each facet strip (default accuracy)",
			"default":     "accuracy",
		},
		"polygon_overlay": map[string]interface{}{
			"type":        "boolean",
			"description": "Draw the reference polygons on each facet",
			"default":     true,
		},
		"polygon_color": map[string]interface{}{
			"type":        "string",
			"description": "Overlay color as hex (default #222222)",
			"default":     "#222222",
		},
		"polygon_fill": map[string]interface{}{
			"type":        "boolean",
			"description": "Fill polygon interiors in addition to outlines",
			"default":     false,
		},
		"outline_width": map[string]interface{}{
			"type":        "integer",
			"description": "Polygon outline width in pixels (default 2)",
			"default":     2,
		},
		"opacity": map[string]interface{}{
			"type":        "number",
			"description": "Overlay opacity 0-1 (default 0.8)",
			"default":     0.8,
		},
		"facet_cols": map[string]interface{}{
			"type":        "integer",
			"description": "Number of facet columns (default 2)",
			"default":     2,
		},
		"cell_pixels": map[string]interface{}{
			"type":        "integer",
			"description": "Output pixels per raster cell (default 24)",
			"default":     24,
		},
		"strip_text_scale": map[string]interface{}{
			"type":        "integer",
			"description": "Strip label text scale (default 1)",
			"default":     1,
		},
	}
}

// GetToolDefinitions returns all available tools.
func GetToolDefinitions() []Tool {
	accuracyProps := map[string]interface{}{
		"layers": map[string]interface{}{
			"type":        "array",
			"items":       layerSchema(),
			"description": "Ordered classification layers to evaluate; output order follows this order",
		},
		"target_class": targetClassProp(),
		"include_map": map[string]interface{}{
			"type":        "boolean",
			"description": "Also render and return the facet map as base64 PNG",
			"default":     false,
		},
		"workers": map[string]interface{}{
			"type":        "integer",
			"description": "Parallel layer evaluations (default 1, sequential)",
			"default":     1,
		},
	}
	for k, v := range polygonProps() {
		accuracyProps[k] = v
	}
	for k, v := range styleProps() {
		accuracyProps[k] = v
	}

	areaProps := map[string]interface{}{
		"layer":        layerSchema(),
		"target_class": targetClassProp(),
	}
	for k, v := range polygonProps() {
		areaProps[k] = v
	}

	renderProps := map[string]interface{}{
		"layers": map[string]interface{}{
			"type":        "array",
			"items":       layerSchema(),
			"description": "Ordered classification layers to render",
		},
		"target_class": targetClassProp(),
	}
	for k, v := range polygonProps() {
		renderProps[k] = v
	}
	for k, v := range styleProps() {
		renderProps[k] = v
	}

	return []Tool{
		{
			Name:        "raster_stack_load",
			Description: "Load one or more categorical raster layers and return their metadata (dimensions, resolution, CRS, classes). Layers stay cached for subsequent calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"layers": map[string]interface{}{
						"type":        "array",
						"items":       layerSchema(),
						"description": "Layers to load",
					},
				},
				"required": []string{"layers"},
			},
		},
		{
			Name:        "spatial_accuracy",
			Description: "Evaluate classification layers against reference polygons: UA, PA, F1, SCR and area statistics per layer, in input order. Optionally renders the faceted comparison map.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": accuracyProps,
				"required":   []string{"layers", "polygons_path", "target_class"},
			},
		},
		{
			Name:        "calculate_area",
			Description: "Compute area statistics for one class of one layer relative to reference polygons: pixel counts and areas inside/outside, percentage in polygon, and SCR.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": areaProps,
				"required":   []string{"layer", "polygons_path", "target_class"},
			},
		},
		{
			Name:        "render_facet_map",
			Description: "Render the faceted comparison map for a set of classification layers, one facet per layer in input order, and return it as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": renderProps,
				"required":   []string{"layers", "polygons_path", "target_class"},
			},
		},
	}
}

// handleToolsList returns the list of available tools.
func (s *Server) handleToolsList(req *Request) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
