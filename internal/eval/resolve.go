package eval

import (
	"github.com/terralens/spatialval/internal/raster"
)

// ResolveClass resolves a class reference against a layer's category table
// and returns the unique integer cell code.
//
// Failure modes:
//   - the layer has no category table: NotCategoricalError
//   - a label not present in the table, or a code not present in the table:
//     UnknownClassError naming the available classes
//   - a label mapped to more than one distinct code: AmbiguousClassError
func ResolveClass(layer *raster.Layer, ref raster.ClassRef) (int, error) {
	if layer == nil {
		return 0, &InvalidInputTypeError{Argument: "layer", Want: "categorical raster layer"}
	}
	if !layer.IsCategorical() {
		return 0, &NotCategoricalError{Layer: layer.Name}
	}

	if ref.IsCode() {
		if !layer.Categories.HasCode(ref.Code()) {
			return 0, &UnknownClassError{Class: ref.String(), Available: layer.Categories.Labels()}
		}
		return ref.Code(), nil
	}

	codes := layer.Categories.CodesFor(ref.Label())
	switch len(codes) {
	case 0:
		return 0, &UnknownClassError{Class: ref.String(), Available: layer.Categories.Labels()}
	case 1:
		return codes[0], nil
	default:
		return 0, &AmbiguousClassError{Class: ref.Label(), Codes: codes}
	}
}
