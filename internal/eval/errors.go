package eval

import (
	"fmt"
	"strings"
)

// InvalidInputTypeError reports an argument that is not the expected spatial
// type (nil layer, nil polygon set, malformed grid).
type InvalidInputTypeError struct {
	Argument string
	Want     string
	Detail   string
}

func (e *InvalidInputTypeError) Error() string {
	msg := fmt.Sprintf("invalid %s: expected %s", e.Argument, e.Want)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// NotCategoricalError reports a layer that lacks a category table and so
// cannot be evaluated against class labels.
type NotCategoricalError struct {
	Layer string
}

func (e *NotCategoricalError) Error() string {
	return fmt.Sprintf("layer %q is not categorical: no category table", e.Layer)
}

// UnknownClassError reports a requested class absent from the category
// table. The message enumerates the available classes.
type UnknownClassError struct {
	Class     string
	Available []string
}

func (e *UnknownClassError) Error() string {
	return fmt.Sprintf("unknown class %s: available classes: %s",
		e.Class, strings.Join(e.Available, ", "))
}

// AmbiguousClassError reports a label mapped to more than one distinct code.
type AmbiguousClassError struct {
	Class string
	Codes []int
}

func (e *AmbiguousClassError) Error() string {
	codes := make([]string, len(e.Codes))
	for i, c := range e.Codes {
		codes[i] = fmt.Sprintf("%d", c)
	}
	return fmt.Sprintf("ambiguous class %q: maps to codes %s", e.Class, strings.Join(codes, ", "))
}
