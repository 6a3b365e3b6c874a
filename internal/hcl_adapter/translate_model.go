// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/vk/dyninputs/internal/config"
	"github.com/vk/dyninputs/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// translateNodeType converts the HCL-specific node_type schema into the agnostic model.
func (l *Loader) translateNodeType(ctx context.Context, b *NodeTypeBlock) (*config.NodeType, error) {
	logger := ctxlog.FromContext(ctx).With("node_type", b.Name)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Translating HCL node_type to internal config model.")

	nt := &config.NodeType{
		Name:        b.Name,
		PayloadType: b.PayloadType,
		Prefix:      b.Prefix,
		Aliases:     b.Aliases,
	}

	if isExprDefined(ctx, b.Shape, "shape") {
		shape, err := evalShape(b)
		if err != nil {
			return nil, fmt.Errorf("node type '%s': %w", b.Name, err)
		}
		nt.Shape = shape
	}

	return nt, nil
}

// evalShape evaluates the optional shape attribute as a whole number. A null
// value means "no hint".
func evalShape(b *NodeTypeBlock) (*int, error) {
	val, diags := b.Shape.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to evaluate 'shape': %w", diags)
	}
	if val.IsNull() {
		return nil, nil
	}

	numVal, err := convert.Convert(val, cty.Number)
	if err != nil {
		return nil, fmt.Errorf("'shape' must be a number: %w", err)
	}

	var shape int
	if err := gocty.FromCtyValue(numVal, &shape); err != nil {
		return nil, fmt.Errorf("'shape' must be a whole number: %w", err)
	}
	return &shape, nil
}
