package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/dyninputs/internal/config"
	"github.com/vk/dyninputs/internal/ctxlog"
	"github.com/vk/dyninputs/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot decodes the top-level blocks of a node type definition file.
type fileRoot struct {
	NodeTypes []*NodeTypeBlock `hcl:"node_type,block"`
	Remain    hcl.Body         `hcl:",remain"`
}

// NodeTypeBlock is the HCL schema of a `node_type "<name>" { ... }` block.
type NodeTypeBlock struct {
	Name        string         `hcl:"name,label"`
	PayloadType string         `hcl:"payload_type,optional"`
	Prefix      string         `hcl:"prefix,optional"`
	Aliases     []string       `hcl:"aliases,optional"`
	Shape       hcl.Expression `hcl:"shape,optional"`
}

// Load parses every .hcl file under the given paths and merges their
// node_type blocks into a single validated model. A name defined in more
// than one block is an error.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := config.NewModel()

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, block := range root.NodeTypes {
			if _, exists := model.NodeTypes[block.Name]; exists {
				return nil, fmt.Errorf("node type '%s' in %s: defined more than once", block.Name, file)
			}
			nt, err := l.translateNodeType(ctx, block)
			if err != nil {
				return nil, fmt.Errorf("in file %s: %w", file, err)
			}
			model.NodeTypes[nt.Name] = nt
		}
	}

	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid node type definitions: %w", err)
	}

	logger.Debug("HCL loading complete.", "node_types", len(model.NodeTypes))
	return model, nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // It's not an error if a configured path doesn't exist.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if filepath.Ext(path) == ".hcl" {
				add(path)
			}
			continue
		}

		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			add(p)
		}
	}
	return allFiles, nil
}
