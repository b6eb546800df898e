package patch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/patchgraph/internal/ctxlog"
)

var (
	ErrNoFiles        = errors.New("no patch files found")
	ErrDuplicateNode  = errors.New("duplicate node name")
	ErrDuplicateBlock = errors.New("duplicate block")
)

// Load parses every .hcl file under paths and merges them into one Patch.
// Directories are walked recursively.
func Load(ctx context.Context, paths ...string) (*Patch, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Patch loader started.", "path_count", len(paths))

	files, err := findFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %v", ErrNoFiles, paths)
	}
	logger.Debug("Discovered patch files.", "files", files)

	p := &Patch{SampleRate: DefaultSampleRate, Length: DefaultLength}
	parser := hclparse.NewParser()
	seenContext := ""
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse patch file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode patch file %s: %w", file, diags)
		}

		if root.Context != nil {
			if seenContext != "" {
				return nil, fmt.Errorf("%w: context declared in %s and %s", ErrDuplicateBlock, seenContext, file)
			}
			seenContext = file
			if root.Context.SampleRate != nil {
				p.SampleRate = *root.Context.SampleRate
			}
			if root.Context.Length != nil {
				p.Length = *root.Context.Length
			}
		}
		if err := p.merge(ctx, file, &root); err != nil {
			return nil, err
		}
	}
	if p.SampleRate <= 0 || p.Length <= 0 {
		return nil, fmt.Errorf("context: sample_rate and length must be positive")
	}

	logger.Debug("Patch loading complete.", "nodes", len(p.Nodes), "connections", len(p.Connections))
	return p, nil
}

func (p *Patch) merge(ctx context.Context, file string, root *fileRoot) error {
	for _, nb := range root.Nodes {
		if nb.Name == Destination {
			return fmt.Errorf("%s: node name %q is reserved", file, Destination)
		}
		if prev, ok := p.Node(nb.Name); ok {
			return fmt.Errorf("%w: %q in %s and %s", ErrDuplicateNode, nb.Name, prev.File, file)
		}
		n, err := translateNode(ctx, file, nb)
		if err != nil {
			return err
		}
		p.Nodes = append(p.Nodes, n)
	}
	for _, cb := range root.Connects {
		from, err := ParseAddress(cb.From)
		if err != nil {
			return fmt.Errorf("%s: connect from: %w", file, err)
		}
		to, err := ParseAddress(cb.To)
		if err != nil {
			return fmt.Errorf("%s: connect to: %w", file, err)
		}
		if from.IsParam() {
			return fmt.Errorf("%s: connect from %s: %w: a param is not a source", file, from, ErrInvalidAddress)
		}
		p.Connections = append(p.Connections, &Connection{From: from, To: to, File: file})
	}
	return nil
}

// findFiles returns the .hcl files under paths, each once, in walk order.
func findFiles(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok && filepath.Ext(p) == ".hcl" {
			seen[p] = struct{}{}
			files = append(files, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
