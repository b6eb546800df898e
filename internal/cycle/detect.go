package cycle

import (
	"github.com/specialistvlad/patchgraph/internal/handle"
)

// Graph exposes the node-level adjacency of a routing graph.
type Graph interface {
	Successors(n handle.Node) ([]handle.Node, error)
}

// WouldCreateCycle reports whether adding an adjacency src -> dst would close
// a cycle, i.e. whether src is reachable from dst. A self-edge always does.
func WouldCreateCycle(g Graph, src, dst handle.Node) (bool, error) {
	if src == dst {
		return true, nil
	}

	visited := make(map[handle.Node]bool)
	var visit func(n handle.Node) (bool, error)
	visit = func(n handle.Node) (bool, error) {
		if n == src {
			return true, nil
		}
		if visited[n] {
			return false, nil
		}
		visited[n] = true

		next, err := g.Successors(n)
		if err != nil {
			return false, err
		}
		for _, m := range next {
			found, err := visit(m)
			if err != nil || found {
				return found, err
			}
		}
		return false, nil
	}
	return visit(dst)
}

// Find returns every simple cycle that runs through the adjacency src -> dst,
// as the list of its nodes starting at dst and ending at src. The adjacency
// itself need not exist yet.
func Find(g Graph, src, dst handle.Node) ([][]handle.Node, error) {
	if src == dst {
		return [][]handle.Node{{src}}, nil
	}

	var cycles [][]handle.Node
	onPath := make(map[handle.Node]bool)
	path := make([]handle.Node, 0, 8)

	var walk func(n handle.Node) error
	walk = func(n handle.Node) error {
		path = append(path, n)
		onPath[n] = true
		defer func() {
			path = path[:len(path)-1]
			delete(onPath, n)
		}()

		if n == src {
			cycles = append(cycles, append([]handle.Node(nil), path...))
			return nil
		}
		next, err := g.Successors(n)
		if err != nil {
			return err
		}
		for _, m := range next {
			if onPath[m] {
				continue
			}
			if err := walk(m); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(dst); err != nil {
		return nil, err
	}
	return cycles, nil
}
