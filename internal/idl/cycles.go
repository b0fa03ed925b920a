package idl

import (
	"slices"
	"strings"

	"github.com/roach88/webnngen/internal/ir"
)

// memberGraph maps a structure key to the structure keys it holds by value.
type memberGraph map[string][]string

func buildMemberGraph(types map[string]ir.Type) memberGraph {
	keyOf := make(map[ir.Type]string, len(types))
	for key, t := range types {
		keyOf[t] = key
	}
	graph := make(memberGraph)
	for key, t := range types {
		s, ok := t.(*ir.StructureType)
		if !ok {
			continue
		}
		edges := []string{}
		for _, m := range s.Members {
			if m.Annotation != ir.AnnotationValue || m.Type.Category() != ir.CategoryStructure {
				continue
			}
			edges = append(edges, keyOf[m.Type])
		}
		slices.Sort(edges)
		graph[key] = slices.Compact(edges)
	}
	return graph
}

// checkValueCycles rejects structures that contain themselves by value,
// directly or through other structures. Such a layout has no finite size.
func (b *builder) checkValueCycles() error {
	graph := buildMemberGraph(b.types)
	for _, scc := range tarjanSCC(graph) {
		if len(scc) == 1 && !slices.Contains(graph[scc[0]], scc[0]) {
			continue
		}
		slices.Sort(scc)
		if len(scc) == 1 {
			return b.errorf(scc[0], "members", "structure contains itself by value")
		}
		return b.errorf(scc[0], "members", "structures contain each other by value: %s", strings.Join(scc, ", "))
	}
	return nil
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in sorted order so the first reported cycle is stable.
func tarjanSCC(graph memberGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	slices.Sort(nodes)
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}
