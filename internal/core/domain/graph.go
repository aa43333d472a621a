package domain

import (
	"slices"
	"strings"

	"github.com/gammazero/toposort"
	"go.trai.ch/zerr"
)

// Graph is an ephemeral view over a task table: one vertex per task, edges
// from required dependencies and from run-before hints.
type Graph struct {
	names []InternedString
	edges map[InternedString][]InternedString
}

// BuildGraph derives the dependency graph of the given tasks.
// A required dependency naming an unregistered task is an error; a run-before
// hint naming an unregistered task is ignored. Disabled tasks stay in the
// graph so the transitive order through them is preserved.
func BuildGraph(tasks map[InternedString]*Task) (*Graph, error) {
	g := &Graph{
		names: make([]InternedString, 0, len(tasks)),
		edges: make(map[InternedString][]InternedString, len(tasks)),
	}

	for name := range tasks {
		g.names = append(g.names, name)
	}
	// Sorted names make the reported error stable.
	slices.SortFunc(g.names, compareNames)

	for _, name := range g.names {
		task := tasks[name]
		for _, dep := range task.Requirements() {
			if _, ok := tasks[dep]; !ok {
				return nil, zerr.With(zerr.With(ErrUnsatisfiedDependency, "task", name.String()), "dependency", dep.String())
			}
			g.addEdge(dep, name)
		}
		for _, succ := range task.Before {
			if _, ok := tasks[succ]; ok {
				g.addEdge(name, succ)
			}
		}
	}

	return g, nil
}

func (g *Graph) addEdge(from, to InternedString) {
	g.edges[from] = append(g.edges[from], to)
}

// Sort returns the task names in an order where every task follows its
// required predecessors and precedes the targets of its run-before hints.
func (g *Graph) Sort() ([]InternedString, error) {
	edges := make([]toposort.Edge, 0, len(g.names))
	for _, name := range g.names {
		// A nil source keeps isolated vertices in the result.
		edges = append(edges, toposort.Edge{nil, name})
		for _, to := range g.edges[name] {
			edges = append(edges, toposort.Edge{name, to})
		}
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, zerr.With(ErrCyclicDependency, "tasks", strings.Join(g.unsortable(), ", "))
	}

	order := make([]InternedString, 0, len(g.names))
	for _, v := range sorted {
		if v == nil {
			continue
		}
		order = append(order, v.(InternedString))
	}
	return order, nil
}

// unsortable returns the vertices that remain once every vertex reachable
// from a source has been peeled off: the members of cycles and everything
// downstream of them.
func (g *Graph) unsortable() []string {
	inDegree := make(map[InternedString]int, len(g.names))
	for _, name := range g.names {
		for _, to := range g.edges[name] {
			inDegree[to]++
		}
	}

	var queue []InternedString
	for _, name := range g.names {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, to := range g.edges[name] {
			inDegree[to]--
			if inDegree[to] == 0 {
				queue = append(queue, to)
			}
		}
		delete(inDegree, name)
	}

	var left []string
	for _, name := range g.names {
		if inDegree[name] > 0 {
			left = append(left, name.String())
		}
	}
	return left
}

// Sort builds the dependency graph of tasks and returns its execution order.
func Sort(tasks map[InternedString]*Task) ([]InternedString, error) {
	g, err := BuildGraph(tasks)
	if err != nil {
		return nil, err
	}
	return g.Sort()
}

func compareNames(a, b InternedString) int {
	return strings.Compare(a.String(), b.String())
}
