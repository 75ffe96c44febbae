package di

import (
	stderrors "errors"
	"reflect"
	"sort"

	"github.com/kbukum/sdi/errors"
)

// Graph declares registered types and their dependency relationships.
type Graph struct {
	Nodes map[reflect.Type]Lifetime
	Edges []Edge
}

// Edge represents a dependency: To depends on From.
type Edge struct {
	From reflect.Type
	To   reflect.Type
}

// Graph returns the dependency graph of the registered factories. Edges to
// unregistered types are left out; Validate reports them.
func (inj *Injector) Graph() *Graph {
	infos := inj.Registrations()
	g := &Graph{Nodes: make(map[reflect.Type]Lifetime, len(infos))}
	for _, info := range infos {
		g.Nodes[info.Type] = info.Lifetime
	}
	for _, info := range infos {
		for _, dep := range info.Dependencies {
			if _, ok := g.Nodes[dep]; ok {
				g.Edges = append(g.Edges, Edge{From: dep, To: info.Type})
			}
		}
	}
	return g
}

// Validate checks, without invoking any factory, that every dependency of a
// registered factory is registered and that the graph has no cycle. All
// problems are returned joined.
func (inj *Injector) Validate() error {
	var errs []error
	for _, info := range inj.Registrations() {
		for _, dep := range info.Dependencies {
			if inj.IsRegistered(dep) {
				continue
			}
			errs = append(errs, errors.UnregisteredType(dep.String()).
				WithDetail("required_by", info.Type.String()))
		}
	}
	if _, err := BuildLevels(inj.Graph()); err != nil {
		errs = append(errs, err)
	}
	return stderrors.Join(errs...)
}

// BuildLevels uses Kahn's algorithm to group types by dependency level.
// Level 0 holds types without dependencies; every type only depends on
// types of lower levels. Types within a level are sorted by name.
// Returns a CYCLIC_DEPENDENCY error naming one cycle if the graph has any.
func BuildLevels(g *Graph) ([][]reflect.Type, error) {
	// Build adjacency list and in-degree map
	inDegree := make(map[reflect.Type]int, len(g.Nodes))
	dependents := make(map[reflect.Type][]reflect.Type) // from -> [to...]

	for t := range g.Nodes {
		inDegree[t] = 0
	}

	for _, e := range g.Edges {
		if _, ok := g.Nodes[e.From]; !ok {
			return nil, errors.UnregisteredType(e.From.String()).WithDetail("required_by", e.To.String())
		}
		if _, ok := g.Nodes[e.To]; !ok {
			return nil, errors.UnregisteredType(e.To.String())
		}
		inDegree[e.To]++
		dependents[e.From] = append(dependents[e.From], e.To)
	}

	// Collect types with no incoming edges (level 0)
	var queue []reflect.Type
	for t, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, t)
		}
	}

	var levels [][]reflect.Type
	visited := 0

	for len(queue) > 0 {
		sortTypes(queue)
		levels = append(levels, queue)
		visited += len(queue)

		var next []reflect.Type
		for _, t := range queue {
			for _, dep := range dependents[t] {
				inDegree[dep]--
				if inDegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		queue = next
	}

	if visited != len(g.Nodes) {
		return nil, errors.CyclicDependency(findCycle(g, inDegree))
	}

	return levels, nil
}

// findCycle walks dependencies among the types Kahn's algorithm could not
// process. Each of them still depends on another one, so the walk repeats.
func findCycle(g *Graph, inDegree map[reflect.Type]int) []string {
	dependsOn := make(map[reflect.Type][]reflect.Type)
	var remaining []reflect.Type
	for t, deg := range inDegree {
		if deg > 0 {
			remaining = append(remaining, t)
		}
	}
	for _, e := range g.Edges {
		if inDegree[e.From] > 0 && inDegree[e.To] > 0 {
			dependsOn[e.To] = append(dependsOn[e.To], e.From)
		}
	}
	sortTypes(remaining)
	for _, deps := range dependsOn {
		sortTypes(deps)
	}

	seen := make(map[reflect.Type]int)
	var path []reflect.Type
	for t := remaining[0]; ; t = dependsOn[t][0] {
		if i, ok := seen[t]; ok {
			chain := make([]string, 0, len(path)-i+1)
			for _, c := range path[i:] {
				chain = append(chain, c.String())
			}
			return append(chain, t.String())
		}
		seen[t] = len(path)
		path = append(path, t)
	}
}

func sortTypes(types []reflect.Type) {
	sort.Slice(types, func(i, j int) bool { return types[i].String() < types[j].String() })
}
