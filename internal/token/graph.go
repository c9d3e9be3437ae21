package token

import "sort"

// graph tracks generates edges (base -> dependent) and their inverse.
type graph struct {
	nodes     map[string]struct{}
	generates map[string]map[string]struct{}
	dependsOn map[string]map[string]struct{}
}

func newGraph() *graph {
	return &graph{
		nodes:     make(map[string]struct{}),
		generates: make(map[string]map[string]struct{}),
		dependsOn: make(map[string]map[string]struct{}),
	}
}

func (g *graph) addNode(name string) {
	if _, exists := g.nodes[name]; exists {
		return
	}
	g.nodes[name] = struct{}{}
	g.generates[name] = make(map[string]struct{})
	g.dependsOn[name] = make(map[string]struct{})
}

func (g *graph) hasNode(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// addEdge records that base generates dependent.
func (g *graph) addEdge(base, dependent string) {
	g.addNode(base)
	g.addNode(dependent)
	g.generates[base][dependent] = struct{}{}
	g.dependsOn[dependent][base] = struct{}{}
}

func (g *graph) removeEdge(base, dependent string) {
	delete(g.generates[base], dependent)
	delete(g.dependsOn[dependent], base)
}

// clearDependencies drops every incoming edge of dependent.
func (g *graph) clearDependencies(dependent string) {
	for base := range g.dependsOn[dependent] {
		delete(g.generates[base], dependent)
	}
	g.dependsOn[dependent] = make(map[string]struct{})
}

func (g *graph) dependents(name string) []string {
	return sortedSet(g.generates[name])
}

func (g *graph) dependencies(name string) []string {
	return sortedSet(g.dependsOn[name])
}

// pathTo returns the generates path from -> ... -> to, if one exists. The
// search is bounded by the node count; running past the bound is reported as
// a path so callers treat it as a cycle.
func (g *graph) pathTo(from, to string) []string {
	limit := len(g.nodes) + 1
	visited := make(map[string]bool)
	path := []string{}

	var dfs func(node string) bool
	dfs = func(node string) bool {
		path = append(path, node)
		if node == to || len(path) > limit {
			return true
		}
		visited[node] = true
		for _, next := range g.dependents(node) {
			if visited[next] {
				continue
			}
			if dfs(next) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}

	if dfs(from) {
		return append([]string{}, path...)
	}
	return nil
}

// detectCycle returns one cycle if present or nil when the graph is acyclic.
func (g *graph) detectCycle() []string {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	path := []string{}

	var cycle []string
	var dfs func(node string) bool
	dfs = func(node string) bool {
		visited[node] = true
		onStack[node] = true
		path = append(path, node)

		for _, next := range g.dependents(node) {
			if !visited[next] {
				if dfs(next) {
					return true
				}
			} else if onStack[next] {
				idx := len(path) - 1
				for idx >= 0 && path[idx] != next {
					idx--
				}
				cycle = append(append([]string{}, path[idx:]...), next)
				return true
			}
		}

		onStack[node] = false
		path = path[:len(path)-1]
		return false
	}

	nodes := make([]string, 0, len(g.nodes))
	for node := range g.nodes {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	for _, node := range nodes {
		if !visited[node] && dfs(node) {
			break
		}
	}
	return cycle
}

func sortedSet(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for item := range set {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}
