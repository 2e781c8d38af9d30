package tangle

import "sort"

// Graph is an append-only adjacency index of block identifiers. It maps each
// node to the set of its children (parent -> child edges). It does not check
// that the identifiers it is given belong to accepted blocks; the Tangle does.
type Graph struct {
	edges map[string]map[string]struct{} //[id] => children
	order []string                       //nodes in the order they were added
}

// NewGraph creates an empty Graph
func NewGraph() *Graph {
	return &Graph{
		edges: make(map[string]map[string]struct{}),
	}
}

// AddNode registers id with an empty child set. It is a no-op if id is already
// known.
func (g *Graph) AddNode(id string) {
	if _, ok := g.edges[id]; ok {
		return
	}
	g.edges[id] = make(map[string]struct{})
	g.order = append(g.order, id)
}

// AddEdge records that to is a child of from. Adding the same edge twice is a
// no-op. from is registered as a node if it was not already.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.edges[from][to] = struct{}{}
}

// Contains returns true if id is a node of the graph.
func (g *Graph) Contains(id string) bool {
	_, ok := g.edges[id]
	return ok
}

// Children returns a copy of the child set of id, and false if id is unknown.
func (g *Graph) Children(id string) (map[string]struct{}, bool) {
	children, ok := g.edges[id]
	if !ok {
		return nil, false
	}
	res := make(map[string]struct{}, len(children))
	for c := range children {
		res[c] = struct{}{}
	}
	return res, true
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.edges)
}

// Nodes returns the nodes in the order they were added.
func (g *Graph) Nodes() []string {
	res := make([]string, len(g.order))
	copy(res, g.order)
	return res
}

// Tips returns the sorted list of nodes that have no children.
func (g *Graph) Tips() []string {
	tips := []string{}
	for id, children := range g.edges {
		if len(children) == 0 {
			tips = append(tips, id)
		}
	}
	sort.Strings(tips)
	return tips
}
