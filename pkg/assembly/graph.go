package assembly

// Table names used in errors and warnings.
const (
	TableEdges = "edges"
	TableNodes = "nodes"
)

// CategoryHumans is the node category that marks a person rather than
// a tool or artefact.
const CategoryHumans = "humans"

// Vertex classes derived from the category.
const (
	ClassHumans   = "humans"
	ClassNotHuman = "not human"
)

// Well-known edge attribute names carried by the default datasets.
const (
	AttrDescription = "description"
	AttrResponsible = "responsible"
	AttrStatus      = "status"
)

// Delivery statuses an edge can carry.
const (
	StatusOperational  = "operational"
	StatusBuggy        = "buggy"
	StatusNotDeveloped = "not developed"
)

// Vertex is a graph vertex derived from the edge endpoints. Category
// is empty when the node table had no entry for the name; Class is
// always one of ClassHumans or ClassNotHuman.
type Vertex struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Class    string `json:"class"`
}

// HasCategory reports whether the category resolved during the join.
func (v Vertex) HasCategory() bool {
	return v.Category != ""
}

// Edge is a directed edge between two vertices. Attrs carries every
// input column except the endpoint columns, values verbatim.
type Edge struct {
	From  string            `json:"from"`
	To    string            `json:"to"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

// Attr returns a named attribute, or "" when absent.
func (e Edge) Attr(name string) string {
	return e.Attrs[name]
}

// Status returns the delivery status attribute.
func (e Edge) Status() string {
	return e.Attrs[AttrStatus]
}

// Graph is an assembled, annotated directed graph. Vertices appear in
// order of first reference by the edge list, so repeated builds over
// the same tables produce identical graphs.
type Graph struct {
	Vertices []Vertex `json:"vertices"`
	Edges    []Edge   `json:"edges"`
}

// VertexCount returns the number of distinct endpoints referenced by
// the edge list.
func (g *Graph) VertexCount() int {
	if g == nil {
		return 0
	}
	return len(g.Vertices)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	if g == nil {
		return 0
	}
	return len(g.Edges)
}

// FindVertex returns the vertex with the given name.
func (g *Graph) FindVertex(name string) (Vertex, bool) {
	if g == nil {
		return Vertex{}, false
	}
	for _, v := range g.Vertices {
		if v.Name == name {
			return v, true
		}
	}
	return Vertex{}, false
}

// VerticesByCategory returns the vertices holding the given category.
func (g *Graph) VerticesByCategory(category string) []Vertex {
	if g == nil {
		return nil
	}
	var out []Vertex
	for _, v := range g.Vertices {
		if v.Category == category {
			out = append(out, v)
		}
	}
	return out
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	if g == nil {
		return nil
	}
	clone := &Graph{
		Vertices: make([]Vertex, len(g.Vertices)),
		Edges:    make([]Edge, len(g.Edges)),
	}
	copy(clone.Vertices, g.Vertices)
	for i, e := range g.Edges {
		ne := Edge{From: e.From, To: e.To}
		if e.Attrs != nil {
			ne.Attrs = make(map[string]string, len(e.Attrs))
			for k, v := range e.Attrs {
				ne.Attrs[k] = v
			}
		}
		clone.Edges[i] = ne
	}
	return clone
}

// DeriveClass maps a category to its vertex class. Only the humans
// category yields the humans class; a null category counts as not
// human.
func DeriveClass(category string) string {
	if category == CategoryHumans {
		return ClassHumans
	}
	return ClassNotHuman
}
