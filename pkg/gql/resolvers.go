package gql

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/softloud/sig-vis/pkg/assembly"
)

// createGraphResolver resolves the whole assembled graph
func createGraphResolver(svc Service) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		return svc.Graph(), nil
	}
}

// createVertexResolver resolves a single vertex by name
func createVertexResolver(svc Service) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		name, ok := p.Args["name"].(string)
		if !ok {
			return nil, fmt.Errorf("name argument is required")
		}

		g := svc.Graph()
		if g == nil {
			return nil, nil
		}

		if v, found := g.FindVertex(name); found {
			return v, nil
		}
		return nil, nil
	}
}

// createVerticesResolver resolves vertices with optional category and
// class filters
func createVerticesResolver(svc Service) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		g := svc.Graph()
		if g == nil {
			return []assembly.Vertex{}, nil
		}

		category, byCategory := p.Args["category"].(string)
		class, byClass := p.Args["class"].(string)

		out := make([]assembly.Vertex, 0, len(g.Vertices))
		for _, v := range g.Vertices {
			if byCategory && v.Category != category {
				continue
			}
			if byClass && v.Class != class {
				continue
			}
			out = append(out, v)
		}
		return out, nil
	}
}

// createEdgesResolver resolves edges with an optional status filter
func createEdgesResolver(svc Service) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		g := svc.Graph()
		if g == nil {
			return []assembly.Edge{}, nil
		}

		status, byStatus := p.Args["status"].(string)
		if !byStatus {
			return g.Edges, nil
		}

		out := make([]assembly.Edge, 0, len(g.Edges))
		for _, e := range g.Edges {
			if e.Status() == status {
				out = append(out, e)
			}
		}
		return out, nil
	}
}

// createVertexEdgesResolver resolves the edges touching the source
// vertex, outgoing or incoming
func createVertexEdgesResolver(svc Service, outgoing bool) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		v, ok := p.Source.(assembly.Vertex)
		if !ok {
			return nil, nil
		}

		g := svc.Graph()
		if g == nil {
			return []assembly.Edge{}, nil
		}

		out := make([]assembly.Edge, 0)
		for _, e := range g.Edges {
			if outgoing && e.From == v.Name {
				out = append(out, e)
			}
			if !outgoing && e.To == v.Name {
				out = append(out, e)
			}
		}
		return out, nil
	}
}

// createEdgeAttrResolver resolves a named edge attribute, null when
// the attribute is absent or blanked
func createEdgeAttrResolver(attr string) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if e, ok := p.Source.(assembly.Edge); ok {
			if value := e.Attr(attr); value != "" {
				return value, nil
			}
		}
		return nil, nil
	}
}

// createStatsResolver resolves the assembler's summary counters
func createStatsResolver(svc Service) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		return svc.Stats(), nil
	}
}

// createWarningsResolver resolves the warnings from the last build
func createWarningsResolver(svc Service) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		return svc.Warnings(), nil
	}
}

// createRefreshResolver rebuilds from the held tables and returns the
// resulting stats
func createRefreshResolver(svc Service) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if err := svc.Refresh(); err != nil {
			return nil, err
		}
		return svc.Stats(), nil
	}
}

// createSetAggregationResolver switches the aggregation mode and
// returns the resulting stats
func createSetAggregationResolver(svc Service) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		raw, ok := p.Args["mode"].(string)
		if !ok {
			return nil, fmt.Errorf("mode argument is required")
		}

		mode, err := assembly.ParseMode(raw)
		if err != nil {
			return nil, err
		}
		if err := svc.SetMode(mode); err != nil {
			return nil, err
		}
		return svc.Stats(), nil
	}
}
