// Package gql exposes the assembled graph over GraphQL: read queries
// for vertices, edges, stats and warnings, plus mutations that drive a
// refresh or switch the aggregation mode.
package gql

import (
	"fmt"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/softloud/sig-vis/pkg/assembly"
)

// Service is the slice of the assembler the schema resolves against.
type Service interface {
	Graph() *assembly.Graph
	Stats() assembly.Stats
	Warnings() []assembly.Warning
	Refresh() error
	SetMode(mode assembly.Mode) error
}

// schemaTypes holds the GraphQL object types shared by queries and
// mutations.
type schemaTypes struct {
	vertex  *graphql.Object
	edge    *graphql.Object
	graph   *graphql.Object
	stats   *graphql.Object
	warning *graphql.Object
}

func newSchemaTypes(svc Service) *schemaTypes {
	t := &schemaTypes{}
	t.edge = createEdgeType()
	t.vertex = createVertexType(svc, t.edge)
	t.graph = graphql.NewObject(graphql.ObjectConfig{
		Name: "Graph",
		Fields: graphql.Fields{
			"vertices": &graphql.Field{
				Type: graphql.NewList(graphql.NewNonNull(t.vertex)),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if g, ok := p.Source.(*assembly.Graph); ok {
						return g.Vertices, nil
					}
					return nil, nil
				},
			},
			"edges": &graphql.Field{
				Type: graphql.NewList(graphql.NewNonNull(t.edge)),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if g, ok := p.Source.(*assembly.Graph); ok {
						return g.Edges, nil
					}
					return nil, nil
				},
			},
		},
	})
	t.stats = createStatsType()
	t.warning = createWarningType()
	return t
}

// GenerateSchema generates the read-only GraphQL schema.
func GenerateSchema(svc Service) (graphql.Schema, error) {
	types := newSchemaTypes(svc)

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: buildQueryFields(svc, types),
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}

	return schema, nil
}

// GenerateSchemaWithMutations generates the GraphQL schema including
// the refresh and setAggregation mutations.
func GenerateSchemaWithMutations(svc Service) (graphql.Schema, error) {
	types := newSchemaTypes(svc)

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: buildQueryFields(svc, types),
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"refresh": &graphql.Field{
				Type:    types.stats,
				Resolve: createRefreshResolver(svc),
			},
			"setAggregation": &graphql.Field{
				Type: types.stats,
				Args: graphql.FieldConfigArgument{
					"mode": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.String),
					},
				},
				Resolve: createSetAggregationResolver(svc),
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}

	return schema, nil
}

func buildQueryFields(svc Service, types *schemaTypes) graphql.Fields {
	return graphql.Fields{
		// Always include a health check query
		"health": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return "ok", nil
			},
		},
		"graph": &graphql.Field{
			Type:    types.graph,
			Resolve: createGraphResolver(svc),
		},
		"vertex": &graphql.Field{
			Type: types.vertex,
			Args: graphql.FieldConfigArgument{
				"name": &graphql.ArgumentConfig{
					Type: graphql.NewNonNull(graphql.ID),
				},
			},
			Resolve: createVertexResolver(svc),
		},
		"vertices": &graphql.Field{
			Type: graphql.NewList(graphql.NewNonNull(types.vertex)),
			Args: graphql.FieldConfigArgument{
				"category": &graphql.ArgumentConfig{
					Type: graphql.String,
				},
				"class": &graphql.ArgumentConfig{
					Type: graphql.String,
				},
			},
			Resolve: createVerticesResolver(svc),
		},
		"edges": &graphql.Field{
			Type: graphql.NewList(graphql.NewNonNull(types.edge)),
			Args: graphql.FieldConfigArgument{
				"status": &graphql.ArgumentConfig{
					Type: graphql.String,
				},
			},
			Resolve: createEdgesResolver(svc),
		},
		"stats": &graphql.Field{
			Type:    types.stats,
			Resolve: createStatsResolver(svc),
		},
		"warnings": &graphql.Field{
			Type:    graphql.NewList(graphql.NewNonNull(types.warning)),
			Resolve: createWarningsResolver(svc),
		},
	}
}

// createVertexType creates the GraphQL type for a graph vertex. The
// category field is nullable because a vertex missing from the node
// table carries no category.
func createVertexType(svc Service, edgeType *graphql.Object) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Vertex",
		Fields: graphql.Fields{
			"name": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if v, ok := p.Source.(assembly.Vertex); ok {
						return v.Name, nil
					}
					return nil, nil
				},
			},
			"category": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if v, ok := p.Source.(assembly.Vertex); ok && v.HasCategory() {
						return v.Category, nil
					}
					return nil, nil
				},
			},
			"class": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if v, ok := p.Source.(assembly.Vertex); ok {
						return v.Class, nil
					}
					return nil, nil
				},
			},
			"outgoing": &graphql.Field{
				Type:    graphql.NewList(graphql.NewNonNull(edgeType)),
				Resolve: createVertexEdgesResolver(svc, true),
			},
			"incoming": &graphql.Field{
				Type:    graphql.NewList(graphql.NewNonNull(edgeType)),
				Resolve: createVertexEdgesResolver(svc, false),
			},
		},
	})
}

// createEdgeType creates the GraphQL type for a graph edge. Attribute
// fields are nullable; an aggregated build blanks them.
func createEdgeType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Edge",
		Fields: graphql.Fields{
			"from": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if e, ok := p.Source.(assembly.Edge); ok {
						return e.From, nil
					}
					return nil, nil
				},
			},
			"to": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if e, ok := p.Source.(assembly.Edge); ok {
						return e.To, nil
					}
					return nil, nil
				},
			},
			"description": &graphql.Field{
				Type:    graphql.String,
				Resolve: createEdgeAttrResolver(assembly.AttrDescription),
			},
			"responsible": &graphql.Field{
				Type:    graphql.String,
				Resolve: createEdgeAttrResolver(assembly.AttrResponsible),
			},
			"status": &graphql.Field{
				Type:    graphql.String,
				Resolve: createEdgeAttrResolver(assembly.AttrStatus),
			},
		},
	})
}

func createStatsType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Stats",
		Fields: graphql.Fields{
			"vertexCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if s, ok := p.Source.(assembly.Stats); ok {
						return s.VertexCount, nil
					}
					return nil, nil
				},
			},
			"edgeCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if s, ok := p.Source.(assembly.Stats); ok {
						return s.EdgeCount, nil
					}
					return nil, nil
				},
			},
			"mode": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if s, ok := p.Source.(assembly.Stats); ok {
						return s.Mode.String(), nil
					}
					return nil, nil
				},
			},
			"warnings": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if s, ok := p.Source.(assembly.Stats); ok {
						return s.Warnings, nil
					}
					return nil, nil
				},
			},
			"lastBuild": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if s, ok := p.Source.(assembly.Stats); ok && !s.LastBuild.IsZero() {
						return s.LastBuild.UTC().Format(time.RFC3339), nil
					}
					return nil, nil
				},
			},
		},
	})
}

func createWarningType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Warning",
		Fields: graphql.Fields{
			"kind": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if w, ok := p.Source.(assembly.Warning); ok {
						return string(w.Kind), nil
					}
					return nil, nil
				},
			},
			"table": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if w, ok := p.Source.(assembly.Warning); ok && w.Table != "" {
						return w.Table, nil
					}
					return nil, nil
				},
			},
			"column": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if w, ok := p.Source.(assembly.Warning); ok && w.Column != "" {
						return w.Column, nil
					}
					return nil, nil
				},
			},
			"row": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if w, ok := p.Source.(assembly.Warning); ok && w.Row > 0 {
						return w.Row, nil
					}
					return nil, nil
				},
			},
			"message": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if w, ok := p.Source.(assembly.Warning); ok {
						return w.Message, nil
					}
					return nil, nil
				},
			},
		},
	})
}
