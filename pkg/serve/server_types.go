package serve

// API Request/Response Types

// VertexResponse represents a vertex in API responses
type VertexResponse struct {
	Name     string  `json:"name"`
	Category *string `json:"category"`
	Class    string  `json:"class"`
}

// EdgeResponse represents an edge in API responses
type EdgeResponse struct {
	From        string  `json:"from"`
	To          string  `json:"to"`
	Description *string `json:"description"`
	Responsible *string `json:"responsible"`
	Status      *string `json:"status"`
}

// GraphResponse represents the assembled graph
type GraphResponse struct {
	Vertices []VertexResponse `json:"vertices"`
	Edges    []EdgeResponse   `json:"edges"`
	Stats    StatsResponse    `json:"stats"`
}

// StatsResponse represents a point-in-time assembly summary
type StatsResponse struct {
	VertexCount int    `json:"vertex_count"`
	EdgeCount   int    `json:"edge_count"`
	Mode        string `json:"mode"`
	Warnings    int    `json:"warnings"`
	LastBuild   string `json:"last_build,omitempty"`
	Uptime      string `json:"uptime"`
}

// WarningResponse represents a single data-quality finding
type WarningResponse struct {
	Kind    string `json:"kind"`
	Table   string `json:"table,omitempty"`
	Column  string `json:"column,omitempty"`
	Row     int    `json:"row,omitempty"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// WarningsResponse represents the warnings from the last build
type WarningsResponse struct {
	Warnings []WarningResponse `json:"warnings"`
	Count    int               `json:"count"`
}

// RefreshResponse represents the result of a refetch and rebuild
type RefreshResponse struct {
	Stats StatsResponse `json:"stats"`
	Time  string        `json:"time"`
}

// AggregationResponse represents the result of a mode change
type AggregationResponse struct {
	Mode  string        `json:"mode"`
	Stats StatsResponse `json:"stats"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
