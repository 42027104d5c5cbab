package gql

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"
)

// Request represents a GraphQL HTTP request
type Request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// Response represents a GraphQL HTTP response
type Response struct {
	Data   any             `json:"data,omitempty"`
	Errors []ResponseError `json:"errors,omitempty"`
}

// ResponseError represents a GraphQL error
type ResponseError struct {
	Message string `json:"message"`
}

// Handler handles GraphQL HTTP requests
type Handler struct {
	schema graphql.Schema
}

// NewHandler creates a new GraphQL HTTP handler
func NewHandler(schema graphql.Schema) *Handler {
	return &Handler{
		schema: schema,
	}
}

// ServeHTTP handles HTTP requests for GraphQL queries
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Set CORS headers
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	// Handle preflight OPTIONS request
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	// Only allow POST requests
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse request body
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Execute GraphQL query
	var result *graphql.Result
	if len(req.Variables) > 0 {
		result = ExecuteQueryWithVariables(req.Query, h.schema, req.Variables)
	} else {
		result = ExecuteQuery(req.Query, h.schema)
	}

	// Build response
	response := Response{
		Data: result.Data,
	}

	// Convert graphql errors to our error format
	if result.HasErrors() {
		response.Errors = make([]ResponseError, len(result.Errors))
		for i, err := range result.Errors {
			response.Errors[i] = ResponseError{
				Message: err.Message,
			}
		}
	}

	// Send response
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
