package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"

	"github.com/dan47bennett/typescript-reddit/internal/logger"
	"github.com/dan47bennett/typescript-reddit/internal/sessions"
)

//go:generate mockgen -source=graphql.go -destination=mock_session_loader.go -package=handlers

// SessionLoader resolves the request session and writes its cookie back.
type SessionLoader interface {
	Load(r *http.Request) (*sessions.Session, error)
	Write(w http.ResponseWriter, s *sessions.Session) error
}

// GraphQLRequest is the body of a POST /graphql request.
type GraphQLRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

// NewGraphQLHandler executes GraphQL requests sent as a JSON POST body or
// as GET query parameters. GET only runs queries; mutations over GET get
// 405. Expected failures come back inside the result with status 200.
func NewGraphQLHandler(schema graphql.Schema, loader SessionLoader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeGraphQLRequest(r)
		if err != nil {
			writeErrors(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Query == "" {
			writeErrors(w, http.StatusBadRequest, "query is required")
			return
		}
		if r.Method == http.MethodGet {
			queryOnly, err := isQueryOnly(req.Query, req.OperationName)
			if err != nil {
				writeErrors(w, http.StatusBadRequest, err.Error())
				return
			}
			if !queryOnly {
				w.Header().Set("Allow", http.MethodPost)
				writeErrors(w, http.StatusMethodNotAllowed, "only queries are allowed over GET")
				return
			}
		}

		sess, err := loader.Load(r)
		if err != nil {
			logger.Log.Errorw("failed to load session", "err", err)
			writeErrors(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        sessions.NewContext(r.Context(), sess),
		})

		if err := loader.Write(w, sess); err != nil {
			logger.Log.Errorw("failed to write session cookie", "err", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(result); err != nil {
			logger.Log.Errorw("failed to encode response", "err", err)
		}
	}
}

func decodeGraphQLRequest(r *http.Request) (GraphQLRequest, error) {
	var req GraphQLRequest

	if r.Method == http.MethodGet {
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if vars := q.Get("variables"); vars != "" {
			if err := json.Unmarshal([]byte(vars), &req.Variables); err != nil {
				return req, err
			}
		}
		return req, nil
	}

	err := json.NewDecoder(r.Body).Decode(&req)
	return req, err
}

// isQueryOnly reports whether the operation selected by operationName is a
// query. Without a name every operation in the document must be a query.
func isQueryOnly(query, operationName string) (bool, error) {
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return false, err
	}

	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if operationName != "" && (op.Name == nil || op.Name.Value != operationName) {
			continue
		}
		if op.Operation != ast.OperationTypeQuery {
			return false, nil
		}
	}
	return true, nil
}

func writeErrors(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(graphql.Result{
		Errors: []gqlerrors.FormattedError{gqlerrors.NewFormattedError(message)},
	})
}
