// Package graph exposes the user and post operations as a GraphQL schema.
//
// Every query and mutation is declared as an operation descriptor (name,
// arguments, output type and handler) and the schema is assembled from the
// descriptor tables, so adding an operation means adding one table entry.
package graph

import (
	"context"
	"errors"

	"github.com/graphql-go/graphql"

	"github.com/dan47bennett/typescript-reddit/internal/apperrors"
	"github.com/dan47bennett/typescript-reddit/internal/logger"
	"github.com/dan47bennett/typescript-reddit/internal/models"
	"github.com/dan47bennett/typescript-reddit/internal/sessions"
)

//go:generate mockgen -source=schema.go -destination=mock_services.go -package=graph

// UserService is the account side of the API.
type UserService interface {
	Register(ctx context.Context, sess *sessions.Session, in models.UsernamePasswordInput) (*models.UserResponse, error)
	Login(ctx context.Context, sess *sessions.Session, usernameOrEmail, password string) (*models.UserResponse, error)
	Me(ctx context.Context, sess *sessions.Session) (*models.User, error)
	Logout(ctx context.Context, sess *sessions.Session) bool
	ForgotPassword(ctx context.Context, usernameOrEmail string) (bool, error)
	ChangePassword(ctx context.Context, sess *sessions.Session, token, newPassword string) (*models.UserResponse, error)
}

// PostService is the post side of the API.
type PostService interface {
	List(ctx context.Context, limit int) ([]models.Post, error)
	Get(ctx context.Context, id int) (*models.Post, error)
	Create(ctx context.Context, userID int, in models.PostInput) (*models.Post, error)
	Update(ctx context.Context, userID, id int, title string, text *string) (*models.Post, error)
	Delete(ctx context.Context, userID, id int) (bool, error)
}

// ErrInternal replaces infrastructure errors in responses; the cause is logged.
var ErrInternal = errors.New("internal server error")

type handlerFunc func(p graphql.ResolveParams, sess *sessions.Session) (any, error)

type operation struct {
	name        string
	description string
	args        graphql.FieldConfigArgument
	output      graphql.Output
	// requiresAuth rejects anonymous sessions before the handler runs.
	requiresAuth bool
	handler      handlerFunc
}

// NewSchema assembles the schema from the query and mutation tables.
func NewSchema(users UserService, posts PostService) (graphql.Schema, error) {
	r := &resolver{users: users, posts: posts}

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: buildFields(r.queries()),
		}),
		Mutation: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Mutation",
			Fields: buildFields(r.mutations()),
		}),
	})
}

func buildFields(ops []operation) graphql.Fields {
	fields := make(graphql.Fields, len(ops))
	for _, op := range ops {
		fields[op.name] = &graphql.Field{
			Type:        op.output,
			Args:        op.args,
			Description: op.description,
			Resolve:     wrap(op),
		}
	}
	return fields
}

// wrap binds the request session to the handler, enforces authentication
// and hides infrastructure errors from clients.
func wrap(op operation) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		sess := sessions.FromContext(p.Context)

		if op.requiresAuth && !sess.Authenticated() {
			logger.Log.Infow("rejected anonymous request", "operation", op.name)
			return nil, apperrors.ErrNotAuthenticated
		}

		res, err := op.handler(p, sess)
		if err != nil {
			logger.Log.Errorw("operation failed", "operation", op.name, "err", err)
			return nil, ErrInternal
		}
		return res, nil
	}
}
