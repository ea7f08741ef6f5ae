package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/dan47bennett/typescript-reddit/internal/models"
)

var userType = graphql.NewObject(graphql.ObjectConfig{
	Name: "User",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"username":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"email":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"createdAt": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
		"updatedAt": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
	},
})

var postType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Post",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"title":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"text":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"creatorId": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"createdAt": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
		"updatedAt": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
	},
})

var fieldErrorType = graphql.NewObject(graphql.ObjectConfig{
	Name:        "FieldError",
	Description: "A validation or business rule failure tied to one input field.",
	Fields: graphql.Fields{
		"field":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"message": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var userResponseType = graphql.NewObject(graphql.ObjectConfig{
	Name: "UserResponse",
	Fields: graphql.Fields{
		"errors": &graphql.Field{
			Type: graphql.NewList(graphql.NewNonNull(fieldErrorType)),
			// an empty error list is reported as null
			Resolve: func(p graphql.ResolveParams) (any, error) {
				resp, _ := p.Source.(*models.UserResponse)
				if resp == nil || len(resp.Errors) == 0 {
					return nil, nil
				}
				return resp.Errors, nil
			},
		},
		"user": &graphql.Field{Type: userType},
	},
})

var usernamePasswordInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "UsernamePasswordInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"email":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"username": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"password": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
	},
})

var postInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "PostInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"title": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"text":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
	},
})
