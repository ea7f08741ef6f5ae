package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/dan47bennett/typescript-reddit/internal/models"
	"github.com/dan47bennett/typescript-reddit/internal/sessions"
)

type resolver struct {
	users UserService
	posts PostService
}

func (r *resolver) queries() []operation {
	return []operation{
		{
			name:    "hello",
			output:  graphql.NewNonNull(graphql.String),
			handler: func(graphql.ResolveParams, *sessions.Session) (any, error) { return "hello world", nil },
		},
		{
			name:        "me",
			description: "The logged in user, or null for anonymous sessions.",
			output:      userType,
			handler:     r.me,
		},
		{
			name:        "posts",
			description: "Posts, newest first.",
			args: graphql.FieldConfigArgument{
				"limit": &graphql.ArgumentConfig{Type: graphql.Int},
			},
			output:  graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(postType))),
			handler: r.listPosts,
		},
		{
			name: "post",
			args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
			},
			output:  postType,
			handler: r.post,
		},
	}
}

func (r *resolver) mutations() []operation {
	return []operation{
		{
			name: "register",
			args: graphql.FieldConfigArgument{
				"options": &graphql.ArgumentConfig{Type: graphql.NewNonNull(usernamePasswordInputType)},
			},
			output:  graphql.NewNonNull(userResponseType),
			handler: r.register,
		},
		{
			name: "login",
			args: graphql.FieldConfigArgument{
				"usernameOrEmail": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"password":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			output:  graphql.NewNonNull(userResponseType),
			handler: r.login,
		},
		{
			name:    "logout",
			output:  graphql.NewNonNull(graphql.Boolean),
			handler: r.logout,
		},
		{
			name:        "forgotPassword",
			description: "Mails a reset link when the email or username matches an account. Always true.",
			args: graphql.FieldConfigArgument{
				"email": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			output:  graphql.NewNonNull(graphql.Boolean),
			handler: r.forgotPassword,
		},
		{
			name: "changePassword",
			args: graphql.FieldConfigArgument{
				"token":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"newPassword": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			output:  graphql.NewNonNull(userResponseType),
			handler: r.changePassword,
		},
		{
			name: "createPost",
			args: graphql.FieldConfigArgument{
				"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(postInputType)},
			},
			output:       graphql.NewNonNull(postType),
			requiresAuth: true,
			handler:      r.createPost,
		},
		{
			name: "updatePost",
			args: graphql.FieldConfigArgument{
				"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				"title": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"text":  &graphql.ArgumentConfig{Type: graphql.String},
			},
			output:       postType,
			requiresAuth: true,
			handler:      r.updatePost,
		},
		{
			name: "deletePost",
			args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
			},
			output:       graphql.NewNonNull(graphql.Boolean),
			requiresAuth: true,
			handler:      r.deletePost,
		},
	}
}

func (r *resolver) me(p graphql.ResolveParams, sess *sessions.Session) (any, error) {
	user, err := r.users.Me(p.Context, sess)
	if err != nil || user == nil {
		return nil, err
	}
	return user, nil
}

func (r *resolver) listPosts(p graphql.ResolveParams, _ *sessions.Session) (any, error) {
	limit, _ := p.Args["limit"].(int)
	return r.posts.List(p.Context, limit)
}

func (r *resolver) post(p graphql.ResolveParams, _ *sessions.Session) (any, error) {
	post, err := r.posts.Get(p.Context, intArg(p.Args, "id"))
	if err != nil || post == nil {
		return nil, err
	}
	return post, nil
}

func (r *resolver) register(p graphql.ResolveParams, sess *sessions.Session) (any, error) {
	options, _ := p.Args["options"].(map[string]any)
	in := models.UsernamePasswordInput{
		Email:    stringArg(options, "email"),
		Username: stringArg(options, "username"),
		Password: stringArg(options, "password"),
	}
	return r.users.Register(p.Context, sess, in)
}

func (r *resolver) login(p graphql.ResolveParams, sess *sessions.Session) (any, error) {
	return r.users.Login(p.Context, sess, stringArg(p.Args, "usernameOrEmail"), stringArg(p.Args, "password"))
}

func (r *resolver) logout(p graphql.ResolveParams, sess *sessions.Session) (any, error) {
	return r.users.Logout(p.Context, sess), nil
}

func (r *resolver) forgotPassword(p graphql.ResolveParams, _ *sessions.Session) (any, error) {
	return r.users.ForgotPassword(p.Context, stringArg(p.Args, "email"))
}

func (r *resolver) changePassword(p graphql.ResolveParams, sess *sessions.Session) (any, error) {
	return r.users.ChangePassword(p.Context, sess, stringArg(p.Args, "token"), stringArg(p.Args, "newPassword"))
}

func (r *resolver) createPost(p graphql.ResolveParams, sess *sessions.Session) (any, error) {
	input, _ := p.Args["input"].(map[string]any)
	in := models.PostInput{
		Title: stringArg(input, "title"),
		Text:  stringArg(input, "text"),
	}
	return r.posts.Create(p.Context, sess.UserID, in)
}

func (r *resolver) updatePost(p graphql.ResolveParams, sess *sessions.Session) (any, error) {
	var text *string
	if v, ok := p.Args["text"].(string); ok {
		text = &v
	}

	post, err := r.posts.Update(p.Context, sess.UserID, intArg(p.Args, "id"), stringArg(p.Args, "title"), text)
	if err != nil || post == nil {
		return nil, err
	}
	return post, nil
}

func (r *resolver) deletePost(p graphql.ResolveParams, sess *sessions.Session) (any, error) {
	return r.posts.Delete(p.Context, sess.UserID, intArg(p.Args, "id"))
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func intArg(args map[string]any, key string) int {
	v, _ := args[key].(int)
	return v
}
