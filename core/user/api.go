package user

import (
	"net/http"

	"github.com/trezcool/masomo-web/core/gateway"
)

var (
	// GetMe fetches the identity behind the session token.
	GetMe = gateway.Query[struct{}, MeResponse]{
		Name: "getMe",
		Build: func(struct{}) gateway.Request {
			return gateway.Request{Method: http.MethodGet, Path: "/users/get-me"}
		},
		Provides: []gateway.Tag{gateway.TagAuth},
	}

	SignIn = gateway.Mutation[Credentials, TokenResponse]{
		Name: "signIn",
		Build: func(c Credentials) gateway.Request {
			return gateway.Request{Method: http.MethodPost, Path: "/signin/signin", Body: c}
		},
		Invalidates: []gateway.Tag{gateway.TagAuth},
	}

	Register = gateway.Mutation[NewUser, TokenResponse]{
		Name: "register",
		Build: func(nu NewUser) gateway.Request {
			return gateway.Request{Method: http.MethodPost, Path: "/register", Body: nu}
		},
		Invalidates: []gateway.Tag{gateway.TagAuth},
	}

	// Enroll registers a user on behalf of an admin; the admin's own identity is untouched.
	Enroll = gateway.Mutation[NewUser, TokenResponse]{
		Name: "enroll",
		Build: func(nu NewUser) gateway.Request {
			return gateway.Request{Method: http.MethodPost, Path: "/register", Body: nu}
		},
		Invalidates: []gateway.Tag{gateway.TagStudents, gateway.TagTeachers, gateway.TagGroups},
	}
)
