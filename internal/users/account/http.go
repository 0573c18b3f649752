// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/neverbeen/api/internal/platform/constants"
	"github.com/neverbeen/api/internal/platform/middleware"
	requestutil "github.com/neverbeen/api/internal/platform/request"
	"github.com/neverbeen/api/internal/platform/respond"
	"github.com/neverbeen/api/internal/platform/sec"
	"github.com/neverbeen/api/internal/platform/validate"
	"github.com/neverbeen/api/internal/users/auth"
	"github.com/neverbeen/api/pkg/pagination"
)

// Handler implements account-administration HTTP endpoints.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with account-administration routes.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Get("/{username}", handler.getUser)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Delete("/{username}", handler.deleteUser)
		r.Put("/{username}/username", handler.changeUsername)
	})

	// Admin endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireRole(sec.RoleAdmin))
		r.Get("/", handler.listUsers)
		r.Put("/{username}/role", handler.setRole)
	})

	return router
}

// # Request Payloads

type setRoleRequest struct {
	Role string `json:"role"`
}

type changeUsernameRequest struct {
	NewUsername string `json:"new_username"`
}

/*
getUser returns the public profile of an account.

GET /api/v1/users/{username}

Response:
  - 200: PublicView: Username, role, and signup date
  - 404: Unknown username
*/
func (handler *Handler) getUser(writer http.ResponseWriter, request *http.Request) {
	username := requestutil.Param(request, "username")

	view, err := handler.accountService.GetUser(request.Context(), username)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, view)
}

/*
listUsers returns one page of the user directory.

GET /api/v1/users?page=N&limit=M

Response:
  - 200: Paginated list of public profiles
  - 403: Caller is not an administrator
*/
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	caller, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	views, total, err := handler.accountService.ListUsers(request.Context(), caller, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, views, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
deleteUser removes an account and all of its content.

DELETE /api/v1/users/{username}

Response:
  - 204: Account removed
  - 403: Caller may not delete this account
  - 404: Unknown username
*/
func (handler *Handler) deleteUser(writer http.ResponseWriter, request *http.Request) {
	caller, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	username := requestutil.Param(request, "username")

	if err := handler.accountService.DeleteUser(request.Context(), caller, username); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
setRole moves an account between the non-admin access levels.

PUT /api/v1/users/{username}/role

Response:
  - 200: Confirmation message
  - 400: Unknown role value
  - 403: Role change not permitted
  - 404: Unknown username
*/
func (handler *Handler) setRole(writer http.ResponseWriter, request *http.Request) {
	caller, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input setRoleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("role", input.Role).
		OneOf("role", input.Role, string(sec.RoleUser), string(sec.RoleModerator), string(sec.RoleAdmin))
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	username := requestutil.Param(request, "username")

	if err := handler.accountService.SetRole(request.Context(), caller, username, sec.Role(input.Role)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{auth.FieldMessage: "Role updated"})
}

/*
changeUsername renames an account's public handle.

PUT /api/v1/users/{username}/username

Response:
  - 200: Confirmation message
  - 400: Invalid handle
  - 403: Caller may not rename this account
  - 404: Unknown username
  - 409: Handle already taken
*/
func (handler *Handler) changeUsername(writer http.ResponseWriter, request *http.Request) {
	caller, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changeUsernameRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(auth.FieldUsername, input.NewUsername).
		MaxLen(auth.FieldUsername, input.NewUsername, constants.MaxUsernameLen)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	username := requestutil.Param(request, "username")

	if err := handler.accountService.ChangeUsername(request.Context(), caller, username, input.NewUsername); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{auth.FieldMessage: "Username updated"})
}
