// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

/*
Package account implements account administration on top of the auth domain.

It covers the operations performed ON accounts rather than BY them:
public profile lookup, the admin user directory, role assignment, renaming,
and account deletion with content cleanup.
*/
package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neverbeen/api/internal/platform/apperr"
	"github.com/neverbeen/api/internal/platform/constants"
	"github.com/neverbeen/api/internal/platform/ctxutil"
	"github.com/neverbeen/api/internal/platform/sec"
	"github.com/neverbeen/api/internal/platform/validate"
	"github.com/neverbeen/api/internal/policy"
	"github.com/neverbeen/api/internal/users/auth"
	"github.com/neverbeen/api/pkg/pagination"
)

// # Contracts

// Repository defines the account-administration data access contract.
type Repository interface {

	/*
		FindByUsername returns the account with the given public handle.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *auth.User: Hydrated entity
		  - error: apperr.NotFound or database errors
	*/
	FindByUsername(context context.Context, username string) (*auth.User, error)

	/*
		List returns one page of accounts ordered by creation time, plus the
		total account count.

		Parameters:
		  - context: context.Context
		  - limit: int
		  - offset: int

		Returns:
		  - []auth.User: Page of accounts
		  - int: Total count
		  - error: Database errors
	*/
	List(context context.Context, limit, offset int) ([]auth.User, int, error)

	/*
		UpdateRole rewrites the account's access level.

		Parameters:
		  - context: context.Context
		  - email: string
		  - role: sec.Role

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	UpdateRole(context context.Context, email string, role sec.Role) error

	/*
		UpdateUsername rewrites the account's public handle. Places and
		ratings follow via FK ON UPDATE CASCADE.

		Parameters:
		  - context: context.Context
		  - email: string
		  - username: string

		Returns:
		  - error: apperr.NotFound, apperr.Conflict, or persistence failures
	*/
	UpdateUsername(context context.Context, email string, username string) error

	/*
		Delete removes the account row; owned content follows via cascade.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	Delete(context context.Context, email string) error
}

// ContentPurger removes the on-disk thumbnail files of everything a user
// posted. The database rows disappear via FK cascade when the user row is
// deleted; files need explicit cleanup BEFORE that cascade fires.
//
// Implemented by the place service; defined here so this package does not
// import it.
type ContentPurger interface {
	PurgeUserContent(context context.Context, username string) error
}

// # Service Layer

// Service orchestrates account administration use cases.
type Service struct {
	repository Repository
	purger     ContentPurger
}

// NewService constructs a new account [Service] with its dependencies.
func NewService(repository Repository, purger ContentPurger) *Service {
	return &Service{
		repository: repository,
		purger:     purger,
	}
}

// # Profile Access

/*
GetUser returns the public profile of an account.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *auth.PublicView: Public profile (no email)
  - error: apperr.NotFound or database errors
*/
func (service *Service) GetUser(context context.Context, username string) (*auth.PublicView, error) {
	user, err := service.repository.FindByUsername(context, username)
	if err != nil {
		return nil, err
	}

	view := user.Public()
	return &view, nil
}

/*
ListUsers returns one page of the user directory. Admin only.

Parameters:
  - context: context.Context
  - caller: *sec.Identity
  - params: pagination.Params

Returns:
  - []auth.PublicView: Page of public profiles
  - int: Total account count
  - error: apperr.Forbidden or database errors
*/
func (service *Service) ListUsers(context context.Context, caller *sec.Identity, params pagination.Params) ([]auth.PublicView, int, error) {
	if !policy.CanListUsers(caller) {
		return nil, 0, apperr.Forbidden("Only administrators may list users")
	}

	users, total, err := service.repository.List(context, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("account_service_list_failed: %w", err)
	}

	views := make([]auth.PublicView, 0, len(users))
	for i := range users {
		views = append(views, users[i].Public())
	}

	return views, total, nil
}

// # Account Administration

/*
DeleteUser removes an account and all of its content.

Description: Resolution happens before authorization so an admin probing for
a nonexistent account still gets NotFound, while an ordinary user targeting
someone else's existing account gets Forbidden. Thumbnail files of the user's
places are purged from disk before the row delete cascades the database side.

Parameters:
  - context: context.Context
  - caller: *sec.Identity
  - username: string

Returns:
  - error: apperr.NotFound, apperr.Forbidden, or storage errors
*/
func (service *Service) DeleteUser(context context.Context, caller *sec.Identity, username string) error {
	target, err := service.repository.FindByUsername(context, username)
	if err != nil {
		return err
	}

	if !policy.CanDeleteUser(caller, target.Username, target.Role) {
		return apperr.Forbidden("You may not delete this account")
	}

	if err := service.purger.PurgeUserContent(context, target.Username); err != nil {
		return fmt.Errorf("account_service_purge_failed: %w", err)
	}

	if err := service.repository.Delete(context, target.Email); err != nil {
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}

	ctxutil.GetLogger(context).Info("user_account_deleted",
		slog.String("username", target.Username),
		slog.String("deleted_by", caller.Username),
	)

	return nil
}

/*
SetRole moves an account between the non-admin access levels.

Parameters:
  - context: context.Context
  - caller: *sec.Identity
  - username: string
  - newRole: sec.Role

Returns:
  - error: apperr.NotFound, apperr.Forbidden, or storage errors
*/
func (service *Service) SetRole(context context.Context, caller *sec.Identity, username string, newRole sec.Role) error {
	target, err := service.repository.FindByUsername(context, username)
	if err != nil {
		return err
	}

	if !policy.CanSetRole(caller, target.Role, newRole) {
		return apperr.Forbidden("You may not assign this role")
	}

	if target.Role == newRole {
		// Nothing to change; succeed without touching storage.
		return nil
	}

	if err := service.repository.UpdateRole(context, target.Email, newRole); err != nil {
		return fmt.Errorf("account_service_set_role_failed: %w", err)
	}

	ctxutil.GetLogger(context).Info("user_role_changed",
		slog.String("username", target.Username),
		slog.String("new_role", string(newRole)),
		slog.String("changed_by", caller.Username),
	)

	return nil
}

/*
ChangeUsername renames an account's public handle.

Description: The new handle is NFC-normalized and checked for collisions.
Renaming to the current handle is refused as a Conflict, like any other
collision. Owned places and ratings keep pointing at the account via FK ON
UPDATE CASCADE.

Parameters:
  - context: context.Context
  - caller: *sec.Identity
  - username: string (current handle)
  - newUsername: string

Returns:
  - error: apperr.NotFound, Forbidden, Conflict, ValidationError, storage errors
*/
func (service *Service) ChangeUsername(context context.Context, caller *sec.Identity, username, newUsername string) error {
	target, err := service.repository.FindByUsername(context, username)
	if err != nil {
		return err
	}

	if !policy.CanChangeUsername(caller, target.Username, target.Role) {
		return apperr.Forbidden("You may not rename this account")
	}

	newUsername = validate.NormalizeNFC(newUsername)

	validator := &validate.Validator{}
	validator.Required(auth.FieldUsername, newUsername).
		MinLen(auth.FieldUsername, newUsername, auth.MinUsernameLen).
		MaxLen(auth.FieldUsername, newUsername, constants.MaxUsernameLen).
		Username(auth.FieldUsername, newUsername)
	if err := validator.Err(); err != nil {
		return err
	}

	if newUsername == target.Username {
		return apperr.Conflict("New username matches the current one")
	}

	if _, err := service.repository.FindByUsername(context, newUsername); err == nil {
		return apperr.Conflict("Username is already taken")
	}

	if err := service.repository.UpdateUsername(context, target.Email, newUsername); err != nil {
		return fmt.Errorf("account_service_rename_failed: %w", err)
	}

	ctxutil.GetLogger(context).Info("user_renamed",
		slog.String("old_username", target.Username),
		slog.String("new_username", newUsername),
	)

	return nil
}
