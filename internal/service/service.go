// Package service implements the Connect handlers for accounts, groups,
// expenses and incomes on top of the ledger rules and the store.
package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

var (
	// ErrNotGroupMember is returned when the caller does not belong to the group.
	ErrNotGroupMember = errors.New("not a member of this group")

	// ErrNotPermitted is returned when the caller may see a record but not change it.
	ErrNotPermitted = errors.New("not permitted")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json field names so messages match what clients send.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest checks msg's struct tags and returns an InvalidArgument error
// naming every failing field.
func validateRequest(msg any) error {
	err := validate.Struct(msg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	problems := make([]string, len(verrs))
	for i, fe := range verrs {
		if fe.Param() != "" {
			problems[i] = fmt.Sprintf("%s: failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
		} else {
			problems[i] = fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag())
		}
	}
	return connect.NewError(connect.CodeInvalidArgument, errors.New(strings.Join(problems, "; ")))
}

// toConnectError maps domain errors onto Connect codes.
func toConnectError(err error) error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return err
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidParticipant),
		errors.Is(err, ledger.ErrInvalidKind):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, ledger.ErrAllocationNotFound),
		errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, ErrNotGroupMember), errors.Is(err, ErrNotPermitted):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		return connect.NewError(connect.CodeUnauthenticated, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// requireMember returns the authenticated member id from ctx.
func requireMember(ctx context.Context) (string, error) {
	memberID := middleware.GetMemberID(ctx)
	if memberID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return memberID, nil
}

// loadGroupForMember fetches a group and checks that memberID belongs to it.
func loadGroupForMember(ctx context.Context, store storage.GroupStore, groupID, memberID string) (*models.Group, error) {
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(memberID) {
		return nil, fmt.Errorf("group %s: %w", groupID, ErrNotGroupMember)
	}
	return group, nil
}
