package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/amrita-prog/Paynion-Project/internal/auth"
	"github.com/amrita-prog/Paynion-Project/internal/calculator"
	"github.com/amrita-prog/Paynion-Project/internal/middleware"
	"github.com/amrita-prog/Paynion-Project/internal/settlement"
	"github.com/amrita-prog/Paynion-Project/internal/storage"
)

var (
	errNotMember       = errors.New("you are not a member of this group")
	errNotPaymentOwner = errors.New("only the payer can update this payment")
	errNotExpensePayer = errors.New("only the member who paid can delete this expense")
)

// invalidArgument wraps a validation failure.
func invalidArgument(err error) error {
	return connect.NewError(connect.CodeInvalidArgument, err)
}

// toConnectError maps domain errors to Connect codes. Errors that already carry a
// code pass through unchanged.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}

	code := connect.CodeInternal
	switch {
	case errors.Is(err, storage.ErrNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, storage.ErrConflict):
		code = connect.CodeAborted
	case errors.Is(err, errNotMember),
		errors.Is(err, errNotPaymentOwner),
		errors.Is(err, errNotExpensePayer),
		errors.Is(err, settlement.ErrNotPayer),
		errors.Is(err, settlement.ErrNotReceiver):
		code = connect.CodePermissionDenied
	case errors.Is(err, settlement.ErrInvalidTransition),
		errors.Is(err, settlement.ErrUnbalanced):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, settlement.ErrInvalidPaymentMode),
		isSplitError(err),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrMissingName):
		code = connect.CodeInvalidArgument
	case errors.Is(err, auth.ErrEmailExists):
		code = connect.CodeAlreadyExists
	case errors.Is(err, auth.ErrInvalidCredentials):
		code = connect.CodeUnauthenticated
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	}
	return connect.NewError(code, err)
}

func isSplitError(err error) bool {
	for _, target := range []error{
		calculator.ErrNonPositiveAmount,
		calculator.ErrNoParticipants,
		calculator.ErrDuplicateParticipant,
		calculator.ErrUnknownParticipant,
		calculator.ErrMissingShare,
		calculator.ErrNegativeShare,
		calculator.ErrPercentageTotal,
		calculator.ErrCustomTotal,
		calculator.ErrZeroSubtotal,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// callerID returns the authenticated user set by the auth interceptor.
func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}
