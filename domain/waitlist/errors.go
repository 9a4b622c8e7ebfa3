package waitlist

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	apperrors "github.com/onedotone/landing-api/pkg/errors"
	"github.com/onedotone/landing-api/pkg/postgrest"
	"gorm.io/gorm"
)

// User-facing messages. Raw store errors are only ever logged.
const (
	MessageSuccess      = "You're on the list! We'll notify you when 1dot1 launches."
	MessageMissingEmail = "Please enter your email address."
	MessageInvalidEmail = "Please enter a valid email address."
	MessageInvalidName  = "Please enter a shorter name."
	MessageInvalidForm  = "This signup form is not recognised."
	MessageDuplicate    = "This email is already on the list."
	MessageUnavailable  = "The waitlist is temporarily unavailable. Please try again later."
	MessageNetwork      = "We couldn't reach the waitlist service. Please check your connection and try again."
	MessageUnknown      = "Something went wrong while joining the waitlist. Please try again."
)

// Postgres SQLSTATE codes the stores distinguish.
const (
	sqlStateUniqueViolation       = "23505"
	sqlStateInsufficientPrivilege = "42501"
	sqlStateUndefinedTable        = "42P01"
	sqlStateInvalidPassword       = "28P01"
	sqlStateInvalidAuthorization  = "28000"
	sqlStateInvalidCatalog        = "3D000"
)

// Outcome labels used in logs and metrics.
const (
	outcomeSuccess       = "success"
	outcomeValidation    = "validation"
	outcomeDuplicate     = "duplicate"
	outcomeConfiguration = "configuration"
	outcomePermission    = "permission"
	outcomeNetwork       = "network"
	outcomeUnknown       = "unknown"
)

func outcomeOf(err error) string {
	switch apperrors.GetErrorType(err) {
	case "":
		return outcomeSuccess
	case apperrors.ErrorTypeInvalidRequest:
		return outcomeValidation
	case apperrors.ErrorTypeConflict:
		return outcomeDuplicate
	case apperrors.ErrorTypeConfiguration:
		return outcomeConfiguration
	case apperrors.ErrorTypeForbidden:
		return outcomePermission
	case apperrors.ErrorTypeNetwork:
		return outcomeNetwork
	default:
		return outcomeUnknown
	}
}

// classifyDatabaseError maps a gorm/pgx failure onto the store error taxonomy.
func classifyDatabaseError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateUniqueViolation:
			return apperrors.NewConflictError(MessageDuplicate, err)
		case sqlStateInsufficientPrivilege:
			return apperrors.NewForbiddenError(MessageUnavailable, err)
		case sqlStateUndefinedTable, sqlStateInvalidPassword, sqlStateInvalidAuthorization, sqlStateInvalidCatalog:
			return apperrors.NewConfigurationError(MessageUnavailable, err)
		}
		return apperrors.NewDatabaseError(MessageUnknown, err)
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) || apperrors.IsDuplicateKeyError(err) {
		return apperrors.NewConflictError(MessageDuplicate, err)
	}

	if isNetworkFailure(err) {
		return apperrors.NewNetworkError(MessageNetwork, err)
	}

	return apperrors.NewDatabaseError(MessageUnknown, err)
}

// classifyRESTError maps a PostgREST response or transport failure onto the store error taxonomy.
func classifyRESTError(err error) error {
	if errors.Is(err, postgrest.ErrNotConfigured) {
		return apperrors.NewConfigurationError(MessageUnavailable, err)
	}

	var apiErr *postgrest.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == sqlStateUniqueViolation || apiErr.StatusCode == http.StatusConflict:
			return apperrors.NewConflictError(MessageDuplicate, err)
		case apiErr.Code == sqlStateInsufficientPrivilege || apiErr.StatusCode == http.StatusForbidden:
			return apperrors.NewForbiddenError(MessageUnavailable, err)
		case apiErr.Code == sqlStateUndefinedTable,
			apiErr.StatusCode == http.StatusUnauthorized,
			apiErr.StatusCode == http.StatusNotFound:
			return apperrors.NewConfigurationError(MessageUnavailable, err)
		}
		return apperrors.NewDatabaseError(MessageUnknown, err)
	}

	var transportErr *postgrest.TransportError
	if errors.As(err, &transportErr) || isNetworkFailure(err) {
		return apperrors.NewNetworkError(MessageNetwork, err)
	}

	return apperrors.NewDatabaseError(MessageUnknown, err)
}

func isNetworkFailure(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) || pgconn.Timeout(err) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
