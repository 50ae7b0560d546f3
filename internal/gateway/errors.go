package gateway

import (
	"context"
	"errors"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/cardlore/cardlore/internal/types"
)

// Gateway error codes.
const (
	ErrCodeSchemaInvalid  types.ErrorCode = "GATEWAY_SCHEMA_INVALID"
	ErrCodeInvalidConfig  types.ErrorCode = "GATEWAY_INVALID_CONFIG"
	ErrCodeServerFailed   types.ErrorCode = "GATEWAY_SERVER_FAILED"
	ErrCodeAlreadyStarted types.ErrorCode = "GATEWAY_ALREADY_STARTED"
	ErrCodeShutdownFailed types.ErrorCode = "GATEWAY_SHUTDOWN_FAILED"
)

// Values of extensions.code in GraphQL errors.
const (
	CodeBadUserInput     = "BAD_USER_INPUT"
	CodeNotFound         = "NOT_FOUND"
	CodeInternal         = "INTERNAL_SERVER_ERROR"
	CodeValidationFailed = "GRAPHQL_VALIDATION_FAILED"
	CodeParseFailed      = "GRAPHQL_PARSE_FAILED"
	CodeRateLimited      = "RATE_LIMITED"
	CodeTimeout          = "TIMEOUT"
)

const internalErrorDescription = "Internal server error"

// fieldError converts a catalog error into a GraphQL error for the field at
// path. Infrastructure failures are reported without their cause.
func fieldError(err error, operation string, path ast.Path) *gqlerror.Error {
	gqlErr := &gqlerror.Error{
		Path:       path,
		Extensions: map[string]any{"operation": operation},
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		gqlErr.Message = "Query timeout exceeded"
		gqlErr.Extensions["code"] = CodeTimeout
	case types.IsValidation(err):
		gqlErr.Message = message(err)
		gqlErr.Extensions["code"] = CodeBadUserInput
	case types.IsNotFound(err):
		gqlErr.Message = message(err)
		gqlErr.Extensions["code"] = CodeNotFound
	default:
		gqlErr.Message = internalErrorDescription
		gqlErr.Extensions["code"] = CodeInternal
	}
	return gqlErr
}

// requestErrors tags errors raised before execution with code.
func requestErrors(list gqlerror.List, code string) gqlerror.List {
	for _, e := range list {
		withCode(e, code)
	}
	return list
}

// asGraphQLError returns err as a gqlerror.Error, keeping its location when
// it already is one.
func asGraphQLError(err error) *gqlerror.Error {
	var gqlErr *gqlerror.Error
	if errors.As(err, &gqlErr) {
		return gqlErr
	}
	return &gqlerror.Error{Message: err.Error()}
}

// withCode sets extensions.code unless the error already carries one.
func withCode(err *gqlerror.Error, code string) *gqlerror.Error {
	if err.Extensions == nil {
		err.Extensions = map[string]any{}
	}
	if _, ok := err.Extensions["code"]; !ok {
		err.Extensions["code"] = code
	}
	return err
}

func requestError(code, msg string) *gqlerror.Error {
	return &gqlerror.Error{Message: msg, Extensions: map[string]any{"code": code}}
}

// message returns the client-facing text of a LoreError without its code
// prefix.
func message(err error) string {
	var loreErr *types.LoreError
	if errors.As(err, &loreErr) {
		return loreErr.Message
	}
	return err.Error()
}
