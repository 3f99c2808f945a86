package models

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Error codes understood by RespondWithError.
const (
	CodeUnauthenticated   = "UNAUTHENTICATED"
	CodeInvalidCredential = "INVALID_CREDENTIAL"
	CodeValidation        = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeCommentNotFound   = "COMMENT_NOT_FOUND"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeAlreadyLiked      = "ALREADY_LIKED"
	CodeNotLiked          = "NOT_LIKED"
	CodeInternal          = "INTERNAL_ERROR"
)

// ErrorDetail is a single entry of an error response body.
type ErrorDetail struct {
	Msg      string `json:"msg"`
	Param    string `json:"param,omitempty"`
	Location string `json:"location,omitempty"`
}

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Errors []ErrorDetail `json:"errors"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	// Param names the offending request field for validation errors.
	Param string
	Err   error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewUnauthenticatedError() *AppError {
	return &AppError{Code: CodeUnauthenticated, Message: "No token, authorization denied"}
}

func NewInvalidCredentialError(err error) *AppError {
	return &AppError{Code: CodeInvalidCredential, Message: "Token is not valid", Err: err}
}

func NewValidationError(param, message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message, Param: param}
}

func NewPostNotFoundError() *AppError {
	return &AppError{Code: CodeNotFound, Message: "Post not found"}
}

func NewCommentNotFoundError() *AppError {
	return &AppError{Code: CodeCommentNotFound, Message: "Comment does not exist"}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message}
}

func NewAlreadyLikedError() *AppError {
	return &AppError{Code: CodeAlreadyLiked, Message: "Post already liked"}
}

func NewNotLikedError() *AppError {
	return &AppError{Code: CodeNotLiked, Message: "Post has not yet been liked"}
}

func NewInternalError(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: "Server error", Err: err}
}

// StatusFor maps an error code to its HTTP status.
func StatusFor(code string) int {
	switch code {
	case CodeValidation, CodeAlreadyLiked, CodeNotLiked:
		return fiber.StatusBadRequest
	case CodeUnauthenticated, CodeInvalidCredential, CodeUnauthorized:
		return fiber.StatusUnauthorized
	case CodeNotFound, CodeCommentNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError writes the response for a failed operation. Internal
// failures are logged and answered with a plain "Server error" body so that
// no detail leaks to the client.
func RespondWithError(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) || StatusFor(appErr.Code) == fiber.StatusInternalServerError {
		slog.ErrorContext(c.UserContext(), "request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Any("error", err),
		)
		return c.Status(fiber.StatusInternalServerError).SendString("Server error")
	}

	detail := ErrorDetail{Msg: appErr.Message, Param: appErr.Param}
	if appErr.Param != "" {
		detail.Location = "body"
	}
	return c.Status(StatusFor(appErr.Code)).JSON(ErrorResponse{Errors: []ErrorDetail{detail}})
}
