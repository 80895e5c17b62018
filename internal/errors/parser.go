package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a user-facing code and message for an internal error
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError turns database errors into user-facing info without leaking
// constraint or column names. context names the resource, e.g. "product".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: defaultMessage(context)}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: notFoundMessage(context)}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return parseDuplicateKeyError(err.Error(), context)
	}

	lower := strings.ToLower(err.Error())

	switch {
	// postgres 23505 / sqlite UNIQUE
	case strings.Contains(lower, "duplicate key") ||
		strings.Contains(lower, "unique constraint"):
		return parseDuplicateKeyError(lower, context)

	// postgres 23503 / sqlite FOREIGN KEY
	case strings.Contains(lower, "foreign key constraint"):
		return parseForeignKeyError(lower, context)

	// postgres 23502 / sqlite NOT NULL
	case strings.Contains(lower, "not-null constraint") ||
		strings.Contains(lower, "not null constraint"):
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing"}

	case strings.Contains(lower, "check constraint"):
		return ErrorInfo{Code: ValidationInvalidInput, Message: "Invalid input"}

	case strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "timeout"):
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "An upstream service is unavailable, please try again later",
		}
	}

	return ErrorInfo{Code: InternalServerError, Message: defaultMessage(context)}
}

func parseDuplicateKeyError(lower string, context string) ErrorInfo {
	switch {
	case strings.Contains(lower, "email"):
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "Email is already in use"}
	case strings.Contains(lower, "slug"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "An item with the same name already exists"}
	case strings.Contains(lower, "code"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "Code is already in use"}
	case strings.Contains(lower, "rating_feedbacks"):
		return ErrorInfo{Code: RatingAlreadyExists, Message: "You have already rated this product"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "The " + resourceName(context) + " already exists"}
}

func parseForeignKeyError(lower string, context string) ErrorInfo {
	if strings.Contains(lower, "still referenced") || strings.Contains(context, "delete") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "The " + resourceName(context) + " is still in use and cannot be deleted",
		}
	}
	return ErrorInfo{Code: ResourceNotFound, Message: "A referenced record does not exist"}
}

func resourceName(context string) string {
	name := strings.TrimSpace(strings.ToLower(context))
	for _, verb := range []string{"create ", "update ", "delete "} {
		name = strings.TrimPrefix(name, verb)
	}
	if name == "" {
		return "record"
	}
	return name
}

func notFoundMessage(context string) string {
	name := resourceName(context)
	return strings.ToUpper(name[:1]) + name[1:] + " not found"
}

func defaultMessage(context string) string {
	lower := strings.ToLower(context)
	switch {
	case strings.HasPrefix(lower, "create"):
		return "Failed to create " + resourceName(context) + ", please try again later"
	case strings.HasPrefix(lower, "update"):
		return "Failed to update " + resourceName(context) + ", please try again later"
	case strings.HasPrefix(lower, "delete"):
		return "Failed to delete " + resourceName(context) + ", please try again later"
	}
	return "Something went wrong, please try again later"
}

// ParseAndRespond writes the parsed error with the given status
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	info := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   info.Code,
		Message: info.Message,
	})
}
