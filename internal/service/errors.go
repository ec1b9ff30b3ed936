// Package service implements the business rules of the blog service.
package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/GunarsK-portfolio/blog-service/internal/models"
	"github.com/GunarsK-portfolio/blog-service/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
	ErrValidation         = errors.New("validation failed")
	ErrSelfFollow         = errors.New("you cannot follow yourself")
	ErrForbidden          = errors.New("you can only access your own information")
)

// ValidationError is a caller-correctable failure with a message safe to
// show to the client.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes every ValidationError match ErrValidation, plus its cause.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation || (e.Err != nil && target == e.Err)
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// classify maps field and lookup errors onto service errors.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, models.ErrInvalidField):
		msg := strings.TrimPrefix(err.Error(), models.ErrInvalidField.Error()+": ")
		return &ValidationError{Message: msg, Err: models.ErrInvalidField}
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrUserNotFound, err)
	default:
		return err
	}
}
