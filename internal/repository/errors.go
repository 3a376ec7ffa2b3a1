package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is the generic "no such row" error; entity-specific errors wrap it.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when a unique constraint would be violated.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidReference is returned when a foreign key points at nothing.
	ErrInvalidReference = errors.New("invalid reference")

	ErrUserNotFound     = fmt.Errorf("%w: user", ErrNotFound)
	ErrTaskNotFound     = fmt.Errorf("%w: task", ErrNotFound)
	ErrSubTaskNotFound  = fmt.Errorf("%w: subtask", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("%w: category", ErrNotFound)
	ErrTagNotFound      = fmt.Errorf("%w: tag", ErrNotFound)

	ErrUsernameTaken = fmt.Errorf("%w: username", ErrDuplicate)
	ErrEmailTaken    = fmt.Errorf("%w: email", ErrDuplicate)
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// translate maps PostgreSQL constraint failures onto the sentinel errors.
func translate(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqUniqueViolation:
		switch pqErr.Constraint {
		case "users_username_key":
			return ErrUsernameTaken
		case "users_email_key":
			return ErrEmailTaken
		}
		return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
	case pqForeignKeyViolation:
		return fmt.Errorf("%w: %s", ErrInvalidReference, pqErr.Constraint)
	}
	return err
}
