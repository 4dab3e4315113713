package store

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("already exists")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// translateError maps Postgres constraint violations onto store errors.
func translateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqUniqueViolation:
		return errors.Join(ErrConflict, constraintError(pqErr))
	case pqForeignKeyViolation:
		return errors.Join(ErrNotFound, constraintError(pqErr))
	default:
		return err
	}
}

// ConstraintError names the constraint behind ErrConflict or ErrNotFound.
type ConstraintError struct {
	Constraint string
}

func (e *ConstraintError) Error() string {
	return "constraint " + e.Constraint
}

func constraintError(pqErr *pq.Error) error {
	return &ConstraintError{Constraint: pqErr.Constraint}
}
