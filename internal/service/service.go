package service

import (
	stderrors "errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"libraryhub/internal/errors"
)

// translate maps repository errors onto domain errors. notFound is returned
// for missing records; anything unknown is wrapped with op.
func translate(err error, op string, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.IsDomain(err):
		return err
	case stderrors.Is(err, gorm.ErrRecordNotFound) && notFound != nil:
		return notFound
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func isNotFound(err error) bool {
	return stderrors.Is(err, gorm.ErrRecordNotFound)
}

func isDuplicate(err error) bool {
	return stderrors.Is(err, gorm.ErrDuplicatedKey)
}

func moduleLogger(module string) *slog.Logger {
	return slog.Default().With("module", module, "layer", "service")
}
