package services

import (
	"context"
	"errors"

	"tienda/internal/models"
	"tienda/internal/repositories"
	pkgerrors "tienda/pkg/errors"
)

// TxRunner runs fn with repositories bound to a single transaction.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repositories.TxRepositories) error) error
}

const accessDenied = "Acceso denegado"

// requireAdmin rejects non-admin actors before any other work is done.
func requireAdmin(actor models.Actor) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, accessDenied)
	}
	return nil
}

// classify turns a repository error into a typed error, using notFoundMsg
// for missing rows.
func classify(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, notFoundMsg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, err.Error())
}

func validationError(msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg)
}
