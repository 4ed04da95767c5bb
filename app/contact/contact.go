// Package contact contains the handlers of the /api/contacts routes. Every
// handler works on the contacts of the authenticated user only.
package contact

import (
	"errors"

	"barylstyle/contacts-api/internal/apperr"
	"barylstyle/contacts-api/internal/repository"
)

const msgNotFound = "Not found"

func repoError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgNotFound)
	}

	return err
}
