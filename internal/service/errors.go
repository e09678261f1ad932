package service

import (
	"errors"
	"strings"

	"github.com/homilybuild/homily/internal/wizard"
)

var (
	// ErrInvalidInput wraps user input rejected before storage is touched.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthenticated is the wizard's authentication error, shared so
	// every surface maps one sentinel.
	ErrUnauthenticated = wizard.ErrAuthenticationRequired
)

func requireOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return ErrUnauthenticated
	}
	return nil
}
