package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/earworm/internal/scheduler"
	"github.com/abhisek/earworm/internal/session"
)

// isQuit reports whether err means the learner stopped on purpose.
func isQuit(err error) bool {
	return errors.Is(err, session.ErrQuit) || errors.Is(err, context.Canceled)
}

// quietQuit turns "the learner left at a prompt" into a clean exit.
func quietQuit(err error) error {
	if isQuit(err) {
		return nil
	}
	return err
}

// withCatalogHint points at the add command when the catalog is empty.
func withCatalogHint(err error, path string) error {
	if errors.Is(err, scheduler.ErrEmptyCatalog) {
		return fmt.Errorf("%w: %s (add clips with 'earworm add')", err, displayPath(path))
	}
	return err
}
