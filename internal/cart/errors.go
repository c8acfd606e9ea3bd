package cart

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrEntryNotFound   = errors.New("image entry not found")
	ErrInvalidQuantity = errors.New("quantity is not one of the allowed values")
	ErrInvalidSize     = errors.New("unknown print size")
	ErrInvalidPaper    = errors.New("unknown paper type")
	ErrSessionClosed   = errors.New("edit session is closed")
)

// IncompleteEditError reports the entries that still lack an edited image
// when assembly is attempted.
type IncompleteEditError struct {
	EntryIDs []uuid.UUID
}

func (e *IncompleteEditError) Error() string {
	ids := make([]string, len(e.EntryIDs))
	for i, id := range e.EntryIDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("entries not yet edited: %s", strings.Join(ids, ", "))
}
