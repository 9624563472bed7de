package port

import "github.com/rl1809/inventory-bot/internal/core/domain"

type SessionRepository interface {
	// Get returns the in-progress session for a user, if any
	Get(sessionID string) (domain.Session, bool)

	// Save creates or overwrites the session
	Save(session domain.Session)

	// Delete clears the session; deleting a missing session is a no-op
	Delete(sessionID string)
}
