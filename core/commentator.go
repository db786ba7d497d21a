package commentary

import (
	"github.com/google/uuid"

	"github.com/castwerk/booth-core/core/config"
)

// Commentator is the runtime state of one persona in the booth: its
// configured profile, the chat session it speaks under, and what it said
// last. A fresh session starts every run so the upstream model does not
// carry context across runs.
type Commentator struct {
	ID        string
	Profile   config.CommentatorProfile
	SessionID string

	LastLine    string
	LinesSpoken int

	active *Turn
}

func newCommentator(profile config.CommentatorProfile) *Commentator {
	return &Commentator{
		ID:        profile.ID,
		Profile:   profile,
		SessionID: newSessionID(profile.CharacterID),
	}
}

func newSessionID(characterID string) string {
	return characterID + "-" + uuid.NewString()
}

// resetSession discards the persona's conversational memory for a new run.
func (c *Commentator) resetSession() {
	c.SessionID = newSessionID(c.Profile.CharacterID)
	c.LastLine = ""
	c.LinesSpoken = 0
}

// applyProfile swaps in updated styling without breaking the live session.
func (c *Commentator) applyProfile(profile config.CommentatorProfile) {
	c.Profile = profile
}
