// Package mailer delivers password reset messages. The server only hands
// messages off; actual email delivery happens elsewhere.
package mailer

import (
	"context"

	"github.com/dmitrijs2005/azura/internal/logging"
	"github.com/dmitrijs2005/azura/internal/server/models"
)

// Mailer sends the plaintext reset secret to the user's address.
type Mailer interface {
	SendPasswordReset(ctx context.Context, user *models.User, resetHash string) error
}

// LogMailer records that a message would have been sent. The secret itself
// is not logged.
type LogMailer struct {
	log logging.Logger
}

func NewLogMailer(log logging.Logger) *LogMailer {
	return &LogMailer{log: log.With("module", "mailer")}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, user *models.User, _ string) error {
	m.log.Info(ctx, "password reset message queued", "user_id", user.ID, "to", user.Email)
	return nil
}
