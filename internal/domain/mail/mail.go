package mail

import "context"

type Template string

const (
	TemplateConfirmation  Template = "confirmation"
	TemplateWelcome       Template = "welcome"
	TemplateGoodbye       Template = "goodbye"
	TemplateResetPassword Template = "reset-password"
)

func (t Template) Valid() bool {
	switch t {
	case TemplateConfirmation, TemplateWelcome, TemplateGoodbye, TemplateResetPassword:
		return true
	}
	return false
}

type Recipient struct {
	Email string
	Name  string
	// Link is rendered into templates that carry a call to action
	// (confirmation, reset-password).
	Link string
}

// Message is a rendered mail ready for delivery.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a rendered message. Implementations block until the
// provider accepted or rejected it.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Notifier is the fire-and-forget side used by the rest of the service.
// Delivery failures are never reported to the caller.
type Notifier interface {
	Notify(ctx context.Context, tmpl Template, to Recipient)
}
