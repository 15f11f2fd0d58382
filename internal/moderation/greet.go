package moderation

import (
	"context"
	"html"
)

// Greet sends the welcome or goodbye template for a membership transition.
// It reports whether a message was due; nothing is sent without a template.
func (e *Engine) Greet(ctx context.Context, ev MembershipEvent) (bool, error) {
	var template *string
	settings := e.settings.Effective(ctx, ev.ChatID)
	switch {
	case ev.Joined():
		template = settings.WelcomeTemplate
	case ev.Left():
		template = settings.GoodbyeTemplate
	default:
		return false, nil
	}
	if !hasText(template) {
		return false, nil
	}

	text := RenderTemplate(*template, escapedUser(ev.User()), escapedChat(ev.Chat()))
	actx, cancel := e.actionContext(ctx)
	defer cancel()
	if err := e.sink.SendMessage(actx, ev.ChatID, text, SendOptions{ParseMode: ParseModeHTML}); err != nil {
		e.logger.WithError(err).WithField("chat_id", ev.ChatID).Warn("cant send greeting")
		return true, err
	}
	return true, nil
}

func hasText(s *string) bool {
	return s != nil && *s != ""
}

// Greetings go out as HTML; Mention is already escaped.
func escapedUser(u *UserFields) *UserFields {
	if u == nil {
		return nil
	}
	out := *u
	out.Name = html.EscapeString(u.Name)
	return &out
}

func escapedChat(c *ChatFields) *ChatFields {
	if c == nil {
		return nil
	}
	return &ChatFields{Title: html.EscapeString(c.Title)}
}
