package moderation

import (
	"fmt"
	"html"
	"strings"
)

type UserFields struct {
	Name    string
	Mention string
	ID      string
}

type ChatFields struct {
	Title string
}

// RenderTemplate replaces every {name}, {mention}, {id} and {chat}, in that order.
func RenderTemplate(template string, user *UserFields, chat *ChatFields) string {
	name, mention, id := "there", "there", "0"
	if user != nil {
		name, mention, id = user.Name, user.Mention, user.ID
	}
	title := "this chat"
	if chat != nil {
		title = chat.Title
	}

	out := strings.ReplaceAll(template, "{name}", name)
	out = strings.ReplaceAll(out, "{mention}", mention)
	out = strings.ReplaceAll(out, "{id}", id)
	return strings.ReplaceAll(out, "{chat}", title)
}

// MentionHTML links a user by id for HTML parse mode.
func MentionHTML(userID int64, name string) string {
	if name == "" {
		name = fmt.Sprintf("%d", userID)
	}
	if userID == 0 {
		return html.EscapeString(name)
	}
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, userID, html.EscapeString(name))
}
