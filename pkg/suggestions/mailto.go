package suggestions

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tadweer/tadweer-site/types"
)

// MailtoLink builds a pre-filled email to the site owner carrying the
// submission, for when no backend is reachable.
func MailtoLink(ownerEmail string, input types.SuggestionCreate) string {
	category := input.Category
	if category == "" {
		category = "general"
	}
	name := input.Name
	if name == "" {
		name = "Anonymous"
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Name: %s\n", name)
	if input.Email != "" {
		fmt.Fprintf(&body, "Email: %s\n", input.Email)
	}
	fmt.Fprintf(&body, "Category: %s\n", category)
	if input.PageURL != "" {
		fmt.Fprintf(&body, "Page: %s\n", input.PageURL)
	}
	fmt.Fprintf(&body, "\n%s\n", input.Suggestion)

	subject := fmt.Sprintf("Suggestion: %s", category)
	return fmt.Sprintf("mailto:%s?subject=%s&body=%s",
		ownerEmail, mailtoEscape(subject), mailtoEscape(body.String()))
}

// mailtoEscape percent-encodes s; mail clients read "+" literally, so spaces become %20.
func mailtoEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
