package handler

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"todoclient/internal/core/domain"
)

const defaultSuggestionLimit = 5

const (
	messageFirstIdeas = "Here are a few ideas to get you started."
	messageMoreIdeas  = "Based on your list, you might also like these."
	messageCaughtUp   = "You're all caught up. Add a few more todos and check back later."
)

// SuggestionCatalog hands out canned suggestions the user does not have yet.
type SuggestionCatalog struct {
	entries []domain.Suggestion
	limit   int
}

type catalogFile struct {
	Suggestions []domain.Suggestion `toml:"suggestion"`
}

func NewSuggestionCatalog(entries []domain.Suggestion, limit int) *SuggestionCatalog {
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}

	return &SuggestionCatalog{entries: entries, limit: limit}
}

// LoadSuggestionCatalog reads [[suggestion]] tables from a TOML file.
func LoadSuggestionCatalog(path string, limit int) (*SuggestionCatalog, error) {
	var file catalogFile

	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("load suggestions %s: %w", path, err)
	}

	return NewSuggestionCatalog(file.Suggestions, limit), nil
}

func DefaultSuggestions() []domain.Suggestion {
	return []domain.Suggestion{
		{Title: "Plan meals for the week", Description: "Pick dinners and write the grocery list in one go."},
		{Title: "Review monthly budget", Description: "Compare spending against last month."},
		{Title: "Book a dentist appointment"},
		{Title: "Back up your laptop", Description: "Copy documents and photos to an external drive."},
		{Title: "Call a friend you have not spoken to in a while"},
		{Title: "Clean out the inbox", Description: "Archive or answer everything older than a week."},
		{Title: "Go for a 30 minute walk"},
		{Title: "Update your passwords", Description: "Start with email and banking."},
	}
}

func (sc *SuggestionCatalog) Suggest(existing []domain.Todo) domain.SuggestionBatch {
	taken := make(map[string]bool, len(existing))
	for _, todo := range existing {
		taken[normalizeTitle(todo.Title)] = true
	}

	suggestions := make([]domain.Suggestion, 0, sc.limit)
	for _, entry := range sc.entries {
		if len(suggestions) == sc.limit {
			break
		}
		if taken[normalizeTitle(entry.Title)] {
			continue
		}
		suggestions = append(suggestions, entry)
	}

	message := messageMoreIdeas
	switch {
	case len(suggestions) == 0:
		message = messageCaughtUp
	case len(existing) == 0:
		message = messageFirstIdeas
	}

	return domain.SuggestionBatch{Suggestions: suggestions, Message: message}
}

func normalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
