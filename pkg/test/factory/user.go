package factory

import (
	"strconv"

	fab "github.com/Goldziher/fabricator"
	"golang.org/x/crypto/bcrypt"

	"todoclient/internal/core/domain"
)

const DefaultPassword = "12345678"

func NewUser[T any](customData ...map[string]any) T {
	instance := fab.New(*new(T))

	return instance.Build(customData...)
}

// Account builds a devserver account whose PasswordHash matches
// DefaultPassword unless customData sets one.
func Account(customData ...map[string]any) domain.Account {
	id := sequence.Add(1)

	defaults := map[string]any{
		"User": domain.User{
			ID:       domain.ID(strconv.FormatInt(id, 10)),
			Username: "user" + strconv.FormatInt(id, 10),
		},
	}

	hasPasswordHash := false
	for _, data := range customData {
		if _, exists := data["PasswordHash"]; exists {
			hasPasswordHash = true
		}
		for key, value := range data {
			defaults[key] = value
		}
	}

	if !hasPasswordHash {
		hashed, _ := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
		defaults["PasswordHash"] = string(hashed)
	}

	return NewUser[domain.Account](defaults)
}
