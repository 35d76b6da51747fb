package model

import (
	"encoding/json"
	"fmt"
)

// CharacterReference is the short form of a character embedded in other payloads.
type CharacterReference struct {
	ID            int       `json:"id"`
	HashedID      string    `json:"hashed_id"`
	Name          string    `json:"name"`
	Class         string    `json:"class,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	BackgroundURL string    `json:"background_url,omitempty"`
	TotalLevel    int       `json:"total_level,omitempty"`
	CreatedAt     Timestamp `json:"created_at"`
}

// Authentication is the result of the auth check endpoint. The API nests key
// details under "api_key"; they are flattened onto this struct.
type Authentication struct {
	Authenticated bool               `json:"authenticated"`
	User          map[string]int     `json:"user"`
	Character     CharacterReference `json:"character"`
	Name          string             `json:"name"`
	RateLimit     int                `json:"rate_limit"`
	ExpiresAt     Timestamp          `json:"expires_at"`
	Scopes        []string           `json:"scopes"`
}

// HasScope reports whether the authenticated key carries scope.
func (a Authentication) HasScope(scope string) bool {
	for _, s := range a.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

type apiKeyWire struct {
	Name      *string   `json:"name"`
	RateLimit int       `json:"rate_limit"`
	ExpiresAt Timestamp `json:"expires_at"`
	Scopes    []string  `json:"scopes"`
}

type authenticationWire struct {
	Authenticated bool               `json:"authenticated"`
	User          map[string]int     `json:"user"`
	Character     CharacterReference `json:"character"`
	APIKey        *apiKeyWire        `json:"api_key"`
}

func (a *Authentication) UnmarshalJSON(data []byte) error {
	var w authenticationWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("authentication: %w", err)
	}

	*a = Authentication{
		Authenticated: w.Authenticated,
		User:          w.User,
		Character:     w.Character,
	}
	if w.APIKey != nil {
		if w.APIKey.Name != nil {
			a.Name = *w.APIKey.Name
		}
		a.RateLimit = w.APIKey.RateLimit
		a.ExpiresAt = w.APIKey.ExpiresAt
		a.Scopes = w.APIKey.Scopes
	}
	return nil
}

// MarshalJSON writes the wire shape back out, with the key fields nested.
func (a Authentication) MarshalJSON() ([]byte, error) {
	name := a.Name
	return json.Marshal(authenticationWire{
		Authenticated: a.Authenticated,
		User:          a.User,
		Character:     a.Character,
		APIKey: &apiKeyWire{
			Name:      &name,
			RateLimit: a.RateLimit,
			ExpiresAt: a.ExpiresAt,
			Scopes:    a.Scopes,
		},
	})
}
