package usage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// NoTokenMessage is reported in place of a fetch when no token can be read.
const NoTokenMessage = "No OAuth token found in ~/.claude/.credentials.json"

// ErrNoToken is the fetch error surfaced when credentials are unusable.
var ErrNoToken = errors.New(NoTokenMessage)

type noTokenError struct {
	path string
}

func (e *noTokenError) Error() string {
	return "No OAuth token found in " + e.path
}

func (e *noTokenError) Is(target error) bool {
	return target == ErrNoToken
}

// NoTokenAt returns ErrNoToken for the default credentials file and an error
// naming path otherwise. Both match ErrNoToken with errors.Is.
func NoTokenAt(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return ErrNoToken
	}
	if def, err := DefaultCredentialsPath(); err == nil && filepath.Clean(def) == filepath.Clean(path) {
		return ErrNoToken
	}
	return &noTokenError{path: path}
}

// Credentials is what a fetch needs from the local login.
type Credentials struct {
	Token string
	// Plan is the display name of the subscription, empty when unknown.
	Plan string
}

type CredentialSource interface {
	Load() (Credentials, error)
}

// FileCredentials reads the OAuth login written by the Claude CLI.
type FileCredentials struct {
	path string
}

func NewFileCredentials(path string) *FileCredentials {
	return &FileCredentials{path: strings.TrimSpace(path)}
}

func (f *FileCredentials) Path() string {
	return f.path
}

func (f *FileCredentials) Load() (Credentials, error) {
	if f.path == "" {
		return Credentials{}, errors.New("credentials path is empty")
	}
	return readCredentials(f.path)
}

type credentialsFilePayload struct {
	ClaudeAiOauth *struct {
		AccessToken      string `json:"accessToken"`
		SubscriptionType string `json:"subscriptionType"`
	} `json:"claudeAiOauth"`
}

// DefaultCredentialsPath returns ~/.claude/.credentials.json.
func DefaultCredentialsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".claude", ".credentials.json"), nil
}

func readCredentials(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("read credentials file: %w", err)
	}

	var payload credentialsFilePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return Credentials{}, fmt.Errorf("decode credentials file: %w", err)
	}
	if payload.ClaudeAiOauth == nil {
		return Credentials{}, errors.New("credentials file missing claudeAiOauth")
	}
	token := strings.TrimSpace(payload.ClaudeAiOauth.AccessToken)
	if token == "" {
		return Credentials{}, errors.New("credentials file missing claudeAiOauth.accessToken")
	}
	return Credentials{
		Token: token,
		Plan:  PlanLabel(payload.ClaudeAiOauth.SubscriptionType),
	}, nil
}

// PlanLabel maps a subscription type to its display name. Unknown types are
// shown as-is.
func PlanLabel(subscriptionType string) string {
	switch s := strings.TrimSpace(subscriptionType); s {
	case "max":
		return "Claude Max"
	case "pro":
		return "Claude Pro"
	case "team":
		return "Claude Team"
	case "enterprise":
		return "Claude Enterprise"
	default:
		return s
	}
}
