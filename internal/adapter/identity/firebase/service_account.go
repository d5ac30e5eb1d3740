package firebase

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ServiceAccount holds the fields of a service-account key file that the
// verifier needs.
type ServiceAccount struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
}

// ParseServiceAccount decodes a base64-encoded service-account JSON document.
func ParseServiceAccount(encoded string) (*ServiceAccount, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode service key: %w", err)
	}

	var sa ServiceAccount
	if err := json.Unmarshal(raw, &sa); err != nil {
		return nil, fmt.Errorf("failed to parse service key: %w", err)
	}
	if sa.ProjectID == "" {
		return nil, errors.New("service key has no project_id")
	}
	return &sa, nil
}
