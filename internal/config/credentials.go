package config

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrCredentialsFormat means the credential material is neither base64-encoded JSON nor
	// raw JSON.
	ErrCredentialsFormat = errors.New("credentials are neither base64-encoded JSON nor raw JSON")
	// ErrCredentialsFields means the credential JSON parsed but lacks required fields.
	ErrCredentialsFields = errors.New("credentials are missing required fields")
)

type serviceAccount struct {
	ClientEmail string `json:"client_email" validate:"required"`
	PrivateKey  string `json:"private_key" validate:"required"`
}

// ParseCredentials decodes service-account credential material. It first tries base64
// followed by JSON, then plain JSON, and returns the JSON document.
func ParseCredentials(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.Mark(errors.New("GOOGLE_CREDENTIALS is empty"), ErrConfig)
	}

	var (
		doc  []byte
		acct serviceAccount
	)

	if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil && json.Unmarshal(decoded, &acct) == nil {
		doc = decoded
	} else if json.Unmarshal([]byte(raw), &acct) == nil {
		doc = []byte(raw)
	} else {
		return nil, ErrCredentialsFormat
	}

	if err := validator.New().Struct(acct); err != nil {
		var missing []string
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				missing = append(missing, jsonName(fe.Field()))
			}
		}
		return nil, errors.Wrapf(ErrCredentialsFields, "missing %s", strings.Join(missing, ", "))
	}

	return doc, nil
}

func jsonName(field string) string {
	switch field {
	case "ClientEmail":
		return "client_email"
	case "PrivateKey":
		return "private_key"
	}
	return field
}
