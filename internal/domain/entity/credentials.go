package entity

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ServiceAccount Google service-account kaliti (bitta statik identifikator)
type ServiceAccount struct {
	Type                    string `json:"type"`
	ProjectID               string `json:"project_id"`
	PrivateKeyID            string `json:"private_key_id"`
	PrivateKey              string `json:"private_key"`
	ClientEmail             string `json:"client_email"`
	ClientID                string `json:"client_id"`
	AuthURI                 string `json:"auth_uri"`
	TokenURI                string `json:"token_uri"`
	AuthProviderX509CertURL string `json:"auth_provider_x509_cert_url"`
	ClientX509CertURL       string `json:"client_x509_cert_url"`
}

// ParseServiceAccount decodes the credential JSON and checks the fields the
// token exchange cannot work without.
func ParseServiceAccount(raw []byte) (ServiceAccount, error) {
	var sa ServiceAccount
	if len(strings.TrimSpace(string(raw))) == 0 {
		return sa, fmt.Errorf("%w: credentials are empty", ErrAuth)
	}
	if err := json.Unmarshal(raw, &sa); err != nil {
		return sa, fmt.Errorf("%w: credentials are not valid JSON: %v", ErrAuth, err)
	}
	var missing []string
	if sa.Type == "" {
		missing = append(missing, "type")
	}
	if sa.ClientEmail == "" {
		missing = append(missing, "client_email")
	}
	if sa.PrivateKey == "" {
		missing = append(missing, "private_key")
	}
	if sa.TokenURI == "" {
		missing = append(missing, "token_uri")
	}
	if len(missing) > 0 {
		return sa, fmt.Errorf("%w: credentials missing %s", ErrAuth, strings.Join(missing, ", "))
	}
	if sa.Type != "service_account" {
		return sa, fmt.Errorf("%w: credential type %q is not service_account", ErrAuth, sa.Type)
	}
	return sa, nil
}

// Diagnostics credential holatini UI paneli uchun qaytaradi (maxfiy qismlarsiz)
type CredentialDiagnostics struct {
	Loaded      bool   `json:"loaded"`
	Source      string `json:"source"`
	Type        string `json:"type"`
	ClientEmail string `json:"client_email"`
	ProjectID   string `json:"project_id"`
	Error       string `json:"error,omitempty"`
}
