// Package secrets resolves database credential bundles by reference.
//
// The pipeline never embeds credential values; it receives a reference (an
// environment variable name populated by the deployment's secret store) and
// resolves it into a structured bundle at connection time.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
)

// Credentials is the structured bundle stored in the secret.
type Credentials struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks the bundle for the fields a connection requires.
func (c Credentials) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("credential bundle missing host")
	}
	if c.Port <= 0 {
		return fmt.Errorf("credential bundle missing port")
	}
	if c.Database == "" {
		return fmt.Errorf("credential bundle missing database")
	}
	if c.Username == "" {
		return fmt.Errorf("credential bundle missing username")
	}
	return nil
}

// DSN renders the bundle as a Postgres connection string.
func (c Credentials) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Database,
	}
	return u.String()
}

// Resolver looks up a credential bundle from an external secret store.
type Resolver interface {
	Resolve(ctx context.Context) (Credentials, error)
}

// EnvResolver reads the JSON bundle from an environment variable. The
// deployment injects the secret's payload there by reference; the process
// never sees where it came from.
type EnvResolver struct {
	Var string
}

// Resolve implements Resolver.
func (r EnvResolver) Resolve(_ context.Context) (Credentials, error) {
	raw, ok := os.LookupEnv(r.Var)
	if !ok || raw == "" {
		return Credentials{}, fmt.Errorf("secret env %s is not set", r.Var)
	}
	var creds Credentials
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return Credentials{}, fmt.Errorf("decode secret bundle: %w", err)
	}
	if err := creds.Validate(); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

// Static returns a fixed bundle (primarily for testing).
type Static struct {
	Creds Credentials
}

// Resolve implements Resolver.
func (s Static) Resolve(context.Context) (Credentials, error) {
	return s.Creds, nil
}
