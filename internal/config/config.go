package config

import (
	"errors"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrCredentialMissing signals a recoverable configuration error: the service
// keeps running and the API reports a persistent config_missing state.
var ErrCredentialMissing = errors.New("map credential not configured")

// Provider hands out the map-widget credential. Implementations must return
// ErrCredentialMissing when nothing is configured.
type Provider interface {
	MapCredential() (string, error)
}

// Env reads the credential from an environment variable.
type Env struct {
	Key string
}

const DefaultEnvKey = "TOPO_MAP_CREDENTIAL"

func (e Env) MapCredential() (string, error) {
	key := e.Key
	if key == "" {
		key = DefaultEnvKey
	}
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return "", ErrCredentialMissing
	}
	return v, nil
}

// File reads the credential from a YAML settings file.
type File struct {
	Path string
}

type fileSettings struct {
	MapCredential string `yaml:"map_credential"`
}

func (f File) MapCredential() (string, error) {
	if strings.TrimSpace(f.Path) == "" {
		return "", ErrCredentialMissing
	}
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrCredentialMissing
		}
		return "", err
	}
	var s fileSettings
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	cred := strings.TrimSpace(s.MapCredential)
	if cred == "" {
		return "", ErrCredentialMissing
	}
	return cred, nil
}

// Chain tries providers in order and returns the first credential found.
// Non-missing errors stop the chain.
type Chain []Provider

func (c Chain) MapCredential() (string, error) {
	for _, p := range c {
		cred, err := p.MapCredential()
		if err == nil {
			return cred, nil
		}
		if !errors.Is(err, ErrCredentialMissing) {
			return "", err
		}
	}
	return "", ErrCredentialMissing
}

// Static returns a fixed credential. Used in tests and push-mode embedding.
type Static string

func (s Static) MapCredential() (string, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", ErrCredentialMissing
	}
	return string(s), nil
}
