package config

import (
	"errors"
	"fmt"

	"gopkg.in/ini.v1"
)

const DefaultProfile = "default"

var ErrProfileNotFound = errors.New("profile not found")

// Credentials are the enrichment endpoint and API key stored under a profile.
type Credentials struct {
	Endpoint string
	APIKey   string
}

type Registry interface {
	GetProfiles() ([]string, error)
	GetCredentials(profile string) (*Credentials, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials file: %w", err)
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles() ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetCredentials(profile string) (*Credentials, error) {
	section, err := cr.cfg.GetSection(profile)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, profile)
	}

	creds := &Credentials{
		Endpoint: section.Key("endpoint").String(),
		APIKey:   section.Key("api_key").String(),
	}
	if creds.Endpoint == "" || creds.APIKey == "" {
		return nil, fmt.Errorf("profile %s must set endpoint and api_key", profile)
	}
	return creds, nil
}
