package auth

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// Provider is one of the closed set of identity providers the desktop bridge
// can hand off to. The provider's hosted pages refuse to authenticate inside
// an embedded web view, which is why the bridge exists at all.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderGitHub Provider = "github"
)

// Providers returns the supported provider set.
func Providers() []Provider {
	return []Provider{ProviderGoogle, ProviderGitHub}
}

func (p Provider) Supported() bool {
	switch p {
	case ProviderGoogle, ProviderGitHub:
		return true
	}
	return false
}

func (p Provider) String() string { return string(p) }

// ProviderOverride repoints a provider's endpoints, for self-hosted or
// staging deployments.
type ProviderOverride struct {
	StartURL string `yaml:"start_url"`
	TokenURL string `yaml:"token_url"`
	ClientID string `yaml:"client_id"`
}

const overridesFileName = "providers.yaml"

// LoadProviderOverrides reads providers.yaml from dataDir if present. A
// missing file is not an error; a malformed one is.
func LoadProviderOverrides(dataDir string) (map[Provider]ProviderOverride, error) {
	buf, err := os.ReadFile(filepath.Join(dataDir, overridesFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", overridesFileName, err)
	}
	overrides := map[Provider]ProviderOverride{}
	if err := yaml.Unmarshal(buf, &overrides); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", overridesFileName, err)
	}
	for p := range overrides {
		if !p.Supported() {
			return nil, fmt.Errorf("%s: %w: %s", overridesFileName, ErrUnsupportedProvider, p)
		}
	}
	return overrides, nil
}
