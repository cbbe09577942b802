package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const fallbackProfileName = "default"

// Config is the on-disk state of issues-cli: named server profiles and the one in use.
type Config struct {
	DefaultProfile string             `json:"default_profile" yaml:"default_profile"`
	Profiles       map[string]Profile `json:"profiles" yaml:"profiles"`
}

// Profile is one server account together with its selected project.
type Profile struct {
	Name         string `json:"name" yaml:"name"`
	ServerURL    string `json:"server_url" yaml:"server_url"`
	Email        string `json:"email,omitempty" yaml:"email,omitempty"`
	Token        string `json:"token" yaml:"token"`
	RefreshToken string `json:"refresh_token,omitempty" yaml:"refresh_token,omitempty"`
	ProjectID    string `json:"project_id" yaml:"project_id"`
}

// activeName resolves the profile in use: --profile or ISSUES_CLI_PROFILE, then the
// stored default.
func (c *Config) activeName() string {
	if name := viper.GetString("profile"); name != "" {
		return name
	}
	if c.DefaultProfile != "" {
		return c.DefaultProfile
	}
	return fallbackProfileName
}

func (c *Config) lookup(name string) (Profile, error) {
	profile, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile '%s' not found", name)
	}
	return profile, nil
}

// names lists the profile names in alphabetical order.
func (c *Config) names() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// resolvedConfigPath returns the cleaned, absolute location of the profile file.
func resolvedConfigPath() (string, error) {
	path, err := getConfigPath()
	if err != nil {
		return "", fmt.Errorf("failed to get config path: %w", err)
	}

	path = filepath.Clean(path)
	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("invalid config path %q: must be absolute", path)
	}
	if slices.Contains(strings.Split(filepath.ToSlash(path), "/"), "..") {
		return "", fmt.Errorf("invalid config path %q: path traversal not allowed", path)
	}
	return path, nil
}

// LoadConfig reads the profile file. A missing file is an empty configuration.
func LoadConfig() (*Config, error) {
	path, err := resolvedConfigPath()
	if err != nil {
		return nil, err
	}

	config := &Config{Profiles: make(map[string]Profile)}

	data, err := os.ReadFile(path) //nolint:gosec // path is cleaned and must be absolute
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if config.Profiles == nil {
		config.Profiles = make(map[string]Profile)
	}
	return config, nil
}

// SaveConfig writes the profile file with owner-only permissions.
func SaveConfig(config *Config) error {
	path, err := resolvedConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// updateConfig loads the profile file, applies mutate and saves the result.
func updateConfig(mutate func(*Config) error) error {
	config, err := LoadConfig()
	if err != nil {
		return err
	}
	if err := mutate(config); err != nil {
		return err
	}
	return SaveConfig(config)
}

// GetCurrentProfile returns the profile in use.
func GetCurrentProfile() (*Profile, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	profile, err := config.lookup(config.activeName())
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// SetCurrentProfile makes an existing profile the default.
func SetCurrentProfile(profileName string) error {
	return updateConfig(func(config *Config) error {
		if _, err := config.lookup(profileName); err != nil {
			return err
		}
		config.DefaultProfile = profileName
		return nil
	})
}

// AddProfile stores profile under its name, replacing any profile of that name. The
// first profile stored becomes the default.
func AddProfile(profile Profile) error {
	return updateConfig(func(config *Config) error {
		config.Profiles[profile.Name] = profile
		if config.DefaultProfile == "" {
			config.DefaultProfile = profile.Name
		}
		return nil
	})
}

// RemoveProfile deletes a profile. Removing the default hands the role to the
// alphabetically first profile left, if any.
func RemoveProfile(profileName string) error {
	return updateConfig(func(config *Config) error {
		if _, err := config.lookup(profileName); err != nil {
			return err
		}
		delete(config.Profiles, profileName)

		if config.DefaultProfile == profileName {
			config.DefaultProfile = ""
			if remaining := config.names(); len(remaining) > 0 {
				config.DefaultProfile = remaining[0]
			}
		}
		return nil
	})
}

// ListProfiles returns every profile ordered by name.
func ListProfiles() ([]Profile, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	profiles := make([]Profile, 0, len(config.Profiles))
	for _, name := range config.names() {
		profiles = append(profiles, config.Profiles[name])
	}
	return profiles, nil
}

// ValidateProfile checks that a profile can reach and authenticate to a server.
func ValidateProfile(profile *Profile) error {
	var missing []string
	if profile.Name == "" {
		missing = append(missing, "name")
	}
	if profile.ServerURL == "" {
		missing = append(missing, "server URL")
	}
	if profile.Token == "" {
		missing = append(missing, "access token")
	}
	if len(missing) > 0 {
		return fmt.Errorf("profile is missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

// maskToken keeps the first and last four characters of a token.
func maskToken(token string) string {
	if token == "" {
		return "Not set"
	}
	if len(token) <= 12 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}
