package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/tictoc"
	ConfigFileName    = "tictoc.yml"

	// DefaultTokenSecret matches the development secret the service has always
	// shipped with. The server warns when it is still in use.
	DefaultTokenSecret = "secret"
)

// Config holds all tictoc configuration settings
type Config struct {
	// TokenSecret is the HMAC key for HS256 login tokens
	TokenSecret string `yaml:"token_secret" json:"token_secret"`

	// TokenTTLSeconds is the login token lifetime; 0 issues tokens without exp
	TokenTTLSeconds int `yaml:"token_ttl" json:"token_ttl"`

	// BcryptCost is the work factor for new password hashes
	BcryptCost int `yaml:"bcrypt_cost" json:"bcrypt_cost"`

	// UserListLimitMax is the maximum number of users returned by one listing request
	UserListLimitMax int `yaml:"user_list_limit_max" json:"user_list_limit_max"`

	// MinPasswordLength is the shortest password accepted on user creation
	MinPasswordLength int `yaml:"min_password_length" json:"min_password_length"`

	sources        map[string]string
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Default returns a config holding only the built-in defaults
func Default() *Config {
	return newDefault()
}

func newDefault() *Config {
	c := &Config{
		TokenSecret:       DefaultTokenSecret,
		TokenTTLSeconds:   0,
		BcryptCost:        10,
		UserListLimitMax:  1000,
		MinPasswordLength: 8,
		sources:           make(map[string]string),
	}
	for _, name := range attributeNames() {
		c.sources[name] = "default"
	}
	return c
}

// Path returns the config file location, honoring TICTOC_CONFIG_PATH
func Path() string {
	configPath := os.Getenv("TICTOC_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	return filepath.Join(configPath, ConfigFileName)
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*Config, error) {
	config := newDefault()
	config.configFilePath = Path()

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig Config
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{
		"token_secret", "token_ttl", "bcrypt_cost",
		"user_list_limit_max", "min_password_length",
	}
}

func (c *Config) applyFileConfig(file *Config) {
	if file.TokenSecret != "" {
		c.TokenSecret = file.TokenSecret
		c.sources["token_secret"] = "file"
	}
	if file.TokenTTLSeconds != 0 {
		c.TokenTTLSeconds = file.TokenTTLSeconds
		c.sources["token_ttl"] = "file"
	}
	if file.BcryptCost != 0 {
		c.BcryptCost = file.BcryptCost
		c.sources["bcrypt_cost"] = "file"
	}
	if file.UserListLimitMax != 0 {
		c.UserListLimitMax = file.UserListLimitMax
		c.sources["user_list_limit_max"] = "file"
	}
	if file.MinPasswordLength != 0 {
		c.MinPasswordLength = file.MinPasswordLength
		c.sources["min_password_length"] = "file"
	}
}

func (c *Config) applyEnvConfig() {
	if val := os.Getenv("TICTOC_TOKEN_SECRET"); val != "" {
		c.TokenSecret = val
		c.sources["token_secret"] = "environment"
	}
	if val := os.Getenv("TICTOC_TOKEN_TTL"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.TokenTTLSeconds = i
			c.sources["token_ttl"] = "environment"
		}
	}
	if val := os.Getenv("TICTOC_BCRYPT_COST"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.BcryptCost = i
			c.sources["bcrypt_cost"] = "environment"
		}
	}
	if val := os.Getenv("TICTOC_USER_LIST_LIMIT_MAX"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.UserListLimitMax = i
			c.sources["user_list_limit_max"] = "environment"
		}
	}
	if val := os.Getenv("TICTOC_MIN_PASSWORD_LENGTH"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.MinPasswordLength = i
			c.sources["min_password_length"] = "environment"
		}
	}
}

// ConfigFilePath returns the path to the config file
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// TokenTTL returns the token lifetime as a duration
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLSeconds) * time.Second
}

// UsesDefaultSecret reports whether tokens are signed with the development secret
func (c *Config) UsesDefaultSecret() bool {
	return c.TokenSecret == DefaultTokenSecret
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.TokenSecret == "" {
		return fmt.Errorf("token_secret must not be empty")
	}
	if c.TokenTTLSeconds < 0 {
		return fmt.Errorf("invalid token_ttl value: %d", c.TokenTTLSeconds)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("invalid bcrypt_cost value: %d (must be between %d and %d)",
			c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.UserListLimitMax <= 0 {
		return fmt.Errorf("invalid user_list_limit_max value: %d", c.UserListLimitMax)
	}
	if c.MinPasswordLength < 1 {
		return fmt.Errorf("invalid min_password_length value: %d", c.MinPasswordLength)
	}
	return nil
}

// Attributes returns all configuration attributes with their values and sources.
// The token secret is never echoed back.
func (c *Config) Attributes() []Attribute {
	secret := "(set)"
	if c.UsesDefaultSecret() {
		secret = "(default)"
	}
	return []Attribute{
		{Name: "token_secret", Value: secret, Source: c.Source("token_secret")},
		{Name: "token_ttl", Value: strconv.Itoa(c.TokenTTLSeconds), Source: c.Source("token_ttl")},
		{Name: "bcrypt_cost", Value: strconv.Itoa(c.BcryptCost), Source: c.Source("bcrypt_cost")},
		{Name: "user_list_limit_max", Value: strconv.Itoa(c.UserListLimitMax), Source: c.Source("user_list_limit_max")},
		{Name: "min_password_length", Value: strconv.Itoa(c.MinPasswordLength), Source: c.Source("min_password_length")},
	}
}

// FormatText returns a text representation of the configuration
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-30s %-20s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-30s %-20s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-30s %-20s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
