package main

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

const defaultConfigDir = ".blog-publisher"

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Embedded configuration files
//
//go:embed config/settings.yaml
var defaultSettings string

//go:embed config/title-prompt.md
var defaultTitlePrompt string

//go:embed config/content-prompt.md
var defaultContentPrompt string

//go:embed config/post-archive-template.md
var defaultArchiveTemplate string

var placeholderPattern = regexp.MustCompile(`YOUR_[A-Z0-9_]*_HERE`)

func init() {
	// Report validation errors with the settings file keys
	validation.ErrorTag = "yaml"
}

// ConfigOverrides allows overriding embedded defaults with file paths and flags
type ConfigOverrides struct {
	SettingsPath      *string
	TitlePromptPath   *string
	ContentPromptPath *string
	TokenFile         *string
	APIKey            *string
}

// ModelSettings configures one text-generation model
type ModelSettings struct {
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// LengthRange is an inclusive character-count window
type LengthRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// GeneratorSettings configures the text-generation provider
type GeneratorSettings struct {
	Provider    string        `yaml:"provider"`
	BaseURL     string        `yaml:"base_url"`
	Title       ModelSettings `yaml:"title"`
	Content     ModelSettings `yaml:"content"`
	TitleLength LengthRange   `yaml:"title_length"`
}

// OAuthSettings configures the installed-app OAuth client
type OAuthSettings struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	CallbackHost string `yaml:"callback_host"`
}

// Settings represents the YAML configuration structure
type Settings struct {
	BlogID           string            `yaml:"blog_id"`
	TokenFile        string            `yaml:"token_file"`
	ArchiveDirectory string            `yaml:"archive_directory"`
	OAuth            OAuthSettings     `yaml:"oauth"`
	Generator        GeneratorSettings `yaml:"generator"`
	Categories       []string          `yaml:"categories"`
}

// Validate implements validation.Validatable
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.TokenFile, validation.Required),
		validation.Field(&s.Categories, validation.Required, validation.Each(validation.By(notBlank))),
		validation.Field(&s.Generator),
	)
}

// Validate implements validation.Validatable
func (g GeneratorSettings) Validate() error {
	return validation.ValidateStruct(&g,
		validation.Field(&g.Provider, validation.Required, validation.In(ProviderOpenAI, ProviderAnthropic)),
		validation.Field(&g.Title),
		validation.Field(&g.Content),
		validation.Field(&g.TitleLength),
	)
}

// Validate implements validation.Validatable
func (m ModelSettings) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Model, validation.Required),
		validation.Field(&m.MaxTokens, validation.Min(1)),
		validation.Field(&m.Temperature, validation.Min(0.0), validation.Max(2.0)),
	)
}

// Validate implements validation.Validatable
func (r LengthRange) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Min, validation.Required, validation.Min(1)),
		validation.Field(&r.Max, validation.Required, validation.Min(r.Min)),
	)
}

// TitlePromptData is the data passed to the title prompt template
type TitlePromptData struct {
	Category  string
	MinLength int
	MaxLength int
}

// ContentPromptData is the data passed to the content prompt template
type ContentPromptData struct {
	Title    string
	Category string
}

// Config is the immutable configuration of one run
type Config struct {
	Settings        Settings
	APIKey          string
	TitlePrompt     *template.Template
	ContentPrompt   *template.Template
	ArchiveTemplate *template.Template
}

// LoadConfig assembles the run configuration from settings, prompt files and the environment
func LoadConfig(overrides *ConfigOverrides, getenv func(string) string) (*Config, error) {
	if overrides == nil {
		overrides = &ConfigOverrides{}
	}

	var settings *Settings
	var err error
	if overrides.SettingsPath != nil {
		// Explicit settings file must exist
		settings, err = loadSettingsRequired(*overrides.SettingsPath)
	} else {
		if err := ensureConfigExists(); err != nil {
			return nil, newRunError(ConfigurationError, "ensuring config files exist", err)
		}
		settings, err = loadSettings(filepath.Join(defaultConfigDir, "settings.yaml"))
	}
	if err != nil {
		return nil, newRunError(ConfigurationError, "loading settings", err)
	}

	applyEnvironment(settings, getenv)
	if overrides.TokenFile != nil && *overrides.TokenFile != "" {
		settings.TokenFile = *overrides.TokenFile
	}

	titleSource, err := readOverride(overrides.TitlePromptPath, defaultTitlePrompt)
	if err != nil {
		return nil, newRunError(ConfigurationError, "reading title prompt", err)
	}
	titlePrompt, err := parsePromptTemplate("title", titleSource, "{{.Category}}")
	if err != nil {
		return nil, newRunError(ConfigurationError, "parsing title prompt", err)
	}

	contentSource, err := readOverride(overrides.ContentPromptPath, defaultContentPrompt)
	if err != nil {
		return nil, newRunError(ConfigurationError, "reading content prompt", err)
	}
	contentPrompt, err := parsePromptTemplate("content", contentSource, "{{.Title}}", "{{.Category}}")
	if err != nil {
		return nil, newRunError(ConfigurationError, "parsing content prompt", err)
	}

	archiveTemplate, err := template.New("archive").Parse(defaultArchiveTemplate)
	if err != nil {
		return nil, newRunError(ConfigurationError, "parsing archive template", err)
	}

	apiKey := ""
	if overrides.APIKey != nil {
		apiKey = *overrides.APIKey
	}
	if apiKey == "" {
		apiKey = apiKeyFromEnv(settings.Generator.Provider, getenv)
	}

	return &Config{
		Settings:        *settings,
		APIKey:          apiKey,
		TitlePrompt:     titlePrompt,
		ContentPrompt:   contentPrompt,
		ArchiveTemplate: archiveTemplate,
	}, nil
}

// Validate checks the settings and the generator API key. Publishing
// additionally requires the blog id and the OAuth client.
func (c *Config) Validate(publishing bool) error {
	if err := c.Settings.Validate(); err != nil {
		return newRunError(ConfigurationError, "validating settings", err)
	}

	errs := validation.Errors{
		"api_key": validation.Validate(c.APIKey, validation.Required, validation.By(notPlaceholder)),
	}
	if publishing {
		errs["blog_id"] = validation.Validate(c.Settings.BlogID, validation.Required, validation.By(notPlaceholder))
		c.oauthErrors(errs)
	}
	if err := errs.Filter(); err != nil {
		return newRunError(ConfigurationError, "validating secrets", err)
	}

	return nil
}

// ValidateAuth checks only what the authorization flow needs
func (c *Config) ValidateAuth() error {
	errs := validation.Errors{
		"token_file": validation.Validate(c.Settings.TokenFile, validation.Required),
	}
	c.oauthErrors(errs)
	if err := errs.Filter(); err != nil {
		return newRunError(ConfigurationError, "validating oauth client", err)
	}
	return nil
}

func (c *Config) oauthErrors(errs validation.Errors) {
	errs["oauth.client_id"] = validation.Validate(c.Settings.OAuth.ClientID, validation.Required, validation.By(notPlaceholder))
	errs["oauth.client_secret"] = validation.Validate(c.Settings.OAuth.ClientSecret, validation.Required, validation.By(notPlaceholder))
}

// Categories returns a copy of the configured category list
func (c *Config) Categories() []string {
	return append([]string(nil), c.Settings.Categories...)
}

func notPlaceholder(value any) error {
	s, _ := value.(string)
	if placeholderPattern.MatchString(s) {
		return errors.New("must be replaced with a real value")
	}
	return nil
}

func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}

func applyEnvironment(settings *Settings, getenv func(string) string) {
	if v := getenv("BLOGGER_BLOG_ID"); v != "" {
		settings.BlogID = v
	}
	if v := getenv("OAUTH_CLIENT_ID"); v != "" {
		settings.OAuth.ClientID = v
	}
	if v := getenv("OAUTH_CLIENT_SECRET"); v != "" {
		settings.OAuth.ClientSecret = v
	}
}

func apiKeyFromEnv(provider string, getenv func(string) string) string {
	if provider == ProviderAnthropic {
		return getenv("ANTHROPIC_API_KEY")
	}
	if v := getenv("GEMINI_API_KEY"); v != "" {
		return v
	}
	return getenv("OPENAI_API_KEY")
}

// readOverride returns the file content when an override path is set, otherwise the embedded default
func readOverride(path *string, fallback string) (string, error) {
	if path == nil || *path == "" {
		return fallback, nil
	}
	content, err := os.ReadFile(*path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// parsePromptTemplate parses a prompt and checks it references every required variable
func parsePromptTemplate(name, source string, required ...string) (*template.Template, error) {
	for _, variable := range required {
		if !strings.Contains(source, variable) {
			return nil, fmt.Errorf("%s prompt template must contain %s variable", name, variable)
		}
	}
	return template.New(name).Option("missingkey=error").Parse(strings.TrimSpace(source))
}

// loadSettings loads settings from YAML file with fallback to the embedded defaults
func loadSettings(settingsPath string) (*Settings, error) {
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		slog.Debug("settings file not readable, using embedded defaults", slog.String("Path", settingsPath), slog.Any("Error", err))
		data = []byte(defaultSettings)
	}
	return parseSettings(data)
}

// loadSettingsRequired loads settings from YAML file, failing if file doesn't exist
func loadSettingsRequired(settingsPath string) (*Settings, error) {
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return nil, err
	}
	return parseSettings(data)
}

func parseSettings(data []byte) (*Settings, error) {
	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parsing settings YAML: %w", err)
	}
	if settings.Generator.TitleLength == (LengthRange{}) {
		settings.Generator.TitleLength = LengthRange{Min: 30, Max: 75}
	}
	if settings.OAuth.CallbackHost == "" {
		settings.OAuth.CallbackHost = "127.0.0.1"
	}
	return &settings, nil
}

// ensureConfigExists creates the config directory and writes settings.yaml if needed
func ensureConfigExists() error {
	if err := os.MkdirAll(defaultConfigDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	settingsFile := filepath.Join(defaultConfigDir, "settings.yaml")
	if _, err := os.Stat(settingsFile); os.IsNotExist(err) {
		if err := os.WriteFile(settingsFile, []byte(defaultSettings), 0644); err != nil {
			return fmt.Errorf("writing settings.yaml: %w", err)
		}
	}

	return nil
}
