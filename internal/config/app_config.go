// Package config loads the workbench configuration: defaults, then
// config.yml, then environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/OpenPeeDeeP/xdg"
	"github.com/caarlos0/env/v11"
	"github.com/cloudfoundry/jibber_jabber"
	"github.com/david-geiger/knowthelist/internal/domain"
	"github.com/imdario/mergo"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig contains the base configuration fields required for knowthelist.
type AppConfig struct {
	Name       string
	Version    string
	Debug      bool
	ConfigDir  string
	DataDir    string
	UserConfig *UserConfig
}

// UserConfig holds the options a user can set in config.yml. Keys are
// camelCase in the file.
type UserConfig struct {
	// Database is the SQLite file of the workbench. Defaults to a file in the
	// data dir.
	Database string `yaml:"database,omitempty"`

	// SourceLanguage is the language messages are written in.
	SourceLanguage string `yaml:"sourceLanguage,omitempty"`

	// Locale is used when a command needs a target language and none was
	// given. "auto" takes it from the environment.
	Locale string `yaml:"locale,omitempty"`

	Lookup LookupConfig `yaml:"lookup,omitempty"`

	Jobs JobsConfig `yaml:"jobs,omitempty"`

	Providers Providers `yaml:"providers,omitempty"`

	// Prompts overrides built-in prompt templates, keyed "type.role", e.g.
	// "translate_single.system".
	Prompts map[string]string `yaml:"prompts,omitempty"`
}

type LookupConfig struct {
	// Dir and Prefix locate <prefix>_<locale>.ts catalogs.
	Dir    string `yaml:"dir,omitempty"`
	Prefix string `yaml:"prefix,omitempty"`
	// IncludeUnfinished serves unfinished translations that have text.
	IncludeUnfinished bool `yaml:"includeUnfinished,omitempty"`
}

type JobsConfig struct {
	ItemTimeout time.Duration `yaml:"itemTimeout,omitempty"`
	HTTPTimeout time.Duration `yaml:"httpTimeout,omitempty"`
}

// envConfig lists the settings environment variables can override.
type envConfig struct {
	Database         string        `env:"KNOWTHELIST_DATABASE"`
	SourceLanguage   string        `env:"KNOWTHELIST_SOURCE_LANGUAGE"`
	Locale           string        `env:"KNOWTHELIST_LOCALE"`
	LookupDir        string        `env:"KNOWTHELIST_LOOKUP_DIR"`
	ItemTimeout      time.Duration `env:"KNOWTHELIST_JOB_ITEM_TIMEOUT"`
	OpenRouterAPIKey string        `env:"OPENROUTER_API_KEY"`
}

// GetDefaultConfig returns the application default configuration
// NOTE: do not default a boolean to true, false is the zero value and
// would be ignored when merging the user's config
func GetDefaultConfig() UserConfig {
	return UserConfig{
		SourceLanguage: "en",
		Locale:         "auto",
		Lookup: LookupConfig{
			Dir:    "locale",
			Prefix: "knowthelist",
		},
		Jobs: JobsConfig{
			ItemTimeout: 60 * time.Second,
			HTTPTimeout: 60 * time.Second,
		},
		Providers: Providers{
			{Name: "ollama", Type: "ollama", BaseURL: "http://localhost:11434", Model: "llama3.1"},
		},
	}
}

// NewAppConfig makes a new app config
func NewAppConfig(name, version string, debuggingFlag bool) (*AppConfig, error) {
	_ = godotenv.Load()

	configDir, err := findOrCreateDir(os.Getenv("CONFIG_DIR"), xdg.New("", name).ConfigHome())
	if err != nil {
		return nil, err
	}
	dataDir, err := findOrCreateDir(os.Getenv("DATA_DIR"), xdg.New("", name).DataHome())
	if err != nil {
		return nil, err
	}

	userConfig, err := loadUserConfigWithDefaults(configDir)
	if err != nil {
		return nil, err
	}
	if err := applyEnv(userConfig); err != nil {
		return nil, err
	}
	if userConfig.Database == "" {
		userConfig.Database = filepath.Join(dataDir, name+".db")
	}
	if err := userConfig.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Join(configDir, "config.yml"), err)
	}

	return &AppConfig{
		Name:       name,
		Version:    version,
		Debug:      debuggingFlag || os.Getenv("DEBUG") == "TRUE",
		ConfigDir:  configDir,
		DataDir:    dataDir,
		UserConfig: userConfig,
	}, nil
}

func findOrCreateDir(override, fallback string) (string, error) {
	dir := override
	if dir == "" {
		dir = fallback
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func loadUserConfigWithDefaults(configDir string) (*UserConfig, error) {
	config := GetDefaultConfig()
	fromFile, err := loadUserConfig(configDir)
	if err != nil {
		return nil, err
	}
	if err := mergo.Merge(&config, fromFile, mergo.WithOverride); err != nil {
		return nil, err
	}
	return &config, nil
}

// loadUserConfig reads config.yml, creating an empty one when missing.
func loadUserConfig(configDir string) (*UserConfig, error) {
	fileName := filepath.Join(configDir, "config.yml")

	if _, err := os.Stat(fileName); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		file, err := os.Create(fileName)
		if err != nil {
			return nil, err
		}
		file.Close()
	}

	content, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}

	config := &UserConfig{}
	if err := yaml.Unmarshal(content, config); err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}
	return config, nil
}

func applyEnv(config *UserConfig) error {
	var e envConfig
	if err := env.Parse(&e); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	override := UserConfig{
		Database:       e.Database,
		SourceLanguage: e.SourceLanguage,
		Locale:         e.Locale,
		Lookup:         LookupConfig{Dir: e.LookupDir},
		Jobs:           JobsConfig{ItemTimeout: e.ItemTimeout},
	}
	if err := mergo.Merge(config, override, mergo.WithOverride); err != nil {
		return err
	}
	if e.OpenRouterAPIKey != "" {
		for _, p := range config.Providers {
			if strings.EqualFold(p.Type, "openrouter") && p.APIKey == "" {
				p.APIKey = e.OpenRouterAPIKey
			}
		}
	}
	return nil
}

// ResolveLocale returns the configured locale, asking the environment when it
// is "auto". It falls back to "en".
func (c *UserConfig) ResolveLocale() string {
	if c.Locale != "" && c.Locale != "auto" {
		return c.Locale
	}
	tag, err := jibber_jabber.DetectIETF()
	if err != nil || tag == "" {
		return "en"
	}
	return strings.ReplaceAll(tag, "-", "_")
}

// WriteToUserConfig loads config.yml without defaults, applies updateConfig
// and saves it.
func (c *AppConfig) WriteToUserConfig(updateConfig func(*UserConfig) error) error {
	userConfig, err := loadUserConfig(c.ConfigDir)
	if err != nil {
		return err
	}

	if err := updateConfig(userConfig); err != nil {
		return err
	}

	out, err := yaml.Marshal(userConfig)
	if err != nil {
		return err
	}

	return os.WriteFile(c.ConfigFilename(), out, 0o600)
}

// ConfigFilename returns the filename of the current config file
func (c *AppConfig) ConfigFilename() string {
	return filepath.Join(c.ConfigDir, "config.yml")
}

// Providers is the provider list from config. It resolves names for the
// translator and job runner.
type Providers []*domain.Provider

func (p Providers) Get(name string) (*domain.Provider, error) {
	for _, prov := range p {
		if prov.Name == name {
			return prov, nil
		}
	}
	return nil, fmt.Errorf("unknown provider %q", name)
}

func (p Providers) List() []*domain.Provider { return p }
