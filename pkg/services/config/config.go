package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/changeguard/pkg/services/cloudformation"
	"github.com/de-tools/changeguard/pkg/services/enrichment"
	"github.com/de-tools/changeguard/pkg/services/github"
	"github.com/de-tools/changeguard/pkg/services/report"
	"github.com/spf13/viper"
)

const EnvPrefix = "CHANGEGUARD"

type Config struct {
	Region       string        `mapstructure:"region"`
	AWSProfile   string        `mapstructure:"aws_profile"`
	StackName    string        `mapstructure:"stack_name"`
	Bucket       string        `mapstructure:"bucket"`
	Template     string        `mapstructure:"template"`
	TemplateKey  string        `mapstructure:"template_key"`
	WaitDelay    time.Duration `mapstructure:"wait_delay"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	Cleanup      bool          `mapstructure:"cleanup"`
	EditorURL    string        `mapstructure:"editor_url"`
	CommentTitle string        `mapstructure:"comment_title"`
	LogLevel     string        `mapstructure:"log_level"`

	Enrichment EnrichmentConfig `mapstructure:"enrichment"`
	GitHub     GitHubConfig     `mapstructure:"github"`
	Checkov    CheckovConfig    `mapstructure:"checkov"`
}

type EnrichmentConfig struct {
	Endpoint    string        `mapstructure:"endpoint"`
	APIKey      string        `mapstructure:"api_key"`
	Profile     string        `mapstructure:"profile"`
	Credentials string        `mapstructure:"credentials"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Concurrency int           `mapstructure:"concurrency"`
}

type GitHubConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	Repository  string `mapstructure:"repository"`
	PullRequest string `mapstructure:"pr"`
	SHA         string `mapstructure:"sha"`
	Token       string `mapstructure:"token"`
	RetryMax    int    `mapstructure:"retry_max"`
}

type CheckovConfig struct {
	Args []string `mapstructure:"args"`
}

var defaults = map[string]any{
	"region":                 cloudformation.DefaultRegion,
	"aws_profile":            "",
	"stack_name":             "",
	"bucket":                 "",
	"template":               "template.yaml",
	"template_key":           "",
	"wait_delay":             cloudformation.DefaultWaitDelay,
	"max_attempts":           cloudformation.DefaultMaxAttempts,
	"cleanup":                false,
	"editor_url":             report.DefaultEditorBaseURL,
	"comment_title":          report.DefaultCommentTitle,
	"log_level":              "info",
	"enrichment.endpoint":    "",
	"enrichment.api_key":     "",
	"enrichment.profile":     "",
	"enrichment.credentials": "",
	"enrichment.timeout":     enrichment.DefaultTimeout,
	"enrichment.concurrency": enrichment.DefaultConcurrency,
	"github.base_url":        github.DefaultBaseURL,
	"github.repository":      "",
	"github.pr":              "",
	"github.sha":             "",
	"github.token":           "",
	"github.retry_max":       github.DefaultRetryMax,
	"checkov.args":           []string{},
}

// ciEnv binds the variables set by the GitHub workflow without the prefix.
var ciEnv = map[string]string{
	"github.repository": "GITHUB_REPOSITORY",
	"github.sha":        "GITHUB_SHA",
	"github.token":      "GITHUB_TOKEN",
	"github.pr":         "GITHUB_PR",
}

// Load merges defaults, an optional config file, CHANGEGUARD_* variables and
// overrides, in increasing order of precedence.
func Load(path string, overrides map[string]any) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range ciEnv {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	for key, value := range overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// ResolveCredentials fills the enrichment endpoint and key from the credentials
// file when a profile is selected or when they were not configured directly.
func (c *Config) ResolveCredentials() error {
	e := &c.Enrichment
	if e.Credentials == "" || (e.Profile == "" && e.Endpoint != "" && e.APIKey != "") {
		return nil
	}

	registry, err := NewRegistry(e.Credentials)
	if err != nil {
		return err
	}
	profile := e.Profile
	if profile == "" {
		profile = DefaultProfile
	}
	creds, err := registry.GetCredentials(profile)
	if err != nil {
		return err
	}

	if e.Endpoint == "" || e.Profile != "" {
		e.Endpoint = creds.Endpoint
	}
	if e.APIKey == "" || e.Profile != "" {
		e.APIKey = creds.APIKey
	}
	return nil
}

// Validate checks the settings every run needs.
func (c *Config) Validate() error {
	var errs []error
	if c.Enrichment.Endpoint == "" || c.Enrichment.APIKey == "" {
		errs = append(errs, fmt.Errorf("%w: set enrichment.endpoint and enrichment.api_key or select a credentials profile", enrichment.ErrNotConfigured))
	}
	if c.Region == "" {
		errs = append(errs, errors.New("region is required"))
	}
	if c.Enrichment.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("enrichment.concurrency must not be negative, got %d", c.Enrichment.Concurrency))
	}
	return errors.Join(errs...)
}

// ValidateChangeSet checks the prerequisites for creating a change set.
func (c *Config) ValidateChangeSet() error {
	var missing []string
	if c.StackName == "" {
		missing = append(missing, "stack_name")
	}
	if c.Bucket == "" {
		missing = append(missing, "bucket")
	}
	if c.Template == "" {
		missing = append(missing, "template")
	}
	if len(missing) > 0 {
		return fmt.Errorf("change set creation requires %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) EnrichmentConfig() enrichment.Config {
	return enrichment.Config{
		Endpoint: c.Enrichment.Endpoint,
		APIKey:   c.Enrichment.APIKey,
		Timeout:  c.Enrichment.Timeout,
	}
}

func (c *Config) GitHubConfig() github.Config {
	return github.Config{
		BaseURL:     c.GitHub.BaseURL,
		Repository:  c.GitHub.Repository,
		PullRequest: c.GitHub.PullRequest,
		Token:       c.GitHub.Token,
		RetryMax:    c.GitHub.RetryMax,
	}
}

func (c *Config) ChangeSetSettings() cloudformation.Settings {
	return cloudformation.Settings{
		StackName:    c.StackName,
		Bucket:       c.Bucket,
		TemplatePath: c.Template,
		TemplateKey:  c.TemplateKey,
		WaitDelay:    c.WaitDelay,
		MaxAttempts:  c.MaxAttempts,
		Cleanup:      c.Cleanup,
	}
}
