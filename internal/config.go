package internal

import (
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Inputs holds the action-mode configuration, supplied as environment
// variables by the invoking CI environment.
type Inputs struct {
	WebhookURL string `envconfig:"MATTERMOST_WEBHOOK_URL"`
	Channel    string `envconfig:"MATTERMOST_CHANNEL"`
	Username   string `envconfig:"MATTERMOST_USERNAME"`
	IconURL    string `envconfig:"MATTERMOST_ICON_URL"`
	Text       string `envconfig:"TEXT"`
	Payload    string `envconfig:"PAYLOAD"`
	Filename   string `envconfig:"PAYLOAD_FILENAME"`
	PayloadDir string `envconfig:"PAYLOAD_DIR"`
	Context    string `envconfig:"GITHUB_CONTEXT"`
}

// Environ returns the action inputs from the environment.
func Environ() (Inputs, error) {
	var in Inputs
	err := envconfig.Process("", &in)
	applyInputDefaults(&in)
	return in, err
}

func applyInputDefaults(in *Inputs) {
	if in.PayloadDir == "" {
		in.PayloadDir = ".."
	}
}

// Validate checks that the required inputs are present.
func (in Inputs) Validate() error {
	if in.WebhookURL == "" {
		return &MissingRequiredInputError{Name: "MATTERMOST_WEBHOOK_URL"}
	}
	if in.Context == "" {
		return &MissingRequiredInputError{Name: "GITHUB_CONTEXT"}
	}
	return nil
}

// ServeConfig is the serve-mode configuration.
type ServeConfig struct {
	// Server holds the HTTP listener configuration.
	Server struct {
		Port           int    `yaml:"port"`
		ReadHeaderMS   int64  `yaml:"read_header_timeout_ms"`
		RateLimitRPS   int64  `yaml:"rate_limit_rps"`
		RateLimitBurst int64  `yaml:"rate_limit_burst"`
		MetricsEnabled bool   `yaml:"metrics_enabled"`
		MetricsPath    string `yaml:"metrics_path"`
	} `yaml:"server"`
	// Webhook configures the inbound GitHub webhook endpoint.
	Webhook struct {
		Path      string `yaml:"path"`
		Secret    string `yaml:"secret"`
		ServerURL string `yaml:"server_url"`
	} `yaml:"webhook"`
	// Mattermost configures the outbound notification sink.
	Mattermost struct {
		WebhookURL string `yaml:"webhook_url"`
	} `yaml:"mattermost"`
	// Forwarders lists URLs that additionally receive each event as raw JSON.
	Forwarders []string `yaml:"forwarders"`
	// Rules filter which pushes notify. Empty means every push notifies.
	Rules []Rule `yaml:"rules"`
}

// LoadServeConfig loads the serve-mode configuration from a YAML file.
// It expands environment variables and applies default values.
func LoadServeConfig(path string) (ServeConfig, error) {
	var cfg ServeConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return cfg, err
	}

	applyServeDefaults(&cfg)
	normalized, err := normalizeRules(cfg.Rules)
	if err != nil {
		return cfg, err
	}
	cfg.Rules = normalized

	if cfg.Mattermost.WebhookURL == "" {
		return cfg, &MissingRequiredInputError{Name: "mattermost.webhook_url"}
	}
	return cfg, nil
}

func applyServeDefaults(cfg *ServeConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadHeaderMS == 0 {
		cfg.Server.ReadHeaderMS = 5000
	}
	if cfg.Server.MetricsPath == "" {
		cfg.Server.MetricsPath = "/metrics"
	}
	if cfg.Webhook.Path == "" {
		cfg.Webhook.Path = "/webhooks/github"
	}
}

func normalizeRules(rules []Rule) ([]Rule, error) {
	out := make([]Rule, 0, len(rules))
	for i := range rules {
		rule := rules[i]
		rule.When = strings.TrimSpace(rule.When)
		if rule.When == "" {
			return nil, &MissingRequiredInputError{Name: "rules.when"}
		}
		out = append(out, rule)
	}
	return out, nil
}
