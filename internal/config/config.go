package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	HistoryMemory    = "memory"
	HistoryFirestore = "firestore"
	HistorySQLite    = "sqlite"
)

type Config struct {
	ProjectID   string `yaml:"project_id"`
	Region      string `yaml:"region"`
	LogLevel    string `yaml:"log_level"`
	Port        string `yaml:"port"`
	VertexModel string `yaml:"vertex_model"`
	// VertexTemperature and VertexMaxOutputTokens fall back to the model defaults when unset.
	VertexTemperature     *float32 `yaml:"vertex_temperature"`
	VertexMaxOutputTokens int32    `yaml:"vertex_max_output_tokens"`
	KMSKeyName  string `yaml:"kms_key_name"`
	AuthEnabled bool   `yaml:"auth_enabled"`

	// GuideRegion is the area answers are restricted to; it also qualifies places queries.
	GuideRegion string `yaml:"guide_region"`

	MapsAPIKey         string `yaml:"maps_api_key"`
	MapsAPIKeySecret   string `yaml:"maps_api_key_secret"`
	TavilyAPIKey       string `yaml:"tavily_api_key"`
	TavilyAPIKeySecret string `yaml:"tavily_api_key_secret"`

	HistoryBackend string `yaml:"history_backend"`
	SQLitePath     string `yaml:"sqlite_path"`

	MaxRounds           int           `yaml:"max_rounds"`
	ToolTimeout         time.Duration `yaml:"tool_timeout"`
	LLMTimeout          time.Duration `yaml:"llm_timeout"`
	WebSearchMaxResults int           `yaml:"web_search_max_results"`
}

func defaults() *Config {
	return &Config{
		Region:              "us-central1",
		LogLevel:            "info",
		Port:                "8080",
		VertexModel:         "gemini-2.0-flash",
		GuideRegion:         "Colorado",
		HistoryBackend:      HistoryMemory,
		SQLitePath:          "guide.db",
		MaxRounds:           8,
		ToolTimeout:         15 * time.Second,
		LLMTimeout:          60 * time.Second,
		WebSearchMaxResults: 3,
	}
}

// New builds the configuration from defaults, then the YAML file named by
// CONFIGFILE (if any), then environment variables.
func New() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIGFILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setString("PROJECTID", &c.ProjectID)
	setString("REGION", &c.Region)
	setString("LOGLEVEL", &c.LogLevel)
	setString("PORT", &c.Port)
	setString("VERTEXMODEL", &c.VertexModel)
	setString("KMSKEYNAME", &c.KMSKeyName)
	setString("GUIDEREGION", &c.GuideRegion)
	setString("MAPSAPIKEY", &c.MapsAPIKey)
	setString("MAPSAPIKEYSECRET", &c.MapsAPIKeySecret)
	setString("TAVILYAPIKEY", &c.TavilyAPIKey)
	setString("TAVILYAPIKEYSECRET", &c.TavilyAPIKeySecret)
	setString("HISTORYBACKEND", &c.HistoryBackend)
	setString("SQLITEPATH", &c.SQLitePath)

	var errList []error
	if v := getenv("AUTHENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errList = append(errList, fmt.Errorf("AUTHENABLED: %w", err))
		}
		c.AuthEnabled = b
	}
	if v := getenv("VERTEXTEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			errList = append(errList, fmt.Errorf("VERTEXTEMPERATURE: %w", err))
		} else {
			t := float32(f)
			c.VertexTemperature = &t
		}
	}
	if v := getenv("VERTEXMAXOUTPUTTOKENS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			errList = append(errList, fmt.Errorf("VERTEXMAXOUTPUTTOKENS: %w", err))
		} else {
			c.VertexMaxOutputTokens = int32(n)
		}
	}
	for key, dst := range map[string]*int{
		"MAXROUNDS":           &c.MaxRounds,
		"WEBSEARCHMAXRESULTS": &c.WebSearchMaxResults,
	} {
		if v := getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errList = append(errList, fmt.Errorf("%s: %w", key, err))
				continue
			}
			*dst = n
		}
	}
	for key, dst := range map[string]*time.Duration{
		"TOOLTIMEOUT": &c.ToolTimeout,
		"LLMTIMEOUT":  &c.LLMTimeout,
	} {
		if v := getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errList = append(errList, fmt.Errorf("%s: %w", key, err))
				continue
			}
			*dst = d
		}
	}
	return errors.Join(errList...)
}

// Validate checks that every backend the configuration selects has what it needs.
// API keys may be missing when the matching secret name is set.
func (c *Config) Validate() error {
	var errList []error
	if c.ProjectID == "" {
		errList = append(errList, errors.New("PROJECTID is required"))
	}
	if c.VertexModel == "" {
		errList = append(errList, errors.New("VERTEXMODEL is required"))
	}
	if c.MapsAPIKey == "" && c.MapsAPIKeySecret == "" {
		errList = append(errList, errors.New("MAPSAPIKEY or MAPSAPIKEYSECRET is required"))
	}
	if c.TavilyAPIKey == "" && c.TavilyAPIKeySecret == "" {
		errList = append(errList, errors.New("TAVILYAPIKEY or TAVILYAPIKEYSECRET is required"))
	}
	switch strings.ToLower(c.HistoryBackend) {
	case HistoryMemory, HistoryFirestore:
	case HistorySQLite:
		if c.SQLitePath == "" {
			errList = append(errList, errors.New("SQLITEPATH is required for the sqlite history backend"))
		}
	default:
		errList = append(errList, fmt.Errorf("unknown HISTORYBACKEND %q", c.HistoryBackend))
	}
	if c.VertexTemperature != nil && (*c.VertexTemperature < 0 || *c.VertexTemperature > 2) {
		errList = append(errList, errors.New("VERTEXTEMPERATURE must be between 0 and 2"))
	}
	if c.VertexMaxOutputTokens < 0 {
		errList = append(errList, errors.New("VERTEXMAXOUTPUTTOKENS must not be negative"))
	}
	if c.MaxRounds <= 0 {
		errList = append(errList, errors.New("MAXROUNDS must be positive"))
	}
	if c.ToolTimeout <= 0 || c.LLMTimeout <= 0 {
		errList = append(errList, errors.New("TOOLTIMEOUT and LLMTIMEOUT must be positive"))
	}
	return errors.Join(errList...)
}

// NeedsSecrets reports whether any API key must be fetched from Secret Manager.
func (c *Config) NeedsSecrets() bool {
	return (c.MapsAPIKey == "" && c.MapsAPIKeySecret != "") || (c.TavilyAPIKey == "" && c.TavilyAPIKeySecret != "")
}
