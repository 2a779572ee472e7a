// Package config implements the layered configuration scheme: environment
// variables override a YAML file, which overrides built-in defaults.
// Grounded on platformbuilds-mirador-rca's internal/config/config.go
// (defaultConfig -> YAML overlay -> applyEnvOverrides) composed with this
// codebase's getEnv/getEnvInt helper style.
package config

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM              LLMConfig              `yaml:"llm"`
	Logging          LoggingConfig          `yaml:"logging"`
	IncidentConnector IncidentConnectorConfig `yaml:"incident_connector"`
	KnowledgeBase    KnowledgeBaseConfig    `yaml:"knowledge_base"`
	Cache            CacheConfig            `yaml:"cache"`
	Agents           AgentsConfig           `yaml:"agents"`
	PromptsPath      string                 `yaml:"prompts_path"`
	PromptLogs       PromptLogsConfig       `yaml:"prompt_logs"`

	Env         string
	Port        string
	AdminAPIKey string
	OTel        OTelConfig
}

type LLMConfig struct {
	Provider    string `yaml:"provider"` // "openai" | "gemini" | "ollama"
	Model       string `yaml:"model"`
	Temperature float64 `yaml:"temperature"`

	OpenAIAPIKey string `yaml:"-"`
	OpenAIBaseURL string `yaml:"openai_base_url"`

	GeminiAPIKey string `yaml:"-"`
	GeminiBaseURL string `yaml:"gemini_base_url"`

	OllamaBaseURL string `yaml:"ollama_base_url"`

	BlockingTimeout   time.Duration `yaml:"-"`
	StreamIdleTimeout time.Duration `yaml:"-"`
}

type LoggingConfig struct {
	Level         string `yaml:"level"` // debug|info|warning|error|critical
	EnableTracing bool   `yaml:"enable_tracing"`
	File          string `yaml:"file"`
	MaxSizeMB     int    `yaml:"max_size_mb"`
	MaxBackups    int    `yaml:"max_backups"`
}

type IncidentConnectorConfig struct {
	Type string `yaml:"type"` // mock|servicenow|jira

	IncidentsCSVPath     string `yaml:"incidents_csv_path"`
	ServiceNowCSVPath    string `yaml:"servicenow_csv_path"`
	ChangesCSVPath       string `yaml:"changes_csv_path"`

	ServiceNowBaseURL string `yaml:"servicenow_base_url"`
	ServiceNowUser    string `yaml:"-"`
	ServiceNowPassword string `yaml:"-"`

	JiraBaseURL string `yaml:"jira_base_url"`
	JiraUser    string `yaml:"-"`
	JiraToken   string `yaml:"-"`
}

type KnowledgeBaseConfig struct {
	Source string `yaml:"source"` // mock|confluence

	CSVPath   string `yaml:"csv_path"`
	DocsFolder string `yaml:"docs_folder"`

	ConfluenceBaseURL string `yaml:"confluence_base_url"`
	ConfluenceUser    string `yaml:"-"`
	ConfluenceToken   string `yaml:"-"`
}

type CacheConfig struct {
	TTL time.Duration `yaml:"-"`
}

type AgentsConfig struct {
	SimilarIncidentsK    int     `yaml:"similar_incidents_k"`
	KnowledgeDocsK       int     `yaml:"knowledge_docs_k"`
	SimilarityThreshold  float64 `yaml:"similarity_threshold"`
	ChangeWindowBefore   time.Duration `yaml:"-"`
	ChangeWindowAfter    time.Duration `yaml:"-"`
	ContextSectionLimitN int     `yaml:"context_section_limit_n"`
}

type PromptLogsConfig struct {
	MaxEntries int  `yaml:"max_entries"`
	MirrorToRedis bool `yaml:"mirror_to_redis"`
	RedisURL    string `yaml:"redis_url"`
	RedisStream string `yaml:"redis_stream"`
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

func (c OTelConfig) Enabled() bool { return c.Endpoint != "" }

func (c Config) IsProduction() bool { return c.Env == "production" }

// knownTopLevelKeys enumerates the YAML sections the config schema
// recognizes; any other top-level key is a config-error.
var knownTopLevelKeys = map[string]bool{
	"llm": true, "logging": true, "incident_connector": true,
	"knowledge_base": true, "cache": true, "agents": true,
	"prompts_path": true, "prompt_logs": true,
}

func defaultConfig() Config {
	return Config{
		LLM: LLMConfig{
			Provider:          "openai",
			Model:             "gpt-4o-mini",
			Temperature:       0.2,
			BlockingTimeout:   60 * time.Second,
			StreamIdleTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 5,
		},
		IncidentConnector: IncidentConnectorConfig{
			Type:              "mock",
			IncidentsCSVPath:  "testdata/incidents.csv",
			ServiceNowCSVPath: "testdata/servicenow_tickets.csv",
			ChangesCSVPath:    "testdata/change_correlations.csv",
		},
		KnowledgeBase: KnowledgeBaseConfig{
			Source:  "mock",
			CSVPath: "testdata/confluence_docs.csv",
		},
		Cache: CacheConfig{TTL: 5 * time.Minute},
		Agents: AgentsConfig{
			SimilarIncidentsK:    5,
			KnowledgeDocsK:       5,
			SimilarityThreshold:  0.2,
			ChangeWindowBefore:   7 * 24 * time.Hour,
			ChangeWindowAfter:    1 * time.Hour,
			ContextSectionLimitN: 5,
		},
		PromptsPath: "data/prompts.json",
		PromptLogs:  PromptLogsConfig{MaxEntries: 500},
		Env:         "development",
		Port:        "8080",
	}
}

// Load builds a Config by starting from defaults, overlaying a YAML file if
// path is non-empty and exists, then applying environment-variable
// overrides, which win. It also loads a .env file (if present) before
// reading environment variables, matching this codebase's godotenv
// convention.
func Load(yamlPath string) (Config, error) {
	_ = godotenv.Load(".env")

	cfg := defaultConfig()

	if yamlPath != "" {
		raw, err := os.ReadFile(yamlPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("config-error: reading %s: %w", yamlPath, err)
			}
		} else {
			if err := validateTopLevelKeys(raw); err != nil {
				return Config{}, err
			}
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("config-error: parsing %s: %w", yamlPath, err)
			}
			// A strict second pass only reports unknown nested keys; the
			// lenient decode above has already accepted the file.
			strict := yaml.NewDecoder(bytes.NewReader(raw))
			strict.KnownFields(true)
			var probe Config
			if err := strict.Decode(&probe); err != nil && err != io.EOF {
				slog.Warn("config: unrecognized nested keys ignored", "path", yamlPath, "error", err)
			}
		}
	}

	applyEnvOverrides(&cfg)

	if !validLLMProvider(cfg.LLM.Provider) {
		return Config{}, fmt.Errorf("config-error: unsupported llm provider %q", cfg.LLM.Provider)
	}

	return cfg, nil
}

func validLLMProvider(p string) bool {
	switch p {
	case "openai", "gemini", "ollama":
		return true
	default:
		return false
	}
}

// validateTopLevelKeys rejects unknown top-level YAML keys with a
// config-error; nested-key laxness is handled by yaml.Unmarshal simply
// ignoring fields it doesn't recognize (Load logs those as a warning; they
// are not enforced here).
func validateTopLevelKeys(raw []byte) error {
	var generic map[string]any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("config-error: parsing yaml: %w", err)
	}
	for key := range generic {
		if !knownTopLevelKeys[key] {
			return fmt.Errorf("config-error: unrecognized top-level config key %q", key)
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.LLM.Provider = getEnv("LLM_PROVIDER", cfg.LLM.Provider)
	cfg.LLM.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.LLM.OpenAIAPIKey)
	cfg.LLM.GeminiAPIKey = getEnv("GOOGLE_API_KEY", cfg.LLM.GeminiAPIKey)
	cfg.LLM.OllamaBaseURL = getEnv("OLLAMA_BASE_URL", orDefault(cfg.LLM.OllamaBaseURL, "http://localhost:11434"))

	cfg.IncidentConnector.Type = getEnv("INCIDENT_CONNECTOR_TYPE", cfg.IncidentConnector.Type)
	cfg.IncidentConnector.ServiceNowBaseURL = getEnv("SERVICENOW_BASE_URL", cfg.IncidentConnector.ServiceNowBaseURL)
	cfg.IncidentConnector.ServiceNowUser = getEnv("SERVICENOW_USER", cfg.IncidentConnector.ServiceNowUser)
	cfg.IncidentConnector.ServiceNowPassword = getEnv("SERVICENOW_PASSWORD", cfg.IncidentConnector.ServiceNowPassword)
	cfg.IncidentConnector.JiraBaseURL = getEnv("JIRA_BASE_URL", cfg.IncidentConnector.JiraBaseURL)
	cfg.IncidentConnector.JiraUser = getEnv("JIRA_USER", cfg.IncidentConnector.JiraUser)
	cfg.IncidentConnector.JiraToken = getEnv("JIRA_TOKEN", cfg.IncidentConnector.JiraToken)

	cfg.KnowledgeBase.Source = getEnv("KNOWLEDGE_BASE_SOURCE", cfg.KnowledgeBase.Source)
	cfg.KnowledgeBase.CSVPath = getEnv("KB_CSV_PATH", cfg.KnowledgeBase.CSVPath)
	cfg.KnowledgeBase.DocsFolder = getEnv("KB_DOCS_FOLDER", cfg.KnowledgeBase.DocsFolder)
	cfg.KnowledgeBase.ConfluenceBaseURL = getEnv("CONFLUENCE_BASE_URL", cfg.KnowledgeBase.ConfluenceBaseURL)
	cfg.KnowledgeBase.ConfluenceUser = getEnv("CONFLUENCE_USER", cfg.KnowledgeBase.ConfluenceUser)
	cfg.KnowledgeBase.ConfluenceToken = getEnv("CONFLUENCE_TOKEN", cfg.KnowledgeBase.ConfluenceToken)

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.EnableTracing = getEnvBool("ENABLE_TRACING", cfg.Logging.EnableTracing)
	cfg.Logging.File = getEnv("LOG_FILE", cfg.Logging.File)

	cfg.Env = getEnv("SMARTRECOVER_ENV", cfg.Env)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.AdminAPIKey = getEnv("ADMIN_API_KEY", cfg.AdminAPIKey)

	cfg.OTel = OTelConfig{
		Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
		ServiceName:    getEnv("OTEL_SERVICE_NAME", "smartrecover"),
		ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
	}

	cfg.PromptLogs.RedisURL = getEnv("PROMPT_LOGS_REDIS_URL", cfg.PromptLogs.RedisURL)
	if cfg.PromptLogs.RedisStream == "" {
		cfg.PromptLogs.RedisStream = "smartrecover_prompt_logs"
	}
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err == nil {
			return b
		}
	}
	return fallback
}
