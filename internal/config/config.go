package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// NATS configuration
	NatsURL            string        `yaml:"nats_url"`
	NatsChatSubject    string        `yaml:"nats_chat_subject"`
	NatsHistorySubject string        `yaml:"nats_history_subject"`
	NatsTimeout        time.Duration `yaml:"nats_timeout"`

	// LLM backend configuration (OpenAI-compatible endpoint)
	LLMBaseURL string        `yaml:"llm_base_url"`
	LLMModel   string        `yaml:"llm_model"`
	LLMAPIKey  string        `yaml:"llm_api_key"`
	LLMTimeout time.Duration `yaml:"llm_timeout"`

	// Session store configuration
	RedisURL   string        `yaml:"redis_url"`
	SessionTTL time.Duration `yaml:"session_ttl"`

	// Downstream domain services (action submission)
	ToolsEnabled        bool          `yaml:"tools_enabled"`
	ServiceAuthToken    string        `yaml:"service_auth_token"`
	ToolTimeout         time.Duration `yaml:"tool_timeout"`
	WorkspaceServiceURL string        `yaml:"workspace_service_url"`
	LeaveServiceURL     string        `yaml:"leave_service_url"`
	ExpenseServiceURL   string        `yaml:"expense_service_url"`
	TicketServiceURL    string        `yaml:"ticket_service_url"`
	AccessServiceURL    string        `yaml:"access_service_url"`

	// Service configuration
	ServiceName     string `yaml:"service_name"`
	DefaultTenantID string `yaml:"default_tenant_id"`
}

// Load builds the configuration from an optional YAML file (CONFIG_FILE)
// overridden by environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if cfg.LLMBaseURL == "" {
		return nil, fmt.Errorf("LLM_BASE_URL is required")
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		NatsURL:            "nats://localhost:4222",
		NatsChatSubject:    "chat.message",
		NatsHistorySubject: "chat.history",
		NatsTimeout:        30 * time.Second,

		LLMBaseURL: "http://llm:80/v1",
		LLMModel:   "Qwen/Qwen3-0.6B",
		LLMTimeout: 10 * time.Second,

		RedisURL:   "redis://localhost:6379/0",
		SessionTTL: 24 * time.Hour,

		ToolsEnabled:        false,
		ToolTimeout:         10 * time.Second,
		WorkspaceServiceURL: "http://workspace-svc:8001",
		LeaveServiceURL:     "http://leave-svc:8002",
		ExpenseServiceURL:   "http://expense-svc:8003",
		TicketServiceURL:    "http://ticket-svc:8004",
		AccessServiceURL:    "http://access-svc:8005",

		ServiceName:     "workmate-intake",
		DefaultTenantID: "default",
	}
}

func (c *Config) applyEnv() {
	c.NatsURL = getEnv("NATS_URL", c.NatsURL)
	c.NatsChatSubject = getEnv("NATS_CHAT_SUBJECT", c.NatsChatSubject)
	c.NatsHistorySubject = getEnv("NATS_HISTORY_SUBJECT", c.NatsHistorySubject)
	c.NatsTimeout = getDurationEnv("NATS_TIMEOUT", c.NatsTimeout)

	c.LLMBaseURL = getEnv("LLM_BASE_URL", c.LLMBaseURL)
	c.LLMModel = getEnv("LLM_MODEL", c.LLMModel)
	c.LLMAPIKey = getEnv("LLM_API_KEY", c.LLMAPIKey)
	c.LLMTimeout = getDurationEnv("LLM_TIMEOUT", c.LLMTimeout)

	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.SessionTTL = getDurationEnv("SESSION_TTL", c.SessionTTL)

	c.ToolsEnabled = getBoolEnv("TOOLS_ENABLED", c.ToolsEnabled)
	c.ServiceAuthToken = getEnv("SERVICE_AUTH_TOKEN", c.ServiceAuthToken)
	c.ToolTimeout = getDurationEnv("TOOL_TIMEOUT", c.ToolTimeout)
	c.WorkspaceServiceURL = getEnv("WORKSPACE_SERVICE_URL", c.WorkspaceServiceURL)
	c.LeaveServiceURL = getEnv("LEAVE_SERVICE_URL", c.LeaveServiceURL)
	c.ExpenseServiceURL = getEnv("EXPENSE_SERVICE_URL", c.ExpenseServiceURL)
	c.TicketServiceURL = getEnv("TICKET_SERVICE_URL", c.TicketServiceURL)
	c.AccessServiceURL = getEnv("ACCESS_SERVICE_URL", c.AccessServiceURL)

	c.ServiceName = getEnv("SERVICE_NAME", c.ServiceName)
	c.DefaultTenantID = getEnv("DEFAULT_TENANT_ID", c.DefaultTenantID)
}

// ServiceURLs maps domain-service names to their base URLs for the tool runner.
func (c *Config) ServiceURLs() map[string]string {
	return map[string]string{
		"workspace": c.WorkspaceServiceURL,
		"leave":     c.LeaveServiceURL,
		"expense":   c.ExpenseServiceURL,
		"ticket":    c.TicketServiceURL,
		"access":    c.AccessServiceURL,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
