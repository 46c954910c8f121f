package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Models    ModelsConfig    `koanf:"models"`
	Agents    AgentsConfig    `koanf:"agents"`
	Sessions  SessionsConfig  `koanf:"sessions"`
	Knowledge KnowledgeConfig `koanf:"knowledge"`
	Analysis  AnalysisConfig  `koanf:"analysis"`
	Journal   JournalConfig   `koanf:"journal"`
	Alerts    AlertsConfig    `koanf:"alerts"`
	Adapters  AdaptersConfig  `koanf:"adapters"`
}

type ServerConfig struct {
	Host            string  `koanf:"host"`
	Port            int     `koanf:"port"`
	LogLevel        string  `koanf:"log_level"`
	ReadTimeout     string  `koanf:"read_timeout"`
	WriteTimeout    string  `koanf:"write_timeout"`
	IdleTimeout     string  `koanf:"idle_timeout"`
	ShutdownTimeout string  `koanf:"shutdown_timeout"`
	RatePerSecond   float64 `koanf:"rate_per_second"`
	RateBurst       int     `koanf:"rate_burst"`
}

type ModelsConfig struct {
	Default             string          `koanf:"default"`
	Fallback            string          `koanf:"fallback"`
	MaxFallbackAttempts int             `koanf:"max_fallback_attempts"`
	Registry            []ModelRegistry `koanf:"registry"`
	Breaker             BreakerConfig   `koanf:"breaker"`
}

type ModelRegistry struct {
	Name           string `koanf:"name"`
	Provider       string `koanf:"provider"`
	BaseURL        string `koanf:"base_url"`
	APIKey         string `koanf:"api_key"`
	EmbeddingModel string `koanf:"embedding_model"`
}

type BreakerConfig struct {
	MaxRequests         int    `koanf:"max_requests"`
	Timeout             string `koanf:"timeout"`
	ConsecutiveFailures int    `koanf:"consecutive_failures"`
}

type AgentsConfig struct {
	Timezone        string `koanf:"timezone"`
	DefinitionsFile string `koanf:"definitions_file"`
}

type SessionsConfig struct {
	TTL                string `koanf:"ttl"`
	SweepSchedule      string `koanf:"sweep_schedule"`
	MaxTransferHistory int    `koanf:"max_transfer_history"`
}

type KnowledgeConfig struct {
	File          string `koanf:"file"`
	SearchEnabled bool   `koanf:"search_enabled"`
	SearchTopK    int    `koanf:"search_top_k"`
}

type AnalysisConfig struct {
	RequestTimeout string `koanf:"request_timeout"`
	Model          string `koanf:"model"`
}

type JournalConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Path        string `koanf:"path"`
	LockTimeout string `koanf:"lock_timeout"`
	LockRetry   string `koanf:"lock_retry"`
}

type AlertsConfig struct {
	Slack SlackAlertConfig `koanf:"slack"`
}

type SlackAlertConfig struct {
	Enabled  bool   `koanf:"enabled"`
	BotToken string `koanf:"bot_token"`
	Channel  string `koanf:"channel"`
}

type AdaptersConfig struct {
	Telegram TelegramConfig `koanf:"telegram"`
}

type TelegramConfig struct {
	Enabled       bool   `koanf:"enabled"`
	BotToken      string `koanf:"bot_token"`
	UpdateTimeout int    `koanf:"update_timeout"`
}

const (
	DefaultServerHost                 = "0.0.0.0"
	DefaultServerPort                 = 8080
	DefaultServerLogLevel             = "info"
	DefaultServerReadTimeout          = "10s"
	DefaultServerWriteTimeout         = "10s"
	DefaultServerIdleTimeout          = "60s"
	DefaultServerShutdownTimeout      = "5s"
	DefaultServerRatePerSecond        = 10.0
	DefaultServerRateBurst            = 20
	DefaultModelDefault               = "gpt-4o-mini"
	DefaultModelFallback              = "claude-3-haiku"
	DefaultModelMaxFallbackAttempts   = 2
	DefaultOpenAIBaseURL              = "https://api.openai.com/v1"
	DefaultBreakerMaxRequests         = 3
	DefaultBreakerTimeout             = "60s"
	DefaultBreakerConsecutiveFailures = 5
	DefaultAgentsTimezone             = "America/Chicago"
	DefaultSessionTTL                 = "30m"
	DefaultSessionSweepSchedule       = "@every 1m"
	DefaultSessionMaxTransferHistory  = 50
	DefaultKnowledgeSearchTopK        = 3
	DefaultAnalysisRequestTimeout     = "30s"
	DefaultJournalPath                = "intake-journal.jsonl"
	DefaultJournalLockTimeout         = "5s"
	DefaultJournalLockRetry           = "100ms"
	DefaultTelegramUpdateTimeout      = 60
)

func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.host":                  DefaultServerHost,
		"server.port":                  DefaultServerPort,
		"server.log_level":             DefaultServerLogLevel,
		"server.read_timeout":          DefaultServerReadTimeout,
		"server.write_timeout":         DefaultServerWriteTimeout,
		"server.idle_timeout":          DefaultServerIdleTimeout,
		"server.shutdown_timeout":      DefaultServerShutdownTimeout,
		"server.rate_per_second":       DefaultServerRatePerSecond,
		"server.rate_burst":            DefaultServerRateBurst,
		"models.default":               DefaultModelDefault,
		"models.fallback":              DefaultModelFallback,
		"models.max_fallback_attempts": DefaultModelMaxFallbackAttempts,
		"models.registry": []ModelRegistry{
			{Name: DefaultModelDefault, Provider: "openai"},
			{Name: DefaultModelFallback, Provider: "anthropic"},
		},
		"models.breaker.max_requests":         DefaultBreakerMaxRequests,
		"models.breaker.timeout":              DefaultBreakerTimeout,
		"models.breaker.consecutive_failures": DefaultBreakerConsecutiveFailures,
		"agents.timezone":                     DefaultAgentsTimezone,
		"sessions.ttl":                        DefaultSessionTTL,
		"sessions.sweep_schedule":             DefaultSessionSweepSchedule,
		"sessions.max_transfer_history":       DefaultSessionMaxTransferHistory,
		"knowledge.search_top_k":              DefaultKnowledgeSearchTopK,
		"analysis.request_timeout":            DefaultAnalysisRequestTimeout,
		"journal.path":                        DefaultJournalPath,
		"journal.lock_timeout":                DefaultJournalLockTimeout,
		"journal.lock_retry":                  DefaultJournalLockRetry,
		"adapters.telegram.update_timeout":    DefaultTelegramUpdateTimeout,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	configPath := ""
	if cmd != nil {
		if flag := cmd.Flags().Lookup("config"); flag != nil {
			configPath = strings.TrimSpace(flag.Value.String())
		}
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	k.Load(env.Provider("INTAKE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "INTAKE_")), "_", ".", -1)
	}), nil)

	if cmd != nil {
		k.Load(posflag.Provider(cmd.Flags(), ".", k), nil)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	for i, m := range cfg.Models.Registry {
		if m.Provider == "" {
			cfg.Models.Registry[i].Provider = "openai"
		}
	}

	// Post-Process: Inject standard Env Vars if missing
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		for i, m := range cfg.Models.Registry {
			if m.Provider == "openai" && m.APIKey == "" {
				cfg.Models.Registry[i].APIKey = key
			}
		}
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		for i, m := range cfg.Models.Registry {
			if m.Provider == "anthropic" && m.APIKey == "" {
				cfg.Models.Registry[i].APIKey = key
			}
		}
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		for i, m := range cfg.Models.Registry {
			if m.Provider == "gemini" && m.APIKey == "" {
				cfg.Models.Registry[i].APIKey = key
			}
		}
	}

	return &cfg, nil
}
