package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Language is one supported-language entry: an ISO 639-3 code plus the
// display name used in user-facing rejection messages.
type Language struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

type Config struct {
	Server struct {
		Listen         string `yaml:"listen"`
		ReadTimeoutMs  int    `yaml:"read_timeout_ms"`
		IdleTimeoutMs  int    `yaml:"idle_timeout_ms"`
		MaxBodyBytes   int64  `yaml:"max_body_bytes"`
		ShutdownGraceS int    `yaml:"shutdown_grace_s"`
	} `yaml:"server"`

	Model struct {
		ID      string `yaml:"id"`
		OwnedBy string `yaml:"owned_by"`
	} `yaml:"model"`

	// Languages the generation engine handles reliably. Prompts detected as
	// any other language are rejected before a session is opened.
	Languages []Language `yaml:"languages"`

	Vision struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"vision"`

	Logging struct {
		AccessLog     bool   `yaml:"access_log"`
		AccessLogPath string `yaml:"access_log_path"`
		Telemetry     bool   `yaml:"telemetry"`
	} `yaml:"logging"`
}

// Load reads, defaults, env-overrides and validates a config file. A missing
// file is not an error: defaults plus env overrides apply.
func Load(path string) (*Config, error) {
	var cfg Config
	// default-true booleans are seeded before unmarshal so an explicit
	// `false` in the file survives
	cfg.Vision.Enabled = true
	cfg.Logging.AccessLog = true
	p := strings.TrimSpace(path)
	if p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		} else if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, err
		}
	}
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultLanguages is the engine's supported set when the config does not
// override it.
var DefaultLanguages = []Language{
	{Code: "eng", Name: "English"},
	{Code: "spa", Name: "Spanish"},
	{Code: "fra", Name: "French"},
	{Code: "deu", Name: "German"},
	{Code: "ita", Name: "Italian"},
	{Code: "por", Name: "Portuguese"},
	{Code: "jpn", Name: "Japanese"},
	{Code: "kor", Name: "Korean"},
	{Code: "cmn", Name: "Chinese"},
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Server.Listen) == "" {
		cfg.Server.Listen = ":11435"
	}
	if cfg.Server.ReadTimeoutMs <= 0 {
		cfg.Server.ReadTimeoutMs = 60000
	}
	if cfg.Server.IdleTimeoutMs <= 0 {
		cfg.Server.IdleTimeoutMs = 120000
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		cfg.Server.MaxBodyBytes = 50 << 20 // image uploads
	}
	if cfg.Server.ShutdownGraceS <= 0 {
		cfg.Server.ShutdownGraceS = 10
	}
	if strings.TrimSpace(cfg.Model.ID) == "" {
		cfg.Model.ID = "local-fm"
	}
	if strings.TrimSpace(cfg.Model.OwnedBy) == "" {
		cfg.Model.OwnedBy = "modelgate"
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = append([]Language(nil), DefaultLanguages...)
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("MG_LISTEN")); v != "" {
		cfg.Server.Listen = v
	}
	if v := strings.TrimSpace(os.Getenv("MG_MODEL_ID")); v != "" {
		cfg.Model.ID = v
	}
	if v := strings.TrimSpace(os.Getenv("MG_MAX_BODY_BYTES")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.Server.MaxBodyBytes = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("MG_READ_TIMEOUT_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Server.ReadTimeoutMs = n
		}
	}
	cfg.Vision.Enabled = envBool("MG_VISION_ENABLED", cfg.Vision.Enabled)
	cfg.Logging.AccessLog = envBool("MG_ACCESS_LOG", cfg.Logging.AccessLog)
	cfg.Logging.Telemetry = envBool("MG_TELEMETRY", cfg.Logging.Telemetry)
	if v := strings.TrimSpace(os.Getenv("MG_ACCESS_LOG_PATH")); v != "" {
		cfg.Logging.AccessLogPath = v
	}
}

func validate(cfg *Config) error {
	if cfg.Server.MaxBodyBytes < 0 {
		return errors.New("server.max_body_bytes must be non-negative")
	}
	for _, l := range cfg.Languages {
		if strings.TrimSpace(l.Code) == "" {
			return errors.New("languages entries require a code")
		}
	}
	return nil
}

func envBool(name string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}
