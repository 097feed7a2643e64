// Package config loads application settings from a YAML file and
// TUTORLEAP_* environment variables, in that priority order below flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config is the application-level configuration. LLM provider settings
// live in the llm package; this covers the serving and policy surface.
type Config struct {
	Server struct {
		Addr         string        `mapstructure:"addr"`
		ReadTimeout  time.Duration `mapstructure:"read_timeout"`
		WriteTimeout time.Duration `mapstructure:"write_timeout"`
	} `mapstructure:"server"`

	RateLimit struct {
		Window        time.Duration `mapstructure:"window"`
		FreeLimit     int           `mapstructure:"free_limit"`
		ElevatedLimit int           `mapstructure:"elevated_limit"`
		Durable       bool          `mapstructure:"durable"`
	} `mapstructure:"rate_limit"`

	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`

	Generation struct {
		MaxAttempts int           `mapstructure:"max_attempts"`
		MaxTokens   int           `mapstructure:"max_tokens"`
		Temperature float64       `mapstructure:"temperature"`
		MCQPortion  int           `mapstructure:"mcq_portion"`
		CallTimeout time.Duration `mapstructure:"call_timeout"`
	} `mapstructure:"generation"`
}

// Load reads configuration. cfgFile overrides the search path; when
// empty, ./qgen.yaml then ~/.config/tutorleap/qgen.yaml are tried.
// Missing config files are fine; defaults and env vars still apply.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("qgen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "tutorleap"))
		}
	}

	v.SetEnvPrefix("TUTORLEAP")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 2*time.Minute)

	v.SetDefault("rate_limit.window", time.Hour)
	v.SetDefault("rate_limit.free_limit", 3)
	v.SetDefault("rate_limit.elevated_limit", 5)
	v.SetDefault("rate_limit.durable", false)

	v.SetDefault("database.path", "")

	v.SetDefault("generation.max_attempts", 3)
	v.SetDefault("generation.max_tokens", 4000)
	v.SetDefault("generation.temperature", 0.7)
	v.SetDefault("generation.mcq_portion", 15)
	v.SetDefault("generation.call_timeout", 30*time.Second)
}
