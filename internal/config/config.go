// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

// Package config loads and validates the Passage configuration from file,
// environment, and defaults.
package config

import (
	"errors"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	passerr "github.com/passage-dev/passage/pkg/errors"
)

// Config is the top-level Passage configuration.
type Config struct {
	Server    ServerConfig              `mapstructure:"server"`
	Storage   StorageConfig             `mapstructure:"storage"`
	Providers map[string]ProviderConfig `mapstructure:"providers"`
	Retrieval RetrievalConfig           `mapstructure:"retrieval"`
}

// ServerConfig controls how the HTTP API listens.
type ServerConfig struct {
	Listen         string   `mapstructure:"listen"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StorageConfig selects the database location.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// ProviderConfig holds credentials and endpoint for an embedding/chat
// provider. An empty APIKey means the key is resolved from the OS keyring.
type ProviderConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Endpoint   string `mapstructure:"endpoint"`
	EmbedModel string `mapstructure:"embed_model"`
	ChatModel  string `mapstructure:"chat_model"`
}

// RetrievalConfig tunes chunking, batching, and re-ranking.
type RetrievalConfig struct {
	ChunkSize           int     `mapstructure:"chunk_size"`
	ChunkOverlap        int     `mapstructure:"chunk_overlap"`
	EmbedBatchSize      int     `mapstructure:"embed_batch_size"`
	TopKMax             int     `mapstructure:"top_k_max"`
	DiversityPenalty    float32 `mapstructure:"diversity_penalty"`
	CandidateMultiplier int     `mapstructure:"candidate_multiplier"`
	EmbedProvider       string  `mapstructure:"embed_provider"`
}

// SetDefaults registers every config default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.listen", "127.0.0.1:18680")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})
	v.SetDefault("storage.path", "passage.db")
	v.SetDefault("retrieval.chunk_size", 2048)
	v.SetDefault("retrieval.chunk_overlap", 200)
	v.SetDefault("retrieval.embed_batch_size", 32)
	v.SetDefault("retrieval.top_k_max", 100)
	v.SetDefault("retrieval.diversity_penalty", 0.3)
	v.SetDefault("retrieval.candidate_multiplier", 4)
	v.SetDefault("retrieval.embed_provider", "openai")
}

// SetupEnv binds PASSAGE_-prefixed environment variables on v, with dots in
// keys mapped to underscores.
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix("PASSAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// FromViper unmarshals and validates a Config from an already-initialized
// viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, passerr.Errorf(passerr.CodeConfigValidateInvalidValue, "unmarshalling config: %w", err)
	}

	// Unmarshal drops provider sections with no inline settings, but an
	// empty section is meaningful: it declares a provider whose API key
	// lives in the OS keyring. Restore those entries from the raw keys.
	for name := range v.GetStringMap("providers") {
		if cfg.Providers == nil {
			cfg.Providers = make(map[string]ProviderConfig)
		}
		if _, ok := cfg.Providers[name]; !ok {
			cfg.Providers[name] = ProviderConfig{}
		}
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, passerr.Errorf(passerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix PASSAGE_).
func Load(path string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, passerr.Errorf(passerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	return FromViper(v)
}

// Validate checks the configuration for logical errors. It returns every
// validation error found, not just the first.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateServer()...)
	errs = append(errs, c.validateStorage()...)
	errs = append(errs, c.validateRetrieval()...)

	return errs
}

func (c *Config) validateServer() []error {
	var errs []error

	if c.Server.Listen == "" {
		errs = append(errs, passerr.Errorf(passerr.CodeConfigValidateInvalidValue, "config: server.listen must not be empty"))
		return errs
	}

	host, portStr, err := net.SplitHostPort(c.Server.Listen)
	if err != nil {
		errs = append(errs, passerr.Errorf(passerr.CodeConfigValidateInvalidValue,
			"config: server.listen must be a valid host:port address, got %q: %w",
			c.Server.Listen, err,
		))
		return errs
	}
	_ = host // host can be empty (e.g., ":8080"), which is valid

	port, err := strconv.Atoi(portStr)
	if err != nil {
		errs = append(errs, passerr.Errorf(passerr.CodeConfigValidateInvalidValue,
			"config: server.listen port must be a number, got %q", portStr))
	} else if port < 1 || port > 65535 {
		errs = append(errs, passerr.Errorf(passerr.CodeConfigValidateInvalidValue,
			"config: server.listen port must be between 1 and 65535, got %d", port))
	}

	return errs
}

func (c *Config) validateStorage() []error {
	var errs []error

	if c.Storage.Path == "" {
		errs = append(errs, passerr.Errorf(passerr.CodeConfigValidateInvalidValue, "config: storage.path must not be empty"))
	}

	return errs
}

func (c *Config) validateRetrieval() []error {
	var errs []error
	r := c.Retrieval

	if r.ChunkSize < 1 {
		errs = append(errs, passerr.Errorf(passerr.CodeConfigValidateInvalidValue,
			"config: retrieval.chunk_size must be positive, got %d", r.ChunkSize))
	}
	if r.ChunkOverlap < 0 || (r.ChunkSize > 0 && r.ChunkOverlap >= r.ChunkSize) {
		errs = append(errs, passerr.Errorf(passerr.CodeConfigValidateInvalidValue,
			"config: retrieval.chunk_overlap must be in [0, chunk_size), got %d", r.ChunkOverlap))
	}
	if r.EmbedBatchSize < 1 {
		errs = append(errs, passerr.Errorf(passerr.CodeConfigValidateInvalidValue,
			"config: retrieval.embed_batch_size must be positive, got %d", r.EmbedBatchSize))
	}
	if r.TopKMax < 1 {
		errs = append(errs, passerr.Errorf(passerr.CodeConfigValidateInvalidValue,
			"config: retrieval.top_k_max must be positive, got %d", r.TopKMax))
	}
	if r.DiversityPenalty < 0 {
		errs = append(errs, passerr.Errorf(passerr.CodeConfigValidateInvalidValue,
			"config: retrieval.diversity_penalty must not be negative, got %v", r.DiversityPenalty))
	}
	if r.CandidateMultiplier < 1 {
		errs = append(errs, passerr.Errorf(passerr.CodeConfigValidateInvalidValue,
			"config: retrieval.candidate_multiplier must be positive, got %d", r.CandidateMultiplier))
	}
	if r.EmbedProvider == "" {
		errs = append(errs, passerr.Errorf(passerr.CodeConfigValidateInvalidValue,
			"config: retrieval.embed_provider must not be empty"))
	} else if c.Providers != nil {
		// Only cross-reference when a providers section exists; a nil map
		// means defaults-only config, which is valid.
		if _, ok := c.Providers[r.EmbedProvider]; !ok {
			errs = append(errs, passerr.Errorf(passerr.CodeConfigValidateInvalidValue,
				"config: retrieval.embed_provider %q is not a configured provider", r.EmbedProvider))
		}
	}

	return errs
}
