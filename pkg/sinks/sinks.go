// Package sinks delivers harvest run digests to configured destinations:
// generic HTTP endpoints and cloud queues (AWS SNS/SQS, GCP Pub/Sub).
// Destinations are declared in a YAML or JSON registry file.
package sinks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	// Supported sink types.
	TypeQueue = "queue"
	TypeHTTP  = "http"

	// Supported queue providers.
	QueueProviderAWSSQS = "aws-sqs"
	QueueProviderAWSSNS = "aws-sns"
	QueueProviderGCP    = "gcp"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

// Sink delivers run digest events to one destination.
type Sink interface {
	ID() string
	Type() string
	Deliver(ctx context.Context, evt Event) error
}

// configFile represents the structure of the sinks registry file.
type configFile struct {
	Sinks []SinkConfig `json:"sinks" yaml:"sinks"`
}

// SinkConfig is a single sink entry declared in the registry file.
type SinkConfig struct {
	ID      string           `json:"id" yaml:"id"`
	Type    string           `json:"type" yaml:"type"`
	Enabled *bool            `json:"enabled" yaml:"enabled"`
	Queue   *QueueSinkConfig `json:"queue" yaml:"queue"`
	HTTP    *HTTPSinkConfig  `json:"http" yaml:"http"`
}

// QueueSinkConfig selects a cloud queue provider.
type QueueSinkConfig struct {
	Provider string         `json:"provider" yaml:"provider"`
	SQS      *AWSSQSConfig  `json:"sqs" yaml:"sqs"`
	SNS      *AWSSNSConfig  `json:"sns" yaml:"sns"`
	GCP      *GCPTopicConfig `json:"gcp" yaml:"gcp"`
}

// AWSSQSConfig holds AWS SQS specific settings.
type AWSSQSConfig struct {
	QueueURL        string `json:"uri" yaml:"uri"`
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// AWSSNSConfig holds AWS SNS specific settings.
type AWSSNSConfig struct {
	TopicARN        string `json:"topic_arn" yaml:"topic_arn"`
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// GCPTopicConfig holds the minimal Pub/Sub topic settings.
type GCPTopicConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// HTTPSinkConfig holds generic HTTP destination settings.
type HTTPSinkConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// ConfigRegistry materializes sink definitions loaded from a registry file.
type ConfigRegistry struct {
	mu    sync.RWMutex
	sinks []SinkConfig
	idx   map[string]SinkConfig
}

// LoadRegistry loads the sink registry from a YAML/JSON file. Environment
// variable references in the file are expanded before decoding.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sinks file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sinks file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read sinks file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(raw)))

	fileReg, err := parseRegistryFile(expanded, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(fileReg.Sinks) == 0 {
		return nil, errors.New("sinks file contains no sink entries")
	}

	reg := &ConfigRegistry{
		sinks: make([]SinkConfig, len(fileReg.Sinks)),
		idx:   make(map[string]SinkConfig, len(fileReg.Sinks)),
	}

	for i := range fileReg.Sinks {
		cfg := sanitizeSinkConfig(fileReg.Sinks[i])
		if err := validateSinkConfig(cfg); err != nil {
			return nil, fmt.Errorf("sinks[%d]: %w", i, err)
		}
		if _, exists := reg.idx[cfg.ID]; exists {
			return nil, fmt.Errorf("duplicate sink id %q", cfg.ID)
		}
		reg.sinks[i] = cfg
		reg.idx[cfg.ID] = cfg
	}

	return reg, nil
}

// parseRegistryFile attempts to decode the sinks file content.
func parseRegistryFile(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yamlUnmarshal},
		{name: "yaml", ext: ".yml", fn: yamlUnmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var reg configFile
		if err := d.fn(data, &reg); err == nil {
			return reg, nil
		}
	}

	return configFile{}, errors.New("sinks file format not recognized (expected YAML or JSON)")
}

func yamlUnmarshal(data []byte, v any) error { return yaml.Unmarshal(data, v) }

// sanitizeSinkConfig trims and normalizes a sink entry.
func sanitizeSinkConfig(cfg SinkConfig) SinkConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))

	if cfg.Enabled == nil {
		def := true
		cfg.Enabled = &def
	}
	if cfg.Queue != nil {
		qc := *cfg.Queue
		qc.Provider = strings.ToLower(strings.TrimSpace(qc.Provider))
		if qc.SQS != nil {
			s := *qc.SQS
			s.QueueURL = strings.TrimSpace(s.QueueURL)
			s.Region = strings.TrimSpace(s.Region)
			s.AccessKeyID = strings.TrimSpace(s.AccessKeyID)
			s.SecretAccessKey = strings.TrimSpace(s.SecretAccessKey)
			qc.SQS = &s
		}
		if qc.SNS != nil {
			s := *qc.SNS
			s.TopicARN = strings.TrimSpace(s.TopicARN)
			s.Region = strings.TrimSpace(s.Region)
			s.AccessKeyID = strings.TrimSpace(s.AccessKeyID)
			s.SecretAccessKey = strings.TrimSpace(s.SecretAccessKey)
			qc.SNS = &s
		}
		if qc.GCP != nil {
			g := *qc.GCP
			g.ProjectID = strings.TrimSpace(g.ProjectID)
			g.Topic = strings.TrimSpace(g.Topic)
			g.CredentialsFile = strings.TrimSpace(g.CredentialsFile)
			qc.GCP = &g
		}
		cfg.Queue = &qc
	}
	if cfg.HTTP != nil {
		c := *cfg.HTTP
		c.URL = strings.TrimSpace(c.URL)
		c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
		if c.Method == "" {
			c.Method = httpDefaultMethod
		}
		if c.TimeoutSeconds <= 0 {
			c.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		cfg.HTTP = &c
	}

	return cfg
}

// validateSinkConfig checks that required fields are present.
func validateSinkConfig(cfg SinkConfig) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	if cfg.Type == "" {
		return fmt.Errorf("type is required for sink %q", cfg.ID)
	}
	switch cfg.Type {
	case TypeQueue:
		if cfg.Queue == nil {
			return fmt.Errorf("queue config required for sink %q", cfg.ID)
		}
		switch cfg.Queue.Provider {
		case QueueProviderAWSSQS:
			return validateSQSConfig(cfg.ID, cfg.Queue.SQS)
		case QueueProviderAWSSNS:
			return validateSNSConfig(cfg.ID, cfg.Queue.SNS)
		case QueueProviderGCP:
			return validateGCPConfig(cfg.ID, cfg.Queue.GCP)
		default:
			return fmt.Errorf("queue provider %q not supported for sink %q", cfg.Queue.Provider, cfg.ID)
		}
	case TypeHTTP:
		if cfg.HTTP == nil {
			return fmt.Errorf("http config required for sink %q", cfg.ID)
		}
		if cfg.HTTP.URL == "" {
			return fmt.Errorf("http.url is required for sink %q", cfg.ID)
		}
	default:
		return fmt.Errorf("type %q not supported for sink %q", cfg.Type, cfg.ID)
	}
	return nil
}

func validateSQSConfig(id string, cfg *AWSSQSConfig) error {
	if cfg == nil {
		return fmt.Errorf("sqs config required for sink %q", id)
	}
	if cfg.QueueURL == "" {
		return fmt.Errorf("sqs.uri is required for sink %q", id)
	}
	if cfg.Region == "" {
		return fmt.Errorf("sqs.region is required for sink %q", id)
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return fmt.Errorf("sqs credentials are required for sink %q", id)
	}
	return nil
}

func validateSNSConfig(id string, cfg *AWSSNSConfig) error {
	if cfg == nil {
		return fmt.Errorf("sns config required for sink %q", id)
	}
	if cfg.TopicARN == "" {
		return fmt.Errorf("sns.topic_arn is required for sink %q", id)
	}
	if cfg.Region == "" {
		return fmt.Errorf("sns.region is required for sink %q", id)
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return fmt.Errorf("sns credentials are required for sink %q", id)
	}
	return nil
}

func validateGCPConfig(id string, cfg *GCPTopicConfig) error {
	if cfg == nil {
		return fmt.Errorf("gcp config required for sink %q", id)
	}
	if cfg.ProjectID == "" {
		return fmt.Errorf("gcp.project_id is required for sink %q", id)
	}
	if cfg.Topic == "" {
		return fmt.Errorf("gcp.topic is required for sink %q", id)
	}
	return nil
}

// ByID returns the sink config by id.
func (r *ConfigRegistry) ByID(id string) (SinkConfig, bool) {
	if r == nil {
		return SinkConfig{}, false
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return SinkConfig{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.idx[id]
	return cfg, ok
}

// All returns all configured sinks.
func (r *ConfigRegistry) All() []SinkConfig {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]SinkConfig, len(r.sinks))
	copy(out, r.sinks)
	return out
}

// Enabled returns sinks that are enabled.
func (r *ConfigRegistry) Enabled() []SinkConfig {
	all := r.All()
	if len(all) == 0 {
		return nil
	}

	out := make([]SinkConfig, 0, len(all))
	for _, cfg := range all {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}

// EnabledValue returns the enabled flag defaulting to true.
func (cfg SinkConfig) EnabledValue() bool {
	if cfg.Enabled == nil {
		return true
	}
	return *cfg.Enabled
}
