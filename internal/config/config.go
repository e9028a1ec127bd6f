package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Config struct {
	Server       ServerConfig
	Backend      BackendConfig
	Logging      LoggingConfig
	Session      SessionConfig
	Availability AvailabilityConfig
	Kafka        KafkaConfig
}

type ServerConfig struct {
	Port string
}

// BackendConfig points at the booking REST API that owns every business rule.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type LoggingConfig struct {
	Directory string
	Level     string
	Format    string
}

type SessionConfig struct {
	TTL time.Duration
}

// AvailabilityConfig drives the websocket feed that keeps an open booking modal fresh.
type AvailabilityConfig struct {
	PollInterval time.Duration
}

// KafkaConfig is optional; an empty broker list disables event publishing and the
// availability sync consumer.
type KafkaConfig struct {
	Brokers     []string
	TopicPrefix string
	// GroupID is the base consumer group; ConsumerGroupID makes it unique per process.
	GroupID string
	// InstanceID distinguishes this process, from INSTANCE_ID or hostname plus a random suffix.
	InstanceID string
}

// ConsumerGroupID is the group this process consumes in. Every instance must see every
// availability event, so instances never share a group.
func (k KafkaConfig) ConsumerGroupID() string {
	if k.InstanceID == "" {
		return k.GroupID
	}
	return k.GroupID + "." + k.InstanceID
}

const (
	defaultPort         = "8080"
	defaultBaseURL      = "http://localhost:8000"
	defaultTimeout      = 10 * time.Second
	defaultSessionTTL   = 30 * time.Minute
	defaultPollInterval = 15 * time.Second
	defaultTopicPrefix  = "mesaya"
	defaultGroupID      = "mesaya-booking-ui"
)

func Load() (*Config, error) {
	timeout, err := durationEnv("BACKEND_TIMEOUT", defaultTimeout)
	if err != nil {
		return nil, err
	}
	sessionTTL, err := durationEnv("SESSION_TTL", defaultSessionTTL)
	if err != nil {
		return nil, err
	}
	poll, err := durationEnv("AVAILABILITY_POLL_INTERVAL", defaultPollInterval)
	if err != nil {
		return nil, err
	}

	brokers := splitList(os.Getenv("KAFKA_BROKERS"))
	if len(brokers) == 0 {
		brokers = splitList(os.Getenv("KAFKA_BROKER"))
	}

	cfg := &Config{
		Server: ServerConfig{Port: stringEnv("PORT", defaultPort)},
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(stringEnv("BACKEND_BASE_URL", defaultBaseURL), "/"),
			Timeout: timeout,
		},
		Logging: LoggingConfig{
			Directory: stringEnv("LOG_DIR", "./logs"),
			Level:     stringEnv("LOG_LEVEL", "info"),
			Format:    stringEnv("LOG_FORMAT", "text"),
		},
		Session:      SessionConfig{TTL: sessionTTL},
		Availability: AvailabilityConfig{PollInterval: poll},
		Kafka: KafkaConfig{
			Brokers:     brokers,
			TopicPrefix: stringEnv("KAFKA_TOPIC_PREFIX", defaultTopicPrefix),
			GroupID:     stringEnv("KAFKA_GROUP_ID", defaultGroupID),
			InstanceID:  stringEnv("INSTANCE_ID", generatedInstanceID()),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values that would leave the shell unable to reach the backend.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Port) == "" {
		return fmt.Errorf("config: PORT must not be empty")
	}
	base := strings.ToLower(c.Backend.BaseURL)
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return fmt.Errorf("config: BACKEND_BASE_URL must be an http(s) URL, got %q", c.Backend.BaseURL)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("config: BACKEND_TIMEOUT must be positive")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("config: SESSION_TTL must be positive")
	}
	if c.Availability.PollInterval <= 0 {
		return fmt.Errorf("config: AVAILABILITY_POLL_INTERVAL must be positive")
	}
	return nil
}

// KafkaEnabled reports whether booking events should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}

func generatedInstanceID() string {
	suffix := uuid.NewString()[:8]
	host, err := os.Hostname()
	if err != nil || strings.TrimSpace(host) == "" {
		return suffix
	}
	return strings.ToLower(strings.TrimSpace(host)) + "-" + suffix
}

func stringEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, raw, err)
	}
	return parsed, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
