package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DatabaseSQLite = "sqlite"
	DatabaseMySQL  = "mysql"

	EventsNone  = "none"
	EventsKafka = "kafka"

	defaultListen      = ":8080"
	defaultEventsTopic = "peopledb.events"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	HTTP     HTTPConfig     `yaml:"http"`
	Events   EventsConfig   `yaml:"events"`
	Log      LogConfig      `yaml:"log"`
}

type DatabaseConfig struct {
	Type string `yaml:"type"`
	DSN  string `yaml:"dsn"`
	// Seed is a database file copied to DSN the first time it is opened.
	// Only meaningful for sqlite.
	Seed string `yaml:"seed"`
}

type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

type EventsConfig struct {
	Type    string   `yaml:"type"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}

	_, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a config for a local sqlite file named people.sqlite.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Type: DatabaseSQLite, DSN: "people.sqlite"},
		HTTP:     HTTPConfig{Listen: defaultListen},
		Events:   EventsConfig{Type: EventsNone},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// applyDefaults fills settings left out of the file. The database section
// is only defaulted when it is missing entirely; a partial one must name
// both type and dsn.
func (c *Config) applyDefaults() {
	if c.Database == (DatabaseConfig{}) {
		c.Database = Default().Database
	}
	c.Database.Type = strings.ToLower(strings.TrimSpace(c.Database.Type))
	c.Events.Type = strings.ToLower(strings.TrimSpace(c.Events.Type))
	if c.Events.Type == "" {
		c.Events.Type = EventsNone
	}
	if c.Events.Type == EventsKafka && c.Events.Topic == "" {
		c.Events.Topic = defaultEventsTopic
	}
	if c.HTTP.Listen == "" {
		c.HTTP.Listen = defaultListen
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) validate() error {
	if c.Database.Type == "" {
		return errors.New("database.type is required")
	}
	switch c.Database.Type {
	case DatabaseSQLite:
	case DatabaseMySQL:
		if c.Database.Seed != "" {
			return errors.New("database.seed is only supported for sqlite")
		}
	default:
		return errors.New("database.type must be sqlite or mysql")
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}

	switch c.Events.Type {
	case EventsNone:
	case EventsKafka:
		if len(c.Events.Brokers) == 0 {
			return errors.New("events.brokers is required when events.type is kafka")
		}
		for _, b := range c.Events.Brokers {
			if strings.TrimSpace(b) == "" {
				return errors.New("events.brokers must not contain empty entries")
			}
		}
	default:
		return fmt.Errorf("events.type must be none or kafka, got %q", c.Events.Type)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}
