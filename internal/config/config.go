package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port          string   `yaml:"port"`
	DBDSN         string   `yaml:"db_dsn"`
	MediaDir      string   `yaml:"media_dir"`
	LogFile       string   `yaml:"log_file"`
	TemplatesDir  string   `yaml:"templates_dir"`
	StaticDir     string   `yaml:"static_dir"`
	CloudinaryURL string   `yaml:"cloudinary_url"`
	KafkaBrokers  []string `yaml:"kafka_brokers"`
	KafkaTopic    string   `yaml:"kafka_topic"`
	CookieSecure  bool     `yaml:"cookie_secure"`
	SeedDemo      bool     `yaml:"seed_demo"`
}

func defaults() Config {
	return Config{
		Port:         "8080",
		DBDSN:        "creativehub.db", // sqlite file in project root
		MediaDir:     "./web/media",
		LogFile:      "./creativehub.log",
		TemplatesDir: "./web/templates",
		StaticDir:    "./web/static",
		KafkaTopic:   "creativehub.campaigns",
		SeedDemo:     true,
	}
}

// LoadFile overlays a YAML file onto cfg. Keys missing from the file keep their current value.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// Load builds the config from defaults, then CONFIG_FILE (if set), then env.
func Load() Config {
	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			log.Printf("[warn] %v", err)
		}
	}
	applyEnv(&cfg)

	log.Printf("[config] PORT=%s DB_DSN=%s MEDIA_DIR=%s LOG_FILE=%s TEMPLATES_DIR=%s CLOUDINARY=%t KAFKA_BROKERS=%v",
		cfg.Port, cfg.DBDSN, cfg.MediaDir, cfg.LogFile, cfg.TemplatesDir, cfg.CloudinaryURL != "", cfg.KafkaBrokers)
	return cfg
}

func applyEnv(cfg *Config) {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	flag := func(key string, dst *bool) {
		switch strings.ToLower(os.Getenv(key)) {
		case "1", "true", "yes":
			*dst = true
		case "0", "false", "no":
			*dst = false
		}
	}
	str("PORT", &cfg.Port)
	str("DB_DSN", &cfg.DBDSN)
	str("MEDIA_DIR", &cfg.MediaDir)
	str("LOG_FILE", &cfg.LogFile)
	str("TEMPLATES_DIR", &cfg.TemplatesDir)
	str("STATIC_DIR", &cfg.StaticDir)
	str("CLOUDINARY_URL", &cfg.CloudinaryURL)
	str("KAFKA_TOPIC", &cfg.KafkaTopic)
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = nil
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	flag("COOKIE_SECURE", &cfg.CookieSecure)
	flag("SEED_DEMO", &cfg.SeedDemo)
}
