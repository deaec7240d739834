package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// DefaultPort is the HTTP listen port.
	DefaultPort = 8080

	// DefaultPollInterval is the time between status checks.
	DefaultPollInterval = 60 * time.Second

	// DefaultStatusAPI is the mcsrvstat.us v3 base URL.
	DefaultStatusAPI = "https://api.mcsrvstat.us/3"

	// DefaultRequestTimeout bounds a single status request.
	DefaultRequestTimeout = 10 * time.Second

	// DefaultSiteSource is where the site document lives in a checkout.
	DefaultSiteSource = "public/config.json"

	// DefaultPublicDir holds the background image and download artifacts.
	DefaultPublicDir = "public"

	settingsName = "mcstatus"
	envPrefix    = "MCSTATUS"

	minPollInterval = time.Second
	maxPollInterval = time.Hour
)

// Settings holds the service configuration.
type Settings struct {
	Port           int
	PollInterval   time.Duration
	StatusAPI      string
	RequestTimeout time.Duration
	SiteSource     string
	PublicDir      string
	LogLevel       slog.Level
	LogFormat      string
}

// BindFlags registers the settings flags on fs and binds them to v so that
// flags take precedence over the environment and the settings file.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	fs.Int("port", DefaultPort, "HTTP listen port")
	fs.Duration("poll-interval", DefaultPollInterval, "time between status checks")
	fs.String("status-api", DefaultStatusAPI, "status API base URL")
	fs.Duration("request-timeout", DefaultRequestTimeout, "timeout for a single status request")
	fs.String("site", DefaultSiteSource, "site config file path or URL")
	fs.String("public-dir", DefaultPublicDir, "directory served for images and downloads (empty to disable)")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("log-format", "json", "log format (json, text)")

	bindings := map[string]string{
		"port":            "port",
		"poll_interval":   "poll-interval",
		"status_api":      "status-api",
		"request_timeout": "request-timeout",
		"site":            "site",
		"public_dir":      "public-dir",
		"log.level":       "log-level",
		"log.format":      "log-format",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// NewViper returns a viper instance set up for mcstatus settings.
//
// When file is empty, mcstatus.yaml is searched for in the working
// directory and ./config. A missing settings file is not an error.
func NewViper(file string) *viper.Viper {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(settingsName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", DefaultPort)
	v.SetDefault("poll_interval", DefaultPollInterval)
	v.SetDefault("status_api", DefaultStatusAPI)
	v.SetDefault("request_timeout", DefaultRequestTimeout)
	v.SetDefault("site", DefaultSiteSource)
	v.SetDefault("public_dir", DefaultPublicDir)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	return v
}

// LoadSettings reads the settings file (if any) into v and validates the
// result.
func LoadSettings(v *viper.Viper) (Settings, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("failed to read settings: %w", err)
		}
	}

	s := Settings{
		Port:           v.GetInt("port"),
		PollInterval:   v.GetDuration("poll_interval"),
		StatusAPI:      strings.TrimRight(strings.TrimSpace(v.GetString("status_api")), "/"),
		RequestTimeout: v.GetDuration("request_timeout"),
		SiteSource:     strings.TrimSpace(v.GetString("site")),
		PublicDir:      strings.TrimSpace(v.GetString("public_dir")),
		LogFormat:      strings.ToLower(strings.TrimSpace(v.GetString("log.format"))),
	}

	if err := s.LogLevel.UnmarshalText([]byte(v.GetString("log.level"))); err != nil {
		return Settings{}, fmt.Errorf("log.level: %w", err)
	}

	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", s.Port)
	}
	if s.PollInterval < minPollInterval {
		return fmt.Errorf("poll_interval must be at least %s, got %s", minPollInterval, s.PollInterval)
	}
	if s.PollInterval > maxPollInterval {
		return fmt.Errorf("poll_interval must not exceed %s, got %s", maxPollInterval, s.PollInterval)
	}
	if s.RequestTimeout < time.Second {
		return fmt.Errorf("request_timeout must be at least 1s, got %s", s.RequestTimeout)
	}
	if !isURL(s.StatusAPI) {
		return fmt.Errorf("status_api must be an http or https URL, got %q", s.StatusAPI)
	}
	if s.SiteSource == "" {
		return errors.New("site is required")
	}
	switch s.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", s.LogFormat)
	}
	return nil
}
