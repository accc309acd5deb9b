package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Settings is the runtime configuration of the service.
// Priority: ENV > YAML > defaults (via env-default tags).
type Settings struct {
	Source   SourceSettings   `yaml:"source"`
	Server   ServerSettings   `yaml:"server"`
	Sync     SyncSettings     `yaml:"sync"`
	Classify ClassifySettings `yaml:"classify"`
	Language string           `yaml:"language" env:"LIFEREEL_LANGUAGE" env-default:"en"`
}

// SourceSettings describes where the vCard roster is read from.
type SourceSettings struct {
	Mode      string `yaml:"mode"       env:"LIFEREEL_SOURCE_MODE" env-default:"local"`
	LocalPath string `yaml:"local_path" env:"LIFEREEL_LOCAL_PATH"`
	WebURL    string `yaml:"web_url"    env:"LIFEREEL_WEB_URL"`
	WebUser   string `yaml:"web_user"   env:"LIFEREEL_WEB_USER"`

	// WebPass is optional; when empty the password is looked up in the OS keyring.
	WebPass string `yaml:"web_pass" env:"LIFEREEL_WEB_PASS"`
}

// ServerSettings holds HTTP server settings.
type ServerSettings struct {
	BindAddr string `yaml:"bind_addr" env:"LIFEREEL_BIND_ADDR" env-default:"127.0.0.1"`
	Port     int    `yaml:"port"      env:"LIFEREEL_PORT"      env-default:"18080"`
}

// SyncSettings controls the periodic roster synchronization.
type SyncSettings struct {
	Interval time.Duration `yaml:"interval" env:"LIFEREEL_SYNC_INTERVAL" env-default:"60m"`

	// Reminder is an ISO8601 duration attached to milestone events, e.g. "-P1D".
	// Empty disables reminders.
	Reminder string `yaml:"reminder" env:"LIFEREEL_REMINDER"`
}

// ClassifySettings tunes the age classifier.
type ClassifySettings struct {
	MaxPregnancyWeeks int    `yaml:"max_pregnancy_weeks" env:"LIFEREEL_MAX_PREGNANCY_WEEKS" env-default:"42"`
	MemoSize          int    `yaml:"memo_size"           env:"LIFEREEL_MEMO_SIZE"           env-default:"4096"`
	Timezone          string `yaml:"timezone"            env:"LIFEREEL_TIMEZONE"`
}

var reminderRe = regexp.MustCompile(ReminderPattern)

// Load reads the settings from a YAML file and environment variables.
// An explicit path (argument or LIFEREEL_CONFIG) must exist; the default
// path is only used when present.
func Load(path string) (*Settings, error) {
	var s Settings

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &s); err != nil {
			return nil, fmt.Errorf("%s %s: %w", ErrConfigRead, path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("%s %s: %w", ErrConfigFile, path, err)
	} else if err := cleanenv.ReadEnv(&s); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrConfigRead, err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrConfigValidate, err)
	}
	return &s, nil
}

// Validate checks cross-field constraints that env-default tags cannot express.
func (s *Settings) Validate() error {
	var errs []error

	switch s.Source.Mode {
	case SourceModeLocal:
		if s.Source.LocalPath == "" {
			errs = append(errs, errors.New(ErrLocalPathEmpty))
		}
	case SourceModeWeb:
		if s.Source.WebURL == "" {
			errs = append(errs, errors.New(ErrWebURLEmpty))
		}
	default:
		errs = append(errs, fmt.Errorf("%s: %q", ErrModeUnsupport, s.Source.Mode))
	}

	if s.Server.Port < MinPort || s.Server.Port > MaxPort {
		errs = append(errs, errors.New(ErrPortRange))
	}
	if s.Sync.Interval <= 0 {
		errs = append(errs, errors.New(ErrIntervalInvalid))
	}
	if s.Sync.Reminder != "" && !reminderRe.MatchString(s.Sync.Reminder) {
		errs = append(errs, fmt.Errorf("%s: %q", ErrReminderInvalid, s.Sync.Reminder))
	}
	if !slices.Contains(SupportedLanguages, s.Language) {
		errs = append(errs, fmt.Errorf("%s: %q", ErrLangUnsupported, s.Language))
	}
	if s.Classify.MemoSize <= 0 {
		errs = append(errs, errors.New(ErrMemoSize))
	}
	if s.Classify.Timezone != "" {
		if _, err := time.LoadLocation(s.Classify.Timezone); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Location returns the timezone photo timestamps are read in, or nil to read
// each timestamp in its own location.
func (s *Settings) Location() *time.Location {
	if s.Classify.Timezone == "" {
		return nil
	}
	loc, err := time.LoadLocation(s.Classify.Timezone)
	if err != nil {
		return nil
	}
	return loc
}

// Addr returns the listen address of the HTTP server.
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s%s%d", s.Server.BindAddr, AddrSeparator, s.Server.Port)
}
