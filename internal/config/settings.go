package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// SourceSettings tells the engine where the birthday comes from.
type SourceSettings struct {
	// Mode is SourceModeManual, SourceModeLocal or SourceModeWeb.
	Mode string `yaml:"mode"`

	// LocalPath is the .vcf file read in local mode.
	LocalPath string `yaml:"local_path,omitempty"`

	// WebURL is the CardDAV/WebDAV address read in web mode.
	// The password is never written here; it lives in the OS keyring under WebUser.
	WebURL  string `yaml:"web_url,omitempty"`
	WebUser string `yaml:"web_user,omitempty"`

	// ContactName selects a card by FN/N. Empty picks the first card with a birthday.
	ContactName string `yaml:"contact_name,omitempty"`
}

// Settings is the on-disk configuration.
type Settings struct {
	// Birthday is YYYY-MM-DD. Required in manual mode.
	Birthday string `yaml:"birthday"`

	// Language is a BCP 47 tag for messages and feed summaries.
	Language string `yaml:"language"`

	// Port is the localhost port of the feed/API server.
	Port string `yaml:"port"`

	// Timezone is an IANA name used to decide what "today" is. "Local" uses the host zone.
	Timezone string `yaml:"timezone"`

	// Refresh is a cron spec ("*/30 * * * *", "@every 1h") for re-reading the source.
	Refresh string `yaml:"refresh"`

	Source SourceSettings `yaml:"source"`
}

// DefaultSettings returns an in-memory default configuration.
func DefaultSettings() *Settings {
	return &Settings{
		Language: DefaultLanguage,
		Port:     DefaultPort,
		Timezone: DefaultTimezone,
		Refresh:  DefaultRefresh,
		Source: SourceSettings{
			Mode: SourceModeManual,
		},
	}
}

// Normalize fills in missing values so that partially-filled files still behave.
func (s *Settings) Normalize() {
	s.Birthday = strings.TrimSpace(s.Birthday)
	if s.Language == "" {
		s.Language = DefaultLanguage
	}
	if s.Port == "" {
		s.Port = DefaultPort
	}
	if s.Timezone == "" {
		s.Timezone = DefaultTimezone
	}
	if s.Refresh == "" {
		s.Refresh = DefaultRefresh
	}
	if s.Source.Mode == "" {
		s.Source.Mode = SourceModeManual
	}
}

// Validate reports the first setting that cannot be used.
// now is used to reject birthdays in the future.
func (s *Settings) Validate(now time.Time) error {
	if err := ValidatePort(s.Port); err != nil {
		return err
	}
	if _, err := language.Parse(s.Language); err != nil {
		return fmt.Errorf("%s: %q: %w", ErrLanguageInvalid, s.Language, err)
	}
	if _, err := s.Location(); err != nil {
		return err
	}
	if _, err := cron.ParseStandard(s.Refresh); err != nil {
		return fmt.Errorf("%s: %q: %w", ErrRefreshInvalid, s.Refresh, err)
	}

	switch s.Source.Mode {
	case SourceModeManual:
		if s.Birthday == "" {
			return errors.New(ErrBirthdayMissing)
		}
	case SourceModeLocal:
		if s.Source.LocalPath == "" {
			return errors.New(ErrLocalPathEmpty)
		}
	case SourceModeWeb:
		if s.Source.WebURL == "" {
			return errors.New(ErrWebURLEmpty)
		}
	default:
		return fmt.Errorf("%s: %q", ErrModeUnsupport, s.Source.Mode)
	}

	if s.Birthday != "" {
		loc, _ := s.Location()
		b, err := ParseBirthday(s.Birthday, loc)
		if err != nil {
			return err
		}
		if b.After(now) {
			return errors.New(ErrBirthdayFuture)
		}
	}
	return nil
}

// Location resolves Timezone.
func (s *Settings) Location() (*time.Location, error) {
	if s.Timezone == "" || s.Timezone == DefaultTimezone {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%s: %q: %w", ErrTimezoneInvalid, s.Timezone, err)
	}
	return loc, nil
}

// ParseBirthday parses a YYYY-MM-DD birthday as midnight in loc.
func ParseBirthday(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(BirthdayLayout, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", ErrBirthdayInvalid, err)
	}
	return t, nil
}

// ValidatePort checks that port is a usable TCP port number.
func ValidatePort(port string) error {
	if port == "" {
		return errors.New(ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return errors.New(ErrPortNumber)
	}
	if n < MinPort || n > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}

// LoadSettings reads the YAML file at path.
//
// If the file does not exist a default one is written with 0600 permissions and
// returned; the caller still has to fill in the birthday before it validates.
func LoadSettings(path string) (*Settings, error) {
	if path == "" {
		return nil, errors.New(ErrSettingsPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s := DefaultSettings()
			if err := SaveSettings(path, s); err != nil {
				return s, err
			}
			slog.Info(MsgSettingsNew,
				LogKeyComponent, CompApp,
				LogKeyFile, path)
			return s, nil
		}
		return nil, fmt.Errorf("%s: %w", ErrSettingsRead, err)
	}

	s := DefaultSettings()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrSettingsDecode, err)
	}
	s.Normalize()
	return s, nil
}

// SaveSettings writes s to path atomically (temp file + rename).
func SaveSettings(path string, s *Settings) error {
	if path == "" {
		return errors.New(ErrSettingsPath)
	}
	if err := os.MkdirAll(filepath.Dir(path), DirPermUserRWX); err != nil {
		return fmt.Errorf("%s: %w", ErrCreateDir, err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsWrite, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, FilePermUserRW); err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsWrite, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%s: %w", ErrSettingsWrite, err)
	}
	return nil
}

// DefaultSettingsPath returns <user config dir>/<AppID>/settings.yaml.
func DefaultSettingsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrConfigDir, err)
	}
	return filepath.Join(dir, AppID, SettingsFileName), nil
}
