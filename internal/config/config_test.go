package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lifecal/internal/config"
)

// TestConstants_Integrity ensures critical constants are not empty or malformed.
func TestConstants_Integrity(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"AppName", config.AppName},
		{"AppID", config.AppID},
		{"Version", config.Version},
		{"UserAgent", config.UserAgent},
		{"ICalVersion", config.ICalVersion},
		{"ICalProdid", config.ICalProdid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEmpty(t, tt.value, "Critical constant %s should not be empty", tt.name)
		})
	}
}

// TestUserAgent_Format ensures the UA string follows the standard format.
func TestUserAgent_Format(t *testing.T) {
	assert.True(t, strings.HasPrefix(config.UserAgent, "Go-Lifecal/"), "UserAgent must start with AppName/")
}

// TestTimeoutsAndLimits ensures that operational constraints are reasonable.
func TestTimeoutsAndLimits(t *testing.T) {
	t.Parallel()

	assert.Greater(t, config.HTTPTimeout, 0*time.Second, "HTTPTimeout must be positive")
	assert.LessOrEqual(t, config.HTTPTimeout, 2*time.Minute, "HTTPTimeout should not be excessively long")
	assert.Greater(t, config.ShutdownTimeout, 0*time.Second, "ShutdownTimeout must be positive")
	assert.Greater(t, config.MaxHTTPResponseSize, 0, "MaxHTTPResponseSize must be positive")
}

func TestSettings_DefaultsValidateOnceBirthdayIsSet(t *testing.T) {
	s := config.DefaultSettings()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	err := s.Validate(now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrBirthdayMissing)

	s.Birthday = "1990-04-12"
	assert.NoError(t, s.Validate(now))
}

func TestSettings_Validate(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mutate  func(s *config.Settings)
		wantErr string
	}{
		{"Bad birthday", func(s *config.Settings) { s.Birthday = "12/04/1990" }, config.ErrBirthdayInvalid},
		{"Future birthday", func(s *config.Settings) { s.Birthday = "2030-01-01" }, config.ErrBirthdayFuture},
		{"Port out of range", func(s *config.Settings) { s.Port = "70000" }, config.ErrPortRange},
		{"Port not a number", func(s *config.Settings) { s.Port = "http" }, config.ErrPortNumber},
		{"Unknown timezone", func(s *config.Settings) { s.Timezone = "Mars/Olympus" }, config.ErrTimezoneInvalid},
		{"Bad cron", func(s *config.Settings) { s.Refresh = "every tuesday" }, config.ErrRefreshInvalid},
		{"Bad language", func(s *config.Settings) { s.Language = "??" }, config.ErrLanguageInvalid},
		{"Local without path", func(s *config.Settings) { s.Source.Mode = config.SourceModeLocal }, config.ErrLocalPathEmpty},
		{"Web without URL", func(s *config.Settings) { s.Source.Mode = config.SourceModeWeb }, config.ErrWebURLEmpty},
		{"Unknown mode", func(s *config.Settings) { s.Source.Mode = "ftp" }, config.ErrModeUnsupport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := config.DefaultSettings()
			s.Birthday = "1990-04-12"
			s.Timezone = "UTC"
			tt.mutate(s)

			err := s.Validate(now)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestSettings_VCardModesDoNotNeedBirthday checks that the birthday may come from the source.
func TestSettings_VCardModesDoNotNeedBirthday(t *testing.T) {
	s := config.DefaultSettings()
	s.Source.Mode = config.SourceModeLocal
	s.Source.LocalPath = "/tmp/me.vcf"

	assert.NoError(t, s.Validate(time.Now()))
}

func TestLoadSettings_CreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", config.SettingsFileName)

	s, err := config.LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSettings(), s)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, config.FilePermUserRW, info.Mode().Perm())
}

func TestSaveAndLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.SettingsFileName)

	in := config.DefaultSettings()
	in.Birthday = "1988-11-02"
	in.Language = "fr"
	in.Source = config.SourceSettings{
		Mode:        config.SourceModeWeb,
		WebURL:      "https://dav.example.com/me.vcf",
		WebUser:     "me",
		ContactName: "Jane Doe",
	}
	require.NoError(t, config.SaveSettings(path, in))

	out, err := config.LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

// TestLoadSettings_PartialFile fills missing fields from defaults.
func TestLoadSettings_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.SettingsFileName)
	require.NoError(t, os.WriteFile(path, []byte("birthday: 1990-04-12\n"), config.FilePermUserRW))

	s, err := config.LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "1990-04-12", s.Birthday)
	assert.Equal(t, config.DefaultPort, s.Port)
	assert.Equal(t, config.DefaultRefresh, s.Refresh)
	assert.Equal(t, config.SourceModeManual, s.Source.Mode)
}

func TestLoadSettings_Errors(t *testing.T) {
	_, err := config.LoadSettings("")
	assert.EqualError(t, err, config.ErrSettingsPath)

	path := filepath.Join(t.TempDir(), config.SettingsFileName)
	require.NoError(t, os.WriteFile(path, []byte("birthday: [unterminated"), config.FilePermUserRW))

	_, err = config.LoadSettings(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrSettingsDecode)
}

func TestParseBirthday(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)

	b, err := config.ParseBirthday(" 2000-02-29 ", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2000, 2, 29, 0, 0, 0, 0, loc), b)

	_, err = config.ParseBirthday("2001-02-29", loc)
	assert.Error(t, err)
}
