package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tartampluch/go-birthday-reminders/internal/config"
)

// TestConstants_Integrity ensures critical constants are not empty or malformed.
// This prevents accidental deletion of keys required for runtime or UI logic.
func TestConstants_Integrity(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"AppName", config.AppName},
		{"AppID", config.AppID},
		{"KeyringService", config.KeyringService},
		{"Version", config.Version},
		{"UserAgent", config.UserAgent},
		{"ICalVersion", config.ICalVersion},
		{"ICalProdid", config.ICalProdid},
		{"DBFileName", config.DBFileName},
		{"DefaultCategoryID", config.DefaultCategoryID},
		{"UncategorizedID", config.UncategorizedID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEmpty(t, tt.value, "Critical constant %s should not be empty", tt.name)
		})
	}
}

// TestDefaults_Sanity checks that default values make sense logically.
func TestDefaults_Sanity(t *testing.T) {
	assert.Equal(t, 2000, config.DefaultLeapYear, "Default leap year must be 2000 for consistency")
	assert.Contains(t, config.SupportedLanguages, config.DefaultLanguage)
	assert.NotEqual(t, config.DefaultCategoryID, config.UncategorizedID, "The synthetic bucket must never collide with a real category")
}

// TestDelivery_Timing pins the polling cadence against its catch window.
func TestDelivery_Timing(t *testing.T) {
	assert.Equal(t, 60*time.Second, config.PollInterval)
	assert.Equal(t, 120*time.Second, config.CatchWindow)
	assert.Greater(t, config.CatchWindow, config.PollInterval, "A tick must never skip over a whole catch window")
	assert.EqualValues(t, 0x7fffffff, config.StableIDMask)
}

// TestUserAgent_Format ensures the UA string follows the standard format.
func TestUserAgent_Format(t *testing.T) {
	assert.True(t, strings.HasPrefix(config.UserAgent, "Go-Birthday-Reminders/"), "UserAgent must start with AppName/")
	assert.True(t, strings.HasSuffix(config.UserAgent, config.Version))
}

// TestTimeoutsAndLimits ensures that operational constraints are reasonable.
func TestTimeoutsAndLimits(t *testing.T) {
	t.Parallel()

	// Timeouts
	assert.Greater(t, config.HTTPTimeout, 0*time.Second, "HTTPTimeout must be positive")
	assert.LessOrEqual(t, config.HTTPTimeout, 2*time.Minute, "HTTPTimeout should not be excessively long")
	assert.Greater(t, config.ShutdownTimeout, 0*time.Second, "ShutdownTimeout must be positive")

	// Limits
	assert.Greater(t, config.MaxHTTPResponseSize, 0, "MaxHTTPResponseSize must be positive")
	assert.GreaterOrEqual(t, int64(config.MaxHTTPResponseSize), int64(50*1024*1024), "MaxHTTPResponseSize should be at least 50MB for real-world usage")
	assert.Less(t, int64(config.MaxHTTPResponseSize), int64(1*1024*1024*1024), "MaxHTTPResponseSize should stay under 1GB to protect RAM")
	assert.Less(t, config.MinPort, config.MaxPort)
}
