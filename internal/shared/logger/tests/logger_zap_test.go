package tests

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/logger"
)

func TestNew_CreatesLogFileAndWrites(t *testing.T) {
	dir := t.TempDir()

	l := logger.New(logger.Options{Dir: dir})
	l.Info("test message")
	_ = l.Sync()

	b, err := os.ReadFile(filepath.Join(dir, "http.log"))
	require.NoError(t, err)

	s := string(b)
	require.NotEmpty(t, s)
	require.Regexp(t, `\btest message\b`, s)

	// формат времени: "HH:MM:SS DD.MM.YYYY", пример: 11:57:16 16.01.2026
	timeRe := regexp.MustCompile(`\b\d{2}:\d{2}:\d{2} \d{2}\.\d{2}\.\d{4}\b`)
	require.True(t, timeRe.MatchString(s), "expected custom time format, got: %q", s)
}

func TestHTTPLogger_LogRequest_WritesStructuredFields(t *testing.T) {
	dir := t.TempDir()

	l := logger.New(logger.Options{Dir: dir})
	l.LogRequest("POST", "/users/sign-in", 401, 20, 158.5463)
	_ = l.Sync()

	b, err := os.ReadFile(filepath.Join(dir, "http.log"))
	require.NoError(t, err)
	s := string(b)

	for _, sub := range []string{
		"HTTP request",
		"method", "POST",
		"uri", "/users/sign-in",
		"status", "401",
		"response_size", "20",
		"duration_ms",
	} {
		require.Contains(t, s, sub)
	}
}

func TestNew_JSONFormat(t *testing.T) {
	dir := t.TempDir()

	l := logger.New(logger.Options{Dir: dir, Format: "json"})
	l.Info("json line")
	_ = l.Sync()

	b, err := os.ReadFile(filepath.Join(dir, "http.log"))
	require.NoError(t, err)

	line := strings.TrimSpace(strings.Split(string(b), "\n")[0])
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &got))
	require.Equal(t, "json line", got["msg"])
}

// debug не пишется при уровне warn
func TestNew_RespectsLevel(t *testing.T) {
	dir := t.TempDir()

	l := logger.New(logger.Options{Dir: dir, Level: "warn"})
	l.Info("hidden")
	l.Warn("visible")
	_ = l.Sync()

	b, err := os.ReadFile(filepath.Join(dir, "http.log"))
	require.NoError(t, err)
	require.NotContains(t, string(b), "hidden")
	require.Contains(t, string(b), "visible")
}
