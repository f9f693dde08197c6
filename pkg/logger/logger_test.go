package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SetupLogger(Options{Level: "info", JSONOutput: true, Output: &buf}))

	Info("sensor %s", "online")
	Debug("hidden")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "sensor online", line["message"])
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SetupLogger(Options{Level: "debug", JSONOutput: true, Output: &buf}))

	l := WithComponent("hub")
	l.Warn().Msg("slow subscriber")

	assert.Contains(t, buf.String(), `"component":"hub"`)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestSetupLoggerWritesDailyFile(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	require.NoError(t, SetupLogger(Options{Level: "info", Dir: dir, JSONOutput: true, Output: &buf}))

	Error("database down")

	data, err := os.ReadFile(filepath.Join(dir, time.Now().Format("2006-01-02")+".log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "database down")
	assert.Contains(t, buf.String(), "database down")
}

func TestSetupLoggerUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SetupLogger(Options{Level: "loud", JSONOutput: true, Output: &buf}))

	Debug("dropped")
	Warning("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}
