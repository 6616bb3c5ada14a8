package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const metroResponse = `[
  {"id":"0123456789abcdef","title":"React Native Bridgeless","type":"node","url":"http://localhost:8081/index.bundle",
   "webSocketDebuggerUrl":"ws://localhost:8081/inspector/debug?device=0&page=1"}
]`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	return writeTestConfigWithLogLevel(t, "error")
}

func writeTestConfigWithLogLevel(t *testing.T, level string) string {
	t.Helper()
	dir := t.TempDir()
	cfg := map[string]any{
		"log_config": map[string]any{"log_level": level},
		"storage_config": map[string]any{
			"database_path":     filepath.Join(dir, "state.db"),
			"parquet_base_path": dir,
			"record_history":    true,
		},
		"frontend_config": map[string]any{"embedded_base_url": "file:///opt/frontend"},
	}
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_AddListRemove(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(metroResponse))
	}))
	defer server.Close()
	host := strings.TrimPrefix(server.URL, "http://")
	cfgPath := writeTestConfig(t)

	code, out, errOut := runCLI(t, "-c", cfgPath, "add", host)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, host+" (1 target)")
	assert.Contains(t, out, "[0] React Native Bridgeless")
	assert.Contains(t, out, "id: 0123456789ab")
	assert.Contains(t, out, "copy: http://"+host+"/debugger-frontend/rn_fusebox.html?ws=127.0.0.1%3A8081%2Finspector%2Fdebug%3Fdevice%3D0%26page%3D1")
	assert.Contains(t, out, "> ● "+host)

	code, out, _ = runCLI(t, "-config", cfgPath, "list")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Hosts (1)")
	assert.Contains(t, out, "> ○ "+host)

	code, out, _ = runCLI(t, "-c", cfgPath, "history")
	require.Equal(t, 0, code)
	assert.Contains(t, out, host)
	assert.Contains(t, out, "reachable")

	code, out, _ = runCLI(t, "-c", cfgPath, "remove", host)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Hosts (0)")
}

func TestRun_FailedDiscovery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()
	host := strings.TrimPrefix(server.URL, "http://")
	cfgPath := writeTestConfig(t)

	code, out, errOut := runCLI(t, "-c", cfgPath, "add", host)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Failed to fetch http://"+host+"/json")
	assert.Contains(t, out, "HTTP 500")
	assert.NotContains(t, errOut, "Error:")
}

func TestRun_LogsGoToStderr(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()
	host := strings.TrimPrefix(server.URL, "http://")
	cfgPath := writeTestConfigWithLogLevel(t, "warn")

	code, out, errOut := runCLI(t, "-c", cfgPath, "add", host)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Discovery failed")
	assert.NotContains(t, out, "Discovery failed")
	assert.Contains(t, out, "HTTP 502")
}

func TestRun_HistoryExport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()
	host := strings.TrimPrefix(server.URL, "http://")
	cfgPath := writeTestConfig(t)

	code, out, _ := runCLI(t, "-c", cfgPath, "add", host)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "No debug targets found on this host.")

	code, out, _ = runCLI(t, "-c", cfgPath, "history", "-export", "snapshot")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Exported 1 records to ")

	code, out, _ = runCLI(t, "-c", cfgPath, "history", "-from-export", "snapshot")
	require.Equal(t, 0, code)
	assert.Contains(t, out, host)
}

func TestRun_InvalidInput(t *testing.T) {
	cfgPath := writeTestConfig(t)

	code, _, errOut := runCLI(t, "-c", cfgPath, "select", "nowhere:1")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "host is not registered")

	code, out, _ := runCLI(t, "-c", cfgPath, "add", "ftp://x")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "✗ ")

	code, _, errOut = runCLI(t, "-c", cfgPath, "frobnicate")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, `unknown command "frobnicate"`)

	code, out, _ = runCLI(t, "-c", cfgPath, "refresh")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "No host selected")
}

func TestParseFlags(t *testing.T) {
	var stderr bytes.Buffer

	flags, err := ParseFlags([]string{"-c", "x.yaml", "open", "2"}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "x.yaml", flags.GlobalConfigFile)
	assert.Equal(t, "open", flags.Command)
	assert.Equal(t, []string{"2"}, flags.Args)

	_, err = ParseFlags(nil, &stderr)
	assert.Error(t, err)
	assert.Contains(t, stderr.String(), "Usage: devtargets")
}
