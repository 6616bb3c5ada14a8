package targets

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDescriptors(t *testing.T) {
	var items []json.RawMessage
	body := `[
		{"id":"0-2","title":"React Native Bridgeless [C++ connection]","description":"com.example.app","type":"node",
		 "webSocketDebuggerUrl":"ws://localhost:8081/inspector/debug?device=0&page=2","vm":"Hermes"},
		"not an object",
		42,
		null,
		[{"title":"nested"}],
		{"title":7,"type":true,"id":0,"url":{"nested":"x"}}
	]`
	require.NoError(t, json.Unmarshal([]byte(body), &items))

	descriptors := ParseDescriptors(items)
	require.Len(t, descriptors, 2)

	assert.Equal(t, "0-2", descriptors[0].ID)
	assert.Equal(t, "React Native Bridgeless [C++ connection]", descriptors[0].Title)
	assert.Equal(t, "ws://localhost:8081/inspector/debug?device=0&page=2", descriptors[0].WebSocketDebuggerURL)

	assert.Equal(t, "7", descriptors[1].Title)
	assert.Equal(t, "true", descriptors[1].Type)
	assert.Empty(t, descriptors[1].ID)
	assert.Empty(t, descriptors[1].URL)
}

func TestDescriptor_DisplayFields(t *testing.T) {
	assert.Equal(t, "Hermes", Descriptor{Title: "Hermes", Description: "app"}.DisplayTitle())
	assert.Equal(t, "app", Descriptor{Description: "app"}.DisplayTitle())
	assert.Equal(t, "Untitled", Descriptor{}.DisplayTitle())

	assert.Equal(t, "node", Descriptor{Type: "node"}.DisplayType())
	assert.Equal(t, "unknown", Descriptor{}.DisplayType())

	assert.Equal(t, "0-2", Descriptor{ID: "0-2"}.ShortID())
	assert.Equal(t, "f2ab1b6e0c3d", Descriptor{ID: "f2ab1b6e0c3d4e5f6a7b"}.ShortID())
}

func TestRewriteLoopback(t *testing.T) {
	for _, loopback := range []string{"0.0.0.0", "localhost", "127.0.0.1"} {
		for _, actual := range []string{"192.168.1.5", "devbox.local"} {
			u, err := url.Parse("ws://" + loopback + ":8097/abc?page=1")
			require.NoError(t, err)

			RewriteLoopback(u, actual)
			assert.Equal(t, actual, u.Hostname())
			assert.Equal(t, "8097", u.Port())
			assert.Equal(t, "/abc", u.Path)
		}
	}
}

func TestIsLoopback_CaseInsensitive(t *testing.T) {
	assert.True(t, IsLoopback("LOCALHOST"))
	assert.True(t, IsLoopback("LocalHost"))
	assert.False(t, IsLoopback("localhost.example.com"))

	u, err := url.Parse("ws://LOCALHOST:8097/abc")
	require.NoError(t, err)
	RewriteLoopback(u, "192.168.1.5")
	assert.Equal(t, "192.168.1.5:8097", u.Host)
}

func TestRewriteLoopback_LeavesOtherHostsAlone(t *testing.T) {
	for _, raw := range []string{"ws://192.168.1.9:8081/a", "ws://localhost.example.com/a", "ws://127.0.0.2/a", "ws://[::1]:8081/a"} {
		u, err := url.Parse(raw)
		require.NoError(t, err)

		RewriteLoopback(u, "devbox")
		assert.Equal(t, raw, u.String())
	}
}

func TestRewriteLoopback_NoPort(t *testing.T) {
	u, _ := url.Parse("ws://localhost/a")
	RewriteLoopback(u, "fe80::2")
	assert.Equal(t, "[fe80::2]", u.Host)

	u, _ = url.Parse("ws://0.0.0.0/a")
	RewriteLoopback(u, "10.0.0.5")
	assert.Equal(t, "10.0.0.5", u.Host)
}
