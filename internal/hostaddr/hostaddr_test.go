package hostaddr

import (
	"errors"
	"testing"

	"github.com/aleister1102/devtargets/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  error
	}{
		{name: "bare hostname gets default port", input: "localhost", expected: "localhost:8081"},
		{name: "ip without port", input: "192.168.1.5", expected: "192.168.1.5:8081"},
		{name: "explicit port kept", input: "10.0.2.2:19000", expected: "10.0.2.2:19000"},
		{name: "surrounding whitespace trimmed", input: "  devbox:8081 \t", expected: "devbox:8081"},
		{name: "http scheme stripped", input: "http://localhost:8081", expected: "localhost:8081"},
		{name: "https scheme stripped", input: "https://devbox", expected: "devbox:8081"},
		{name: "trailing slashes stripped", input: "http://localhost:8081///", expected: "localhost:8081"},
		{name: "ipv6 literal with port", input: "[::1]:8081", expected: "[::1]:8081"},
		{name: "hostname case preserved", input: "DevBox", expected: "DevBox:8081"},
		{name: "empty input", input: "   ", wantErr: ErrEmptyHost},
		{name: "scheme only", input: "http://", wantErr: ErrEmptyHost},
		{name: "double scheme", input: "http://https://localhost", wantErr: ErrInvalidHost},
		{name: "uppercase scheme", input: "HTTP://localhost", wantErr: ErrInvalidHost},
		{name: "path not allowed", input: "localhost:8081/json", wantErr: ErrInvalidHost},
		{name: "query not allowed", input: "localhost:8081?x=1", wantErr: ErrInvalidHost},
		{name: "bare question mark not allowed", input: "localhost:8081?", wantErr: ErrInvalidHost},
		{name: "fragment not allowed", input: "localhost:8081#top", wantErr: ErrInvalidHost},
		{name: "credentials not allowed", input: "user:pass@localhost:8081", wantErr: ErrInvalidHost},
		{name: "non numeric port", input: "localhost:abc", wantErr: ErrInvalidHost},
		{name: "empty port", input: "localhost:", wantErr: ErrInvalidHost},
		{name: "port out of range", input: "localhost:70000", wantErr: ErrInvalidHost},
		{name: "port zero", input: "localhost:0", wantErr: ErrInvalidHost},
		{name: "missing hostname", input: ":8081", wantErr: ErrInvalidHost},
		{name: "other scheme", input: "ftp://localhost", wantErr: ErrInvalidHost},
		{name: "space inside host", input: "dev box", wantErr: ErrInvalidHost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalize_InvalidIsValidationError(t *testing.T) {
	_, err := Normalize("localhost:8081/path")

	var vErr *common.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, InvalidHostMessage, vErr.Message)
	assert.Equal(t, "localhost:8081/path", vErr.Value)
}

func TestNormalize_AppendsDefaultPortWhenMissing(t *testing.T) {
	for _, host := range []string{"a", "metro.local", "10.0.0.7", "my-laptop"} {
		got, err := Normalize(host)
		require.NoError(t, err)
		assert.Equal(t, host+":"+DefaultPort, got)
	}
}

func TestNormalize_RejectsResidualScheme(t *testing.T) {
	for _, raw := range []string{"https://http://a", "http://HTTPS://a:1", "Https://a"} {
		_, err := Normalize(raw)
		assert.ErrorIs(t, err, ErrInvalidHost, raw)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"localhost",
		"https://devbox/",
		" 192.168.1.5:8097 ",
		"[fe80::1]:8081",
		"http://metro.example.com:19000//",
	}
	for _, in := range inputs {
		once, err := Normalize(in)
		require.NoError(t, err, in)
		twice, err := Normalize(once)
		require.NoError(t, err, once)
		assert.Equal(t, once, twice)
	}
}

func TestIsKnownDuplicate(t *testing.T) {
	hosts := []string{"localhost:8081", "192.168.1.5:8081"}

	assert.True(t, IsKnownDuplicate(hosts, "localhost:8081"))
	assert.False(t, IsKnownDuplicate(hosts, "localhost:8082"))
	assert.False(t, IsKnownDuplicate(hosts, "LOCALHOST:8081"))
	assert.False(t, IsKnownDuplicate(nil, "localhost:8081"))
}

func TestHostname(t *testing.T) {
	assert.Equal(t, "192.168.1.5", Hostname("192.168.1.5:8081"))
	assert.Equal(t, "::1", Hostname("[::1]:8081"))
	assert.Equal(t, "devbox", Hostname("devbox"))
}

func TestDiscoveryURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8081/json", DiscoveryURL("localhost:8081"))
}
