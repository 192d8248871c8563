package main

import (
	"io"
	"testing"

	"github.com/myrjola/coldcase/internal/e2etest"
	"github.com/stretchr/testify/require"
)

// startTestServer boots the application on an ephemeral port with a private in-memory database.
func startTestServer(t *testing.T, env map[string]string) *e2etest.Server {
	t.Helper()
	lookupEnv := func(key string) (string, bool) {
		if value, ok := env[key]; ok {
			return value, true
		}
		switch key {
		case "COLDCASE_ADDR":
			return "localhost:0", true
		case "COLDCASE_SQLITE_URL":
			return ":memory:", true
		case "COLDCASE_TICK_INTERVAL":
			return "1h", true
		default:
			return "", false
		}
	}
	server, err := e2etest.StartServer(t.Context(), io.Discard, lookupEnv, run)
	require.NoError(t, err)
	return server
}
