package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infra/logging"
)

func TestSlogLogger_WritesFieldsAsAttributes(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(&buf, "production")

	l.Error("settlement failed", map[string]any{"order-id": "o-1", "attempt": 1})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "ERROR", entry["level"])
	require.Equal(t, "settlement failed", entry["msg"])
	require.Equal(t, "o-1", entry["order-id"])
	require.Equal(t, "chatterpay-business", entry["service"])
}

func TestSlogLogger_LevelFromEnv(t *testing.T) {
	t.Setenv("GO_LOG", "error")

	var buf bytes.Buffer
	l := logging.New(&buf, "development")

	l.Info("payment order created", map[string]any{"order-id": "o-1"})
	require.Zero(t, buf.Len())

	l.Error("payment execution failed", nil)
	require.Contains(t, buf.String(), "payment execution failed")
}
