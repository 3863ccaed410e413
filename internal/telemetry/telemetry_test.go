package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/mess-bot/internal/config"
)

func TestSetup(t *testing.T) {
	t.Run("disabled returns a no-op shutdown", func(t *testing.T) {
		shutdown, err := Setup(context.Background(), config.TelemetryConfig{Enabled: false})
		require.NoError(t, err)
		require.NotNil(t, shutdown)
		require.NoError(t, shutdown(context.Background()))
	})

	t.Run("stdout exporter", func(t *testing.T) {
		ctx := context.Background()
		shutdown, err := Setup(ctx, config.TelemetryConfig{
			Enabled:     true,
			Exporter:    config.ExporterStdout,
			ServiceName: "mess-bot-test",
		})
		require.NoError(t, err)
		require.NoError(t, shutdown(ctx))
	})
}

func TestHTTPClient(t *testing.T) {
	t.Parallel()

	client := HTTPClient()
	require.NotNil(t, client)
	require.NotNil(t, client.Transport)
}
