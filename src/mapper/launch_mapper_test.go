package mapper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tokensniper/src/connectors"
	"tokensniper/src/model"
)

func TestMapLaunchEventToModel(t *testing.T) {
	detectedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("full event", func(t *testing.T) {
		event := &connectors.LaunchEvent{
			Mint:      "8gVn3ZFJcrFk5wZ1xWJbN1yU9J7p3u9kq4tq2v1mPUMP",
			Name:      "Moon Token",
			Symbol:    "MOON",
			Pool:      "pump",
			SolAmount: 12.5,
		}

		launch, err := MapLaunchEventToModel(event, detectedAt)
		require.NoError(t, err)
		require.Equal(t, event.Mint, launch.TokenAddress)
		require.Equal(t, "MOON", launch.TokenSymbol)
		require.Equal(t, "Moon Token", launch.TokenName)
		require.Equal(t, "pump", launch.Source)
		require.Equal(t, model.TokenStatusDetected, launch.Status)
		require.InDelta(t, 12.5, launch.InitialLiquidity, 1e-9)
		require.Equal(t, detectedAt, launch.DetectedAt)
	})

	t.Run("missing fields get fallbacks", func(t *testing.T) {
		launch, err := MapLaunchEventToModel(&connectors.LaunchEvent{Mint: "MintOnly"}, detectedAt)
		require.NoError(t, err)
		require.Equal(t, "UNKNOWN", launch.TokenSymbol)
		require.Equal(t, "pumpportal", launch.Source)
	})

	t.Run("nil event", func(t *testing.T) {
		launch, err := MapLaunchEventToModel(nil, detectedAt)
		require.NoError(t, err)
		require.Nil(t, launch)
	})
}
