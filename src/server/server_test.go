package server

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListenAddr(t *testing.T) {
	t.Run("explicit port", func(t *testing.T) {
		require.Equal(t, ":8080", listenAddr("8080"))
	})

	t.Run("falls back to configured port", func(t *testing.T) {
		t.Setenv("PORT", "7777")
		require.Equal(t, ":7777", listenAddr(""))
	})

	t.Run("falls back to default port", func(t *testing.T) {
		t.Setenv("PORT", "")
		require.Equal(t, ":9898", listenAddr(""))
	})
}
