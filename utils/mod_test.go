package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindIndex(t *testing.T) {
	require.Equal(t, 1, FindIndex([]string{"min", "max"}, "max"))
	require.Equal(t, -1, FindIndex([]string{"min", "max"}, "mid"))
}

func TestArange(t *testing.T) {
	t.Run("horizon with epsilon includes the endpoint", func(t *testing.T) {
		tau := Arange(0, 2.5+1e-5, 0.025)
		require.Len(t, tau, 101)
		require.Equal(t, 0.0, tau[0])
		require.InDelta(t, 2.5, tau[len(tau)-1], 1e-9)
	})

	t.Run("stop is exclusive", func(t *testing.T) {
		require.Equal(t, []float64{0, 1, 2}, Arange(0, 3, 1))
	})

	t.Run("degenerate ranges are empty", func(t *testing.T) {
		require.Empty(t, Arange(0, 1, 0))
		require.Empty(t, Arange(1, 0, 0.1))
	})
}
