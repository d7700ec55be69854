package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClamp(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0.2, Clamp(0.5, -0.2, 0.2))
	require.Equal(t, -0.2, Clamp(-3.0, 0.2, -0.2))
	require.Equal(t, 7, Clamp(7, 0, 10))
	require.Equal(t, 1.0, Clamp01(1.4))
	require.Equal(t, 0.0, Clamp01(-0.1))
}

func TestToUnitClamp(t *testing.T) {
	t.Parallel()

	f := ToUnitClamp(2, 4)
	require.Equal(t, 0.0, f(1))
	require.Equal(t, 0.5, f(3))
	require.Equal(t, 1.0, f(10))
	require.Equal(t, 1.0, ToUnitClamp(1, 1)(0))
}
