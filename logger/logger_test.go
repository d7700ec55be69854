package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestSetLevel(t *testing.T) {
	require.Same(t, GetProjectLogger(), GetProjectLogger())

	require.NoError(t, SetLevel("debug"))
	require.Equal(t, logrus.DebugLevel, GetProjectLogger().GetLevel())

	require.Error(t, SetLevel("loud"))
	require.Equal(t, logrus.DebugLevel, GetProjectLogger().GetLevel())

	require.NoError(t, SetLevel("info"))
}
