package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestLogFormat_Decode(t *testing.T) {
	var f LogFormat
	require.NoError(t, f.Decode("JSON"))
	require.Equal(t, FormatJSON, f)

	require.NoError(t, f.Decode(""))
	require.Equal(t, FormatText, f)

	require.Error(t, f.Decode("xml"))
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(FormatJSON)
	_, ok := logger.Formatter.(*logrus.JSONFormatter)
	require.True(t, ok)

	logger = NewLogger(FormatText)
	_, ok = logger.Formatter.(*logrus.TextFormatter)
	require.True(t, ok)
}
