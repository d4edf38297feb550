package bench

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureLogging(t *testing.T) {
	defer ConfigureLogging(PlaintextFormatString, false)

	require.NoError(t, ConfigureLogging(JSONFormatString, true))
	assert.IsType(t, &log.JSONFormatter{}, log.StandardLogger().Formatter)
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	require.NoError(t, ConfigureLogging(PlaintextFormatString, false))
	assert.IsType(t, &log.TextFormatter{}, log.StandardLogger().Formatter)
	assert.Equal(t, log.InfoLevel, log.GetLevel())

	assert.Error(t, ConfigureLogging("xml", false))
}
