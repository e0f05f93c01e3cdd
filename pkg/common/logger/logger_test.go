package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitStampsServiceAndRunFields(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	prev := Log
	t.Cleanup(func() { Log = prev })

	Init("import-worker")
	var buf bytes.Buffer
	Log.SetOutput(&buf)

	runID := uuid.New()
	ForRun("acme", runID).Debug("step done")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "step done", line["message"])
	assert.Equal(t, "import-worker", line["service"])
	assert.Equal(t, "acme", line["tenant_id"])
	assert.Equal(t, runID.String(), line["run_id"])
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	assert.Equal(t, logrus.InfoLevel, parseLevel(""))
	assert.Equal(t, logrus.InfoLevel, parseLevel("loud"))
	assert.Equal(t, logrus.WarnLevel, parseLevel("warn"))
}
