package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLinesRecorder(t *testing.T) {
	var buf bytes.Buffer
	session := NewJSONLinesRecorder(&buf).NewSession()

	require.NoError(t, session.RecordLine("echo hi | cat"))
	require.NoError(t, session.RecordStage("/bin/echo", []string{"echo", "hi"}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second Entry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	require.NotNil(t, first.Line)
	assert.Equal(t, "echo hi | cat", first.Line.Raw)
	assert.Nil(t, first.Stage)
	assert.NotZero(t, first.TimestampMicros)

	require.NotNil(t, second.Stage)
	assert.Equal(t, "/bin/echo", second.Stage.Path)
	assert.Equal(t, []string{"echo", "hi"}, second.Stage.Argv)

	// Events of one session share an ID.
	assert.NotEmpty(t, first.SessionID)
	assert.Equal(t, first.SessionID, second.SessionID)
}

func TestNilSessionLoggerIsSilent(t *testing.T) {
	var session *SessionLogger

	assert.Nil(t, session.RecordLine("ls"))
	assert.Nil(t, session.RecordStage("/bin/ls", []string{"ls"}))
}
