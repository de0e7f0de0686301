package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindSessions(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"scan1_Info.log", "scan1_ECG.log", "scan1_RESP.log",
		"scan2_Info.log",
		".hidden_Info.log",
		"notes.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub_Info.log"), 0o755))

	bases, err := findSessions(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "scan1"),
		filepath.Join(dir, "scan2"),
	}, bases)
}

func TestStateRoundTrip(t *testing.T) {
	file := filepath.Join(t.TempDir(), "state.yaml")
	id := uuid.NewString()

	state := readState(file)
	assert.Empty(t, state.ImportedSessions)
	assert.False(t, state.imported(id))

	state.ImportedSessions = append(state.ImportedSessions, id)
	writeState(state, file)

	state = readState(file)
	assert.True(t, state.imported(id))
	assert.False(t, state.imported(uuid.NewString()))
}
