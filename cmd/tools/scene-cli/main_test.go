package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/marble/internal/save"
	"github.com/annel0/marble/internal/vec"
)

func newTestCLI(t *testing.T) (*sceneCLI, *bytes.Buffer) {
	t.Helper()
	codec, err := save.NewCodec()
	require.NoError(t, err)
	t.Cleanup(codec.Close)

	store := save.NewMemoryStore()
	snap := &save.Snapshot{
		Version: save.FormatVersion,
		SavedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Records: []save.Record{
			{Tag: "Domino", Rotation: vec.Identity, Scale: vec.One},
			{Tag: "Domino", Position: vec.Vec3{X: 1}, Rotation: vec.Identity, Scale: vec.One},
			{Tag: "Marble", Rotation: vec.Identity, Scale: vec.One},
		},
	}
	data, err := codec.Encode(snap)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), "objects", data))

	out := &bytes.Buffer{}
	return &sceneCLI{store: store, codec: codec, out: out}, out
}

func TestSceneCLI_List(t *testing.T) {
	cli, out := newTestCLI(t)
	require.NoError(t, cli.list(context.Background()))
	assert.Contains(t, out.String(), "objects")
	assert.Contains(t, out.String(), "2024-03-01T10:00:00Z")
}

func TestSceneCLI_Stats(t *testing.T) {
	cli, out := newTestCLI(t)
	require.NoError(t, cli.stats(context.Background(), "objects"))
	assert.Regexp(t, `Domino\s+2`, out.String())
	assert.Regexp(t, `Marble\s+1`, out.String())
	assert.Regexp(t, `total\s+3`, out.String())

	assert.ErrorIs(t, cli.stats(context.Background(), "missing"), save.ErrSceneNotFound)
}

func TestSceneCLI_Dump(t *testing.T) {
	cli, out := newTestCLI(t)
	require.NoError(t, cli.dump(context.Background(), "objects"))

	var snap save.Snapshot
	require.NoError(t, json.Unmarshal(out.Bytes(), &snap))
	assert.Len(t, snap.Records, 3)
}
