package cli_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/zenmemory/pkg/cli"
	"github.com/secmon-lab/zenmemory/pkg/domain/model"
	"github.com/secmon-lab/zenmemory/pkg/repository/local"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	argv := append([]string{"zenmemory", "--log-output", "stderr", "--log-level", "error"}, args...)
	err := cli.RunWithWriter(context.Background(), argv, buf)
	return buf.String(), err
}

func TestRememberRecallRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := []string{"--store-backend", "local", "--local-dir", dir}

	for _, text := range []string{"My favorite food is pasta", "I like hiking"} {
		args := append(append([]string{"remember", "--owner", "u1"}, store...), text)
		out, err := runCommand(t, args...)
		gt.NoError(t, err).Required()
		gt.S(t, out).Contains("saved")
	}

	// a fresh process reads the partition back from disk
	args := append(append([]string{"recall", "--owner", "u1", "--limit", "1"}, store...), "what", "do", "I", "like", "to", "eat?")
	out, err := runCommand(t, args...)
	gt.NoError(t, err).Required()
	gt.S(t, out).Contains("1. My favorite food is pasta")
	gt.S(t, out).NotContains("hiking")

	args = append(append([]string{"recall", "--email", "u2"}, store...), "what do I like to eat?")
	out, err = runCommand(t, args...)
	gt.NoError(t, err).Required()
	gt.S(t, out).Contains("no memories")

	out, err = runCommand(t, append([]string{"verify"}, store...)...)
	gt.NoError(t, err).Required()
	gt.S(t, out).Contains("1 partitions checked, 0 corrupted")
}

func TestVerifyReportsCorruption(t *testing.T) {
	dir := t.TempDir()
	store := []string{"--store-backend", "local", "--local-dir", dir}

	_, err := runCommand(t, append(append([]string{"remember", "--owner", "u1"}, store...), "I have a cat")...)
	gt.NoError(t, err).Required()

	partition := filepath.Join(dir, local.PartitionName("u1"))
	gt.NoError(t, os.WriteFile(filepath.Join(partition, "meta.json"), []byte("[]"), 0o600)).Required()

	out, err := runCommand(t, append([]string{"verify"}, store...)...)
	gt.True(t, errors.Is(err, model.ErrCorrupted))
	gt.S(t, out).Contains("CORRUPTED")
	gt.S(t, out).Contains("1 corrupted")
}

func TestRememberRejectsEmptyText(t *testing.T) {
	dir := t.TempDir()
	_, err := runCommand(t, "remember", "--owner", "u1", "--store-backend", "local", "--local-dir", dir)
	gt.True(t, errors.Is(err, model.ErrInvalidInput))
}

func TestInvalidBackend(t *testing.T) {
	_, err := runCommand(t, "recall", "--owner", "u1", "--store-backend", "faiss", "q")
	gt.Error(t, err)
}

func TestGetIndexConfig(t *testing.T) {
	cfg := cli.GetIndexConfig("memories")
	gt.A(t, cfg.Collections).Length(1).Required()
	gt.V(t, cfg.Collections[0].Name).Equal("memories")

	fields := cfg.Collections[0].Indexes[0].Fields
	gt.A(t, fields).Length(2).Required()
	gt.V(t, fields[0].Path).Equal("Owner")
	gt.V(t, fields[1].Path).Equal("Embedding")
	gt.Number(t, fields[1].Vector.Dimension).Equal(model.EmbeddingDimension)
}
