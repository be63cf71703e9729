package usage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchCredentialsSignalsOnWriteAndReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := WatchCredentials(ctx, path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"claudeAiOauth":{}}`), 0o600))
	waitForSignal(t, changes)

	tmp := filepath.Join(dir, "creds.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(`{"claudeAiOauth":{"accessToken":"x"}}`), 0o600))
	require.NoError(t, os.Rename(tmp, path))
	waitForSignal(t, changes)
}

func TestWatchCredentialsIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".credentials.json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := WatchCredentials(ctx, path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.json"), []byte(`{}`), 0o600))
	select {
	case <-changes:
		t.Fatal("unexpected signal for unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatchCredentialsClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	changes, err := WatchCredentials(ctx, filepath.Join(t.TempDir(), ".credentials.json"))
	require.NoError(t, err)
	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-changes:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatchCredentialsMissingDirectory(t *testing.T) {
	_, err := WatchCredentials(context.Background(), filepath.Join(t.TempDir(), "nope", ".credentials.json"))
	require.Error(t, err)
}

func waitForSignal(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case _, ok := <-ch:
		require.True(t, ok, "watch channel closed unexpectedly")
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for credentials change")
	}
	// Drain any coalesced follow-up events from the same change.
	time.Sleep(50 * time.Millisecond)
	select {
	case <-ch:
	default:
	}
}
