package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driving/mcp"
)

// executeCancelled runs args with an already cancelled context so that
// long-running commands return immediately.
func executeCancelled(t *testing.T, args ...string) (string, error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rootCmd.SetContext(ctx)
	t.Cleanup(func() { rootCmd.SetContext(context.Background()) })
	return execute(t, args...)
}

func TestServeCmd_ShutsDownWithContext(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCancelled(t, "serve", "--addr", "127.0.0.1:0")

	require.NoError(t, err)
	assert.Contains(t, out, "docqa API listening on 127.0.0.1:0")
}

func TestServeCmd_RequiresServices(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	indexingService = nil

	_, err := execute(t, "serve", "--addr", "127.0.0.1:0")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "services are required")
}

func TestWatchCmd_RequiresArg(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "watch")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestWatchCmd_MissingDirectory(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCancelled(t, "watch", filepath.Join(t.TempDir(), "missing"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch dir")
}

func TestWatchCmd_NotADirectory(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	path := filepath.Join(t.TempDir(), "a.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o644))

	_, err := executeCancelled(t, "watch", path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestWatchCmd_NoIndexingService(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	indexingService = nil

	_, err := execute(t, "watch", t.TempDir())

	assert.EqualError(t, err, "indexing service not configured")
}

func TestMCPServeCmd_RequiresAnswerService(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	answerService = nil
	mcpServeCmd.SetContext(context.Background())

	err := runMCPServe(mcpServeCmd, nil)

	assert.ErrorIs(t, err, mcp.ErrMissingAnswerService)
}

func TestTUICmd_RequiresAnswerService(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	answerService = nil

	err := runTUI(tuiCmd, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create TUI")
}
