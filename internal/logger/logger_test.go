package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitialize(t *testing.T) {
	t.Cleanup(func() { Log = zap.NewNop() })

	require.Error(t, Initialize("loud", ""))

	file := filepath.Join(t.TempDir(), "pledges.log")
	require.NoError(t, Initialize("info", file))

	Log.Info("Totals broadcast", zap.Int64("grand_total", 2500))
	Log.Debug("Dropped by level")
	_ = Log.Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Contains(t, string(data), `"message":"Totals broadcast"`)
	require.Contains(t, string(data), `"grand_total":2500`)
	require.NotContains(t, string(data), "Dropped by level")
}
