package providers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/structures"
)

func loggerConfig(dir string) *structures.Config {
	return &structures.Config{
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   dir,
		},
	}
}

func TestTypeEnum_String(t *testing.T) {
	assert.Equal(t, "app", TypeApp.String())
	assert.Equal(t, "crawler", TypeCrawler.String())
	assert.Equal(t, "bungie", TypeBungie.String())
	assert.Equal(t, "store", TypeStore.String())
	assert.Equal(t, "webhook", TypeWebhook.String())
	assert.Equal(t, "app", TypeEnum(99).String())
}

func TestNewLogProvider_CreatesLogFiles(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogProvider(loggerConfig(dir))
	require.NoError(t, err)
	defer logger.Close()

	logger.Infof(TypeApp, "test message")
	logger.Warnf(TypeCrawler, "crawler message %d", 42)
	logger.Errorf(TypeBungie, "bungie message")

	for _, name := range []string{"app.log", "crawler.log", "bungie.log", "store.log", "webhook.log"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestNewLogProvider_WritesToChannelFile(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogProvider(loggerConfig(dir))
	require.NoError(t, err)
	logger.Infof(TypeCrawler, "drained queue")
	logger.Close()

	data, err := os.ReadFile(filepath.Join(dir, "crawler.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "drained queue")
	assert.Contains(t, string(data), `"channel":"crawler"`)
}

func TestNewLogProvider_AllLevelsWrite(t *testing.T) {
	dir := t.TempDir()
	conf := loggerConfig(dir)
	conf.Logger.Level = "debug"

	logger, err := NewLogProvider(conf)
	require.NoError(t, err)
	logger.Debugf(TypeStore, "debug line")
	logger.Infof(TypeStore, "info line")
	logger.Warnf(TypeStore, "warn line")
	logger.Errorf(TypeStore, "error line")
	logger.Close()

	data, err := os.ReadFile(filepath.Join(dir, "store.log"))
	require.NoError(t, err)
	for _, level := range []string{"debug", "info", "warn", "error"} {
		assert.Contains(t, string(data), `"level":"`+level+`"`)
	}
}

func TestNewLogProvider_UnknownChannelFallsBackToApp(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogProvider(loggerConfig(dir))
	require.NoError(t, err)
	logger.Infof(TypeEnum(99), "stray message")
	logger.Close()

	data, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "stray message")
}

func TestNewLogProvider_LevelFiltersDebug(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogProvider(loggerConfig(dir))
	require.NoError(t, err)
	logger.Debugf(TypeApp, "should be dropped")
	logger.Close()

	data, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "should be dropped")
}

func TestNewLogProvider_InvalidLevel(t *testing.T) {
	conf := loggerConfig(t.TempDir())
	conf.Logger.Level = "verbose"

	_, err := NewLogProvider(conf)
	assert.Error(t, err)
}

func TestNewLogProvider_InvalidDir(t *testing.T) {
	_, err := NewLogProvider(loggerConfig("/nonexistent/directory/path"))
	assert.Error(t, err)
}
