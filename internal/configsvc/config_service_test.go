package configsvc

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testConfig struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func startTestService(t *testing.T) *Service {
	t.Helper()
	svc := New(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Start(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Error("config service did not stop")
		}
	})
	select {
	case <-svc.Ready():
	case <-time.After(time.Second):
		t.Fatal("config service did not become ready")
	}
	return svc
}

func TestWatchCreatesDefault(t *testing.T) {
	svc := startTestService(t)
	path := filepath.Join(t.TempDir(), "sub", "test.yml")
	def := testConfig{Name: "initial", Count: 1}

	cfg, err := Watch(svc, path, def, func(testConfig, error) {})
	require.NoError(t, err)
	assert.Equal(t, def, cfg)

	// the file now exists with the default contents
	_, err = os.Stat(path)
	require.NoError(t, err)
	reread, err := readConfig(path, testConfig{})
	require.NoError(t, err)
	assert.Equal(t, def, reread)
}

func TestWatchReadsExisting(t *testing.T) {
	svc := startTestService(t)
	path := filepath.Join(t.TempDir(), "test.yml")
	require.NoError(t, os.WriteFile(path, []byte("name: stored\ncount: 7\n"), 0644))

	cfg, err := Watch(svc, path, testConfig{Name: "default"}, func(testConfig, error) {})
	require.NoError(t, err)
	assert.Equal(t, testConfig{Name: "stored", Count: 7}, cfg)
}

func TestWatchNotifiesOnRewrite(t *testing.T) {
	svc := startTestService(t)
	path := filepath.Join(t.TempDir(), "test.yml")

	updates := make(chan testConfig, 1)
	_, err := Watch(svc, path, testConfig{Name: "initial"}, func(cfg testConfig, err error) {
		if err != nil {
			t.Errorf("reload failed: %v", err)
			return
		}
		select {
		case updates <- cfg:
		default:
		}
	})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("name: updated\ncount: 2\n"), 0644))
	select {
	case cfg := <-updates:
		assert.Equal(t, testConfig{Name: "updated", Count: 2}, cfg)
	case <-time.After(2 * time.Second):
		t.Fatal("no reload notification")
	}
}

func TestWatchIgnoresSiblingFiles(t *testing.T) {
	svc := startTestService(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	updates := make(chan testConfig, 1)
	_, err := Watch(svc, path, testConfig{}, func(cfg testConfig, err error) {
		if err == nil {
			select {
			case updates <- cfg:
			default:
			}
		}
	})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yml"), []byte("name: other\n"), 0644))
	select {
	case cfg := <-updates:
		t.Fatalf("unexpected notification: %+v", cfg)
	case <-time.After(100 * time.Millisecond):
	}
}
