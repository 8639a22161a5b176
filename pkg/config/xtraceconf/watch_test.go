package xtraceconf

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Watch 单元测试
// =============================================================================

func TestWatch_Success(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "trace.yaml")
	err := os.WriteFile(configPath, []byte("peer_service: initial\n"), 0600)
	require.NoError(t, err)

	var mu sync.Mutex
	var lastCfg *Config
	var lastErr error
	reloaded := make(chan struct{}, 8)

	w, err := Watch(configPath, func(cfg *Config, err error) {
		mu.Lock()
		lastCfg = cfg
		lastErr = err
		mu.Unlock()
		select {
		case reloaded <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)

	w.StartAsync()
	defer func() { _ = w.Stop() }()

	// 等待监视器启动
	time.Sleep(50 * time.Millisecond)

	err = os.WriteFile(configPath, []byte("peer_service: updated\n"), 0600)
	require.NoError(t, err)

	select {
	case <-reloaded:
	case <-time.After(2 * time.Second):
		t.Fatal("配置变更未触发回调")
	}

	mu.Lock()
	defer mu.Unlock()
	require.NoError(t, lastErr)
	require.NotNil(t, lastCfg)
	assert.Equal(t, "updated", lastCfg.PeerService)
}

func TestWatch_EmptyPath(t *testing.T) {
	_, err := Watch("", func(cfg *Config, err error) {})
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestWatch_UnsupportedFormat(t *testing.T) {
	_, err := Watch("trace.toml", func(cfg *Config, err error) {})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestWatch_NilCallback(t *testing.T) {
	_, err := Watch("trace.yaml", nil)
	assert.ErrorIs(t, err, ErrNilCallback)
}

func TestWatch_InvalidDebounce(t *testing.T) {
	cb := func(cfg *Config, err error) {}

	_, err := Watch("trace.yaml", cb, WithDebounce(0))
	assert.ErrorIs(t, err, ErrInvalidDebounce)

	_, err = Watch("trace.yaml", cb, WithDebounce(-time.Second))
	assert.ErrorIs(t, err, ErrInvalidDebounce)
}

func TestWatch_Stop(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "trace.yaml")
	err := os.WriteFile(configPath, []byte("peer_service: x\n"), 0600)
	require.NoError(t, err)

	w, err := Watch(configPath, func(cfg *Config, err error) {})
	require.NoError(t, err)

	w.StartAsync()

	err = w.Stop()
	assert.NoError(t, err)

	// 再次停止应该也是成功的（幂等）
	err = w.Stop()
	assert.NoError(t, err)
}

func TestWatch_ReloadError(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "trace.yaml")
	err := os.WriteFile(configPath, []byte("peer_service: ok\n"), 0600)
	require.NoError(t, err)

	errCh := make(chan error, 8)
	w, err := Watch(configPath, func(cfg *Config, err error) {
		if err != nil {
			select {
			case errCh <- err:
			default:
			}
		}
	}, WithDebounce(30*time.Millisecond))
	require.NoError(t, err)

	w.StartAsync()
	defer func() { _ = w.Stop() }()

	time.Sleep(50 * time.Millisecond)

	// 写入非法 YAML，回调应收到解析错误
	err = os.WriteFile(configPath, []byte("peer_service: [unclosed"), 0600)
	require.NoError(t, err)

	select {
	case gotErr := <-errCh:
		assert.ErrorIs(t, gotErr, ErrParseFailed)
	case <-time.After(2 * time.Second):
		t.Fatal("解析失败未通过回调上报")
	}
}

// =============================================================================
// 并发与生命周期测试
// =============================================================================

// TestWatcher_StopCancelsTimer 验证 Stop() 取消待执行的 debounce 定时器
func TestWatcher_StopCancelsTimer(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "trace.yaml")
	err := os.WriteFile(configPath, []byte("peer_service: x\n"), 0600)
	require.NoError(t, err)

	var mu sync.Mutex
	callbackCalled := false

	// 使用较长的防抖时间，确保 Stop 先于定时器触发
	w, err := Watch(configPath, func(cfg *Config, err error) {
		mu.Lock()
		callbackCalled = true
		mu.Unlock()
	}, WithDebounce(200*time.Millisecond))
	require.NoError(t, err)

	w.StartAsync()
	time.Sleep(30 * time.Millisecond)

	err = os.WriteFile(configPath, []byte("peer_service: y\n"), 0600)
	require.NoError(t, err)

	// 等待事件被检测到，但在防抖回调触发前停止
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, w.Stop())

	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	called := callbackCalled
	mu.Unlock()
	assert.False(t, called, "Stop() 后不应触发回调")
}

// TestWatcher_StartAsyncStopRace 验证 StartAsync/Stop 没有竞态
func TestWatcher_StartAsyncStopRace(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "trace.yaml")
	err := os.WriteFile(configPath, []byte("peer_service: x\n"), 0600)
	require.NoError(t, err)

	for range 100 {
		w, err := Watch(configPath, func(cfg *Config, err error) {})
		require.NoError(t, err)

		w.StartAsync()
		err = w.Stop()
		assert.NoError(t, err)
	}
}

// TestWatcher_RenameEvent 验证 Rename 事件能触发重载
// vim/emacs 原子写入模式使用 Rename 而非 Write
func TestWatcher_RenameEvent(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "trace.yaml")
	err := os.WriteFile(configPath, []byte("peer_service: x\n"), 0600)
	require.NoError(t, err)

	reloaded := make(chan *Config, 8)
	w, err := Watch(configPath, func(cfg *Config, err error) {
		if err == nil {
			select {
			case reloaded <- cfg:
			default:
			}
		}
	}, WithDebounce(30*time.Millisecond))
	require.NoError(t, err)

	w.StartAsync()
	defer func() { _ = w.Stop() }()

	time.Sleep(50 * time.Millisecond)

	// 模拟原子写入：先写临时文件，然后 rename
	tmpFile := configPath + ".tmp"
	err = os.WriteFile(tmpFile, []byte("peer_service: renamed\n"), 0600)
	require.NoError(t, err)
	require.NoError(t, os.Rename(tmpFile, configPath))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "renamed", cfg.PeerService)
	case <-time.After(2 * time.Second):
		t.Fatal("Rename 事件应触发回调")
	}
}

// TestWatcher_DoubleStartAsync 验证重复调用 StartAsync 只启动一次
func TestWatcher_DoubleStartAsync(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "trace.yaml")
	err := os.WriteFile(configPath, []byte("peer_service: x\n"), 0600)
	require.NoError(t, err)

	w, err := Watch(configPath, func(cfg *Config, err error) {})
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	w.StartAsync()
	w.StartAsync()
}

// TestWatcher_StartBlocking 验证 Start() 阻塞直到 Stop()
func TestWatcher_StartBlocking(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "trace.yaml")
	err := os.WriteFile(configPath, []byte("peer_service: x\n"), 0600)
	require.NoError(t, err)

	w, err := Watch(configPath, func(cfg *Config, err error) {})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		w.Start()
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, w.Stop())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start() 未在 Stop() 后返回")
	}
}

// TestWatcher_CallbackPanic 验证用户回调 panic 不拖垮监视循环
func TestWatcher_CallbackPanic(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "trace.yaml")
	err := os.WriteFile(configPath, []byte("peer_service: x\n"), 0600)
	require.NoError(t, err)

	callbackCalled := make(chan struct{}, 1)
	w, err := Watch(configPath, func(cfg *Config, err error) {
		select {
		case callbackCalled <- struct{}{}:
		default:
		}
		panic("intentional panic in callback")
	}, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)

	w.StartAsync()
	defer func() { _ = w.Stop() }()

	time.Sleep(30 * time.Millisecond)

	err = os.WriteFile(configPath, []byte("peer_service: y\n"), 0600)
	require.NoError(t, err)

	select {
	case <-callbackCalled:
		// 回调被调用且 panic 被恢复
	case <-time.After(2 * time.Second):
		t.Fatal("回调未被调用")
	}
}

// TestWatcher_StopWithoutStart 验证未启动的 Watcher 调用 Stop 不报错
func TestWatcher_StopWithoutStart(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "trace.yaml")
	err := os.WriteFile(configPath, []byte("peer_service: x\n"), 0600)
	require.NoError(t, err)

	w, err := Watch(configPath, func(cfg *Config, err error) {})
	require.NoError(t, err)

	assert.NoError(t, w.Stop())
}
