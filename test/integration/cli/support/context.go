package support

import (
	"fmt"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/MeKo-Tech/pogo-lens/internal/testutil"
)

// TestContext holds the state for integration tests.
type TestContext struct {
	// Command execution state
	LastCommand   string
	LastOutput    string
	LastStderr    string
	LastError     error
	LastExitCode  int
	LastStartTime time.Time
	LastDuration  time.Duration

	// Test environment
	BinPath string
	TempDir string
	EnvVars []string

	// Fixtures
	ImagePath  string
	TokensPath string
	ConfigPath string
	Libre      *httptest.Server
	LibreCalls int

	// Lens server
	ServerProcess *exec.Cmd
	ServerPort    int
	ServerLog     string

	// HTTP response state
	LastHTTPStatusCode int
	LastHTTPResponse   []byte
	LastHTTPHeaders    map[string]string
}

// NewTestContext creates a new test context with its own temp directory, HOME and
// XDG_CONFIG_HOME so no user configuration leaks into a scenario.
func NewTestContext() (*TestContext, error) {
	binPath := os.Getenv("LENS_TEST_BIN")
	if binPath == "" {
		root, err := testutil.GetProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
		binPath = filepath.Join(root, "bin", "lens")
	}

	tempDir, err := os.MkdirTemp("", "lens-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	ctx := &TestContext{
		BinPath: binPath,
		TempDir: tempDir,
	}
	ctx.AddEnvVar("HOME", filepath.Join(tempDir, "home"))
	ctx.AddEnvVar("XDG_CONFIG_HOME", filepath.Join(tempDir, "xdg"))
	return ctx, nil
}

// Cleanup stops everything the scenario started and removes the temp directory.
func (testCtx *TestContext) Cleanup() error {
	var errs []error

	if err := testCtx.StopServer(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop server: %w", err))
	}
	if testCtx.Libre != nil {
		testCtx.Libre.Close()
		testCtx.Libre = nil
	}
	if err := os.RemoveAll(testCtx.TempDir); err != nil && !os.IsNotExist(err) {
		errs = append(errs, fmt.Errorf("failed to remove temp directory %s: %w", testCtx.TempDir, err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}

// AddEnvVar adds an environment variable for command execution.
func (testCtx *TestContext) AddEnvVar(name, value string) {
	testCtx.EnvVars = append(testCtx.EnvVars, fmt.Sprintf("%s=%s", name, value))
}

// TempPath returns a path inside the scenario's temp directory.
func (testCtx *TestContext) TempPath(name string) string {
	return filepath.Join(testCtx.TempDir, name)
}
