// Package testutil provides the shared harness for compiling model
// sources end to end inside tests.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/optlang/internal/app"
	"github.com/vk/optlang/internal/model"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// CompileResult holds the outcomes of a full compilation run.
type CompileResult struct {
	LogOutput string
	LP        string
	Err       error
	Model     *model.Model
}

// CompileModel provides a standardized harness for compiling a set of
// model files end to end. Keys of files are paths relative to a fresh
// temporary directory; paramsJSON, when non-empty, is written out and
// passed as the constant-data file.
func CompileModel(t *testing.T, files map[string]string, paramsJSON string) *CompileResult {
	t.Helper()

	// 1. Create a temporary root directory for the test.
	tmpDir, err := os.MkdirTemp("", ".tmp-compile-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	modelDir := filepath.Join(tmpDir, "model")
	require.NoError(t, os.Mkdir(modelDir, 0755))

	// 2. Write all model files into the temporary directory.
	for name, content := range files {
		filePath := filepath.Join(modelDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}

	cfg := &app.Config{
		ModelPath: modelDir,
		OutPath:   filepath.Join(tmpDir, "out.lp"),
		LogLevel:  "debug",
		LogFormat: "text",
	}
	if paramsJSON != "" {
		cfg.ParamsPath = filepath.Join(tmpDir, "params.json")
		require.NoError(t, os.WriteFile(cfg.ParamsPath, []byte(paramsJSON), 0644))
	}

	logBuffer := &SafeBuffer{}

	// 3. Construct the app, converting a startup panic into a result error.
	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(logBuffer, cfg)
	}()
	if panicErr != nil {
		return &CompileResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	// 4. Run the compilation and read back whatever LP text was produced.
	runErr := testApp.Run(context.Background(), cfg)
	lp := ""
	if data, err := os.ReadFile(cfg.OutPath); err == nil {
		lp = string(data)
	}

	if os.Getenv("OPTLANG_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &CompileResult{
		LogOutput: logBuffer.String(),
		LP:        lp,
		Err:       runErr,
		Model:     testApp.Compiler().Model(),
	}
}
