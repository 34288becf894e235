// SPDX-License-Identifier: MPL-2.0

package conda

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"
)

func TestRunScriptArgvOrder(t *testing.T) {
	t.Parallel()

	f := &fakeRunner{}
	res := New("conda", WithRunner(f.run)).RunScript(
		context.Background(),
		"/opt/conda/envs/cfis/bin/python",
		"src/main.py",
		[]string{"input.txt", "--flag"},
		Stdio{},
	)
	if res.Error != nil {
		t.Fatalf("RunScript() error = %v", res.Error)
	}
	if !res.ExitCode.IsSuccess() {
		t.Errorf("ExitCode = %s, want 0", res.ExitCode)
	}

	want := []string{"/opt/conda/envs/cfis/bin/python", "src/main.py", "input.txt", "--flag"}
	if !reflect.DeepEqual(f.calls[0], want) {
		t.Errorf("argv = %v, want %v", f.calls[0], want)
	}
}

func TestRunScriptPropagatesExitCode(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	script := filepath.Join(t.TempDir(), "fail.sh")
	if err := os.WriteFile(script, []byte("exit 7\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	res := New("conda").RunScript(context.Background(), "sh", script, nil, Stdio{})
	if res.Error != nil {
		t.Fatalf("script failure should not be a launcher error, got %v", res.Error)
	}
	if res.ExitCode != 7 {
		t.Errorf("ExitCode = %s, want 7", res.ExitCode)
	}
}

func TestRunScriptForwardsArgsToChild(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	script := filepath.Join(t.TempDir(), "echo.sh")
	if err := os.WriteFile(script, []byte("printf '%s\\n' \"$@\"\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	res := New("conda").RunScript(
		context.Background(),
		"sh",
		script,
		[]string{"input.txt", "--flag", "--x=1"},
		Stdio{Out: &out},
	)
	if res.Error != nil || !res.ExitCode.IsSuccess() {
		t.Fatalf("RunScript() = %+v", res)
	}
	if got, want := out.String(), "input.txt\n--flag\n--x=1\n"; got != want {
		t.Errorf("forwarded args = %q, want %q", got, want)
	}
}

func TestRunScriptRunnerFailureMapsToOne(t *testing.T) {
	t.Parallel()

	f := &fakeRunner{err: errors.New("fork/exec: resource temporarily unavailable")}
	res := New("conda", WithRunner(f.run)).RunScript(
		context.Background(),
		"/opt/conda/envs/cfis/bin/python",
		"src/main.py",
		nil,
		Stdio{},
	)
	if res.Error == nil {
		t.Fatal("a runner failure that is not an exit status should set Error")
	}
	if res.ExitCode != 1 {
		t.Errorf("ExitCode = %s, want 1", res.ExitCode)
	}
}

func TestRunScriptSpawnFailure(t *testing.T) {
	t.Parallel()

	res := New("conda").RunScript(
		context.Background(),
		filepath.Join(t.TempDir(), "no-such-interpreter"),
		"src/main.py",
		nil,
		Stdio{},
	)
	if res.Error == nil {
		t.Fatal("RunScript() with missing interpreter should set Error")
	}
	if res.ExitCode != 1 {
		t.Errorf("ExitCode = %s, want 1", res.ExitCode)
	}
}
