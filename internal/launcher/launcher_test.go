// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"envrun/internal/conda"
	"envrun/internal/issue"
	"envrun/pkg/envfile"
)

// fakeManager records every call and answers from canned state.
type fakeManager struct {
	locateErr error

	envs     []envfile.EnvironmentName
	prefixes map[envfile.EnvironmentName]string
	export   []byte

	createErr  error
	updateErr  error
	installErr error
	removeErr  error

	calls      []string
	specPaths  []string
	runResult  *conda.Result
	runScript  string
	runArgs    []string
	runBinary  string
	recordSpec func(path string)
}

func (f *fakeManager) Locate() (string, error) {
	f.calls = append(f.calls, "locate")
	if f.locateErr != nil {
		return "", f.locateErr
	}
	return "/usr/bin/conda", nil
}

func (f *fakeManager) Version(context.Context) (string, error) {
	return "conda 24.1.0", nil
}

func (f *fakeManager) EnvironmentExists(_ context.Context, name envfile.EnvironmentName) (bool, error) {
	f.calls = append(f.calls, "exists")
	for _, env := range f.envs {
		if env == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeManager) EnvironmentPrefix(_ context.Context, name envfile.EnvironmentName) (string, error) {
	prefix, ok := f.prefixes[name]
	if !ok {
		return "", &conda.EnvironmentNotFoundError{Name: name}
	}
	return prefix, nil
}

func (f *fakeManager) CreateEnvironment(_ context.Context, specPath string) error {
	f.calls = append(f.calls, "create")
	f.noteSpec(specPath)
	return f.createErr
}

func (f *fakeManager) UpdateEnvironment(_ context.Context, specPath string) error {
	f.calls = append(f.calls, "update")
	f.noteSpec(specPath)
	return f.updateErr
}

func (f *fakeManager) ExportEnvironment(context.Context, envfile.EnvironmentName) ([]byte, error) {
	f.calls = append(f.calls, "export")
	return f.export, nil
}

func (f *fakeManager) InstallPackage(_ context.Context, _ envfile.EnvironmentName, _ envfile.PackageSpec) error {
	f.calls = append(f.calls, "install")
	return f.installErr
}

func (f *fakeManager) RemovePackage(_ context.Context, _ envfile.EnvironmentName, _ envfile.PackageSpec) error {
	f.calls = append(f.calls, "remove")
	return f.removeErr
}

func (f *fakeManager) RunScript(_ context.Context, interpreter, script string, args []string, _ conda.Stdio) *conda.Result {
	f.calls = append(f.calls, "run")
	f.runBinary = interpreter
	f.runScript = script
	f.runArgs = args
	if f.runResult != nil {
		return f.runResult
	}
	return conda.NewSuccessResult()
}

func (f *fakeManager) noteSpec(path string) {
	f.specPaths = append(f.specPaths, path)
	if f.recordSpec != nil {
		f.recordSpec(path)
	}
}

const specContent = `name: analysis
channels:
  - conda-forge
dependencies:
  - python=3.11
`

func newService(t *testing.T, manager Manager) (*Service, string) {
	t.Helper()

	dir := t.TempDir()
	envFile := filepath.Join(dir, "environment.yml")
	if err := os.WriteFile(envFile, []byte(specContent), 0o644); err != nil {
		t.Fatal(err)
	}
	return New(manager, Options{
		EnvironmentFile: envFile,
		Script:          filepath.Join(dir, "src", "main.py"),
	}), envFile
}

func TestLaunchCreatesMissingEnvironment(t *testing.T) {
	t.Parallel()

	fake := &fakeManager{
		prefixes: map[envfile.EnvironmentName]string{"analysis": "/envs/analysis"},
	}
	svc, _ := newService(t, fake)

	code, err := svc.Launch(context.Background(), []string{"--flag", "value"}, false)
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	if code != 0 {
		t.Errorf("Launch() exit code = %d, want 0", code)
	}

	want := []string{"locate", "exists", "create", "run"}
	if strings.Join(fake.calls, " ") != strings.Join(want, " ") {
		t.Errorf("call sequence = %v, want %v", fake.calls, want)
	}
	if got := strings.Join(fake.runArgs, " "); got != "--flag value" {
		t.Errorf("forwarded args = %q, want %q", got, "--flag value")
	}
	if !strings.HasPrefix(fake.runBinary, "/envs/analysis") {
		t.Errorf("interpreter = %q, want one under /envs/analysis", fake.runBinary)
	}
}

func TestLaunchSkipsCreateWhenEnvironmentExists(t *testing.T) {
	t.Parallel()

	fake := &fakeManager{
		envs:     []envfile.EnvironmentName{"analysis"},
		prefixes: map[envfile.EnvironmentName]string{"analysis": "/envs/analysis"},
	}
	svc, _ := newService(t, fake)

	if _, err := svc.Launch(context.Background(), nil, false); err != nil {
		t.Fatalf("Launch() error = %v", err)
	}

	for _, call := range fake.calls {
		if call == "create" || call == "update" {
			t.Errorf("unexpected %q call for an existing environment", call)
		}
	}
}

func TestLaunchForceUpdateSkipsExistenceCheck(t *testing.T) {
	t.Parallel()

	fake := &fakeManager{
		envs:     []envfile.EnvironmentName{"analysis"},
		prefixes: map[envfile.EnvironmentName]string{"analysis": "/envs/analysis"},
	}
	svc, _ := newService(t, fake)

	if _, err := svc.Launch(context.Background(), nil, true); err != nil {
		t.Fatalf("Launch() error = %v", err)
	}

	want := []string{"locate", "update", "run"}
	if strings.Join(fake.calls, " ") != strings.Join(want, " ") {
		t.Errorf("call sequence = %v, want %v", fake.calls, want)
	}
}

func TestLaunchPropagatesScriptExitCode(t *testing.T) {
	t.Parallel()

	fake := &fakeManager{
		envs:      []envfile.EnvironmentName{"analysis"},
		prefixes:  map[envfile.EnvironmentName]string{"analysis": "/envs/analysis"},
		runResult: conda.NewExitCodeResult(42),
	}
	svc, _ := newService(t, fake)

	code, err := svc.Launch(context.Background(), nil, false)
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	if code != 42 {
		t.Errorf("Launch() exit code = %d, want 42", code)
	}
}

func TestLaunchFeedsCondaASanitizedTempCopy(t *testing.T) {
	t.Parallel()

	raw := specContent + "prefix: /home/user/envs/analysis\n"

	var seen string
	fake := &fakeManager{
		prefixes: map[envfile.EnvironmentName]string{"analysis": "/envs/analysis"},
		recordSpec: func(path string) {
			data, err := os.ReadFile(path)
			if err != nil {
				t.Errorf("reading temp spec: %v", err)
				return
			}
			seen = string(data)
		},
	}

	dir := t.TempDir()
	envFile := filepath.Join(dir, "environment.yml")
	if err := os.WriteFile(envFile, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	svc := New(fake, Options{EnvironmentFile: envFile, Script: "src/main.py"})

	if _, err := svc.Launch(context.Background(), nil, false); err != nil {
		t.Fatalf("Launch() error = %v", err)
	}

	if strings.Contains(seen, "prefix:") {
		t.Errorf("temp spec still contains a prefix line:\n%s", seen)
	}
	if len(fake.specPaths) != 1 || fake.specPaths[0] == envFile {
		t.Errorf("conda was fed %v, want a single temp copy distinct from %s", fake.specPaths, envFile)
	}
	if _, err := os.Stat(fake.specPaths[0]); !os.IsNotExist(err) {
		t.Errorf("temp spec %s was not cleaned up", fake.specPaths[0])
	}
}

func TestLaunchMissingConda(t *testing.T) {
	t.Parallel()

	lookupErr := errors.New(`exec: "conda": executable file not found in $PATH`)
	fake := &fakeManager{locateErr: lookupErr}
	svc, _ := newService(t, fake)

	_, err := svc.Launch(context.Background(), nil, false)
	if err == nil {
		t.Fatal("Launch() error = nil, want conda-not-found failure")
	}
	if !errors.Is(err, lookupErr) {
		t.Errorf("error does not wrap the lookup failure: %v", err)
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) || !ae.HasSuggestions() {
		t.Errorf("error is not actionable with suggestions: %v", err)
	}

	for _, call := range fake.calls {
		if call != "locate" {
			t.Errorf("unexpected %q call after a failed tool check", call)
		}
	}
}

func TestLaunchMissingEnvironmentFile(t *testing.T) {
	t.Parallel()

	svc := New(&fakeManager{}, Options{
		EnvironmentFile: filepath.Join(t.TempDir(), "environment.yml"),
		Script:          "src/main.py",
	})

	_, err := svc.Launch(context.Background(), nil, false)
	if err == nil {
		t.Fatal("Launch() error = nil, want missing-file failure")
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) || !ae.HasSuggestions() {
		t.Errorf("error is not actionable with suggestions: %v", err)
	}
}

func TestUpdateRunsWithoutExistenceCheck(t *testing.T) {
	t.Parallel()

	fake := &fakeManager{}
	svc, _ := newService(t, fake)

	if err := svc.Update(context.Background()); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	want := []string{"locate", "update"}
	if strings.Join(fake.calls, " ") != strings.Join(want, " ") {
		t.Errorf("call sequence = %v, want %v", fake.calls, want)
	}
}

func TestSaveWritesSanitizedExport(t *testing.T) {
	t.Parallel()

	fake := &fakeManager{
		export: []byte(
			"name: analysis\n" +
				"dependencies:\n" +
				"  - numpy=1.26.4=py311h64a7726_0\n" +
				"prefix: /envs/analysis\n"),
	}
	svc, envFile := newService(t, fake)

	if err := svc.Save(context.Background()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(envFile)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	if strings.Contains(got, "prefix:") {
		t.Errorf("saved file still contains a prefix line:\n%s", got)
	}
	if !strings.Contains(got, "- numpy=1.26.4\n") {
		t.Errorf("saved file did not strip the build string:\n%s", got)
	}
}

func TestInstallPackageRequiresExistingEnvironment(t *testing.T) {
	t.Parallel()

	fake := &fakeManager{}
	svc, _ := newService(t, fake)

	err := svc.InstallPackage(context.Background(), "pandas")
	if !errors.Is(err, conda.ErrEnvironmentNotFound) {
		t.Fatalf("InstallPackage() error = %v, want ErrEnvironmentNotFound", err)
	}
	for _, call := range fake.calls {
		if call == "install" {
			t.Error("install was attempted against a missing environment")
		}
	}
}

func TestInstallPackageReExportsSpec(t *testing.T) {
	t.Parallel()

	fake := &fakeManager{
		envs:   []envfile.EnvironmentName{"analysis"},
		export: []byte("name: analysis\ndependencies:\n  - pandas=2.2.2\n"),
	}
	svc, envFile := newService(t, fake)

	if err := svc.InstallPackage(context.Background(), "pandas"); err != nil {
		t.Fatalf("InstallPackage() error = %v", err)
	}

	want := []string{"locate", "exists", "install", "locate", "export"}
	if strings.Join(fake.calls, " ") != strings.Join(want, " ") {
		t.Errorf("call sequence = %v, want %v", fake.calls, want)
	}

	data, err := os.ReadFile(envFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "pandas=2.2.2") {
		t.Errorf("spec file was not refreshed from the export:\n%s", data)
	}
}

func TestUninstallPackage(t *testing.T) {
	t.Parallel()

	fake := &fakeManager{
		envs:   []envfile.EnvironmentName{"analysis"},
		export: []byte("name: analysis\ndependencies: []\n"),
	}
	svc, _ := newService(t, fake)

	if err := svc.UninstallPackage(context.Background(), "pandas"); err != nil {
		t.Fatalf("UninstallPackage() error = %v", err)
	}

	joined := strings.Join(fake.calls, " ")
	if !strings.Contains(joined, "remove") || !strings.Contains(joined, "export") {
		t.Errorf("call sequence = %v, want remove then export", fake.calls)
	}
}

func TestInstallPackageRejectsInvalidSpec(t *testing.T) {
	t.Parallel()

	fake := &fakeManager{envs: []envfile.EnvironmentName{"analysis"}}
	svc, _ := newService(t, fake)

	if err := svc.InstallPackage(context.Background(), "two words"); err == nil {
		t.Fatal("InstallPackage() error = nil, want validation failure")
	}
	if len(fake.calls) != 0 {
		t.Errorf("conda was consulted for an invalid package spec: %v", fake.calls)
	}
}
