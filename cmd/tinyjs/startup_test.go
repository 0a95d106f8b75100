package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nickandperla.net/tinyjs/pkg/tinyjs"
)

// runCLI runs the command in-process and returns its exit code and output.
func runCLI(t *testing.T, stdin *os.File, input string, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	var code int
	if stdin != nil {
		code = run(args, stdin, &out, &errOut)
	} else {
		code = run(args, strings.NewReader(input), &out, &errOut)
	}
	return code, out.String(), errOut.String()
}

// devNull stands in for an interactive stdin with nothing to read.
func devNull(t *testing.T) *os.File {
	t.Helper()
	f, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatalf("open %s: %v", os.DevNull, err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestEvalFlag(t *testing.T) {
	db := filepath.Join(t.TempDir(), "test.db")
	code, out, errOut := runCLI(t, nil, "", "-e", "1 + 2;", "-db", db)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if out != "3\n" {
		t.Errorf("expected 3, got %q", out)
	}
}

func TestPipedInput(t *testing.T) {
	db := filepath.Join(t.TempDir(), "test.db")
	code, out, errOut := runCLI(t, nil, "var x = 6;\nprint(\"piped\");\nx * 7;", "-db", db)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if out != "piped\n42\n" {
		t.Errorf("unexpected output %q", out)
	}
}

// TestStartupExecutedAfterFile verifies that __startup__ is executed after evaluating a file
func TestStartupExecutedAfterFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := writeFile(t, tmpDir, "test.js", `function __startup__() {
  print("STARTUP_EXECUTED");
  return "done";
}`)

	code, out, errOut := runCLI(t, nil, "", "-f", testFile, "-db", filepath.Join(tmpDir, "test.db"))
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if out != "STARTUP_EXECUTED\ndone\n" {
		t.Errorf("unexpected output %q", out)
	}
}

// TestStartupLoadedFromDatabase verifies that __startup__ is loaded from DB when no file is provided
func TestStartupLoadedFromDatabase(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	testFile := writeFile(t, tmpDir, "setup.js", `function __startup__() { print("DB_STARTUP_EXECUTED"); }
persist("__startup__");`)

	if code, _, errOut := runCLI(t, nil, "", "-f", testFile, "-db", dbPath); code != 0 {
		t.Fatalf("setup exit %d: %s", code, errOut)
	}

	code, out, errOut := runCLI(t, devNull(t), "", "-db", dbPath)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "DB_STARTUP_EXECUTED") {
		t.Errorf("expected output to contain 'DB_STARTUP_EXECUTED', got: %s", out)
	}
}

// TestCompileWorkflow verifies the full compile-then-run workflow
func TestCompileWorkflow(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "compiled.db")
	testFile := writeFile(t, tmpDir, "program.js", `var greeting = "Hello from compiled program!";
function __startup__() { print(greeting); }`)

	code, out, errOut := runCLI(t, nil, "", "-compile", "-f", testFile, "-db", dbPath)
	if code != 0 {
		t.Fatalf("compile exit %d: %s", code, errOut)
	}
	if strings.Contains(out, "Hello") {
		t.Errorf("compile mode should not run __startup__, got: %s", out)
	}

	code, out, errOut = runCLI(t, devNull(t), "", "-db", dbPath, "-persist-mode", "always")
	if code != 0 {
		t.Fatalf("run exit %d: %s", code, errOut)
	}
	if out != "Hello from compiled program!\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestDumpFlag(t *testing.T) {
	db := filepath.Join(t.TempDir(), "test.db")
	code, out, errOut := runCLI(t, nil, "", "-e", "var n = 1; var s = 'x';", "-db", db, "-dump", "yaml")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "n: 1\n") || !strings.Contains(out, "s: x\n") {
		t.Errorf("expected a YAML dump, got %q", out)
	}
	if strings.Contains(out, "print") {
		t.Errorf("natives should not be dumped, got %q", out)
	}
}

func TestConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := writeFile(t, tmpDir, "tinyjs.toml", `
[runtime]
db = "state.db"
persist-mode = "never"

[output]
dump = "yaml"
`)

	code, out, errOut := runCLI(t, nil, "", "-config", cfg, "-e", `var a = 1; persist("a");`)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.HasPrefix(out, "false\n") {
		t.Errorf("expected persist to be refused in never mode, got %q", out)
	}
	if !strings.Contains(out, "a: 1") {
		t.Errorf("expected the dump from the config, got %q", out)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "state.db")); err != nil {
		t.Errorf("expected the database next to the config file: %v", err)
	}

	// Flags override the file.
	code, out, errOut = runCLI(t, nil, "", "-config", cfg, "-persist-mode", "on_demand", "-dump", "", "-e", `var a = 1; persist("a");`)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if out != "true\n" {
		t.Errorf("expected the flag to win, got %q", out)
	}
}

func TestCLIErrors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "test.db")

	code, _, errOut := runCLI(t, nil, "", "-e", "var a = 1;\n1 / 0;", "-db", db)
	if code != 1 || !strings.Contains(errOut, "Error: runtime error at line 2") {
		t.Errorf("expected a runtime error on line 2, got %d %q", code, errOut)
	}

	code, _, errOut = runCLI(t, nil, "", "-persist-mode", "sometimes", "-db", db)
	if code != 1 || !strings.Contains(errOut, "Unknown persist mode") {
		t.Errorf("expected a persist mode error, got %d %q", code, errOut)
	}

	code, _, errOut = runCLI(t, nil, "", "-dump", "xml", "-db", db)
	if code != 1 || !strings.Contains(errOut, "Unknown dump format") {
		t.Errorf("expected a dump format error, got %d %q", code, errOut)
	}

	code, _, errOut = runCLI(t, nil, "", "-f", filepath.Join(t.TempDir(), "missing.js"), "-db", db)
	if code != 1 || errOut == "" {
		t.Errorf("expected an error for a missing file, got %d %q", code, errOut)
	}
}

func TestBasicREPL(t *testing.T) {
	var out bytes.Buffer
	con := &console{w: &out}
	rt, err := tinyjs.New(tinyjs.WithMemoryStore(), tinyjs.WithOutputWriter(con.write))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer rt.Close()

	input := "var a = 1;\nfunction f(x) {\n  return x + a;\n}\nf(2);\n1 +\\\n1;\nundefinedFn();\n"
	runBasicREPL(rt, con, strings.NewReader(input))

	got := out.String()
	for _, want := range []string{">>> ", "... ", "3\n", "2\n", "Error: "} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in REPL output:\n%s", want, got)
		}
	}
}

func TestIncomplete(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"var a = 1;", false},
		{"function f() {", true},
		{"function f() { return 1; }", false},
		{"f(1,", true},
		{"[1, 2", true},
		{"/* open", true},
		{"a = ')';", false},
		{"}", false},
	}
	for _, tt := range tests {
		if got := incomplete(tt.src); got != tt.want {
			t.Errorf("incomplete(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestHistoryFlag(t *testing.T) {
	db := filepath.Join(t.TempDir(), "test.db")
	for _, src := range []string{`var n = 1; persist("n");`, `var n = 2; persist("n");`} {
		if code, _, errOut := runCLI(t, nil, "", "-e", src, "-db", db); code != 0 {
			t.Fatalf("exit %d: %s", code, errOut)
		}
	}

	code, out, errOut := runCLI(t, devNull(t), "", "-history", "n", "-db", db)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 versions, got %q", out)
	}
	if !strings.HasPrefix(lines[0], "v2 ") || !strings.HasSuffix(lines[0], " 2") {
		t.Errorf("unexpected newest version %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "v1 ") || !strings.HasSuffix(lines[1], " 1") {
		t.Errorf("unexpected oldest version %q", lines[1])
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestOutputWriteError(t *testing.T) {
	db := filepath.Join(t.TempDir(), "test.db")
	var errOut bytes.Buffer
	code := run([]string{"-e", "1 + 2;", "-db", db}, strings.NewReader(""), failingWriter{}, &errOut)
	if code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
	if !strings.Contains(errOut.String(), "disk full") {
		t.Errorf("expected the write error on stderr, got %q", errOut.String())
	}
}
