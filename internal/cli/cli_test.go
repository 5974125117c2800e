package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tyemirov/repomerge/internal/tokenizer"
	"github.com/tyemirov/repomerge/internal/utils"
)

type recordingClipboard struct {
	copied []string
	err    error
}

func (board *recordingClipboard) Copy(text string) error {
	board.copied = append(board.copied, text)
	return board.err
}

type lengthCounter struct{}

func (lengthCounter) Name() string { return "length" }

func (lengthCounter) CountString(input string) (int, error) { return len(input), nil }

func lengthCounterFactory(cfg tokenizer.Config) (tokenizer.Counter, string, error) {
	return lengthCounter{}, cfg.Model, nil
}

func writeFiles(t *testing.T, rootDirectory string, files map[string]string) {
	t.Helper()
	for relativePath, content := range files {
		fullPath := filepath.Join(rootDirectory, filepath.FromSlash(relativePath))
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", relativePath, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", relativePath, err)
		}
	}
}

// newTestDependencies isolates HOME and the working directory for one test.
func newTestDependencies(t *testing.T) Dependencies {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	return Dependencies{
		Logger:           zap.NewNop(),
		LogLevel:         zap.NewAtomicLevel(),
		Clipboard:        &recordingClipboard{},
		CounterFactory:   lengthCounterFactory,
		WorkingDirectory: t.TempDir(),
	}
}

func executeRoot(t *testing.T, dependencies Dependencies, arguments ...string) (string, error) {
	t.Helper()
	rootCommand := NewRootCommand(dependencies)
	var standardOutput bytes.Buffer
	rootCommand.SetOut(&standardOutput)
	rootCommand.SetErr(&bytes.Buffer{})
	rootCommand.SetArgs(normalizeArguments(rootCommand, arguments))
	executeError := rootCommand.Execute()
	return standardOutput.String(), executeError
}

func readDocument(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	return string(content)
}

func TestRootCommandCombinesRepository(t *testing.T) {
	dependencies := newTestDependencies(t)
	repositoryPath := t.TempDir()
	writeFiles(t, repositoryPath, map[string]string{
		"a.txt":              "A",
		"node_modules/x.txt": "X",
		"docs/guide.md":      "guide",
		"fixtures/data.txt":  "data",
		"skip.txt":           "skip",
		"src/b.txt":          "B",
	})
	outputPath := filepath.Join(t.TempDir(), "combined.txt")

	standardOutput, err := executeRoot(t, dependencies,
		repositoryPath, outputPath,
		"--ignored-folders", "docs", "fixtures",
		"--ignored-files", "skip.txt",
	)
	if err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if standardOutput != "All files have been combined into "+outputPath+"\n" {
		t.Fatalf("unexpected confirmation: %q", standardOutput)
	}
	document := readDocument(t, outputPath)
	for _, excluded := range []string{"node_modules", "docs", "guide.md", "fixtures", "skip.txt"} {
		if strings.Contains(document, excluded) {
			t.Fatalf("expected %s to be excluded:\n%s", excluded, document)
		}
	}
	if strings.Count(document, "File: ") != 2 {
		t.Fatalf("expected two file blocks:\n%s", document)
	}
}

func TestRootCommandRejectsWrongArgumentCount(t *testing.T) {
	dependencies := newTestDependencies(t)
	for _, arguments := range [][]string{{}, {"only-one"}, {"a", "b", "c"}} {
		if _, err := executeRoot(t, dependencies, arguments...); err == nil {
			t.Fatalf("expected error for arguments %v", arguments)
		}
	}
	if _, err := executeRoot(t, dependencies, "a", "b", "--unknown-flag"); err == nil {
		t.Fatalf("expected error for unknown flag")
	}
}

func TestRootCommandMergesConfigurationSources(t *testing.T) {
	dependencies := newTestDependencies(t)
	homeDirectory := os.Getenv("HOME")
	writeFiles(t, homeDirectory, map[string]string{
		filepath.Join(utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName): "ignored_files:\n  - global.txt\n",
	})
	writeFiles(t, dependencies.WorkingDirectory, map[string]string{
		utils.ConfigFileName: "ignored_folders:\n  - local\n",
	})
	repositoryPath := t.TempDir()
	writeFiles(t, repositoryPath, map[string]string{
		"global.txt":    "global",
		"local/l.txt":   "local",
		"flag/f.txt":    "flag",
		"kept/kept.txt": "kept",
	})
	outputPath := filepath.Join(t.TempDir(), "combined.txt")

	if _, err := executeRoot(t, dependencies, repositoryPath, outputPath, "--ignored-folders=flag"); err != nil {
		t.Fatalf("execute error: %v", err)
	}
	document := readDocument(t, outputPath)
	for _, excluded := range []string{"global.txt", "local", "flag"} {
		if strings.Contains(document, excluded) {
			t.Fatalf("expected %s to be excluded:\n%s", excluded, document)
		}
	}
	if !strings.Contains(document, "File: "+filepath.Join("kept", "kept.txt")+"\n") {
		t.Fatalf("expected kept file block:\n%s", document)
	}
}

func TestRootCommandExplicitConfiguration(t *testing.T) {
	dependencies := newTestDependencies(t)
	repositoryPath := t.TempDir()
	writeFiles(t, repositoryPath, map[string]string{"a.txt": "A", "b.txt": "B"})
	outputPath := filepath.Join(t.TempDir(), "combined.txt")

	if _, err := executeRoot(t, dependencies, repositoryPath, outputPath, "--config", "missing.yaml"); err == nil {
		t.Fatalf("expected error for missing explicit configuration")
	}

	configurationPath := filepath.Join(t.TempDir(), "custom.yaml")
	writeFiles(t, filepath.Dir(configurationPath), map[string]string{"custom.yaml": "ignored_files: [b.txt]\n"})
	if _, err := executeRoot(t, dependencies, repositoryPath, outputPath, "--config", configurationPath); err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if strings.Contains(readDocument(t, outputPath), "b.txt") {
		t.Fatalf("expected b.txt to be excluded by explicit configuration")
	}
}

func TestRootCommandCopyAndTokens(t *testing.T) {
	dependencies := newTestDependencies(t)
	board := &recordingClipboard{}
	dependencies.Clipboard = board
	repositoryPath := t.TempDir()
	writeFiles(t, repositoryPath, map[string]string{"main.go": "package main\n"})
	outputPath := filepath.Join(t.TempDir(), "combined.txt")

	standardOutput, err := executeRoot(t, dependencies, repositoryPath, outputPath, "--copy", "--tokens", "--model", "custom-model")
	if err != nil {
		t.Fatalf("execute error: %v", err)
	}
	document := readDocument(t, outputPath)
	if len(board.copied) != 1 || board.copied[0] != document {
		t.Fatalf("expected clipboard to receive the document, got %d copies", len(board.copied))
	}
	expectedTokens := "Tokens: " + strconv.Itoa(len(document)) + " (custom-model)\n"
	if !strings.HasSuffix(standardOutput, expectedTokens) {
		t.Fatalf("expected %q in output, got %q", expectedTokens, standardOutput)
	}
}

func TestRootCommandFlagOverridesConfiguration(t *testing.T) {
	dependencies := newTestDependencies(t)
	board := &recordingClipboard{}
	dependencies.Clipboard = board
	writeFiles(t, dependencies.WorkingDirectory, map[string]string{utils.ConfigFileName: "copy: true\n"})
	repositoryPath := t.TempDir()
	writeFiles(t, repositoryPath, map[string]string{"a.txt": "A"})
	outputPath := filepath.Join(t.TempDir(), "combined.txt")

	if _, err := executeRoot(t, dependencies, repositoryPath, outputPath, "--copy=false"); err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if len(board.copied) != 0 {
		t.Fatalf("expected explicit flag to disable copying")
	}
	if _, err := executeRoot(t, dependencies, repositoryPath, outputPath); err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if len(board.copied) != 1 {
		t.Fatalf("expected configuration to enable copying")
	}
}

func TestRootCommandClipboardFailureWarns(t *testing.T) {
	dependencies := newTestDependencies(t)
	observedCore, observedLogs := observer.New(zapcore.WarnLevel)
	dependencies.Logger = zap.New(observedCore)
	dependencies.Clipboard = &recordingClipboard{err: errors.New("no display")}
	repositoryPath := t.TempDir()
	writeFiles(t, repositoryPath, map[string]string{"a.txt": "A"})
	outputPath := filepath.Join(t.TempDir(), "combined.txt")

	if _, err := executeRoot(t, dependencies, repositoryPath, outputPath, "--copy"); err != nil {
		t.Fatalf("clipboard failure must not fail the run: %v", err)
	}
	if observedLogs.FilterMessage(warningClipboardFailed).Len() != 1 {
		t.Fatalf("expected one clipboard warning, got %v", observedLogs.All())
	}
}

func TestRootCommandTokenizerFailure(t *testing.T) {
	dependencies := newTestDependencies(t)
	dependencies.CounterFactory = func(tokenizer.Config) (tokenizer.Counter, string, error) {
		return nil, "", errors.New("encoding unavailable")
	}
	repositoryPath := t.TempDir()
	writeFiles(t, repositoryPath, map[string]string{"a.txt": "A"})
	outputPath := filepath.Join(t.TempDir(), "combined.txt")

	if _, err := executeRoot(t, dependencies, repositoryPath, outputPath, "--tokens"); err == nil {
		t.Fatalf("expected tokenizer failure to be reported")
	}
}

func TestRootCommandUseGitignore(t *testing.T) {
	dependencies := newTestDependencies(t)
	repositoryPath := t.TempDir()
	writeFiles(t, repositoryPath, map[string]string{
		".gitignore": "*.log\ncoverage/\n",
		"app.go":     "package app\n",
		"debug.log":  "log",
		"coverage/c": "c",
	})
	outputPath := filepath.Join(t.TempDir(), "combined.txt")

	if _, err := executeRoot(t, dependencies, repositoryPath, outputPath); err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if !strings.Contains(readDocument(t, outputPath), "debug.log") {
		t.Fatalf("expected gitignore to be ignored by default")
	}

	if _, err := executeRoot(t, dependencies, repositoryPath, outputPath, "--use-gitignore"); err != nil {
		t.Fatalf("execute error: %v", err)
	}
	document := readDocument(t, outputPath)
	excludedFragments := []string{
		"── debug.log\n",
		"File: debug.log\n",
		"── coverage\n",
		"File: " + filepath.Join("coverage", "c") + "\n",
	}
	for _, excluded := range excludedFragments {
		if strings.Contains(document, excluded) {
			t.Fatalf("expected %q to be excluded:\n%s", excluded, document)
		}
	}
	if !strings.Contains(document, "File: app.go\n") {
		t.Fatalf("expected app.go to remain:\n%s", document)
	}
}

func TestRootCommandVerboseEnablesDebug(t *testing.T) {
	dependencies := newTestDependencies(t)
	repositoryPath := t.TempDir()
	outputPath := filepath.Join(t.TempDir(), "combined.txt")

	if _, err := executeRoot(t, dependencies, repositoryPath, outputPath, "--verbose"); err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if dependencies.LogLevel.Level() != zapcore.DebugLevel {
		t.Fatalf("expected debug level, got %s", dependencies.LogLevel.Level())
	}
}

func TestRootCommandVerboseLogsSummary(t *testing.T) {
	dependencies := newTestDependencies(t)
	observedCore, observedLogs := observer.New(zapcore.DebugLevel)
	dependencies.Logger = zap.New(observedCore)
	repositoryPath := t.TempDir()
	writeFiles(t, repositoryPath, map[string]string{
		"main.go":     "package main\n",
		"docs/readme": "docs\n",
	})
	outputPath := filepath.Join(t.TempDir(), "combined.txt")

	if _, err := executeRoot(t, dependencies, repositoryPath, outputPath, "--verbose"); err != nil {
		t.Fatalf("execute error: %v", err)
	}
	writtenEntries := observedLogs.FilterMessage("document written").All()
	if len(writtenEntries) != 1 {
		t.Fatalf("expected one document written entry, got %d", len(writtenEntries))
	}
	fields := writtenEntries[0].ContextMap()
	if fields["tree_lines"] != int64(3) {
		t.Fatalf("expected 3 tree lines, got %v", fields["tree_lines"])
	}
	if _, present := fields["skipped_folders"]; !present {
		t.Fatalf("expected skipped_folders field, got %v", fields)
	}
	if fields["files"] != int64(2) {
		t.Fatalf("expected 2 files, got %v", fields["files"])
	}
}

func TestRootCommandRepositoryNamedInit(t *testing.T) {
	dependencies := newTestDependencies(t)
	parentDirectory := t.TempDir()
	writeFiles(t, parentDirectory, map[string]string{"init/app.go": "package app\n"})
	outputPath := filepath.Join(t.TempDir(), "combined.txt")
	originalDirectory, getwdErr := os.Getwd()
	if getwdErr != nil {
		t.Fatalf("getwd error: %v", getwdErr)
	}
	if chdirErr := os.Chdir(parentDirectory); chdirErr != nil {
		t.Fatalf("chdir error: %v", chdirErr)
	}
	t.Cleanup(func() { _ = os.Chdir(originalDirectory) })

	if _, err := executeRoot(t, dependencies, "./init", outputPath); err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if !strings.Contains(readDocument(t, outputPath), "File: app.go\n") {
		t.Fatalf("expected app.go from the init directory")
	}
	if !strings.Contains(NewRootCommand(dependencies).Long, "./init") {
		t.Fatalf("expected help text to mention ./init")
	}
}

func TestRootCommandVersion(t *testing.T) {
	dependencies := newTestDependencies(t)
	standardOutput, err := executeRoot(t, dependencies, "--version")
	if err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if !strings.HasPrefix(standardOutput, "repomerge version: ") {
		t.Fatalf("unexpected version output: %q", standardOutput)
	}
}

func TestInitCommand(t *testing.T) {
	dependencies := newTestDependencies(t)
	expectedPath := filepath.Join(dependencies.WorkingDirectory, utils.ConfigFileName)

	standardOutput, err := executeRoot(t, dependencies, "init")
	if err != nil {
		t.Fatalf("init error: %v", err)
	}
	if standardOutput != "Configuration written to "+expectedPath+"\n" {
		t.Fatalf("unexpected init output: %q", standardOutput)
	}
	if _, err := executeRoot(t, dependencies, "init"); err == nil {
		t.Fatalf("expected init to refuse overwriting")
	}
	if _, err := executeRoot(t, dependencies, "init", "--force"); err != nil {
		t.Fatalf("init --force error: %v", err)
	}

	globalOutput, err := executeRoot(t, dependencies, "init", "--global")
	if err != nil {
		t.Fatalf("init --global error: %v", err)
	}
	globalPath := filepath.Join(os.Getenv("HOME"), utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
	if !strings.Contains(globalOutput, globalPath) {
		t.Fatalf("expected global path in output, got %q", globalOutput)
	}
}
