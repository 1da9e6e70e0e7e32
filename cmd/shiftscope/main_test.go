package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/shiftscope/internal/cipher"
	"github.com/verte-zerg/shiftscope/internal/corpus"
	"github.com/verte-zerg/shiftscope/internal/sanitize"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("NO_COLOR", "1")
	return dir
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestEncryptDecrypt(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, "", "encrypt", "--key", "3", "Attack at Dawn!")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if out != "DWWDFNDWGDZQ\n" {
		t.Fatalf("unexpected ciphertext %q", out)
	}

	out, _, err = execute(t, "DWWDFNDWGDZQ", "decrypt", "--key", "D")
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if out != "ATTACKATDAWN\n" {
		t.Fatalf("unexpected plaintext %q", out)
	}

	out, _, err = execute(t, "", "decrypt", "-k", "3", "--preserve", "Dwwdfn dw Gdzq!")
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if out != "Attack at Dawn!\n" {
		t.Fatalf("unexpected preserved plaintext %q", out)
	}

	if _, _, err := execute(t, "", "encrypt", "--key", "3!", "abc"); err == nil {
		t.Fatalf("expected invalid key error")
	}
}

func TestAnalyzeStdin(t *testing.T) {
	isolate(t)
	cipherText := cipher.ShiftPreserving(corpus.Sample(), 3)
	out, _, err := execute(t, cipherText, "--top", "3", "--plot")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	for _, want := range []string{"Input: stdin", "Best key:  3 D", "Legend:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Comparison") {
		t.Fatalf("single input should not print a comparison")
	}
}

func TestAnalyzeRejectsShortInput(t *testing.T) {
	isolate(t)
	large := cipher.Shift(sanitize.Normalize(corpus.Sample()), 4)
	out, _, err := execute(t, "", "--text", large, "--text", "x")
	if !errors.Is(err, errInputsRejected) {
		t.Fatalf("expected errInputsRejected, got %v", err)
	}
	for _, want := range []string{"Best key:  4 E", "Not enough letters in text2", "Comparison", "too short for"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestAnalyzeFileSaveAndHistory(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "secret.txt")
	if err := os.WriteFile(path, []byte(cipher.ShiftPreserving(corpus.Sample(), 13)), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	out, _, err := execute(t, "", path, "--save")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	match := regexp.MustCompile(`Saved secret.txt as run ([0-9a-f-]+)`).FindStringSubmatch(out)
	if match == nil {
		t.Fatalf("expected saved run id in output:\n%s", out)
	}
	id := match[1]

	out, _, err = execute(t, "", "history", "--label", "secret.txt")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, id[:8]) || !strings.Contains(out, "13 N") {
		t.Fatalf("expected run in history:\n%s", out)
	}

	out, _, err = execute(t, "", "history", "show", id[:8], "--top", "2")
	if err != nil {
		t.Fatalf("history show failed: %v", err)
	}
	if !strings.Contains(out, "Run "+id) || !strings.Contains(out, "13 N") {
		t.Fatalf("unexpected run output:\n%s", out)
	}

	out, _, err = execute(t, "", "history", "--label", "other.txt")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, "No runs found.") {
		t.Fatalf("expected empty history:\n%s", out)
	}
	if _, _, err := execute(t, "", "history", "--since", "yesterday"); err == nil {
		t.Fatalf("expected invalid --since error")
	}
}

func TestTablesBuildAndShow(t *testing.T) {
	dir := isolate(t)
	corpusPath := filepath.Join(dir, "Prose.txt")
	text := corpus.Sample() + " The quick brown fox jumps over the lazy dog."
	if err := os.WriteFile(corpusPath, []byte(text), 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	out, _, err := execute(t, "", "tables", "build", corpusPath, "--bigrams", "30")
	if err != nil {
		t.Fatalf("tables build failed: %v", err)
	}
	if !strings.Contains(out, "26 letters, 30 bigrams") {
		t.Fatalf("unexpected build output:\n%s", out)
	}
	if _, _, err := execute(t, "", "tables", "build", corpusPath); err == nil {
		t.Fatalf("expected error when the table file exists")
	}

	out, _, err = execute(t, "", "tables", "show", "--tables", "prose", "--bigrams", "3")
	if err != nil {
		t.Fatalf("tables show failed: %v", err)
	}
	if !strings.Contains(out, "Tables: prose (26 letters, 30 bigrams)") {
		t.Fatalf("unexpected show output:\n%s", out)
	}

	cipherText := cipher.ShiftPreserving(corpus.Sample(), 9)
	out, _, err = execute(t, cipherText, "--tables", "prose")
	if err != nil {
		t.Fatalf("analyze with custom tables failed: %v", err)
	}
	if !strings.Contains(out, "Tables: prose") || !strings.Contains(out, "Best key:  9 J") {
		t.Fatalf("unexpected analysis with custom tables:\n%s", out)
	}
}

func TestConfigFileApplies(t *testing.T) {
	dir := isolate(t)
	cfgDir := filepath.Join(dir, "config", "shiftscope")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cfg := "[analyze]\nnormalize = false\n"
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cipherText := cipher.ShiftPreserving(corpus.Sample(), 1)
	out, _, err := execute(t, cipherText)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if strings.Contains(out, "x Best") {
		t.Fatalf("config should disable ratios:\n%s", out)
	}

	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte("[analyze]\ncolour = true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := execute(t, cipherText); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestBench(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, "", "bench", "--lengths", "200,400", "--trials", "3", "--seed", "7")
	if err != nil {
		t.Fatalf("bench failed: %v", err)
	}
	for _, want := range []string{"Key recovery by input length", "200", "400", "Seed: 7"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if _, _, err := execute(t, "", "bench", "--lengths", "1"); err == nil {
		t.Fatalf("expected invalid length error")
	}
}

func TestBenchUsesConfiguredTables(t *testing.T) {
	dir := isolate(t)
	corpusPath := filepath.Join(dir, "prose.txt")
	if err := os.WriteFile(corpusPath, []byte(corpus.Sample()), 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	if _, _, err := execute(t, "", "tables", "build", corpusPath); err != nil {
		t.Fatalf("tables build failed: %v", err)
	}
	out, _, err := execute(t, "", "bench", "--lengths", "200", "--trials", "2", "--seed", "3", "--tables", "prose")
	if err != nil {
		t.Fatalf("bench failed: %v", err)
	}
	if !strings.Contains(out, "Tables: prose  Seed: 3") {
		t.Fatalf("expected custom tables in output:\n%s", out)
	}

	cfgDir := filepath.Join(dir, "config", "shiftscope")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte("[analyze]\ntables = \"missing\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := execute(t, "", "bench", "--lengths", "200", "--trials", "1"); err == nil {
		t.Fatalf("expected bench to load the configured tables")
	}
}

func TestVerboseLogsToStderr(t *testing.T) {
	isolate(t)
	_, errOut, err := execute(t, "", "--verbose", "--text", cipher.Shift(sanitize.Normalize(corpus.Sample()), 2))
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if !strings.Contains(errOut, "ranked input") {
		t.Fatalf("expected debug log on stderr, got %q", errOut)
	}
}

func TestApplyConfigRespectsChangedFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	var top int
	cmd.Flags().IntVar(&top, "top", 10, "")
	value := 3
	applyIntConfig(cmd, "top", &top, &value)
	if top != 3 {
		t.Fatalf("expected config value, got %d", top)
	}
	if err := cmd.Flags().Set("top", "7"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	applyIntConfig(cmd, "top", &top, &value)
	if top != 7 {
		t.Fatalf("flag should win over config, got %d", top)
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	tmpl := defaultConfigTemplate()
	for _, want := range []string{"[analyze]", "[bench]", "# lengths = [25, 50, 100, 200]"} {
		if !strings.Contains(tmpl, want) {
			t.Fatalf("expected %q in template:\n%s", want, tmpl)
		}
	}
}

func TestPreviewSourceFollowsFold(t *testing.T) {
	raw := "Café \ufb01ne"
	got, err := previewSource(raw, false)
	if err != nil || got != raw {
		t.Fatalf("expected raw text without fold, got %q (%v)", got, err)
	}
	got, err = previewSource(raw, true)
	if err != nil {
		t.Fatalf("previewSource failed: %v", err)
	}
	if got != "Cafe fine" {
		t.Fatalf("unexpected folded preview: %q", got)
	}
	if shifted := cipher.ShiftPreserving(got, 1); shifted != "Dbgf gjof" {
		t.Fatalf("expected every letter shifted, got %q", shifted)
	}
}
