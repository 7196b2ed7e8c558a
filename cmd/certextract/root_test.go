package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	insuranceText = "SEGURO OBLIGATORIO\nINSCRIPCION R.V.M.: AB12-3\nRUT: 97.006.000-6\nRIGE DESDE: 01-03-2024\nHASTA: 31-03-2025\nPOLIZA N° 77\nPRIMA: 8990"
	permitText    = "PERMISO DE CIRCULACIÓN\nPlaca Única: ABCD12\nFecha emisión: 01/03/2024\nFecha Vencimiento: 31/03/2024"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STORAGE_PATH", filepath.Join(dir, "storage"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("PERSISTENCE_ENABLED", "false")
	t.Setenv("CONFIG_FILE", "")
	return dir
}

// writeFixture stores text-only certificates; the decoder falls back to
// plain text for inputs without a PDF header.
func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootHelpListsCommands(t *testing.T) {
	out, err := run(t, "--help")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for _, name := range []string{"convert", "classify", "import", "mcp"} {
		if !strings.Contains(out, name) {
			t.Fatalf("help output misses %q:\n%s", name, out)
		}
	}
}

func TestClassifyCommand(t *testing.T) {
	dir := setupEnv(t)
	soap := writeFixture(t, dir, "soap.pdf", insuranceText)
	permit := writeFixture(t, dir, "permiso.pdf", permitText)

	out, err := run(t, "classify", soap, permit)
	if err != nil {
		t.Fatalf("classify error = %v", err)
	}
	if !strings.Contains(out, "soap.pdf\tINSURANCE") || !strings.Contains(out, "permiso.pdf\tCIRCULATION_PERMIT") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestConvertCommandWritesSpreadsheet(t *testing.T) {
	dir := setupEnv(t)
	soap := writeFixture(t, dir, "soap.pdf", insuranceText)
	outDir := filepath.Join(dir, "out")

	out, err := run(t, "convert", "--format", "SOAP", "--stats", "-o", outDir, soap)
	if err != nil {
		t.Fatalf("convert error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "1 succeeded, 0 failed") {
		t.Fatalf("unexpected summary:\n%s", out)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), ".xlsx") {
		t.Fatalf("expected one spreadsheet, got %v", entries)
	}
}

func TestConvertCommandFailsWithoutSuccess(t *testing.T) {
	dir := setupEnv(t)
	permit := writeFixture(t, dir, "permiso.pdf", permitText)

	out, err := run(t, "convert", "--format", "TECH_REVIEW", "-o", filepath.Join(dir, "out"), permit)
	if err == nil {
		t.Fatalf("expected error when no document matches the format")
	}
	if !strings.Contains(out, "failed: ") {
		t.Fatalf("expected progress line with the failure:\n%s", out)
	}
}

func TestImportCommandRequiresFormat(t *testing.T) {
	setupEnv(t)
	if _, err := run(t, "import", "x.xlsx"); err == nil || !strings.Contains(err.Error(), "--format") {
		t.Fatalf("expected missing format error, got %v", err)
	}
}

func TestConvertCommandPrintsPatterns(t *testing.T) {
	dir := setupEnv(t)
	permit := writeFixture(t, dir, "permiso.pdf", permitText)

	out, err := run(t, "convert", "--format", "CIRCULATION_PERMIT", "--patterns", "-o", filepath.Join(dir, "out"), permit)
	if err != nil {
		t.Fatalf("convert error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "patterns permiso.pdf:") || !strings.Contains(out, "UniquePlate\t(?i)Placa") {
		t.Fatalf("expected pattern table in output:\n%s", out)
	}

	plain, err := run(t, "convert", "--format", "CIRCULATION_PERMIT", "-o", filepath.Join(dir, "out2"), permit)
	if err != nil {
		t.Fatalf("convert error = %v", err)
	}
	if strings.Contains(plain, "patterns ") {
		t.Fatalf("pattern table printed without --patterns:\n%s", plain)
	}
}
