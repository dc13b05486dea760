package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/roster-etl/internal/models"
	appErrors "github.com/noah-isme/roster-etl/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// sourceDir lays out one configured class and a matching roster.
func sourceDir(t *testing.T, roster string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	configs := filepath.Join(dir, "configs")
	require.NoError(t, os.Mkdir(configs, 0o755))
	writeFile(t, configs, "7A.json", `{"materia": ["MAT"], "notas": ["pfv"]}`)
	return configs, writeFile(t, dir, "alunos.csv", roster)
}

func TestClassifyCommand(t *testing.T) {
	out, err := runCLI(t, "classify", "7A", "EJ1-3", "INT2A")
	require.NoError(t, err)

	var got []classification
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []classification{
		{Class: "7A", Pattern: "regular", Shift: "manha", Grade: "7"},
		{Class: "EJ1-3", Pattern: "night", Shift: "noite", Grade: "3"},
		{Class: "INT2A", Pattern: "full-time", Shift: "integral", Grade: "2"},
	}, got)
}

func TestClassifyCommandReportsFailures(t *testing.T) {
	out, err := runCLI(t, "classify", "7A", "EJ1-")
	require.Error(t, err)
	assert.Equal(t, appErrors.ExitValidation, appErrors.ExitCodeOf(err))
	assert.Contains(t, out, `"class": "EJ1-"`)
}

func TestClassifyCommandNeedsInput(t *testing.T) {
	_, err := runCLI(t, "classify")
	assert.Equal(t, appErrors.ExitUsage, appErrors.ExitCodeOf(err))
}

func TestValidateCommand(t *testing.T) {
	configs, roster := sourceDir(t, "nome,matricula,turma,MAT_pfv\nAna,1001,7A,8.5\n")

	out, err := runCLI(t, "validate", "--configs", configs, "--roster", roster, "--report-format", "csv")
	require.NoError(t, err)

	var report models.RunReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.DryRun)
	assert.Equal(t, 1, report.Classes)
	assert.Equal(t, 1, report.RosterRows)
	assert.Empty(t, report.Stages)
	assert.Empty(t, report.Error)

	reports, err := filepath.Glob(filepath.Join("reports", "run_*.csv"))
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}

func TestValidateCommandMissingColumn(t *testing.T) {
	configs, roster := sourceDir(t, "nome,matricula,turma\nAna,1001,7A\n")

	out, err := runCLI(t, "validate", "--configs", configs, "--roster", roster)
	require.Error(t, err)
	assert.Equal(t, appErrors.ExitValidation, appErrors.ExitCodeOf(err))

	var report models.RunReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.NotNil(t, report.Schema)
	assert.Equal(t, []string{"MAT_pfv"}, report.Schema.Missing)
}

func TestValidateCommandStrict(t *testing.T) {
	configs, roster := sourceDir(t, "nome,matricula,turma,MAT_pfv\nAna,1001,7A,8\nBia,1002,9B,7\n")

	_, err := runCLI(t, "validate", "--configs", configs, "--roster", roster)
	require.NoError(t, err)

	_, err = runCLI(t, "validate", "--configs", configs, "--roster", roster, "--strict")
	assert.Equal(t, appErrors.ExitValidation, appErrors.ExitCodeOf(err))
}

func TestLoadCommandSourceErrors(t *testing.T) {
	configs, _ := sourceDir(t, "nome\n")

	_, err := runCLI(t, "load", "--configs", configs, "--roster", "missing.csv", "--dry-run")
	assert.Equal(t, appErrors.ExitSource, appErrors.ExitCodeOf(err))

	_, err = runCLI(t, "load", "--configs", t.TempDir(), "--dry-run")
	assert.Equal(t, appErrors.ExitSource, appErrors.ExitCodeOf(err))
}

func TestLoadCommandUsageErrors(t *testing.T) {
	configs, roster := sourceDir(t, "nome,matricula,turma,MAT_pfv\n")

	_, err := runCLI(t, "load", "--configs", configs, "--roster", roster, "--dry-run", "--report-format", "xml")
	assert.Equal(t, appErrors.ExitUsage, appErrors.ExitCodeOf(err))

	_, err = runCLI(t, "load", "--configs", configs, "--roster", roster, "--dry-run", "--delimiter", ";;")
	assert.Equal(t, appErrors.ExitUsage, appErrors.ExitCodeOf(err))
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
