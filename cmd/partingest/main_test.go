package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const partsCSV = `name,brand,category,bore_mm,displacement_cc
Honda GX200 Piston 68mm,Honda,pistons,68.0,196
Predator 212 Flywheel Billet,Predator,flywheels,,
`

// writeConfig creates a config file sending reports to a temp directory
func writeConfig(t *testing.T) (configPath, outputDir string) {
	t.Helper()
	dir := t.TempDir()
	outputDir = filepath.Join(dir, "reports")
	configPath = filepath.Join(dir, "config.yaml")
	content := "reports:\n  output_dir: " + outputDir + "\nlog:\n  level: error\n  format: console\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))
	return configPath, outputDir
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestIngest_File(t *testing.T) {
	configPath, outputDir := writeConfig(t)
	input := filepath.Join(t.TempDir(), "parts.csv")
	require.NoError(t, os.WriteFile(input, []byte(partsCSV), 0o644))

	out, err := execute(t, "", "--config", configPath, "ingest", "-f", input, "-q")

	code := exitCode(err)
	assert.Contains(t, []int{0, 1, 2}, code, "unexpected failure: %v", err)
	assert.Contains(t, out, "INGESTION SUMMARY")
	assert.Contains(t, out, "Total Records:")
	assert.Contains(t, out, "Source:    "+input)

	reports, globErr := filepath.Glob(filepath.Join(outputDir, "report-*.json"))
	require.NoError(t, globErr)
	assert.Len(t, reports, 1)

	dryRuns, _ := filepath.Glob(filepath.Join(outputDir, "dry-run-*.txt"))
	assert.Len(t, dryRuns, 1)
}

func TestIngest_Stdin(t *testing.T) {
	configPath, outputDir := writeConfig(t)

	out, err := execute(t, partsCSV, "--config", configPath, "ingest", "--stdin", "--format", "csv", "--mode", "report-only", "-q")

	assert.Contains(t, []int{0, 1, 2}, exitCode(err))
	assert.Contains(t, out, "Source:    stdin")
	assert.Contains(t, out, "Mode:      report-only")

	dryRuns, _ := filepath.Glob(filepath.Join(outputDir, "dry-run-*.txt"))
	assert.Empty(t, dryRuns)
}

func TestReadRows_StdinDefaultsToTSV(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("name\tbrand\nClutch, 3/4 Bore\tMax-Torque\n"))

	rows, source, err := readRows(cmd, &ingestOptions{stdin: true})
	require.NoError(t, err)
	assert.Equal(t, "stdin", source)
	require.Len(t, rows, 1)
	assert.Equal(t, "Clutch, 3/4 Bore", rows[0]["name"])
	assert.Equal(t, "Max-Torque", rows[0]["brand"])
}

func TestIngest_Failures(t *testing.T) {
	configPath, _ := writeConfig(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no input", []string{"ingest"}},
		{"both inputs", []string{"ingest", "--stdin", "-f", "parts.csv"}},
		{"unknown mode", []string{"ingest", "--stdin", "--mode", "publish"}},
		{"unknown format", []string{"ingest", "--stdin", "--format", "xml"}},
		{"missing file", []string{"ingest", "-f", filepath.Join(t.TempDir(), "missing.csv")}},
		{"commit without store", []string{"ingest", "--stdin", "--mode", "commit", "-q"}},
		{"upload without bucket", []string{"ingest", "--stdin", "--upload"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, partsCSV, append([]string{"--config", configPath}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, exitFailure, exitCode(err))
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(&exitError{code: 1}))
	assert.Equal(t, 2, exitCode(&exitError{code: 2}))
	assert.Equal(t, exitFailure, exitCode(errors.New("boom")))
}

func TestRegistryCmd(t *testing.T) {
	configPath, _ := writeConfig(t)

	out, err := execute(t, "", "--config", configPath, "registry")
	require.NoError(t, err)
	assert.Contains(t, out, "Brands:")
	assert.Contains(t, out, "Engine families:")
	assert.Contains(t, out, "brands=embedded")
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "", "--config", "/nonexistent/config.yaml", "version")
	require.NoError(t, err)
	assert.Equal(t, "partingest version "+version+"\n", out)
}
