package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/solubility-bench/internal/config"
	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/solubility-bench/internal/infrastructure/storage"
	"github.com/turtacn/solubility-bench/internal/intelligence/featurize"
	"github.com/turtacn/solubility-bench/internal/intelligence/gnn"
	"github.com/turtacn/solubility-bench/internal/intelligence/nn"
	"github.com/turtacn/solubility-bench/internal/intelligence/reporting"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

const testConfigYAML = `
log:
  level: error
training:
  epochs: 1
  batch_size: 4
classical:
  svr:
    max_passes: 200
  forest:
    trees: 5
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func toyCSV(t *testing.T) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("Compound ID," + config.DefaultTargetColumn + ",smiles\n")
	for i, row := range [][2]string{
		{"CCO", "1.1"}, {"C", "-0.6"}, {"c1ccccc1", "-1.6"}, {"CC(=O)O", "1.2"}, {"CCN", "1.0"},
		{"CCCl", "-0.9"}, {"c1ccccc1O", "-0.04"}, {"CC(C)O", "0.4"}, {"C1CCCCC1", "-3.1"}, {"CC#N", "0.3"},
	} {
		sb.WriteString("mol" + string(rune('a'+i)) + "," + row[1] + "," + row[0] + "\n")
	}
	return writeFile(t, "toy.csv", sb.String())
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestNewRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "solbench", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.Contains(t, cmd.Version, Version)

	names := make([]string, 0)
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"run", "featurize", "serve", "cache", "version"}, names)
}

func TestNewRootCommand_Flags(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"config", "log-level", "output", "verbose"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "table", cmd.PersistentFlags().Lookup("output").DefValue)

	run, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)
	for _, name := range []string{"data", "output-dir", "epochs", "no-publish", "save-checkpoints"} {
		assert.NotNil(t, run.Flags().Lookup(name), name)
	}

	serve, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "[conv,attention]", serve.Flags().Lookup("models").DefValue)
}

func TestVersionCmd(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "solbench "+Version)
	assert.Contains(t, out, "commit: "+GitCommit)
}

func TestUnknownOutputFormat(t *testing.T) {
	_, _, err := execute(t, "featurize", "-c", writeFile(t, "c.yaml", testConfigYAML), "-o", "xml", "CCO")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestGetCLIContext_Missing(t *testing.T) {
	cmd := &cobra.Command{}
	_, err := GetCLIContext(cmd)
	assert.Error(t, err)
}

func TestFeaturizeCmd_JSON(t *testing.T) {
	cfgPath := writeFile(t, "c.yaml", testConfigYAML)
	out, _, err := execute(t, "featurize", "-c", cfgPath, "-o", "json", "CCO", "C", "C(C")
	require.NoError(t, err)

	var report FeatureReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1024, report.NBits)
	require.Len(t, report.Molecules, 3)

	ethanol := report.Molecules[0]
	assert.Equal(t, 3, ethanol.Nodes)
	assert.Equal(t, 2, ethanol.Edges)
	assert.Positive(t, ethanol.OnBits)
	require.NotNil(t, ethanol.Similarity)
	assert.InDelta(t, 1.0, *ethanol.Similarity, 1e-12)

	assert.True(t, report.Molecules[1].Degenerate)
	assert.Equal(t, string(errors.ErrCodeMoleculeInvalidSMILES), report.Molecules[2].Code)
}

func TestFeaturizeCmd_Table(t *testing.T) {
	cfgPath := writeFile(t, "c.yaml", testConfigYAML)
	out, _, err := execute(t, "featurize", "-c", cfgPath, "--reference", "CCO", "CCO", "CCN")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "SMILES"))
	assert.Contains(t, lines[2], "1.000")
}

func TestFeaturizeCmd_RequiresArgs(t *testing.T) {
	_, _, err := execute(t, "featurize", "-c", writeFile(t, "c.yaml", testConfigYAML))
	assert.Error(t, err)
}

func TestRunCmd_EndToEnd(t *testing.T) {
	cfgPath := writeFile(t, "c.yaml", testConfigYAML)
	outDir := t.TempDir()

	out, _, err := execute(t, "run", "-c", cfgPath, "--data", toyCSV(t), "--output-dir", outDir, "--save-checkpoints")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 6)
	assert.True(t, strings.HasPrefix(lines[0], "Method"))
	for i, method := range reporting.MethodOrder {
		assert.True(t, strings.HasPrefix(lines[2+i], method), lines[2+i])
	}
	assert.Contains(t, out, "wrote ")

	for _, key := range []string{reporting.KeySummary, reporting.KeyComparison, reporting.KeyConvHistory, reporting.KeyAttenHistory} {
		_, err := os.Stat(filepath.Join(outDir, key))
		assert.NoError(t, err, key)
	}

	store, err := storage.NewLocalStore(outDir, "", logging.NewNopLogger())
	require.NoError(t, err)
	models, err := loadAvailableModels(context.Background(), store, nn.CPU, featurize.DefaultOptions(), []string{"conv", "gat"}, logging.NewNopLogger())
	require.NoError(t, err)
	assert.Len(t, models, 2)
	assert.Equal(t, "Atten. GNN", models[gnn.KindAttention].Name())

	wider := featurize.DefaultOptions()
	wider.NBits = 2048
	_, err = loadAvailableModels(context.Background(), store, nn.CPU, wider, []string{"conv"}, logging.NewNopLogger())
	assert.True(t, errors.IsCode(err, errors.ErrCodeModelConfigInvalid))
}

func TestRunCmd_JSONWithoutPublish(t *testing.T) {
	cfgPath := writeFile(t, "c.yaml", testConfigYAML)
	outDir := t.TempDir()

	out, _, err := execute(t, "run", "-c", cfgPath, "--data", toyCSV(t), "--output-dir", outDir, "--no-publish", "-o", "json")
	require.NoError(t, err)

	var summary struct {
		RunID  string               `json:"run_id"`
		Scores []reporting.BarEntry `json:"scores"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.NotEmpty(t, summary.RunID)
	require.Len(t, summary.Scores, 4)
	assert.Equal(t, reporting.MethodOrder[0], summary.Scores[0].Method)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadAvailableModels(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir(), "", logging.NewNopLogger())
	require.NoError(t, err)

	_, err = loadAvailableModels(context.Background(), store, nn.CPU, featurize.DefaultOptions(), []string{"conv"}, logging.NewNopLogger())
	assert.True(t, errors.IsCode(err, errors.ErrCodeArtifactNotFound))

	_, err = loadAvailableModels(context.Background(), store, nn.CPU, featurize.DefaultOptions(), []string{"mlp"}, logging.NewNopLogger())
	assert.True(t, errors.IsCode(err, errors.ErrCodeModelUnknownKind))
}

func TestFormatTable(t *testing.T) {
	out := FormatTable([]string{"Method", "Test MSE"}, [][]string{{"SVM", "1.2345"}, {"Random Forest", "0.9"}})
	assert.Equal(t,
		"Method         Test MSE\n"+
			"-------------  --------\n"+
			"SVM            1.2345  \n"+
			"Random Forest  0.9     \n", out)
	assert.Empty(t, FormatTable(nil, nil))
}

//Personal.AI order the ending
