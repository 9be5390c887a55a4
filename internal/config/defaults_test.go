package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultRadius, cfg.Featurizer.Radius)
	assert.Equal(t, 1024, cfg.Featurizer.NBits)
	assert.Equal(t, 600, cfg.Training.Epochs)
	assert.Equal(t, 64, cfg.Training.BatchSize)
	assert.Equal(t, 0.7, cfg.Split.TrainRatio)
	assert.Equal(t, SplitShared, cfg.Split.Mode)
	assert.Equal(t, []int{32, 64, 16}, cfg.GCN.Hidden)
	assert.Equal(t, []int{1, 2, 2}, cfg.GAT.Heads)
	assert.Empty(t, cfg.GCN.Heads)
	assert.Equal(t, 100, cfg.Classical.Forest.Trees)
	assert.Equal(t, "scale", cfg.Classical.SVR.Gamma)
	assert.Equal(t, StorageLocal, cfg.Storage.Backend)
	assert.Equal(t, "cpu", cfg.Device)
}

func TestApplyDefaults_LeavesZeroableFields(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Zero(t, cfg.Split.Seed)
	assert.Zero(t, cfg.Training.Seed)
	assert.Zero(t, cfg.Training.L1Coef)
	assert.Zero(t, cfg.GCN.Dropout)
	assert.Zero(t, cfg.GAT.Dropout)
	assert.Zero(t, cfg.Classical.Forest.Seed)
	require.NoError(t, cfg.Validate())
}

func TestNewDefaultConfig_ZeroableFields(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, int64(42), cfg.Split.Seed)
	assert.Equal(t, int64(42), cfg.Training.Seed)
	assert.Equal(t, int64(42), cfg.Classical.Forest.Seed)
	assert.Equal(t, 1e-4, cfg.Training.L1Coef)
	assert.Equal(t, 0.5, cfg.GCN.Dropout)
	assert.Equal(t, 0.3, cfg.GAT.Dropout)
}

func TestApplyDefaults_PreserveExistingValues(t *testing.T) {
	cfg := &Config{}
	cfg.Training.Epochs = 5
	cfg.GAT.Heads = []int{4, 4, 1}
	cfg.Split.Mode = SplitIndependent
	ApplyDefaults(cfg)

	assert.Equal(t, 5, cfg.Training.Epochs)
	assert.Equal(t, []int{4, 4, 1}, cfg.GAT.Heads)
	assert.Equal(t, SplitIndependent, cfg.Split.Mode)
}

func TestApplyDefaults_DoesNotAliasPackageSlices(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.GCN.Hidden[0] = 999
	assert.Equal(t, 32, DefaultGCNHidden[0])
}

func TestApplyDefaults_Nil(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

func TestNewDefaultConfig_Validates(t *testing.T) {
	require.NoError(t, NewDefaultConfig().Validate())
}

//Personal.AI order the ending
