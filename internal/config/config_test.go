package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		substr string
	}{
		{"log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"delimiter", func(c *Config) { c.Data.Delimiter = ";;" }, "data.delimiter"},
		{"n bits", func(c *Config) { c.Featurizer.NBits = 4 }, "featurizer.n_bits"},
		{"ratio", func(c *Config) { c.Split.TrainRatio = 1 }, "split.train_ratio"},
		{"mode", func(c *Config) { c.Split.Mode = "stratified" }, "split.mode"},
		{"epochs", func(c *Config) { c.Training.Epochs = -1 }, "training.epochs"},
		{"l1", func(c *Config) { c.Training.L1Coef = -1 }, "training.l1_coef"},
		{"dropout", func(c *Config) { c.GCN.Dropout = 1 }, "gcn.dropout"},
		{"hidden", func(c *Config) { c.GAT.Hidden = []int{8} }, "gat.hidden"},
		{"heads", func(c *Config) { c.GAT.Heads = []int{1, 2} }, "gat.heads"},
		{"svr c", func(c *Config) { c.Classical.SVR.C = -1 }, "classical.svr.c"},
		{"max features", func(c *Config) { c.Classical.Forest.MaxFeatures = 2 }, "max_features"},
		{"backend", func(c *Config) { c.Storage.Backend = "gcs" }, "storage.backend"},
		{"minio", func(c *Config) { c.Storage.Backend = StorageMinIO; c.Storage.MinIO.Endpoint = "" }, "storage.minio"},
		{"cache", func(c *Config) { c.Cache.Enabled = true; c.Cache.Redis.Addr = "" }, "cache.redis.addr"},
		{"port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"server mode", func(c *Config) { c.Server.Mode = "prod" }, "server.mode"},
		{"device", func(c *Config) { c.Device = "" }, "device"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tc.substr)
			}
		})
	}
}

func TestValidate_AcceptsMinIOBackend(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Storage.Backend = StorageMinIO
	cfg.Storage.MinIO.Endpoint = "localhost:9000"
	assert.NoError(t, cfg.Validate())
}

//Personal.AI order the ending
