package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `model: facebook/bart-large
train: data/amr/train/*.txt
dev: data/amr/dev/*.txt
batch_size: 500
epochs: 30
accum_steps: 10
learning_rate: 0.00005
weight_decay: 0.004
dropout: 0.25
attention_dropout: 0.0
scheduler: cosine
warmup_steps: 1
training_steps: 250000
seed: 42
remove_longer_than: 1024
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir, err := ioutil.TempDir("", "spring-config")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "facebook/bart-large", cfg.Model)
	assert.Equal(t, 500, cfg.BatchSize)
	assert.Equal(t, "cosine", cfg.Scheduler)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, 1024, cfg.RemoveLongerThan)
	assert.Equal(t, 10, cfg.AccumulationSteps)
}

func TestLoadUnknownKey(t *testing.T) {
	_, err := Load(writeConfig(t, "train: x\nbatch_size: 10\nbatch_szie: 20\n"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tcs := []struct {
		name string
		mod  func(*Config)
		ok   bool
	}{
		{"valid", func(c *Config) {}, true},
		{"zero budget", func(c *Config) { c.BatchSize = 0 }, false},
		{"negative budget", func(c *Config) { c.BatchSize = -100 }, false},
		{"no train corpus", func(c *Config) { c.Train = "" }, false},
		{"bad scheduler", func(c *Config) { c.Scheduler = "linear" }, false},
		{"empty scheduler", func(c *Config) { c.Scheduler = "" }, true},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{Train: "data/*.txt", BatchSize: 500, Scheduler: "constant"}
			tc.mod(&cfg)
			err := cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
