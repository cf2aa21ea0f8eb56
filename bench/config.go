package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// benchConfig is the workload shared by every subcommand. A YAML file given with
// --config overlays the defaults field by field.
type benchConfig struct {
	Dim       int    `yaml:"dim"`
	NNZ       int    `yaml:"nnz"`
	Seed      uint64 `yaml:"seed"`
	K         int    `yaml:"k"`
	Queries   int    `yaml:"queries"`
	ReportDir string `yaml:"report_dir"`

	Sweep struct {
		Vectors       int   `yaml:"vectors"`
		BranchFactors []int `yaml:"branch_factors"`
	} `yaml:"sweep"`

	Scale struct {
		Sizes   []int `yaml:"sizes"`
		Inserts int   `yaml:"inserts"`
	} `yaml:"scale"`

	Concurrency struct {
		Vectors    int   `yaml:"vectors"`
		NumIndexes int   `yaml:"num_indexes"`
		Levels     []int `yaml:"levels"`
		Requests   int   `yaml:"requests"`
	} `yaml:"concurrency"`

	Recall struct {
		Vectors    int   `yaml:"vectors"`
		NumIndexes []int `yaml:"num_indexes"`
		KClusters  []int `yaml:"k_clusters"`
	} `yaml:"recall"`
}

func defaultBenchConfig() benchConfig {
	var c benchConfig
	c.Dim = 5000
	c.NNZ = 30
	c.Seed = 42
	c.K = 10
	c.Queries = 200
	c.ReportDir = "report"

	c.Sweep.Vectors = 10_000
	c.Sweep.BranchFactors = []int{10, 30, 100, 300}

	c.Scale.Sizes = []int{1_000, 10_000, 50_000}
	c.Scale.Inserts = 100

	c.Concurrency.Vectors = 20_000
	c.Concurrency.NumIndexes = 2
	c.Concurrency.Levels = []int{1, 4, 8, 16, 32}
	c.Concurrency.Requests = 1000

	c.Recall.Vectors = 10_000
	c.Recall.NumIndexes = []int{1, 2, 4}
	c.Recall.KClusters = []int{1, 2, 5}
	return c
}

func loadBenchConfig(path string) (benchConfig, error) {
	cfg := defaultBenchConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c benchConfig) validate() error {
	var errs []error
	if c.Dim <= 0 {
		errs = append(errs, fmt.Errorf("dim must be positive, got %d", c.Dim))
	}
	if c.NNZ <= 0 || c.NNZ > c.Dim {
		errs = append(errs, fmt.Errorf("nnz must be in [1, dim], got %d", c.NNZ))
	}
	if c.K <= 0 {
		errs = append(errs, fmt.Errorf("k must be positive, got %d", c.K))
	}
	if c.Queries <= 0 {
		errs = append(errs, fmt.Errorf("queries must be positive, got %d", c.Queries))
	}
	for _, n := range c.Recall.NumIndexes {
		if n <= 0 {
			errs = append(errs, fmt.Errorf("recall.num_indexes entries must be positive, got %d", n))
		}
	}
	return errors.Join(errs...)
}
