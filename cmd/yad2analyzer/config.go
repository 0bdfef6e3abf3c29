package main

import (
	"fmt"
	"os"

	"github.com/avivro/yad2analyzer-go/internal/analysis"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Analyzer struct {
		MaxWorkers   int `yaml:"max_workers"`
		BestDeals    int `yaml:"best_deals"`
		OutlierSweep int `yaml:"outlier_sweep_workers"`
	} `yaml:"analyzer"`
	Filter struct {
		PriceRange           []float64 `yaml:"price_range"`
		SizeRange            []float64 `yaml:"size_range"`
		RoomRange            []float64 `yaml:"room_range"`
		FloorRange           []int     `yaml:"floor_range"`
		Neighborhood         string    `yaml:"neighborhood"`
		ExcludeNeighborhoods []string  `yaml:"exclude_neighborhoods"`
		Condition            string    `yaml:"condition"`
		AdType               string    `yaml:"ad_type"`
	} `yaml:"filter"`
	Database struct {
		Address  string `yaml:"address"`
		Database string `yaml:"database"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"database"`
	Sheets struct {
		CredentialsFile string `yaml:"credentials_file"`
		SpreadsheetID   string `yaml:"spreadsheet_id"`
		DataRange       string `yaml:"data_range"`
	} `yaml:"sheets"`
}

func newConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("can't open config file: %w", err)
	}
	defer file.Close()

	d := yaml.NewDecoder(file)

	if err := d.Decode(&config); err != nil {
		return nil, fmt.Errorf("can't parse config file: %w", err)
	}

	if config.Analyzer.MaxWorkers <= 0 {
		config.Analyzer.MaxWorkers = 2
	}
	if config.Analyzer.BestDeals <= 0 {
		config.Analyzer.BestDeals = 10
	}
	if config.Analyzer.OutlierSweep <= 0 {
		config.Analyzer.OutlierSweep = 4
	}

	return config, nil
}

func (c *Config) filterSpec() analysis.FilterSpecification {
	spec := analysis.FilterSpecification{
		Neighborhood:         c.Filter.Neighborhood,
		ExcludeNeighborhoods: c.Filter.ExcludeNeighborhoods,
		Condition:            c.Filter.Condition,
		AdType:               c.Filter.AdType,
	}

	if r := c.Filter.PriceRange; len(r) == 2 {
		spec.PriceRange = &analysis.Range{Min: r[0], Max: r[1]}
	}
	if r := c.Filter.SizeRange; len(r) == 2 {
		spec.SizeRange = &analysis.Range{Min: r[0], Max: r[1]}
	}
	if r := c.Filter.RoomRange; len(r) == 2 {
		spec.RoomRange = &analysis.Range{Min: r[0], Max: r[1]}
	}
	if r := c.Filter.FloorRange; len(r) == 2 {
		spec.FloorRange = &analysis.IntRange{Min: r[0], Max: r[1]}
	}

	return spec
}
