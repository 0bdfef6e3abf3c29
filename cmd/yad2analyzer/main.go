package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/avivro/yad2analyzer-go/internal/analysis"
	"github.com/avivro/yad2analyzer-go/internal/geo"
	"github.com/avivro/yad2analyzer-go/internal/listing"
	"github.com/avivro/yad2analyzer-go/internal/utils"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type fileReport struct {
	Path          string
	Summary       analysis.SummaryStatistics
	Distribution  analysis.DistributionStats
	Medians       analysis.MarketMedians
	ValueCounts   map[listing.ValueCategory]int
	BestDeals     listing.ListingSet
	Ranking       []analysis.NeighborhoodRanking
	Insights      analysis.Insights
	OutlierCounts map[string]int
}

type runner struct {
	cfg       *Config
	engineCfg analysis.EngineConfig
	area      string

	filter *analysis.PropertyFilterEngine
	stats  *analysis.StatisticalCalculator
	value  *analysis.ValueAnalyzer
	market *analysis.MarketAnalyzer
}

func newRunner(cfg *Config, engineCfg analysis.EngineConfig, area string) *runner {
	return &runner{
		cfg:       cfg,
		engineCfg: engineCfg,
		area:      area,
		filter:    analysis.NewPropertyFilterEngine(engineCfg),
		stats:     analysis.NewStatisticalCalculator(engineCfg),
		value:     analysis.NewValueAnalyzer(engineCfg),
		market:    analysis.NewMarketAnalyzer(engineCfg),
	}
}

type outlierJob struct {
	field  string
	method string
}

// analyzeFile runs the full pipeline over one listings dump. The engine
// components are pure over immutable inputs, so the analyses run
// concurrently over the same filtered snapshot.
func (r *runner) analyzeFile(path string) (*fileReport, error) {
	set, err := listing.LoadFile(path, r.engineCfg.Band())
	if err != nil {
		return nil, err
	}

	if r.area != "" {
		set, err = geo.FilterWithinGeoJSON(r.area, set)
		if err != nil {
			return nil, err
		}
	}

	filtered := r.filter.Apply(set, r.cfg.filterSpec())

	report := &fileReport{Path: path}

	var g errgroup.Group

	g.Go(func() error {
		report.Summary = r.stats.Summarize(filtered)
		report.Distribution = r.stats.PriceDistribution(filtered)
		return nil
	})

	g.Go(func() error {
		report.Medians = r.value.MarketMedians(filtered)
		report.ValueCounts = r.value.ValueDistribution(filtered)
		report.BestDeals = r.value.BestDeals(filtered, r.cfg.Analyzer.BestDeals)
		return nil
	})

	g.Go(func() error {
		report.Ranking = r.market.AnalyzeNeighborhoods(filtered)
		return nil
	})

	g.Go(func() error {
		report.Insights = r.market.GenerateInsights(filtered)
		return nil
	})

	g.Go(func() error {
		counts, err := r.outlierSweep(filtered)
		if err != nil {
			return err
		}
		report.OutlierCounts = counts
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return report, nil
}

// outlierSweep counts outliers for every field/method pair.
func (r *runner) outlierSweep(set listing.ListingSet) (map[string]int, error) {
	fields := []string{analysis.FieldPrice, analysis.FieldSize, analysis.FieldPriceDensity}
	methods := []string{analysis.MethodIQR, analysis.MethodZScore, analysis.MethodModifiedZScore}

	jobs := make([]outlierJob, 0, len(fields)*len(methods))
	for _, field := range fields {
		for _, method := range methods {
			jobs = append(jobs, outlierJob{field: field, method: method})
		}
	}

	pool := utils.NewWorkerPool(func(job outlierJob) (int, error) {
		count := 0
		for _, flagged := range r.stats.DetectOutliers(set, job.field, job.method) {
			if flagged {
				count++
			}
		}
		return count, nil
	}, r.cfg.Analyzer.OutlierSweep)

	counts, err := pool.Map(context.Background(), jobs)
	if err != nil {
		return nil, err
	}

	out := make(map[string]int, len(jobs))
	for i, job := range jobs {
		out[job.field+"/"+job.method] = counts[i]
	}

	return out, nil
}

// splitFileList splits a comma-separated file list, tolerating spaces
// around the commas and dropping empty entries.
func splitFileList(s string) []string {
	parts := strings.Split(s, ",")

	files := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			files = append(files, trimmed)
		}
	}
	return files
}

func main() {
	var configFilePath string
	flag.StringVar(&configFilePath, "c", "config.yaml", "config file path")

	var listingFilePaths string
	flag.StringVar(&listingFilePaths, "f", "listings.json", "comma-separated listing dump files")

	var areaFilePath string
	flag.StringVar(&areaFilePath, "a", "", "geojson area file path (optional)")

	flag.Parse()

	cfg, err := newConfig(configFilePath)
	if err != nil {
		log.Fatalf("can't read config: %s", err)
	}

	area := ""
	if areaFilePath != "" {
		geojson, err := os.ReadFile(areaFilePath)
		if err != nil {
			log.Fatalf("can't read area file: %s", err)
		}
		area = string(geojson)
	}

	run := newRunner(cfg, analysis.DefaultEngineConfig(), area)

	files := splitFileList(listingFilePaths)
	if len(files) == 0 {
		log.Fatal("no listing files given")
	}

	pool := utils.NewWorkerPool(run.analyzeFile, cfg.Analyzer.MaxWorkers)
	pool.OnProgress(func(current, total int) {
		log.Printf("analyze progress: %d/%d files", current+1, total)
	})

	reports, err := pool.Map(context.Background(), files)
	if err != nil {
		log.Fatalf("can't analyze listings: %s", err)
	}

	for _, report := range reports {
		log.Printf("%s: %d listings, median price %.0f (%.0f/m²), %d neighborhoods ranked, %d best deals, %d undervalued",
			report.Path, report.Summary.Count, report.Medians.Price, report.Medians.PriceDensity,
			len(report.Ranking), len(report.BestDeals), report.Insights.UndervaluedCount)
	}

	runID := uuid.NewString()
	now := time.Now()

	if cfg.Database.Address != "" {
		db := clickhouse.OpenDB(&clickhouse.Options{
			Addr: []string{cfg.Database.Address},
			Auth: clickhouse.Auth{
				Database: cfg.Database.Database,
				Username: cfg.Database.Username,
				Password: cfg.Database.Password,
			},
		})

		if err := upMigrations(db); err != nil {
			log.Fatalf("can't up migrations: %s", err)
		}

		for _, report := range reports {
			if err := saveSnapshot(db, runID, now, report); err != nil {
				log.Fatalf("can't save snapshot: %s", err)
			}
		}

		log.Println("analysis snapshots saved")
	}

	if cfg.Sheets.SpreadsheetID != "" {
		for _, report := range reports {
			err := appendRankingToSheet(cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID,
				cfg.Sheets.DataRange, now, runID, report.Ranking)
			if err != nil {
				log.Fatalf("can't export ranking to sheet: %s", err)
			}
		}

		log.Println("rankings exported to sheet")
	}
}
