package main

import (
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

func upMigrations(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("clickhouse"); err != nil {
		return fmt.Errorf("can't set dialect for migrations: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("can't up migrations: %w", err)
	}

	return nil
}

// saveSnapshot persists one file's analysis: a summary row and one row
// per ranked neighborhood.
func saveSnapshot(db *sql.DB, runID string, timestamp time.Time, report *fileReport) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("can't begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	summaryStmt, err := tx.Prepare(`INSERT INTO market_summary
		(run_id, date_time, source, listings, price_mean, price_median, price_density_median, size_median, undervalued, overvalued)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("can't prepare summary SQL: %w", err)
	}

	_, err = summaryStmt.Exec(runID, timestamp.UTC(), report.Path,
		report.Summary.Count, report.Summary.PriceMean, report.Summary.PriceMedian,
		report.Summary.PriceDensityMedian, report.Summary.SizeMedian,
		report.Insights.UndervaluedCount, report.Insights.OvervaluedCount)
	if err != nil {
		return fmt.Errorf("can't write summary row: %w", err)
	}

	rankingStmt, err := tx.Prepare(`INSERT INTO market_ranking
		(run_id, date_time, source, neighborhood, listings, mean_price, mean_price_density, mean_size, affordability_score, efficiency_score, real_affordability_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("can't prepare ranking SQL: %w", err)
	}

	for _, row := range report.Ranking {
		_, err := rankingStmt.Exec(runID, timestamp.UTC(), report.Path,
			row.Neighborhood, row.Count, row.MeanPrice, row.MeanPriceDensity, row.MeanSize,
			row.AffordabilityScore, row.EfficiencyScore, row.RealAffordabilityScore)
		if err != nil {
			return fmt.Errorf("can't write ranking row: %w", err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("can't write snapshot data: %w", err)
	}

	return nil
}
