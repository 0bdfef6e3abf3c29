package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/avivro/yad2analyzer-go/internal/analysis"
	"github.com/avivro/yad2analyzer-go/internal/utils"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const sheetAppendBatchSize = 500

func appendRankingToSheet(credentialsFilePath string, spreadsheetId string, dataRange string, t time.Time, runID string, rankings []analysis.NeighborhoodRanking) error {
	ctx := context.Background()

	b, err := os.ReadFile(credentialsFilePath)
	if err != nil {
		return fmt.Errorf("can't read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(b, "https://www.googleapis.com/auth/spreadsheets")
	if err != nil {
		return fmt.Errorf("can't read JWT config from json: %w", err)
	}
	client := config.Client(ctx)

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return fmt.Errorf("can't create sheets service: %w", err)
	}

	rows := make([][]any, 0, len(rankings))
	for _, row := range rankings {
		rows = append(rows, []any{
			t.UTC().Format(time.DateTime),
			runID,
			row.Neighborhood,
			row.Count,
			row.MeanPrice,
			row.MeanPriceDensity,
			row.MeanSize,
			row.RealAffordabilityScore,
		})
	}

	for _, chunk := range utils.Chunks(rows, sheetAppendBatchSize) {
		vr := sheets.ValueRange{Values: chunk}

		_, err = srv.Spreadsheets.Values.Append(spreadsheetId, dataRange, &vr).ValueInputOption("USER_ENTERED").Do()
		if err != nil {
			return fmt.Errorf("can't write data to sheet: %w", err)
		}
	}

	return nil
}
