// announce-indexer loads a crawled-announcements CSV into the shared
// vector collection served by /qna/. Each row becomes one or more
// overlapping chunks, embedded and persisted alongside the lecture stores.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"lecture-rag/internal/chromemdb"
	"lecture-rag/internal/config"
	"lecture-rag/internal/embedding"
	"lecture-rag/internal/indexing"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", "./configs/config.yaml", "Path to the config file")
	csvPath := flag.String("csv", "", "CSV file to index (defaults to storage.csv_path)")
	skipHeader := flag.Bool("skip-header", true, "Skip the first CSV row")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	path := *csvPath
	if path == "" {
		path = cfg.Storage.CSVPath
	}

	ctx := context.Background()
	if err := run(ctx, cfg, path, *skipHeader); err != nil {
		log.Fatal().Err(err).Msg("Error indexing announcements")
	}
}

func run(ctx context.Context, cfg *config.Config, csvPath string, skipHeader bool) error {
	file, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}
	if skipHeader && len(rows) > 0 {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return fmt.Errorf("no rows in %s", csvPath)
	}

	embedder, err := embedding.NewEmbedder(&cfg.LLM)
	if err != nil {
		return fmt.Errorf("init embedder: %w", err)
	}

	// one chunk list across all rows so the embeddings go out in one batch
	var chunks []string
	var ids []string
	for rowIdx, row := range rows {
		text := rowText(row)
		if text == "" {
			continue
		}
		for chunkIdx, chunk := range indexing.SplitText(text, cfg.Index.ChunkSize, cfg.Index.ChunkOverlap) {
			chunks = append(chunks, chunk)
			ids = append(ids, fmt.Sprintf("%s-%d-%d", cfg.Announce.Collection, rowIdx, chunkIdx))
		}
	}
	if len(chunks) == 0 {
		return fmt.Errorf("no indexable content in %s", csvPath)
	}

	vectors, err := embedding.EmbedTexts(ctx, embedder, chunks)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	store, err := chromemdb.NewStore(cfg.Announce.Dir)
	if err != nil {
		return err
	}
	if err := store.GetOrCreateCollection(cfg.Announce.Collection); err != nil {
		return err
	}

	docs := make([]chromem.Document, len(chunks))
	for i := range chunks {
		docs[i] = chromem.Document{ID: ids[i], Content: chunks[i], Embedding: vectors[i]}
	}
	if err := store.AddDocuments(ctx, docs); err != nil {
		return err
	}

	log.Info().
		Int("rows", len(rows)).
		Int("chunks", len(docs)).
		Str("collection", cfg.Announce.Collection).
		Msg("announcements indexed")
	return nil
}

// rowText joins a CSV row's non-empty cells; the crawler writes
// title/content/date/context columns but older files vary.
func rowText(row []string) string {
	var parts []string
	for _, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell != "" {
			parts = append(parts, cell)
		}
	}
	return strings.Join(parts, "\n")
}
