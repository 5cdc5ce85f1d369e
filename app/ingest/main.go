package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/turnuplagos/turnup-backend/config"
	"github.com/turnuplagos/turnup-backend/internal/providers/llm"
	pgrepo "github.com/turnuplagos/turnup-backend/internal/repositories/postgres"
	"github.com/turnuplagos/turnup-backend/internal/services"
)

// Loads .txt/.md files from a docs folder into the ai_documents table as
// vector embeddings.
//
//	ingest -dir ./docs          # add to the existing knowledge base
//	ingest -dir ./docs -clear   # wipe and rebuild
func main() {
	dir := flag.String("dir", "docs", "directory of .txt/.md files to ingest")
	clear := flag.Bool("clear", false, "delete existing documents before ingesting")
	flag.Parse()

	_ = godotenv.Load()

	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}

	provider, err := llm.NewOpenAI(os.Getenv("OPENAI_API_KEY"), "")
	if err != nil {
		log.Fatalf("OpenAI init error: %v", err)
	}

	docRepo := pgrepo.NewDocumentRepo(config.PostgresDB)
	ingest := services.NewIngestService(provider, docRepo)

	summary, err := ingest.IngestDirectory(context.Background(), *dir, *clear)
	if err != nil {
		color.Red("Ingestion failed after %d chunk(s): %v", summary.Chunks, err)
		color.Yellow("Re-run with -clear to rebuild a consistent knowledge base.")
		os.Exit(1)
	}

	color.Green("Ingested %d chunk(s) from %d file(s)", summary.Chunks, summary.Files)
	color.Cyan("Your knowledge base is ready.")
}
