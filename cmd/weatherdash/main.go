package main

import (
	"bytes"
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/lox/weatherdash/internal/api"
	"github.com/lox/weatherdash/internal/ingest"
	"github.com/lox/weatherdash/internal/models"
	"github.com/lox/weatherdash/internal/store"
)

type CLI struct {
	EnvFile kongdotenv.ENVFileConfig `kong:"optional,name=env-file,default=.env,help='Path to a .env file with environment overrides.'"`

	Port        string        `help:"HTTP server port." default:"8080" env:"PORT"`
	DB          string        `help:"SQLite database path; :memory: keeps uploads in process memory." default:":memory:" env:"WEATHERDASH_DB"`
	Dataset     string        `help:"Dataset preloaded for sessions without an upload (path, http(s):// or ftp:// URL)." env:"WEATHERDASH_DATASET"`
	MaxUploadMB int64         `name:"max-upload-mb" help:"Largest accepted upload in megabytes." default:"32" env:"WEATHERDASH_MAX_UPLOAD_MB"`
	SessionTTL  time.Duration `name:"session-ttl" help:"How long session uploads are retained." default:"24h" env:"WEATHERDASH_SESSION_TTL"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("weatherdash"),
		kong.Description("Weather CSV analysis dashboard."),
		kong.UsageOnError(),
	)

	db, err := store.Open(cli.DB)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("database migrated")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cli.Dataset != "" {
		if err := preload(ctx, st, cli.Dataset); err != nil {
			log.Fatalf("preload dataset: %v", err)
		}
	}

	cfg := api.DefaultConfig()
	cfg.Port = cli.Port
	cfg.MaxUploadBytes = cli.MaxUploadMB << 20
	cfg.SessionTTL = cli.SessionTTL
	server := api.NewServer(st, cfg)

	log.Printf("starting server on :%s", cli.Port)
	if err := server.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// preload fetches source, checks that it parses and stores it as the dataset
// shown to sessions that have not uploaded their own.
func preload(ctx context.Context, st *store.Store, source string) error {
	content, name, err := ingest.NewFetcher().Fetch(ctx, source)
	if err != nil {
		return err
	}
	table, err := ingest.ParseCSV(bytes.NewReader(content))
	if err != nil {
		return err
	}
	if _, err := st.SaveDataset(models.Dataset{
		SessionID: store.DefaultSession,
		Filename:  name,
		Content:   content,
	}); err != nil {
		return err
	}
	log.Printf("loaded %s (%d rows)", name, table.Len())
	return nil
}
