package main

import (
	"context"
	"errors"
	"flag"
	"log"
	nethttp "net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/A-Ariannejad/KayaScraper/internal/api"
	"github.com/A-Ariannejad/KayaScraper/internal/config"
	"github.com/A-Ariannejad/KayaScraper/internal/ingest"
	"github.com/A-Ariannejad/KayaScraper/internal/ingest/store"
	http "github.com/A-Ariannejad/KayaScraper/internal/server"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	importJobs := flag.String("import-jobs", "", "import skills from a jobs.json file and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// adapters
	pg, err := store.New(ctx, cfg.BuildDSN())
	if err != nil {
		log.Fatalf("postgres init: %v", err)
	}
	defer pg.Close()

	if *importJobs != "" {
		n, err := ingest.ImportJobsFile(ctx, pg, *importJobs)
		if err != nil {
			log.Fatalf("import jobs: %v", err)
		}
		log.Printf("imported %d new jobs", n)
		return
	}

	col := ingest.NewCollector(cfg.SourceURL, cfg.UserAgent, cfg.HTTPTimeout)

	// service
	svc := ingest.New(pg, col, pg, skillsOverride(flag.Args()), nil)

	// api facade + http server
	app := api.New(svc)
	s := http.New(app)
	go func() {
		log.Printf("listening on %s", cfg.ListenAddr)
		if err := s.ListenAndServe(ctx, cfg.ListenAddr); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Printf("http server: %v", err)
		}
	}()

	// poll loop owns the foreground; only a signal ends it
	if err := svc.Run(ctx); err != nil {
		log.Printf("received signal, shutting down: %v", err)
	}
}

// skillsOverride resolves the ad-hoc skill selection: KAYA_SKILLS env first,
// then bare integer CLI args. Invalid values are ignored with a warning so a
// typo cannot take the poller down.
func skillsOverride(args []string) []int {
	if v := os.Getenv("KAYA_SKILLS"); v != "" {
		ids, err := config.ParseSkillList(strings.Split(v, ","))
		if err != nil {
			log.Printf("invalid KAYA_SKILLS (must be comma-separated integers), ignoring: %v", err)
		} else if len(ids) > 0 {
			return ids
		}
	}
	if len(args) > 0 {
		ids, err := config.ParseSkillList(args)
		if err != nil {
			log.Printf("invalid CLI skills (must be integers), ignoring: %v", err)
		} else {
			return ids
		}
	}
	return nil
}
