package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"risk-insight/api"
	"risk-insight/auth"
	"risk-insight/config"
	"risk-insight/logging"
	"risk-insight/pipeline"
	"risk-insight/scheduler"
	"risk-insight/static"
	"risk-insight/store"
	"risk-insight/utils"
	"risk-insight/worker"
)

var (
	cfg     *config.Config
	rcfg    *config.ReportConfig
	users   *auth.UsersFile
	loggers []*logging.Logger
)

func main() {
	utils.LogToFile("api.log")
	godotenv.Load()
	loadEverything()

	var history *store.History
	if cfg.HistoryDB != "" {
		var err error
		history, err = store.OpenHistory(cfg.HistoryDB)
		if err != nil {
			log.Fatalf("Failed history db: %v", err)
		}
		defer history.Close()
	}

	apiKey := os.Getenv("DUNE_API_KEY")
	pool := worker.StartReportWorkers(cfg.Workers, cfg, rcfg, apiKey, history, loggers[2])

	mux := http.NewServeMux()
	api.RegisterHandlers(mux, cfg, rcfg, users, pool, history, loggers[0], loggers[1])
	static.RegisterStaticHandler(mux, cfg, loggers[0])

	startScheduler(history)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGHUP)
	go func() {
		for range sigs {
			log.Println("Reloading configs...")
			loadEverything()
		}
	}()

	log.Printf("Server started listening on %s ...", cfg.Server.Listen)
	log.Fatal(api.StartServer(cfg.Server.Listen, mux))
}

// startScheduler lance la génération planifiée. Cron invalide = arrêt
// immédiat, pas de daemon qui tourne sans jamais produire.
func startScheduler(history *store.History) {
	runScheduled := func() error {
		apiKey := os.Getenv("DUNE_API_KEY")
		req := pipeline.Request{APIKey: apiKey, Sample: apiKey == ""}
		result, err := pipeline.Run(req, rcfg, cfg.Server.OutputDir, loggers[2], nil)
		if err != nil {
			return err
		}
		if history != nil {
			history.Add(store.Entry{
				ID:        uuid.NewString()[:8],
				Status:    "done",
				Filename:  filepath.Base(result.Path),
				SizeBytes: result.Size,
				CreatedAt: time.Now(),
			})
		}
		return nil
	}

	loop, err := scheduler.NewLoop(
		cfg.Scheduler.Cron,
		time.Duration(cfg.Scheduler.PollIntervalSeconds)*time.Second,
		loggers[2],
		runScheduled,
	)
	if err != nil {
		log.Fatalf("Invalid scheduler cron: %v", err)
	}
	go loop.Start(make(chan struct{}))
}

func loadEverything() {
	var err error
	cfg, err = config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed config.yaml: %v", err)
	}
	rcfg, err = config.LoadReportConfig("report.yaml")
	if err != nil {
		log.Fatalf("Failed report.yaml: %v", err)
	}
	if cfg.Auth.Enabled && (cfg.Auth.UserBackend == "" || cfg.Auth.UserBackend == "file") {
		users, err = auth.LoadUsers(cfg.Auth.UserFile)
		if err != nil {
			log.Fatalf("Failed users.yaml: %v", err)
		}
	}
	os.MkdirAll(cfg.Server.LogDir, 0755)
	os.MkdirAll(cfg.Server.OutputDir, 0755)
	loggers = []*logging.Logger{
		logging.NewLoggerOrDie(cfg.Server.LogDir, "access.log"),
		logging.NewLoggerOrDie(cfg.Server.LogDir, "login.log"),
		logging.NewLoggerOrDie(cfg.Server.LogDir, "report.log"),
	}
}
