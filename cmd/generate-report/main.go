package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"risk-insight/config"
	"risk-insight/logging"
	"risk-insight/pipeline"
	"risk-insight/scheduler"
	"risk-insight/utils"
)

func main() {
	sample := flag.Bool("sample", false, "use built-in sample data instead of the Dune API")
	output := flag.String("output", "", "output file path (default: dated file in the configured output dir)")
	apiKey := flag.String("api-key", "", "Dune API key (default: DUNE_API_KEY from env or .env)")
	format := flag.String("format", "pdf", "output format: pdf, html or xlsx")
	vaults := flag.String("vaults", "", "comma separated vault names (default: all configured vaults)")
	cron := flag.String("cron", "", "run on this cron schedule instead of once")
	now := flag.Bool("now", false, "with -cron, run a report immediately then follow the schedule")
	flag.Parse()

	godotenv.Load()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed config.yaml: %v", err)
	}
	rcfg, err := config.LoadReportConfig("report.yaml")
	if err != nil {
		log.Fatalf("Failed report.yaml: %v", err)
	}
	os.MkdirAll(cfg.Server.LogDir, 0755)
	logger := logging.NewLoggerOrDie(cfg.Server.LogDir, "report.log")
	defer logger.Close()

	key := *apiKey
	if key == "" {
		key = os.Getenv("DUNE_API_KEY")
	}
	if !*sample && key == "" {
		entered, err := utils.PromptSecret("Dune API key")
		if err != nil || entered == "" {
			log.Fatal("A Dune API key is required without -sample (set DUNE_API_KEY or pass -api-key)")
		}
		key = entered
	}

	var vaultNames []string
	if *vaults != "" {
		for _, name := range strings.Split(*vaults, ",") {
			if name = strings.TrimSpace(name); name != "" {
				vaultNames = append(vaultNames, name)
			}
		}
	}

	req := pipeline.Request{
		Sample:     *sample,
		APIKey:     key,
		Vaults:     vaultNames,
		Format:     *format,
		OutputPath: *output,
	}

	run := func() error {
		result, err := pipeline.Run(req, rcfg, cfg.Server.OutputDir, logger, func(msg string) {
			fmt.Println("  " + msg)
		})
		if err != nil {
			return err
		}
		fmt.Printf("Report written: %s (%d bytes)\n", result.Path, result.Size)
		return nil
	}

	fmt.Println("=== DeFi Lending Risk Report ===")

	if *cron == "" {
		if err := run(); err != nil {
			log.Fatalf("Report generation failed: %v", err)
		}
		return
	}

	loop, err := scheduler.NewLoop(*cron, time.Duration(cfg.Scheduler.PollIntervalSeconds)*time.Second, logger, run)
	if err != nil {
		log.Fatalf("Invalid cron expression: %v", err)
	}
	if *now {
		if err := run(); err != nil {
			log.Printf("Initial report failed: %v", err)
		}
	}
	fmt.Printf("Scheduler running, cron=%q. Ctrl-C to stop.\n", *cron)
	loop.Start(make(chan struct{}))
}
