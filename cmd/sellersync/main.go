package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Dmitriyrevilov/seller-apis/internal/app"
	"github.com/Dmitriyrevilov/seller-apis/internal/config"
)

func main() {
	cfgPath := flag.String("config", config.DefaultConfigPath(), "path to config.json")
	once := flag.Bool("once", false, "run a single sync pass and exit")
	history := flag.Int("history", 0, "print the last N journaled runs and exit")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if *once {
		cfg.IntervalMinutes = 0
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("init error: %v", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *history > 0 {
		runs, err := a.History(ctx, *history)
		if err != nil {
			log.Fatalf("history error: %v", err)
		}
		for _, r := range runs {
			status := "ok"
			if r.Error != "" {
				status = r.Error
			}
			fmt.Printf("%s  %-12s offers=%d non_empty=%d prices=%d batches=%d+%d  %s\n",
				r.StartedAt.Format("2006-01-02 15:04:05"), r.Target,
				r.Offers, r.NonEmpty, r.Prices, r.StockBatches, r.PriceBatches, status)
		}
		return
	}

	if err := a.Run(ctx); err != nil {
		a.Close()
		os.Exit(1)
	}
}
