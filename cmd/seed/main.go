package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/yungbote/assetpm-backend/internal/data/db"
	"github.com/yungbote/assetpm-backend/internal/data/seed"
	"github.com/yungbote/assetpm-backend/internal/platform/logger"
)

func main() {
	path := flag.String("file", "", "YAML fixture to load")
	flag.Parse()
	if *path == "" {
		fmt.Fprintln(os.Stderr, "usage: seed -file fixture.yaml")
		os.Exit(2)
	}

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log, *path); err != nil {
		log.Error("Seed failed", "error", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *logger.Logger, path string) error {
	fh, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	fixture, err := seed.Decode(fh)
	if err != nil {
		return err
	}

	svc, err := db.NewService(db.ConfigFromEnv(log), log)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer svc.Close()
	if err := db.AutoMigrateAll(svc.DB()); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	sum, err := seed.NewLoader(svc.DB(), log).Load(context.Background(), fixture)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d categories, %d checklist items, %d assets, %d events\n", sum.Categories, sum.Checklist, sum.Assets, sum.Events)
	return nil
}
