package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/qbank-loader/internal/bank"
	"github.com/mind-engage/qbank-loader/internal/config"
	"github.com/mind-engage/qbank-loader/internal/db"
	"github.com/mind-engage/qbank-loader/internal/docx"
	"github.com/mind-engage/qbank-loader/internal/importer"
	"github.com/mind-engage/qbank-loader/internal/storage"
)

func main() {
	cfg, err := config.Resolve()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	runID := uuid.NewString()
	log.SetPrefix("qbankfill " + runID[:8] + " ")

	driver := cfg.Driver()
	dsn, err := cfg.DSN()
	if err != nil {
		log.Fatalf("dsn: %v", err)
	}

	// --- DB: fail fast before touching the documents ---
	ctx := context.Background()
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	dbh, err := db.Open(openCtx, driver, dsn)
	cancel()
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	if cfg.DBBootstrap {
		if err := db.EnsureSchema(ctx, dbh, driver, cfg.TypeRows()); err != nil {
			log.Fatalf("db bootstrap failed: %v", err)
		}
	}
	_ = dbh.Close()

	open := bank.Opener(db.Opener(driver, dsn))

	opts := []bank.AssemblerOption{bank.WithTypeMap(cfg.Types())}
	if cfg.AllowEmptyAnswer {
		opts = append(opts, bank.WithAllowEmptyAnswer())
	}

	var snaps storage.Store
	if cfg.ExportDir != "" {
		fs, err := storage.NewFSStore(cfg.ExportDir)
		if err != nil {
			log.Fatalf("export dir: %v", err)
		}
		snaps = fs
	}

	p := &importer.Pipeline{
		RunID:      runID,
		Read:       readDocx,
		Loader:     bank.NewLoader(open, driver),
		Verifier:   bank.NewVerifier(open, driver),
		Snapshots:  snaps,
		Options:    opts,
		SampleSize: cfg.SampleSize,
		Out:        os.Stdout,
	}

	log.Printf("starting (db=%s)", driver)
	fmt.Println("=== 开始解析C1C2驾照题库 ===")
	rep, err := p.Run(ctx, []importer.Bank{
		{Subject: bank.SubjectWritten, Path: cfg.WrittenBankPath},
		{Subject: bank.SubjectRoadRules, Path: cfg.RoadRulesBankPath},
	})
	for _, b := range rep.Banks {
		if b.SnapshotURL != "" {
			log.Printf("%s snapshot: %s", b.Subject, b.SnapshotURL)
		}
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
	fmt.Println("\n=== 题库填充+验证完成 ===")
}

func readDocx(path string) ([]string, error) {
	d, err := docx.Open(path)
	if err != nil {
		return nil, err
	}
	return d.Paragraphs(), nil
}
