package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	adminapp "github.com/dmehra2102/order-fulfillment-console/internal/admin/application"
	"github.com/dmehra2102/order-fulfillment-console/internal/console"
	invapp "github.com/dmehra2102/order-fulfillment-console/internal/inventory/application"
	orchapp "github.com/dmehra2102/order-fulfillment-console/internal/orchestrator/application"
	payapp "github.com/dmehra2102/order-fulfillment-console/internal/payment/application"
	reportapp "github.com/dmehra2102/order-fulfillment-console/internal/reporting/application"
	"github.com/dmehra2102/order-fulfillment-console/internal/store"
	"github.com/dmehra2102/order-fulfillment-console/internal/store/infrastructure/flatfile"
	storekafka "github.com/dmehra2102/order-fulfillment-console/internal/store/infrastructure/kafka"
	storepg "github.com/dmehra2102/order-fulfillment-console/internal/store/infrastructure/postgres"
	"github.com/dmehra2102/order-fulfillment-console/pkg/idempotency"
	"github.com/dmehra2102/order-fulfillment-console/pkg/logging"
	"github.com/dmehra2102/order-fulfillment-console/pkg/outbox"
	"github.com/dmehra2102/order-fulfillment-console/pkg/shutdown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Configuration
	dataDir := env("DATA_DIR", "data")
	logFile := env("LOG_FILE", "app.log")
	logLevel := env("LOG_LEVEL", "info")
	kafkaAddr := env("KAFKA_ADDR", "")
	auditTopic := env("AUDIT_TOPIC", "fulfillment.audit")
	redisAddr := env("REDIS_ADDR", "")
	pgURL := env("PG_URL", "")
	importPath := env("IMPORT_FILE", filepath.Join(dataDir, "orders_import.json"))
	threshold, err := strconv.ParseInt(env("LOW_STOCK_THRESHOLD", strconv.Itoa(invapp.DefaultLowStockThreshold)), 10, 64)
	if err != nil {
		return fmt.Errorf("LOW_STOCK_THRESHOLD: %w", err)
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("data dir: %w", err)
	}

	// stdout belongs to the menu, so diagnostics go to a file.
	var logOut io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(filepath.Join(dataDir, logFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	log := logging.New(logOut, logLevel)

	ctx, cancel := shutdown.WithSignals(context.Background(), log)
	defer cancel()

	// Record store
	repo := flatfile.NewRepository(log, dataDir)
	st := store.New(log, repo)

	if pgURL != "" {
		pool, err := pgxpool.New(ctx, pgURL)
		if err != nil {
			return fmt.Errorf("pg connect: %w", err)
		}
		defer pool.Close()
		mirror := storepg.NewRepository(log, pool)
		if err := mirror.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("pg schema: %w", err)
		}
		st.WithMirror(mirror)
	}

	if err := st.Load(ctx); err != nil {
		var corrupt *store.CorruptError
		if !errors.As(err, &corrupt) {
			return err
		}
		fmt.Fprintf(os.Stdout, "Warning: %v\n", err)
	}

	journal := flatfile.NewJournal(repo)
	ledger := invapp.NewLedger(log, st)
	engine := orchapp.NewEngine(log, ledger, payapp.NewSimulator(log))
	fulfillment := orchapp.NewService(log, engine, st, journal).WithSeedReader(flatfile.ReadSeed)

	// Audit export
	var relay *outbox.Relay
	if kafkaAddr != "" {
		writer := storekafka.NewWriter([]string{kafkaAddr})
		defer writer.Close()

		dispatch := outbox.NewDispatcher(log, writer, auditTopic)
		if redisAddr != "" {
			rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
			defer rdb.Close()
			dispatch.WithDeduper(idempotency.NewStore(rdb, 24*time.Hour))
		}

		queue := flatfile.NewOutboxStore(log, repo)
		fulfillment.WithExporter(storekafka.NewAuditExporter(queue))
		relay = outbox.NewRelay(log, queue, dispatch, "fulfillment-console-relay")

		go func() {
			if err := relay.Run(ctx); err != nil {
				log.Error("relay stopped with error", "err", err)
			}
		}()
	}

	// A blocked stdin read is released by closing it on shutdown.
	go func() {
		<-ctx.Done()
		_ = os.Stdin.Close()
	}()

	c := console.New(log, os.Stdin, os.Stdout, console.Deps{
		Store:             st,
		Ledger:            ledger,
		Fulfillment:       fulfillment,
		Admins:            adminapp.NewService(log, st),
		Archiver:          reportapp.NewArchiver(log, st, journal),
		Reporter:          reportapp.NewReporter(log, st, journal),
		Receipts:          reportapp.NewReceipts(st, journal),
		Journal:           journal,
		ImportPath:        importPath,
		LowStockThreshold: threshold,
	})
	runErr := c.Run(ctx)

	if relay != nil {
		drainCtx, drainCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer drainCancel()
		if n, err := relay.Drain(drainCtx); err != nil {
			log.Warn("audit export not drained", "sent", n, "err", err)
		}
	}

	log.Info("fulfillment-console shutdown complete")
	return runErr
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
