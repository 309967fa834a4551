// cmd/historian drains the casino action audit queue from Redis and persists
// it to the casino_actions table in batches.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/jackc/pgx/v5"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/gianlucanapo/terrazzo-manager/internal/cache"
	"github.com/gianlucanapo/terrazzo-manager/internal/casino"
	"github.com/gianlucanapo/terrazzo-manager/internal/database"
)

type CLI struct {
	Queue     string        `help:"Redis list to drain" default:"terrazzo_casino_actions" env:"HISTORIAN_QUEUE_NAME"`
	BatchSize int           `help:"Actions per insert batch" default:"20" env:"HISTORIAN_BATCH_SIZE"`
	Flush     time.Duration `help:"Max time a batch may sit before flushing" default:"500ms" env:"HISTORIAN_FLUSH"`
	Verbose   bool          `short:"v" help:"Enable debug logging"`
}

// historian accumulates popped action records and flushes them to postgres
// either when the batch fills or on a timer.
type historian struct {
	queue     string
	batchSize int
	log       *logrus.Logger

	mu    sync.Mutex
	batch []casino.ActionRecord
}

func main() {
	var cli CLI
	kong.Parse(&cli)

	logger := logrus.New()
	if cli.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	database.ConnectDB()
	defer database.DB.Close()

	if err := cache.ConnectRedis(); err != nil {
		logger.Fatalf("redis connect failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &historian{
		queue:     cli.Queue,
		batchSize: cli.BatchSize,
		log:       logger,
		batch:     make([]casino.ActionRecord, 0, cli.BatchSize),
	}

	go h.drainLoop(ctx)
	go h.flushLoop(ctx, cli.Flush)

	logger.WithField("queue", cli.Queue).Info("historian started")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	<-sigs
	cancel()
	h.flush(context.Background())
	logger.Info("historian shutdown complete")
}

// drainLoop pops records off the Redis list. The short BLPop timeout keeps
// context cancellation responsive.
func (h *historian) drainLoop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		res, err := cache.Rdb.BLPop(ctx, 3*time.Second, h.queue).Result()
		if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
			continue
		}
		if err != nil {
			h.log.WithError(err).Error("blpop failed")
			time.Sleep(time.Second)
			continue
		}
		if len(res) < 2 {
			continue
		}

		var rec casino.ActionRecord
		if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
			h.log.WithError(err).Warn("dropping malformed action record")
			continue
		}
		h.append(ctx, rec)
	}
}

func (h *historian) append(ctx context.Context, rec casino.ActionRecord) {
	h.mu.Lock()
	h.batch = append(h.batch, rec)
	full := len(h.batch) >= h.batchSize
	h.mu.Unlock()

	if full {
		h.flush(ctx)
	}
}

func (h *historian) flushLoop(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.flush(ctx)
		}
	}
}

// flush writes the pending batch in one transaction.
func (h *historian) flush(ctx context.Context) {
	h.mu.Lock()
	if len(h.batch) == 0 {
		h.mu.Unlock()
		return
	}
	pending := make([]casino.ActionRecord, len(h.batch))
	copy(pending, h.batch)
	h.batch = h.batch[:0]
	h.mu.Unlock()

	err := pgx.BeginTxFunc(ctx, database.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range pending {
			if err := insertAction(ctx, tx, rec); err != nil {
				return fmt.Errorf("insert action: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		h.log.WithError(err).Error("flush failed")
		return
	}
	h.log.WithField("count", len(pending)).Debug("flushed actions")
}

func insertAction(ctx context.Context, tx pgx.Tx, rec casino.ActionRecord) error {
	detail, err := json.Marshal(rec.Detail)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO casino_actions (username, action, detail, happened_at)
		VALUES ($1, $2, $3, $4)`,
		rec.Username, rec.Action, detail, time.UnixMilli(rec.Timestamp))
	return err
}
