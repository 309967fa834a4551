package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/gianlucanapo/terrazzo-manager/internal/auth"
	"github.com/gianlucanapo/terrazzo-manager/internal/cache"
	"github.com/gianlucanapo/terrazzo-manager/internal/casino"
	"github.com/gianlucanapo/terrazzo-manager/internal/database"
	"github.com/gianlucanapo/terrazzo-manager/internal/handlers"
	"github.com/gianlucanapo/terrazzo-manager/internal/middleware"
	"github.com/gianlucanapo/terrazzo-manager/internal/stats"
	"github.com/gianlucanapo/terrazzo-manager/internal/weather"
)

type CLI struct {
	Port      string `short:"p" help:"Port to listen on" default:"8080" env:"PORT"`
	CasinoDB  string `help:"Path to the casino sqlite state file" default:"terrazzo_casino.db" env:"CASINO_DB"`
	NoRedis   bool   `help:"Disable the casino action audit queue"`
	NoCleanup bool   `help:"Disable the hourly past-slot cleanup"`
	Verbose   bool   `short:"v" help:"Enable debug logging"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli)

	logger := logrus.New()
	if cli.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	if err := auth.Init(); err != nil {
		log.Fatalf("auth init failed: %v", err)
	}

	database.ConnectDB()
	defer database.DB.Close()
	if err := database.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("schema setup failed: %v", err)
	}

	// Casino table state lives in sqlite so a restart resumes the round.
	repo, err := casino.NewSQLiteRepository(cli.CasinoDB)
	if err != nil {
		log.Fatalf("failed to open casino state db: %v", err)
	}
	defer repo.Close()

	table, err := casino.NewTableService(context.Background(), repo, logger)
	if err != nil {
		log.Fatalf("failed to restore casino table: %v", err)
	}

	if !cli.NoRedis {
		if err := cache.ConnectRedis(); err != nil {
			logger.WithError(err).Warn("redis unavailable, casino audit queue disabled")
		} else {
			table.PublishAction = cache.PublishTableAction
		}
	}

	indexer, err := stats.NewIndexerFromEnv(logger)
	if err != nil {
		log.Fatalf("stats indexer init failed: %v", err)
	}
	if indexer != nil {
		table.OnRoundEnd = indexer.IndexRound
	}

	if !cli.NoCleanup {
		go cleanupLoop(logger)
	}

	wx := weather.NewClient()
	ch := handlers.NewCasinoHandlers(table)
	logged := middleware.LogMiddleware(logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/", handlers.PingHandler)

	mux.HandleFunc("/user/create", handlers.CreateUserHandler)
	mux.HandleFunc("/user/login", handlers.LoginHandler)

	mux.Handle("/slots", logged(http.HandlerFunc(handlers.SlotsHandler)))
	mux.Handle("/slots/next", logged(http.HandlerFunc(handlers.NextSlotHandler)))
	mux.Handle("/slots/", logged(handlers.SlotActionHandler(logger)))

	mux.Handle("/donations", logged(http.HandlerFunc(handlers.DonationsHandler)))
	mux.Handle("/donations/goal", logged(http.HandlerFunc(handlers.GoalHandler)))

	mux.Handle("/weather", logged(handlers.WeatherHandler(logger, wx)))
	mux.Handle("/weather/forecast", logged(handlers.ForecastHandler(logger, wx)))

	mux.Handle("/casino/seat", logged(ch.Seat()))
	mux.Handle("/casino/leave", logged(ch.Leave()))
	mux.Handle("/casino/bets", logged(ch.Bets()))
	mux.Handle("/casino/start", logged(ch.Start()))
	mux.Handle("/casino/insurance/buy", logged(ch.BuyInsurance()))
	mux.Handle("/casino/insurance/close", logged(ch.CloseInsurance()))
	mux.Handle("/casino/hit", logged(ch.Hit()))
	mux.Handle("/casino/stand", logged(ch.Stand()))
	mux.Handle("/casino/double", logged(ch.Double()))
	mux.Handle("/casino/split", logged(ch.Split()))
	mux.Handle("/casino/reset", logged(ch.Reset()))
	mux.Handle("/casino/table", logged(ch.Snapshot()))
	mux.Handle("/casino/ws", ch.CasinoWSHandler(logger))

	server := &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	l, err := net.Listen("tcp", fmt.Sprintf(":%s", cli.Port))
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}
	logger.Infof("listening on %s", l.Addr())

	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(l)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	select {
	case err := <-errc:
		logger.Errorf("server exited: %v", err)
	case sig := <-sigs:
		logger.Infof("terminating: %v", sig)
	}
	kctx.Exit(0)
}

// cleanupLoop removes finished slots once their start time has passed.
func cleanupLoop(logger *logrus.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		n, err := database.CleanupPastSlots(context.Background())
		if err != nil {
			logger.WithError(err).Warn("slot cleanup failed")
			continue
		}
		if n > 0 {
			logger.WithField("removed", n).Info("cleaned up past slots")
		}
	}
}
