package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/avollmer/daykeep/internal/clock"
	"github.com/avollmer/daykeep/internal/config"
	"github.com/avollmer/daykeep/internal/domain/audit"
	"github.com/avollmer/daykeep/internal/domain/fact"
	"github.com/avollmer/daykeep/internal/domain/goal"
	"github.com/avollmer/daykeep/internal/domain/plan"
	"github.com/avollmer/daykeep/internal/domain/snapshot"
	"github.com/avollmer/daykeep/internal/domain/streak"
	"github.com/avollmer/daykeep/internal/domain/task"
	"github.com/avollmer/daykeep/internal/domain/user"
	"github.com/avollmer/daykeep/internal/sqlite"
)

var rootCmd = &cobra.Command{
	Use:   "dk",
	Short: "daykeep CLI",
	Long: `daykeep separates intent (what you plan), execution truth (what happened
on a day, immutable once closed), and derived meaning (goal progress,
streaks, trends). Plans change freely; history never does.`,
	SilenceUsage: true,
}

func main() {
	cobra.OnInitialize(initViper)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initViper() {
	viper.SetEnvPrefix("DAYKEEP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().String("db", "", "database path (overrides config)")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().StringP("user", "u", "", "user id")
	_ = viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))
}

func registerCommands() {
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(goalCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(dayCmd())
	rootCmd.AddCommand(weekCmd())
	rootCmd.AddCommand(streakCmd())
	rootCmd.AddCommand(auditCmd())
	rootCmd.AddCommand(replayCmd())
	rootCmd.AddCommand(statsCmd())
}

// app wires config, storage, consumers, and services together for one
// command invocation.
type app struct {
	cfg       config.Config
	clk       clock.Clock
	logger    *slog.Logger
	bus       *fact.Bus
	facts     *sqlite.FactRepository
	users     *user.Service
	tasks     *task.Service
	goals     *goal.Service
	plans     *plan.Service
	streaks   *sqlite.StreakRepository
	snapshots *sqlite.SnapshotRepository
	auditLog  *sqlite.AuditRepository
}

func withApp(fn func(a *app) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if dbPath := viper.GetString("db"); dbPath != "" {
		cfg.DB.Path = dbPath
	}

	logger := newLogger(cfg.Log.Level)
	clk, err := clock.New(cfg.Time.Zone)
	if err != nil {
		return err
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.RunMigrations(); err != nil {
		return err
	}

	users := sqlite.NewUserRepository(db)
	tasks := sqlite.NewTaskRepository(db)
	goals := sqlite.NewGoalRepository(db)
	keyResults := sqlite.NewKeyResultRepository(db)
	plans := sqlite.NewPlanRepository(db)
	weeks := sqlite.NewWeekPlanRepository(db)
	streaks := sqlite.NewStreakRepository(db)
	snapshots := sqlite.NewSnapshotRepository(db)
	auditLog := sqlite.NewAuditRepository(db)
	facts := sqlite.NewFactRepository(db)
	receipts := sqlite.NewReceiptRepository(db)

	ledger := fact.NewLedger(receipts)
	bus := fact.NewBus(logger)
	// Registration order is fixed: evaluation runs before the snapshot
	// consumer so a DayClosed snapshot sees that day's habit increments.
	bus.Register(goal.NewEvaluator(goals, keyResults, keyResults, plans, tasks, ledger, clk, logger))
	bus.Register(streak.NewConsumer(streaks, plans, ledger, clk, logger))
	bus.Register(snapshot.NewConsumer(snapshots, goals, keyResults, ledger, clk, logger))
	bus.Register(audit.NewConsumer(auditLog, ledger, clk, logger))

	a := &app{
		cfg:       cfg,
		clk:       clk,
		logger:    logger,
		bus:       bus,
		facts:     facts,
		users:     user.NewService(users, facts, bus, clk, logger),
		tasks:     task.NewService(tasks, facts, bus, clk, logger),
		goals:     goal.NewService(goals, keyResults, clk, logger),
		plans:     plan.NewService(plans, weeks, tasks, facts, bus, clk, logger),
		streaks:   streaks,
		snapshots: snapshots,
		auditLog:  auditLog,
	}
	return fn(a)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// requireUser resolves the acting user from --user or DAYKEEP_USER.
func requireUser() (string, error) {
	userID := viper.GetString("user")
	if userID == "" {
		return "", fmt.Errorf("user id required (--user or DAYKEEP_USER)")
	}
	return userID, nil
}

// dayArg resolves an optional day argument, defaulting to today.
func dayArg(args []string, clk clock.Clock) string {
	if len(args) > 0 {
		return args[0]
	}
	return clk.Today()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
