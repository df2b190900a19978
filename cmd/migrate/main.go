package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"github.com/freshfold/laundry-backend/pkg/config"
	"github.com/freshfold/laundry-backend/pkg/db"
	"github.com/freshfold/laundry-backend/pkg/logger"
	"github.com/freshfold/laundry-backend/pkg/migrate"
)

const usage = `usage: migrate -cmd <command> [flags]

commands:
  up         apply all pending migrations
  down       roll back the latest migration
  status     list migrations and whether they are applied
  version    migrate up or down to -version
  create     write a new empty migration named -name into -dir
  validate   check file names and goose sections in -dir
`

func main() {
	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command")
	dir := flag.String("dir", migrate.DefaultDir, "migrations directory on disk (create, validate)")
	name := flag.String("name", "", "migration name (create)")
	version := flag.String("version", "", "target version YYYYMMDDHHMMSS (version)")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	// file commands run without config so they work on a fresh checkout
	switch *cmd {
	case "create":
		if *name == "" {
			fail("create needs -name")
		}
		path, err := migrate.Create(*dir, *name, time.Now())
		if err != nil {
			fail(err.Error())
		}
		fmt.Println("created", path)
		return
	case "validate":
		if err := migrate.Validate(*dir); err != nil {
			fail(err.Error())
		}
		fmt.Println("migrations ok")
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fail(fmt.Sprintf("load config: %v", err))
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env, "cmd": *cmd})

	if cfg.DB.Driver == config.DBDriverSQLite {
		fail("goose migrations target postgres; sqlite schemas come from FRESHFOLD_AUTO_MIGRATE")
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "connect database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		logg.Error(ctx, "unwrap sql.DB", err)
		os.Exit(1)
	}
	runner, err := migrate.NewRunner(sqlDB)
	if err != nil {
		logg.Error(ctx, "build migration runner", err)
		os.Exit(1)
	}

	var applied []int64
	switch *cmd {
	case "up":
		applied, err = runner.Up(ctx)
	case "down":
		applied, err = runner.Down(ctx)
	case "version":
		if *version == "" {
			fail("version needs -version")
		}
		applied, err = runner.To(ctx, *version)
	case "status":
		var states []migrate.MigrationState
		if states, err = runner.Status(ctx); err == nil {
			printStatus(states)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logg.Error(ctx, "migration failed", err)
		os.Exit(1)
	}
	for _, v := range applied {
		fmt.Println("migrated", v)
	}
}

func printStatus(states []migrate.MigrationState) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tAPPLIED AT\tFILE")
	for _, st := range states {
		at := "pending"
		if st.AppliedAt != nil {
			at = st.AppliedAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", st.Version, at, st.Path)
	}
	_ = w.Flush()
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
