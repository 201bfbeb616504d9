package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	C "mosaic/config"
	"mosaic/integration/registry"
	"mosaic/model/store"
	storePostgres "mosaic/model/store/postgres"
	"mosaic/task/record_sync"
)

func main() {
	env := flag.String("env", C.DEVELOPMENT, "")

	dbHost := flag.String("db_host", C.PostgresDefaultDBParams.Host, "")
	dbPort := flag.Int("db_port", C.PostgresDefaultDBParams.Port, "")
	dbUser := flag.String("db_user", C.PostgresDefaultDBParams.User, "")
	dbName := flag.String("db_name", C.PostgresDefaultDBParams.Name, "")
	dbPass := flag.String("db_pass", C.PostgresDefaultDBParams.Password, "")

	syncIntervalMinutes := flag.Int("sync_interval_minutes", 20, "Minutes between sweeps.")
	numSyncRoutines := flag.Int("num_sync_routines", 4, "Number of concurrent sweep units.")
	runOnce := flag.Bool("run_once", false, "Run a single sweep and exit.")

	flag.Parse()

	config := &C.Configuration{
		AppName: "record_unify_sync",
		Env:     *env,
		DBInfo: C.DBConf{
			Host:     *dbHost,
			Port:     *dbPort,
			User:     *dbUser,
			Name:     *dbName,
			Password: *dbPass,
		},
		SyncIntervalMinutes: *syncIntervalMinutes,
		NumSyncRoutines:     *numSyncRoutines,
	}
	C.InitConf(config)

	if err := C.InitServices(); err != nil {
		log.WithError(err).Fatal("Failed to initialize services.")
	}

	if err := storePostgres.AutoMigrate(); err != nil {
		log.WithError(err).Fatal("Failed to migrate schema.")
	}

	appStore := store.GetStore()
	reg, err := registry.BuildDefault(appStore, appStore)
	if err != nil {
		log.WithError(err).Fatal("Failed to build provider registry.")
	}

	job := record_sync.NewJob(appStore, reg, record_sync.Config{
		IntervalMinutes: config.SyncIntervalMinutes,
		NumRoutines:     config.NumSyncRoutines,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		log.Info("Shutdown signal received, finishing current units.")
		cancel()
	}()

	if *runOnce {
		job.SweepAll(ctx)
		return
	}

	job.StartScheduler(ctx)
}
