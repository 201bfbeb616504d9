package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	C "mosaic/config"
	"mosaic/handler"
	"mosaic/integration/registry"
	"mosaic/model/store"
	storePostgres "mosaic/model/store/postgres"
	"mosaic/records"
)

func main() {
	env := flag.String("env", C.DEVELOPMENT, "")
	port := flag.Int("port", 8085, "")

	dbHost := flag.String("db_host", C.PostgresDefaultDBParams.Host, "")
	dbPort := flag.Int("db_port", C.PostgresDefaultDBParams.Port, "")
	dbUser := flag.String("db_user", C.PostgresDefaultDBParams.User, "")
	dbName := flag.String("db_name", C.PostgresDefaultDBParams.Name, "")
	dbPass := flag.String("db_pass", C.PostgresDefaultDBParams.Password, "")

	flag.Parse()

	config := &C.Configuration{
		AppName: "record_unify_api",
		Env:     *env,
		Port:    *port,
		DBInfo: C.DBConf{
			Host:     *dbHost,
			Port:     *dbPort,
			User:     *dbUser,
			Name:     *dbName,
			Password: *dbPass,
		},
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

	if !C.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	handler.InitAppRoutes(r, records.NewService(appStore, reg))

	if err := r.Run(fmt.Sprintf(":%d", config.Port)); err != nil {
		log.WithError(err).Error("Failed to start server.")
		os.Exit(1)
	}
}
