package config

import (
	"fmt"
	"strings"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

const DEVELOPMENT = "development"

type DBConf struct {
	Host     string `json:"host" envconfig:"MOSAIC_DB_HOST"`
	Port     int    `json:"port" envconfig:"MOSAIC_DB_PORT"`
	User     string `json:"user" envconfig:"MOSAIC_DB_USER"`
	Name     string `json:"name" envconfig:"MOSAIC_DB_NAME"`
	Password string `json:"password" envconfig:"MOSAIC_DB_PASS"`
}

var PostgresDefaultDBParams = DBConf{
	Host:     "localhost",
	Port:     5432,
	User:     "autometa",
	Name:     "autometa",
	Password: "@ut0me7a",
}

type Configuration struct {
	AppName             string `json:"app_name"`
	Env                 string `json:"env"`
	Port                int    `json:"port"`
	DBInfo              DBConf `json:"db"`
	SyncIntervalMinutes int    `json:"sync_interval_minutes"`
	NumSyncRoutines     int    `json:"num_sync_routines"`
}

type Services struct {
	Db *gorm.DB
}

var configuration *Configuration
var services *Services

func initLogging() {
	log.SetFormatter(&log.JSONFormatter{})

	if IsDevelopment() {
		log.SetLevel(log.DebugLevel)
	}
}

// InitConf registers the configuration built by the entry point and applies
// environment overrides for DB credentials.
func InitConf(config *Configuration) {
	configuration = config

	if err := envconfig.Process("mosaic", &configuration.DBInfo); err != nil {
		log.WithError(err).Error("Failed to apply db env overrides.")
	}

	if configuration.SyncIntervalMinutes <= 0 {
		configuration.SyncIntervalMinutes = 20
	}
	if configuration.NumSyncRoutines <= 0 {
		configuration.NumSyncRoutines = 4
	}

	initLogging()
}

// InitServices opens the postgres connection and the shared service handles.
func InitServices() error {
	if configuration == nil {
		return fmt.Errorf("config not initialized")
	}

	db, err := gorm.Open("postgres", fmt.Sprintf(
		"host=%s port=%d user=%s dbname=%s password=%s sslmode=disable",
		configuration.DBInfo.Host,
		configuration.DBInfo.Port,
		configuration.DBInfo.User,
		configuration.DBInfo.Name,
		configuration.DBInfo.Password))
	if err != nil {
		log.WithFields(log.Fields{"err": err}).Error("Failed Db initialization.")
		return err
	}

	db.DB().SetMaxIdleConns(10)
	db.DB().SetMaxOpenConns(100)
	db.LogMode(IsDevelopment())
	log.Info("Db service initialized.")

	services = &Services{Db: db}
	return nil
}

// InitTestServices opens an in-memory sqlite database in place of postgres.
// Schema migration is the caller's job (store layer owns the table set).
func InitTestServices() error {
	if configuration == nil {
		InitConf(&Configuration{AppName: "test", Env: DEVELOPMENT})
	}

	db, err := gorm.Open("sqlite3", ":memory:")
	if err != nil {
		return err
	}

	// sqlite serializes writers; a single connection avoids table locks
	// between the test's concurrent reconciliations.
	db.DB().SetMaxOpenConns(1)

	services = &Services{Db: db}
	return nil
}

func GetConfig() *Configuration {
	return configuration
}

func GetServices() *Services {
	return services
}

func IsDevelopment() bool {
	return configuration != nil && strings.Compare(configuration.Env, DEVELOPMENT) == 0
}
