package db

import (
	"flag"
	"fmt"
	"time"

	"github.com/go-redis/redis"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"k8s.io/apimachinery/pkg/util/errors"
)

// RedisOptions configures the connection to the calculation store.
type RedisOptions struct {
	redisURL      string
	redisPassword string
	redisDB       int
	cacheTTL      time.Duration
}

func (o *RedisOptions) Bind(fs *flag.FlagSet) {
	fs.StringVar(&o.redisURL, "redis-url", "", "Redis database url host")
	fs.StringVar(&o.redisPassword, "redis-password", "", "Redis database password")
	fs.IntVar(&o.redisDB, "redis-db", 0, "Redis database number")
	fs.DurationVar(&o.cacheTTL, "cache-ttl", time.Hour, "How long computed results are cached")
}

func (o *RedisOptions) Validate() error {
	var errs []error
	if o.redisURL == "" {
		errs = append(errs, fmt.Errorf("--redis-url is not specified"))
	}
	if o.redisDB < 0 {
		errs = append(errs, fmt.Errorf("--redis-db must not be negative"))
	}
	if o.cacheTTL < 0 {
		errs = append(errs, fmt.Errorf("--cache-ttl must not be negative"))
	}
	return errors.NewAggregate(errs)
}

// NewRedisStore connects to redis and returns the store.
func (o *RedisOptions) NewRedisStore() (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     o.redisURL,
		Password: o.redisPassword,
		DB:       o.redisDB,
	})
	if err := client.Ping().Err(); err != nil {
		return nil, fmt.Errorf("couldn't connect to redis at %s: %w", o.redisURL, err)
	}
	return NewRedisStore(client, o.cacheTTL), nil
}

// Options configures the optional postgres results archive.
type Options struct {
	dbPort     int
	dbUsername string
	dbPassword string
	dbHost     string
	dbName     string
	dbLogLevel int
}

func (o *Options) Bind(fs *flag.FlagSet) {
	fs.IntVar(&o.dbPort, "db-port", 5432, "Database port number")
	fs.StringVar(&o.dbUsername, "db-username", "", "Database username")
	fs.StringVar(&o.dbPassword, "db-password", "", "Database password")
	fs.StringVar(&o.dbHost, "db-host", "", "Database host, the results archive is disabled when empty")
	fs.StringVar(&o.dbName, "db-name", "", "Database name")
	fs.IntVar(&o.dbLogLevel, "db-log-level", 1, "Database log level")
}

// Enabled reports whether an archive database was configured.
func (o *Options) Enabled() bool {
	return o.dbHost != ""
}

func (o *Options) Validate() error {
	if !o.Enabled() {
		return nil
	}
	var errs []error
	if o.dbUsername == "" {
		errs = append(errs, fmt.Errorf("--db-username is not specified"))
	}
	if o.dbPassword == "" {
		errs = append(errs, fmt.Errorf("--db-password is not specified"))
	}
	if o.dbName == "" {
		errs = append(errs, fmt.Errorf("--db-name is not specified"))
	}
	if o.dbPort <= 0 {
		errs = append(errs, fmt.Errorf("--db-port must be positive"))
	}
	return errors.NewAggregate(errs)
}

func (o *Options) connect() (*gorm.DB, error) {
	url := fmt.Sprintf("host=%s port=%v user=%s dbname=%s password=%s sslmode=disable",
		o.dbHost,
		o.dbPort,
		o.dbUsername,
		o.dbName,
		o.dbPassword)

	db, err := gorm.Open(postgres.Open(url), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.LogLevel(o.dbLogLevel)),
	})
	if err != nil {
		return nil, err
	}
	return db.Session(&gorm.Session{
		FullSaveAssociations: true,
		QueryFields:          true,
	}), nil
}

// NewResultsArchive connects to postgres and migrates the archive table.
func (o *Options) NewResultsArchive() (ResultsArchive, error) {
	db, err := o.connect()
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize database: %w", err)
	}
	if err = db.AutoMigrate(&CalculationResults{}); err != nil {
		return nil, err
	}
	return &resultsArchive{db: db}, nil
}
