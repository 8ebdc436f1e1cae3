package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Store drivers understood by store.Open.
const (
	DriverCSV      = "csv"
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMongo    = "mongo"
)

// Config holds everything the quiz needs from its environment.
type Config struct {
	DataDir     string
	StoreDriver string
	DBDSN       string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MongoURI string
	MongoDB  string

	AdminUser     string
	AdminPassword string
	AdminPassHash string // bcrypt, wins over AdminPassword when set

	ResultsAddr   string // empty disables the results server
	QuestionsFile string // JSON seed loaded when the bank is empty
	LogFile       string
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Println("⚙️  Loaded settings from .env")
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() Config {
	return Config{
		DataDir:       envOr("DATA_DIR", "."),
		StoreDriver:   envOr("STORE_DRIVER", DriverCSV),
		DBDSN:         os.Getenv("DB_DSN"),
		RedisAddr:     envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		MongoURI:      envOr("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       envOr("MONGO_DB", "quiz"),
		AdminUser:     envOr("ADMIN_USER", "admin"),
		AdminPassword: envOr("ADMIN_PASSWORD", "admin123"),
		AdminPassHash: os.Getenv("ADMIN_PASS_HASH"),
		ResultsAddr:   os.Getenv("RESULTS_ADDR"),
		QuestionsFile: os.Getenv("QUESTIONS_FILE"),
		LogFile:       os.Getenv("LOG_FILE"),
	}
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverCSV, DriverMemory, DriverSQLite, DriverPostgres, DriverRedis, DriverMongo:
	default:
		return fmt.Errorf("unsupported store driver: %q", c.StoreDriver)
	}
	if c.AdminUser == "" {
		return fmt.Errorf("ADMIN_USER must not be empty")
	}
	if c.AdminPassword == "" && c.AdminPassHash == "" {
		return fmt.Errorf("one of ADMIN_PASSWORD or ADMIN_PASS_HASH is required")
	}
	return nil
}

func envOr(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️ %s=%q is not a number, using %d", k, v, def)
		return def
	}
	return n
}
