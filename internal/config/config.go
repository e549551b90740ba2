package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses durations for the sweeper settings
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs, time.Duration for the sweeper cadence.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port to listen on
	DBUser         string        // database username
	DBPass         string        // database password (optional)
	DBHost         string        // database host address
	DBPort         string        // database port number
	DBName         string        // database name
	JWTSecret      string        // secret used to sign JWTs
	AccessTTLMin   int           // access token time-to-live in minutes
	RefreshTTLDays int           // refresh token time-to-live in days
	BcryptCost     int           // bcrypt cost for password hashing
	SweepInterval  time.Duration // how often the expiry sweeper runs
	PendingTTL     time.Duration // how long a PENDING reservation may outlive its slot start
	UploadDir      string        // directory where room images are stored
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Sweeper settings
// default to the original deployment values (hourly sweep, 24h grace).
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),                          // environment (dev/test/prod)
		Port:           must("APP_PORT"),                         // port to bind the HTTP server
		DBUser:         must("DB_USER"),                          // database user
		DBPass:         os.Getenv("DB_PASS"),                     // database password (empty allowed)
		DBHost:         must("DB_HOST"),                          // database host
		DBPort:         must("DB_PORT"),                          // database port
		DBName:         must("DB_NAME"),                          // database name
		JWTSecret:      must("JWT_SECRET"),                       // secret used for signing JWTs
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),          // TTL for access tokens in minutes
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),        // TTL for refresh tokens in days
		BcryptCost:     mustInt("BCRYPT_COST"),                   // bcrypt cost factor
		SweepInterval:  envDuration("SWEEP_INTERVAL", time.Hour), // expiry sweeper cadence
		PendingTTL:     envDuration("PENDING_TTL", 24*time.Hour), // grace before auto-cancel
		UploadDir:      envDefault("UPLOAD_DIR", "uploads"),      // room image directory
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// envDefault returns the variable's value or the given default when unset.
func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envDuration parses a Go duration from the environment, falling back to
// the default on absence or parse failure.
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid duration for %s: %q, using %s", key, v, def)
		return def
	}
	return d
}
