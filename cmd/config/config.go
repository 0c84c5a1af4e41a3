package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var DefaultPaddleTiers = []int64{1000000, 500000, 250000, 100000, 50000, 25000, 10000, 5000, 2500}

type Config struct {
	RunAddress string
	LogLevel   string
	LogFile    string

	DatabaseURI string
	Primary     PrimaryDatabase
	SMSDatabase string

	AllowedOrigins  []string
	GoalCents       int64
	PollInterval    time.Duration
	QueryTimeout    time.Duration
	TextPledgeLimit int
	DisplayTimezone string
	PaddleTiers     []int64

	Redis Redis
}

// PrimaryDatabase holds the connection parameters of the paddle pledge store.
type PrimaryDatabase struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

type Redis struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// Load reads flags from args, then environment variables, then defaults.
func Load(args []string) (*Config, error) {
	v := viper.New()

	fs := pflag.NewFlagSet("pledgetracker", pflag.ContinueOnError)
	fs.StringP("address", "a", ":3001", "address to run server")
	fs.StringP("database", "d", "", "primary database uri")
	fs.StringP("sms-database", "s", "", "sms database uri")
	fs.StringP("log-level", "l", "info", "log level")
	if err := fs.Parse(args); err != nil {
		return nil, errors.Wrap(err, "parse flags")
	}

	for key, flag := range map[string]string{
		"RUN_ADDRESS":      "address",
		"DATABASE_URI":     "database",
		"SMS_DATABASE_URL": "sms-database",
		"LOG_LEVEL":        "log-level",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, errors.Wrapf(err, "bind flag %s", flag)
		}
	}

	v.SetDefault("LOG_FILE", "")
	v.SetDefault("PG_HOST", "localhost")
	v.SetDefault("PG_PORT", 5432)
	v.SetDefault("PG_DATABASE", "pledges")
	v.SetDefault("PG_USER", "postgres")
	v.SetDefault("PG_PASSWORD", "")
	v.SetDefault("PG_SSLMODE", "disable")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("GOAL_CENTS", 100000000)
	v.SetDefault("POLL_INTERVAL", 5*time.Second)
	v.SetDefault("QUERY_TIMEOUT", 10*time.Second)
	v.SetDefault("TEXT_PLEDGE_LIMIT", 50)
	v.SetDefault("DISPLAY_TIMEZONE", "America/New_York")
	v.SetDefault("PADDLE_TIERS", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_CHANNEL", "pledges:totals_updated")
	v.SetDefault("PORT", "")

	v.AutomaticEnv()

	cfg := &Config{
		RunAddress:  v.GetString("RUN_ADDRESS"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		LogFile:     v.GetString("LOG_FILE"),
		DatabaseURI: v.GetString("DATABASE_URI"),
		Primary: PrimaryDatabase{
			Host:     v.GetString("PG_HOST"),
			Port:     v.GetInt("PG_PORT"),
			Name:     v.GetString("PG_DATABASE"),
			User:     v.GetString("PG_USER"),
			Password: v.GetString("PG_PASSWORD"),
			SSLMode:  v.GetString("PG_SSLMODE"),
		},
		SMSDatabase:     v.GetString("SMS_DATABASE_URL"),
		AllowedOrigins:  splitList(v.GetString("ALLOWED_ORIGINS")),
		GoalCents:       v.GetInt64("GOAL_CENTS"),
		PollInterval:    v.GetDuration("POLL_INTERVAL"),
		QueryTimeout:    v.GetDuration("QUERY_TIMEOUT"),
		TextPledgeLimit: v.GetInt("TEXT_PLEDGE_LIMIT"),
		DisplayTimezone: v.GetString("DISPLAY_TIMEZONE"),
		Redis: Redis{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			Channel:  v.GetString("REDIS_CHANNEL"),
		},
	}

	// PORT applies only when no address was given explicitly.
	_, explicitAddr := os.LookupEnv("RUN_ADDRESS")
	if port := v.GetString("PORT"); port != "" && !explicitAddr && !fs.Changed("address") {
		cfg.RunAddress = ":" + strings.TrimPrefix(port, ":")
	}

	tiers, err := parseTiers(v.GetString("PADDLE_TIERS"))
	if err != nil {
		return nil, err
	}
	cfg.PaddleTiers = tiers

	return cfg, nil
}

// Validate checks that the configuration can be used to start the service.
func (c *Config) Validate() error {
	if c.DatabaseURI == "" && c.Primary.Name == "" {
		return errors.New("primary database is not configured")
	}
	if c.SMSDatabase == "" {
		return errors.New("SMS_DATABASE_URL is required")
	}
	if c.GoalCents <= 0 {
		return errors.New("GOAL_CENTS must be positive")
	}
	if c.PollInterval <= 0 {
		return errors.New("POLL_INTERVAL must be positive")
	}
	if c.QueryTimeout <= 0 {
		return errors.New("QUERY_TIMEOUT must be positive")
	}
	if c.TextPledgeLimit <= 0 {
		return errors.New("TEXT_PLEDGE_LIMIT must be positive")
	}
	if _, err := time.LoadLocation(c.DisplayTimezone); err != nil {
		return errors.Wrapf(err, "unknown DISPLAY_TIMEZONE %q", c.DisplayTimezone)
	}
	for _, tier := range c.PaddleTiers {
		if tier <= 0 {
			return errors.Errorf("paddle tier %d must be positive", tier)
		}
	}
	return nil
}

// PrimaryDSN returns DATABASE_URI when set, otherwise a key/value DSN built from the PG_* parameters.
func (c *Config) PrimaryDSN() string {
	if c.DatabaseURI != "" {
		return c.DatabaseURI
	}
	p := c.Primary
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Name, p.SSLMode)
}

// Location is only valid after Validate succeeded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseTiers(raw string) ([]int64, error) {
	items := splitList(raw)
	if len(items) == 0 {
		return append([]int64(nil), DefaultPaddleTiers...), nil
	}

	tiers := make([]int64, 0, len(items))
	for _, item := range items {
		tier, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid paddle tier %q", item)
		}
		tiers = append(tiers, tier)
	}
	return tiers, nil
}
