package bench

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Backend names accepted by -db.
const (
	Postgres = "postgres"
	MySQL    = "mysql"
	MSSQL    = "mssql"
	MongoDB  = "mongodb"
	Bolt     = "bolt"
)

// Config is the merged result of the YAML config file and command line flags.
// Trials and Warmup stay negative until set, so backend defaults can apply.
type Config struct {
	DB       string `yaml:"db"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"pass"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`

	Rows     int  `yaml:"rows"`
	Trials   int  `yaml:"trials"`
	Warmup   int  `yaml:"warmup"`
	DropHigh int  `yaml:"drop_high"`
	GC       bool `yaml:"gc"`

	LogFormat   string `yaml:"log_format"`
	Debug       bool   `yaml:"debug"`
	MetricsAddr string `yaml:"metrics_addr"`
}

func DefaultConfig() Config {
	return Config{
		DB:        Postgres,
		SSLMode:   "disable",
		Rows:      100000,
		Trials:    -1,
		Warmup:    -1,
		DropHigh:  DefaultPolicy.DropHigh,
		GC:        true,
		LogFormat: PlaintextFormatString,
	}
}

// DefaultsFor returns trial and warm-up counts used when none are configured.
// The document store gets a long warm-up because its first trials are
// dominated by collection and index creation.
func DefaultsFor(db string) (trials, warmup int) {
	if db == MongoDB {
		return 21, 10
	}
	return 10, 0
}

func (c *Config) bind(fs *flag.FlagSet) {
	fs.StringVar(&c.DB, "db", c.DB, "Database type: postgres, mysql, mssql, mongodb, bolt")
	fs.StringVar(&c.Host, "host", c.Host, "Database host")
	fs.IntVar(&c.Port, "port", c.Port, "Database port (0 = driver default)")
	fs.StringVar(&c.User, "user", c.User, "Database user")
	fs.StringVar(&c.Password, "pass", c.Password, "Database password")
	fs.StringVar(&c.Name, "name", c.Name, "Database name (file path for bolt)")
	fs.StringVar(&c.SSLMode, "sslmode", c.SSLMode, "PostgreSQL sslmode")
	fs.IntVar(&c.Rows, "rows", c.Rows, "Rows per trial")
	fs.IntVar(&c.Trials, "trials", c.Trials, "Number of trials (default 10, 21 for mongodb)")
	fs.IntVar(&c.Warmup, "warmup", c.Warmup, "Leading trials discarded (default 0, 10 for mongodb)")
	fs.IntVar(&c.DropHigh, "drop-high", c.DropHigh, "Highest samples dropped before averaging")
	fs.BoolVar(&c.GC, "gc", c.GC, "Run garbage collection before each timed phase")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "Log format: text or json")
	fs.BoolVar(&c.Debug, "v", c.Debug, "Debug logging")
	fs.StringVar(&c.MetricsAddr, "metrics-addr", c.MetricsAddr, "Serve Prometheus /metrics on this address while running")
}

// LoadConfig decodes a YAML file over cfg. Keys missing from the file keep
// their current values.
func LoadConfig(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// ParseArgs builds the run configuration: defaults, then the -config file if
// given, then every flag set explicitly on the command line.
func ParseArgs(name string, args []string) (Config, error) {
	cfg := DefaultConfig()
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	cfg.bind(fs)
	configPath := fs.String("config", "", "Path to YAML config; explicit flags override it")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if *configPath == "" {
		return cfg, nil
	}

	merged := DefaultConfig()
	if err := LoadConfig(*configPath, &merged); err != nil {
		return Config{}, err
	}
	overrides := flag.NewFlagSet(name, flag.ContinueOnError)
	merged.bind(overrides)
	var setErr error
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" || setErr != nil {
			return
		}
		setErr = overrides.Set(f.Name, f.Value.String())
	})
	if setErr != nil {
		return Config{}, setErr
	}
	return merged, nil
}

func (c Config) Conn() ConnConfig {
	return ConnConfig{
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		Database: c.Name,
		SSLMode:  c.SSLMode,
	}
}

func (c Config) Params() BenchParams {
	trials, warmup := DefaultsFor(c.DB)
	if c.Trials >= 0 {
		trials = c.Trials
	}
	if c.Warmup >= 0 {
		warmup = c.Warmup
	}
	return BenchParams{
		Rows:     c.Rows,
		Trials:   trials,
		Warmup:   warmup,
		DropHigh: c.DropHigh,
		GC:       c.GC,
	}
}
