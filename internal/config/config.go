package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/vigipay/vigipay-backend/internal/usecase/fee"
	"github.com/vigipay/vigipay-backend/internal/usecase/fraud"
)

const envPrefix = "VIGIPAY"

type ServerConfig struct {
	GRPCAddr        string        `mapstructure:"grpc_addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ConnString returns DSN when set, otherwise a key=value string built from the parts
func (d DatabaseConfig) ConnString() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

type AccountsConfig struct {
	StartingBalance    int64 `mapstructure:"starting_balance"`
	NumberLength       int   `mapstructure:"number_length"`
	AllocationAttempts int   `mapstructure:"allocation_attempts"`
}

type TransfersConfig struct {
	InternalBankCode string `mapstructure:"internal_bank_code"`
}

type FeeTierConfig struct {
	MinAmount int64  `mapstructure:"min_amount"`
	Flat      int64  `mapstructure:"flat"`
	Percent   string `mapstructure:"percent"`
}

type FeeConfig struct {
	Tiers []FeeTierConfig `mapstructure:"tiers"`
}

type FraudConfig struct {
	Policy   string        `mapstructure:"policy"`
	FailMode string        `mapstructure:"fail_mode"`
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SeedConfig struct {
	DemoAccountNumber string `mapstructure:"demo_account_number"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Accounts  AccountsConfig  `mapstructure:"accounts"`
	Transfers TransfersConfig `mapstructure:"transfers"`
	Fee       FeeConfig       `mapstructure:"fee"`
	Fraud     FraudConfig     `mapstructure:"fraud"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Log       LogConfig       `mapstructure:"log"`
	Seed      SeedConfig      `mapstructure:"seed"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.grpc_addr", ":50051")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("storage.driver", "postgres")

	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "vigipay")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "vigipay")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "vigipay")

	v.SetDefault("accounts.starting_balance", 20_000_000)
	v.SetDefault("accounts.number_length", 10)
	v.SetDefault("accounts.allocation_attempts", 100)

	v.SetDefault("transfers.internal_bank_code", "vigipay")

	v.SetDefault("fraud.policy", "ignore")
	v.SetDefault("fraud.fail_mode", "")
	v.SetDefault("fraud.endpoint", "")
	v.SetDefault("fraud.timeout", fraud.DefaultTimeout)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "transfer.completed")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("seed.demo_account_number", "")
}

// Load reads .env, then the YAML file at path (or ./config.yaml when path is empty),
// then VIGIPAY_* environment overrides. A missing default file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	// environment overrides, e.g. VIGIPAY_DATABASE_HOST=db
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects configurations the server must not start with
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}

	policy, err := fraud.ParsePolicy(c.Fraud.Policy)
	if err != nil {
		return err
	}
	if policy != fraud.PolicyIgnore || c.Fraud.Endpoint != "" {
		if c.Fraud.FailMode == "" {
			return errors.New("fraud.fail_mode must be set when a fraud scorer is in use")
		}
		if _, err := fraud.ParseFailMode(c.Fraud.FailMode); err != nil {
			return err
		}
		if c.Fraud.Endpoint == "" {
			return errors.New("fraud.endpoint is required when fraud.policy is not ignore")
		}
	}

	if c.Accounts.StartingBalance < 0 {
		return errors.New("accounts.starting_balance cannot be negative")
	}

	if _, err := c.FeePolicy(); err != nil {
		return err
	}
	return nil
}

// FeePolicy builds the configured fee schedule. No tiers means no fee.
func (c *Config) FeePolicy() (fee.Policy, error) {
	if len(c.Fee.Tiers) == 0 {
		return fee.Zero, nil
	}

	tiers := make([]fee.Tier, 0, len(c.Fee.Tiers))
	for i, t := range c.Fee.Tiers {
		percent := decimal.Zero
		if t.Percent != "" {
			p, err := decimal.NewFromString(t.Percent)
			if err != nil {
				return nil, fmt.Errorf("fee.tiers[%d].percent: %w", i, err)
			}
			percent = p
		}
		tiers = append(tiers, fee.Tier{MinAmount: t.MinAmount, Flat: t.Flat, Percent: percent})
	}

	tiered, err := fee.NewTiered(tiers)
	if err != nil {
		return nil, fmt.Errorf("invalid fee schedule: %w", err)
	}
	return tiered, nil
}
