package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/viper"
)

type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Proxy    ProxyConfig    `mapstructure:"proxy"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	OTP      OTPConfig      `mapstructure:"otp"`
	Payment  PaymentConfig  `mapstructure:"payment"`
	Location LocationConfig `mapstructure:"location"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// APIConfig describes the backend REST API the storefront talks to.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Key     string `mapstructure:"key"`
	// KeyHeader is the header carrying the static service key.
	KeyHeader        string `mapstructure:"key_header"`
	ImageBaseURL     string `mapstructure:"image_base_url"`
	ImagePlaceholder string `mapstructure:"image_placeholder"`
	SiteURL          string `mapstructure:"site_url"`
}

type ProxyConfig struct {
	Addr    string `mapstructure:"addr"`
	BaseURL string `mapstructure:"base_url"`
}

// GatewayConfig is the payment gateway the transaction proxy forwards to.
type GatewayConfig struct {
	StatusURL string `mapstructure:"status_url"`
	SecretKey string `mapstructure:"secret_key"`
}

type StorageConfig struct {
	// Driver is one of "file", "memory", "redis", "postgres".
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type KafkaConfig struct {
	Broker     string `mapstructure:"broker"`
	OrderTopic string `mapstructure:"order_topic"`
	Enabled    bool   `mapstructure:"enabled"`
}

type OTPConfig struct {
	Countdown time.Duration `mapstructure:"countdown"`
}

type PaymentConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// LocationConfig stands in for the device's geolocation. When Enabled is
// false a location request behaves like a denied permission prompt.
type LocationConfig struct {
	Enabled   bool    `mapstructure:"enabled"`
	Address   string  `mapstructure:"address"`
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// DSN returns the lib/pq connection string.
func (p PostgresConfig) DSN() string {
	return "host=" + p.Host + " port=" + p.Port + " user=" + p.User +
		" password=" + p.Password + " dbname=" + p.Name + " sslmode=disable"
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://api.ardelivero.com")
	v.SetDefault("api.key", "")
	v.SetDefault("api.key_header", "x-api-key")
	v.SetDefault("api.image_base_url", "https://api.ardelivero.com")
	v.SetDefault("api.image_placeholder", "/images/placeholder.png")
	v.SetDefault("api.site_url", "https://ardelivero.com")

	v.SetDefault("proxy.addr", ":8080")
	v.SetDefault("proxy.base_url", "http://localhost:8080")

	v.SetDefault("gateway.status_url", "http://localhost:9090/v1/transactions")
	v.SetDefault("gateway.secret_key", "")

	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.namespace", "storefront")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.name", "storefront")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")

	v.SetDefault("kafka.broker", "localhost:9092")
	v.SetDefault("kafka.order_topic", "storefront-orders")
	v.SetDefault("kafka.enabled", false)

	v.SetDefault("otp.countdown", 120*time.Second)
	v.SetDefault("payment.poll_interval", 3*time.Second)
	v.SetDefault("location.enabled", false)
	v.SetDefault("location.address", "")
	v.SetDefault("location.latitude", 0.0)
	v.SetDefault("location.longitude", 0.0)
	v.SetDefault("logging.level", "INFO")
}

// Load reads configuration from defaults, an optional storefront.yaml and
// ARDELIVERO_* environment variables, in increasing priority.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ardelivero")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("storefront")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.ardelivero")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configFile != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func MustInitPostgres(cfg PostgresConfig) *sql.DB {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err = db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	return db
}

func MustInitRedis(cfg RedisConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr(),
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	return client
}

func NewKafkaWriter(cfg KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(cfg.Broker),
		Topic:    cfg.OrderTopic,
		Balancer: &kafka.LeastBytes{},
	}
}
