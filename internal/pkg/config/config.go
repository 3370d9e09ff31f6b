// Package config loads service settings from defaults, an optional YAML
// file and ORDERS_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "ORDERS"

type Config struct {
	HTTP         HTTPConfig         `mapstructure:"http"`
	DB           DBConfig           `mapstructure:"db"`
	Redis        RedisConfig        `mapstructure:"redis"`
	AMQP         AMQPConfig         `mapstructure:"amqp"`
	SMTP         SMTPConfig         `mapstructure:"smtp"`
	SMS          SMSConfig          `mapstructure:"sms"`
	Slack        SlackConfig        `mapstructure:"slack"`
	Notification NotificationConfig `mapstructure:"notification"`
	Validation   ValidationConfig   `mapstructure:"validation"`
	Log          LogConfig          `mapstructure:"log"`
	OTel         OTelConfig         `mapstructure:"otel"`

	// Coupons is a list rather than a map because viper lowercases map
	// keys and coupon codes are case-sensitive. A configured list replaces
	// the default table (SAVE10) entirely; list SAVE10 to keep it.
	Coupons []CouponConfig `mapstructure:"coupons"`
}

type CouponConfig struct {
	Code    string `mapstructure:"code"`
	Percent string `mapstructure:"percent"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// DBConfig.Path empty selects the in-memory store.
type DBConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig.Addr empty selects the in-process cache.
type RedisConfig struct {
	Addr string `mapstructure:"addr"`
}

type AMQPConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	From     string `mapstructure:"from"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type SMSConfig struct {
	URL  string `mapstructure:"url"`
	From string `mapstructure:"from"`
}

type SlackConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
}

type NotificationConfig struct {
	Channel string `mapstructure:"channel"`
	Strict  bool   `mapstructure:"strict"`
}

type ValidationConfig struct {
	StrictEmail bool `mapstructure:"strict_email"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type OTelConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
	Environment string `mapstructure:"environment"`
}

func Defaults() Config {
	return Config{
		HTTP:         HTTPConfig{Addr: ":8080"},
		DB:           DBConfig{Path: "orders.db"},
		AMQP:         AMQPConfig{Exchange: "order_exchange"},
		SMTP:         SMTPConfig{Port: 25, From: "orders@localhost"},
		Notification: NotificationConfig{Channel: "EMAIL"},
		Log:          LogConfig{Level: "info"},
		OTel:         OTelConfig{ServiceName: "order-service", Environment: "local"},
		Coupons:      []CouponConfig{{Code: "SAVE10", Percent: "10"}},
	}
}

// SetDefaults registers every default on v so environment overrides work
// for keys absent from the config file.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("http.addr", d.HTTP.Addr)
	v.SetDefault("db.path", d.DB.Path)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("amqp.url", d.AMQP.URL)
	v.SetDefault("amqp.exchange", d.AMQP.Exchange)
	v.SetDefault("smtp.host", d.SMTP.Host)
	v.SetDefault("smtp.port", d.SMTP.Port)
	v.SetDefault("smtp.from", d.SMTP.From)
	v.SetDefault("smtp.username", d.SMTP.Username)
	v.SetDefault("smtp.password", d.SMTP.Password)
	v.SetDefault("sms.url", d.SMS.URL)
	v.SetDefault("sms.from", d.SMS.From)
	v.SetDefault("slack.webhook_url", d.Slack.WebhookURL)
	v.SetDefault("notification.channel", d.Notification.Channel)
	v.SetDefault("notification.strict", d.Notification.Strict)
	v.SetDefault("validation.strict_email", d.Validation.StrictEmail)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("otel.endpoint", d.OTel.Endpoint)
	v.SetDefault("otel.service_name", d.OTel.ServiceName)
	v.SetDefault("otel.environment", d.OTel.Environment)
	v.SetDefault("coupons", d.Coupons)
}

// Load reads configuration into a Config. file may be empty, in which case
// ./orders.yaml is used if it exists.
func Load(v *viper.Viper, file string) (Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("orders")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// CouponPercentages returns the configured coupons as code → percent.
func (c Config) CouponPercentages() map[string]string {
	out := make(map[string]string, len(c.Coupons))
	for _, cp := range c.Coupons {
		out[cp.Code] = cp.Percent
	}
	return out
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Notification.Channel) == "" {
		return fmt.Errorf("config: notification.channel cannot be empty")
	}
	seen := make(map[string]bool, len(c.Coupons))
	for _, cp := range c.Coupons {
		if seen[cp.Code] {
			return fmt.Errorf("config: coupon %q listed twice", cp.Code)
		}
		seen[cp.Code] = true
	}
	if c.SMTP.Port < 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("config: smtp.port %d out of range", c.SMTP.Port)
	}
	return nil
}
