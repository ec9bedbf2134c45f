package config

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/fx"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var Module = fx.Provide(NewConfig)

type IConfig interface {
	Get(key string) interface{}
	GetBool(key string) bool
	GetFloat64(key string) float64
	GetInt(key string) int
	GetInt64(key string) int64
	GetString(key string) string
	GetStringSlice(key string) []string
	GetDuration(key string) time.Duration
	UnmarshalKey(key string, val interface{}) error
}

type config struct {
	cfg *viper.Viper
}

func NewConfig() IConfig {
	_ = godotenv.Load()

	cfg := viper.New()
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	_ = cfg.BindEnv("server.host", "SERVICE_HOST")
	_ = cfg.BindEnv("server.port", "SERVICE_HTTP_PORT")
	_ = cfg.BindEnv("database.dns", "DATABASE_DNS")
	_ = cfg.BindEnv("database.migration", "DATABASE_MIGRATION")
	_ = cfg.BindEnv("database.host", "POSTGRES_HOST")
	_ = cfg.BindEnv("database.user", "POSTGRES_USER")
	_ = cfg.BindEnv("database.password", "POSTGRES_PASSWORD")
	_ = cfg.BindEnv("database.dbname", "POSTGRES_DATABASE")
	_ = cfg.BindEnv("database.port", "POSTGRES_PORT")
	_ = cfg.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = cfg.BindEnv("redis.addrs", "REDIS_ADDRS")
	_ = cfg.BindEnv("redis.prefix", "REDIS_PREFIX")
	_ = cfg.BindEnv("geocoder.base_url", "GEOCODER_BASE_URL")
	_ = cfg.BindEnv("geocoder.lang", "GEOCODER_LANG")
	_ = cfg.BindEnv("geocoder.limit", "GEOCODER_LIMIT")
	_ = cfg.BindEnv("geocoder.country", "GEOCODER_COUNTRY")
	_ = cfg.BindEnv("geocoder.rate_per_sec", "GEOCODER_RATE_PER_SEC")
	_ = cfg.BindEnv("geocoder.bias_lat", "GEOCODER_BIAS_LAT")
	_ = cfg.BindEnv("geocoder.bias_lng", "GEOCODER_BIAS_LNG")
	_ = cfg.BindEnv("zones.metro_lat", "ZONES_METRO_LAT")
	_ = cfg.BindEnv("zones.metro_lng", "ZONES_METRO_LNG")
	_ = cfg.BindEnv("zones.metro_radius_km", "ZONES_METRO_RADIUS_KM")
	_ = cfg.BindEnv("zones.auto_assign_km", "ZONES_AUTO_ASSIGN_KM")
	_ = cfg.BindEnv("session.debounce_intent", "SESSION_DEBOUNCE_INTENT")
	_ = cfg.BindEnv("session.debounce_courtesy", "SESSION_DEBOUNCE_COURTESY")
	_ = cfg.BindEnv("geolocate.high_timeout", "GEOLOCATE_HIGH_TIMEOUT")
	_ = cfg.BindEnv("geolocate.low_timeout", "GEOLOCATE_LOW_TIMEOUT")

	cfg.SetDefault("server.port", ":8080")
	cfg.SetDefault("geocoder.base_url", "https://photon.komoot.io")
	cfg.SetDefault("geocoder.lang", "en")
	cfg.SetDefault("geocoder.limit", 6)
	cfg.SetDefault("geocoder.country", "Uganda")
	cfg.SetDefault("geocoder.rate_per_sec", 2)
	// Kampala city center biases search and anchors the metro check
	cfg.SetDefault("geocoder.bias_lat", 0.3136)
	cfg.SetDefault("geocoder.bias_lng", 32.5811)
	cfg.SetDefault("zones.metro_lat", 0.3136)
	cfg.SetDefault("zones.metro_lng", 32.5811)
	cfg.SetDefault("zones.metro_radius_km", 25.0)
	cfg.SetDefault("zones.auto_assign_km", 15.0)
	cfg.SetDefault("session.debounce_intent", 150*time.Millisecond)
	cfg.SetDefault("session.debounce_courtesy", 150*time.Millisecond)
	cfg.SetDefault("geolocate.high_timeout", 10*time.Second)
	cfg.SetDefault("geolocate.low_timeout", 15*time.Second)

	if cfg.GetString("database.dns") == "" {
		if dsn := BuildPostgresDSNFromViper(cfg); dsn != "" {
			cfg.Set("database.dns", dsn)
		}
	}
	if cfg.GetString("database.migration") == "" {
		if url := BuildPostgresURLFromViper(cfg); url != "" {
			cfg.Set("database.migration", url)
		}
	}

	return &config{cfg: cfg}
}

func (c *config) Get(key string) interface{} {
	return c.cfg.Get(key)
}

func (c *config) GetBool(key string) bool {
	return c.cfg.GetBool(key)
}

func (c *config) GetFloat64(key string) float64 {
	return c.cfg.GetFloat64(key)
}

func (c *config) GetInt(key string) int {
	return c.cfg.GetInt(key)
}

func (c *config) GetInt64(key string) int64 {
	return c.cfg.GetInt64(key)
}

func (c *config) GetString(key string) string {
	return c.cfg.GetString(key)
}

func (c *config) GetStringSlice(key string) []string {
	return c.cfg.GetStringSlice(key)
}

func (c *config) GetDuration(key string) time.Duration {
	return c.cfg.GetDuration(key)
}

func (c *config) UnmarshalKey(key string, val interface{}) error {
	return c.cfg.UnmarshalKey(key, &val)
}

func BuildPostgresDSNFromViper(v *viper.Viper) string {
	user := v.GetString("database.user")
	password := v.GetString("database.password")
	dbname := v.GetString("database.dbname")
	host := v.GetString("database.host")
	port := v.GetString("database.port")

	if user == "" && host == "" && dbname == "" {
		return ""
	}

	parts := []string{}
	if user != "" {
		parts = append(parts, "user="+user)
	}
	if password != "" {
		parts = append(parts, "password="+password)
	}
	if dbname != "" {
		parts = append(parts, "dbname="+dbname)
	}
	if host != "" {
		parts = append(parts, "host="+host)
	}
	if port != "" {
		parts = append(parts, "port="+port)
	}

	return strings.Join(parts, " ")
}

func BuildPostgresURLFromViper(v *viper.Viper) string {
	user := v.GetString("database.user")
	password := v.GetString("database.password")
	host := v.GetString("database.host")
	port := v.GetString("database.port")
	dbname := v.GetString("database.dbname")

	if user == "" || host == "" || dbname == "" {
		return ""
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		user,
		password,
		host,
		port,
		dbname,
	)
}
