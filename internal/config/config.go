// Package config 提供配置加载和管理功能
package config

import (
	"time"
)

// Config 应用配置根结构
type Config struct {
	App           AppConfig           `yaml:"app" mapstructure:"app"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Database      DatabaseConfig      `yaml:"database" mapstructure:"database"`
	Cache         CacheConfig         `yaml:"cache" mapstructure:"cache"`
	Preferences   PreferencesConfig   `yaml:"preferences" mapstructure:"preferences"`
	Analytics     AnalyticsConfig     `yaml:"analytics" mapstructure:"analytics"`
	Billing       BillingConfig       `yaml:"billing" mapstructure:"billing"`
	Providers     ProvidersConfig     `yaml:"providers" mapstructure:"providers"`
	Messaging     MessagingConfig     `yaml:"messaging" mapstructure:"messaging"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
	Security      SecurityConfig      `yaml:"security" mapstructure:"security"`
	Bootstrap     BootstrapConfig     `yaml:"bootstrap" mapstructure:"bootstrap"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Version string `yaml:"version" mapstructure:"version"`
	Env     string `yaml:"env" mapstructure:"env"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTP HTTPServerConfig `yaml:"http" mapstructure:"http"`
}

// HTTPServerConfig HTTP 服务器配置
type HTTPServerConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Postgres PostgresConfig `yaml:"postgres" mapstructure:"postgres"`
}

// PostgresConfig PostgreSQL 配置
type PostgresConfig struct {
	Host            string        `yaml:"host" mapstructure:"host"`
	Port            int           `yaml:"port" mapstructure:"port"`
	User            string        `yaml:"user" mapstructure:"user"`
	Password        string        `yaml:"password" mapstructure:"password"`
	Database        string        `yaml:"database" mapstructure:"database"`
	SSLMode         string        `yaml:"ssl_mode" mapstructure:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool          `yaml:"auto_migrate" mapstructure:"auto_migrate"`
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Redis       RedisConfig   `yaml:"redis" mapstructure:"redis"`
	SettingsTTL time.Duration `yaml:"settings_ttl" mapstructure:"settings_ttl"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	Password     string        `yaml:"password" mapstructure:"password"`
	DB           int           `yaml:"db" mapstructure:"db"`
	PoolSize     int           `yaml:"pool_size" mapstructure:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// PreferencesConfig 用户偏好存储配置
type PreferencesConfig struct {
	// Backend 存储后端：memory / bolt / redis
	Backend   string `yaml:"backend" mapstructure:"backend"`
	BoltPath  string `yaml:"bolt_path" mapstructure:"bolt_path"`
	KeyPrefix string `yaml:"key_prefix" mapstructure:"key_prefix"`
	// SequenceBackend 看板请求序号存储：memory / redis
	SequenceBackend string `yaml:"sequence_backend" mapstructure:"sequence_backend"`
}

// AnalyticsConfig 看板分析配置
type AnalyticsConfig struct {
	DefaultDays       int                `yaml:"default_days" mapstructure:"default_days"`
	MaxRows           int                `yaml:"max_rows" mapstructure:"max_rows"`
	OtherCategory     string             `yaml:"other_category" mapstructure:"other_category"`
	Palette           []string           `yaml:"palette" mapstructure:"palette"`
	DefaultParameters BusinessParameters `yaml:"default_parameters" mapstructure:"default_parameters"`
}

// BusinessParameters 组织级默认业务参数，引导写入时使用
type BusinessParameters struct {
	RevenuePerInteraction      float64 `yaml:"revenue_per_interaction" mapstructure:"revenue_per_interaction"`
	ConversionRate             float64 `yaml:"conversion_rate" mapstructure:"conversion_rate"`
	MinutesSavedPerInteraction float64 `yaml:"minutes_saved_per_interaction" mapstructure:"minutes_saved_per_interaction"`
	HourlyCost                 float64 `yaml:"hourly_cost" mapstructure:"hourly_cost"`
}

// BillingConfig 计费配置
type BillingConfig struct {
	// Pricing 模型价格表，单位 USD / 1K tokens（列表形式，模型名可含 "."）
	Pricing   []ModelPrice `yaml:"pricing" mapstructure:"pricing"`
	BatchSize int          `yaml:"batch_size" mapstructure:"batch_size"`
}

// ModelPrice 单个模型价格
type ModelPrice struct {
	Model      string  `yaml:"model" mapstructure:"model"`
	Provider   string  `yaml:"provider" mapstructure:"provider"`
	Prompt     float64 `yaml:"prompt" mapstructure:"prompt"`
	Completion float64 `yaml:"completion" mapstructure:"completion"`
}

// ProvidersConfig 模型供应商配置
type ProvidersConfig struct {
	Items map[string]ProviderConfig `yaml:"items" mapstructure:"items"`
}

// ProviderConfig 单个供应商配置
type ProviderConfig struct {
	// Kind 供应商协议：openai（OpenAI 兼容）/ static（仅模型列表）
	Kind      string        `yaml:"kind" mapstructure:"kind"`
	APIKey    string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL   string        `yaml:"base_url" mapstructure:"base_url"`
	Models    []string      `yaml:"models" mapstructure:"models"`
	TestModel string        `yaml:"test_model" mapstructure:"test_model"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// MessagingConfig 消息队列配置
type MessagingConfig struct {
	RedisStream RedisStreamConfig `yaml:"redis_stream" mapstructure:"redis_stream"`
}

// RedisStreamConfig Redis Stream 配置
type RedisStreamConfig struct {
	MaxLen              int           `yaml:"max_len" mapstructure:"max_len"`
	ConsumerGroupPrefix string        `yaml:"consumer_group_prefix" mapstructure:"consumer_group_prefix"`
	BlockTimeout        time.Duration `yaml:"block_timeout" mapstructure:"block_timeout"`
	ClaimInterval       time.Duration `yaml:"claim_interval" mapstructure:"claim_interval"`
	RetryLimit          int           `yaml:"retry_limit" mapstructure:"retry_limit"`
	RetryBackoff        BackoffConfig `yaml:"retry_backoff" mapstructure:"retry_backoff"`
}

// BackoffConfig 退避配置
type BackoffConfig struct {
	Initial    time.Duration `yaml:"initial" mapstructure:"initial"`
	Max        time.Duration `yaml:"max" mapstructure:"max"`
	Multiplier float64       `yaml:"multiplier" mapstructure:"multiplier"`
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// TracingConfig 追踪配置
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	JWT       JWTConfig       `yaml:"jwt" mapstructure:"jwt"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors" mapstructure:"cors"`
}

// JWTConfig JWT 配置
type JWTConfig struct {
	Secret            string        `yaml:"secret" mapstructure:"secret"`
	Issuer            string        `yaml:"issuer" mapstructure:"issuer"`
	Expiration        time.Duration `yaml:"expiration" mapstructure:"expiration"`
	RefreshExpiration time.Duration `yaml:"refresh_expiration" mapstructure:"refresh_expiration"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" mapstructure:"enabled"`
	RequestsPerSecond int  `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int  `yaml:"burst" mapstructure:"burst"`
	// PerUser 为 true 时按用户独立计数，否则组织内共享
	PerUser           bool `yaml:"per_user" mapstructure:"per_user"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
}

// BootstrapConfig 初始化引导配置
type BootstrapConfig struct {
	OrgName       string `yaml:"org_name" mapstructure:"org_name"`
	AdminEmail    string `yaml:"admin_email" mapstructure:"admin_email"`
	AdminPassword string `yaml:"admin_password" mapstructure:"admin_password"`
	AdminName     string `yaml:"admin_name" mapstructure:"admin_name"`
	SeedSettings  bool   `yaml:"seed_settings" mapstructure:"seed_settings"`
}
