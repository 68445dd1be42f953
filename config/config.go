// Package config 提供了统一的配置加载与管理能力.
// 配置文件为 TOML，环境变量以 APP_ 为前缀覆盖同名键（点号替换为下划线）。
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/wyfcoding/lca/logging"
)

// Config 全局顶级配置结构.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    toml:"server"`
	Log       LogConfig       `mapstructure:"log"       toml:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"   toml:"metrics"`
	Tracing   TracingConfig   `mapstructure:"tracing"   toml:"tracing"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit" toml:"ratelimit"`
	Tree      TreeConfig      `mapstructure:"tree"      toml:"tree"`
	Engine    EngineConfig    `mapstructure:"engine"    toml:"engine"`
	Bench     BenchConfig     `mapstructure:"bench"     toml:"bench"`
	IDGen     IDGenConfig     `mapstructure:"idgen"     toml:"idgen"`
}

// ServerConfig 定义服务器运行时的基础网络与环境参数.
type ServerConfig struct {
	Name        string `mapstructure:"name"        toml:"name"        validate:"required"`
	Environment string `mapstructure:"environment" toml:"environment" validate:"oneof=dev test prod"`
	HTTP        struct {
		Addr            string        `mapstructure:"addr"             toml:"addr"             validate:"required"`
		ReadTimeout     time.Duration `mapstructure:"read_timeout"     toml:"read_timeout"`
		WriteTimeout    time.Duration `mapstructure:"write_timeout"    toml:"write_timeout"`
		IdleTimeout     time.Duration `mapstructure:"idle_timeout"     toml:"idle_timeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" toml:"shutdown_timeout"`
		RequestTimeout  time.Duration `mapstructure:"request_timeout"  toml:"request_timeout"`
		MaxBodyBytes    int64         `mapstructure:"max_body_bytes"   toml:"max_body_bytes"   validate:"min=0"`
	} `mapstructure:"http" toml:"http"`
}

// LogConfig 定义日志输出、级别与切割策略.
type LogConfig struct {
	Level         string        `mapstructure:"level"          toml:"level"          validate:"oneof=debug info warn error"`
	Format        string        `mapstructure:"format"         toml:"format"         validate:"oneof=json text"`
	Output        string        `mapstructure:"output"         toml:"output"         validate:"oneof=stdout file both"`
	File          string        `mapstructure:"file"           toml:"file"           validate:"required_unless=Output stdout"`
	MaxSize       int           `mapstructure:"max_size"       toml:"max_size"`       // 单个文件最大大小 (MB)。
	MaxBackups    int           `mapstructure:"max_backups"    toml:"max_backups"`    // 最大备份数。
	MaxAge        int           `mapstructure:"max_age"        toml:"max_age"`        // 最大保留天数。
	Compress      bool          `mapstructure:"compress"       toml:"compress"`       // 是否启用压缩。
	SlowThreshold time.Duration `mapstructure:"slow_threshold" toml:"slow_threshold"` // HTTP 慢请求阈值。
}

// TracingConfig 分布式链路追踪（OpenTelemetry）配置.
type TracingConfig struct {
	ServiceName  string  `mapstructure:"service_name"  toml:"service_name"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint" toml:"otlp_endpoint" validate:"required_if=Enabled true"`
	SamplerRatio float64 `mapstructure:"sampler_ratio" toml:"sampler_ratio" validate:"min=0,max=1"`
	Enabled      bool    `mapstructure:"enabled"       toml:"enabled"`
}

// MetricsConfig 普罗米修斯监控指标暴露配置.
type MetricsConfig struct {
	Path    string `mapstructure:"path"    toml:"path"`
	Enabled bool   `mapstructure:"enabled" toml:"enabled"`
}

// RateLimitConfig 定义令牌桶限流参数.
type RateLimitConfig struct {
	Rate    int  `mapstructure:"rate"    toml:"rate"  validate:"min=0"`
	Burst   int  `mapstructure:"burst"   toml:"burst" validate:"min=0"`
	Enabled bool `mapstructure:"enabled" toml:"enabled"`
}

// IDGenConfig 请求 ID 生成器参数.
type IDGenConfig struct {
	Type      string `mapstructure:"type"       toml:"type"       validate:"omitempty,oneof=snowflake sonyflake"`
	StartTime string `mapstructure:"start_time" toml:"start_time"` // 形如 2006-01-02
	MachineID int64  `mapstructure:"machine_id" toml:"machine_id" validate:"min=0,max=65535"`
}

// TreeConfig 描述树的来源：JSON 邻接表文件，或按参数随机生成。
type TreeConfig struct {
	File     string         `mapstructure:"file"     toml:"file"`
	Generate GenerateConfig `mapstructure:"generate" toml:"generate"`
}

// GenerateConfig 随机树生成参数.
type GenerateConfig struct {
	MaxDepth    int    `mapstructure:"max_depth"    toml:"max_depth"    validate:"min=0,max=24"`
	MaxChildren int    `mapstructure:"max_children" toml:"max_children" validate:"min=1"`
	Seed        uint64 `mapstructure:"seed"         toml:"seed"`
}

// EngineConfig LCA 引擎参数.
type EngineConfig struct {
	Strategies []string `mapstructure:"strategies" toml:"strategies" validate:"min=1,dive,oneof=naive binary_lifting euler_rmq tarjan"`
	MaxDepth   int      `mapstructure:"max_depth"  toml:"max_depth"  validate:"min=0,max=64"` // 倍增表宽度下限，0 表示由树深推导
	Workers    int      `mapstructure:"workers"    toml:"workers"    validate:"min=0"`
}

// BenchConfig 基准测试参数.
type BenchConfig struct {
	QueryCounts []int  `mapstructure:"query_counts" toml:"query_counts" validate:"min=1,dive,min=0"`
	Seed        uint64 `mapstructure:"seed"         toml:"seed"`
	Verify      bool   `mapstructure:"verify"       toml:"verify"`
}

var (
	mu        sync.Mutex
	vInstance = viper.New()
	onReload  []func(*Config)
	validate  = validator.New()
)

// RegisterReloadHook 注册配置热更新回调。
func RegisterReloadHook(hook func(*Config)) {
	if hook == nil {
		return
	}
	mu.Lock()
	onReload = append(onReload, hook)
	mu.Unlock()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "lca")
	v.SetDefault("server.environment", "dev")
	v.SetDefault("server.http.addr", ":8080")
	v.SetDefault("server.http.read_timeout", 5*time.Second)
	v.SetDefault("server.http.write_timeout", 10*time.Second)
	v.SetDefault("server.http.idle_timeout", 60*time.Second)
	v.SetDefault("server.http.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.http.request_timeout", 30*time.Second)
	v.SetDefault("server.http.max_body_bytes", 4<<20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 7)
	v.SetDefault("log.compress", false)
	v.SetDefault("log.slow_threshold", 500*time.Millisecond)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "lca")
	v.SetDefault("tracing.otlp_endpoint", "")
	v.SetDefault("tracing.sampler_ratio", 1.0)

	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.rate", 1000)
	v.SetDefault("ratelimit.burst", 2000)

	v.SetDefault("tree.file", "")
	v.SetDefault("tree.generate.max_depth", 10)
	v.SetDefault("tree.generate.max_children", 3)
	v.SetDefault("tree.generate.seed", 1)

	v.SetDefault("engine.strategies", []string{"naive", "binary_lifting", "euler_rmq", "tarjan"})
	v.SetDefault("engine.max_depth", 0)
	v.SetDefault("engine.workers", 0)

	v.SetDefault("bench.query_counts", []int{1000, 10000, 100000})
	v.SetDefault("bench.seed", 1)
	v.SetDefault("bench.verify", true)

	v.SetDefault("idgen.type", "snowflake")
	v.SetDefault("idgen.start_time", "")
	v.SetDefault("idgen.machine_id", 1)
}

// Load 读取 TOML 配置文件并叠加环境变量与默认值，随后执行校验.
// path 为空时仅使用默认值与环境变量。
func Load(path string, conf *Config) error {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config error: %w", err)
		}
	}

	if err := v.Unmarshal(conf); err != nil {
		return fmt.Errorf("unmarshal config error: %w", err)
	}

	if err := validate.Struct(conf); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	mu.Lock()
	vInstance = v
	mu.Unlock()
	return nil
}

// Watch 监听配置文件变化并热更新 conf：同步日志级别并依次调用已注册的回调.
// 新配置校验失败时保留旧配置。
func Watch(conf *Config) {
	v := GetViper()
	v.OnConfigChange(func(event fsnotify.Event) {
		slog.Info("detecting config change", "file", event.Name)
		const debounceTimeout = 500 * time.Millisecond
		time.Sleep(debounceTimeout)

		next := *conf
		if err := v.Unmarshal(&next); err != nil {
			slog.Error("reload config unmarshal failed", "error", err)
			return
		}
		if err := validate.Struct(&next); err != nil {
			slog.Error("reload config validation failed", "error", err)
			return
		}

		mu.Lock()
		*conf = next
		hooks := append([]func(*Config){}, onReload...)
		mu.Unlock()

		logging.SetLevel(conf.Log.Level)
		slog.Info("config hot-reloaded and validated successfully")

		for _, hook := range hooks {
			hook(conf)
		}
	})
	v.WatchConfig()
}

// PrintWithMask 脱敏打印当前配置.
func PrintWithMask(conf any) {
	data, err := json.Marshal(conf)
	if err != nil {
		slog.Error("failed to marshal config for printing", "error", err)
		return
	}

	var configMap map[string]any
	if unmarshalErr := json.Unmarshal(data, &configMap); unmarshalErr != nil {
		slog.Error("failed to unmarshal config for masking", "error", unmarshalErr)
		return
	}

	mask(configMap)

	maskedJSON, marshalErr := json.MarshalIndent(configMap, "  ", "  ")
	if marshalErr != nil {
		slog.Error("failed to marshal masked config", "error", marshalErr)
		return
	}

	slog.Info("Current effective configuration", "config", string(maskedJSON))
}

func mask(configMap map[string]any) {
	sensitiveKeys := []string{"password", "secret", "dsn", "key", "token", "endpoint"}

	for key, val := range configMap {
		if subMap, ok := val.(map[string]any); ok {
			mask(subMap)
			continue
		}

		for _, sensitiveKey := range sensitiveKeys {
			if strings.Contains(strings.ToLower(key), sensitiveKey) {
				configMap[key] = "******"
				break
			}
		}
	}
}

// GetViper 返回最近一次 Load 使用的 Viper 实例.
func GetViper() *viper.Viper {
	mu.Lock()
	defer mu.Unlock()
	return vInstance
}
