package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

const (
	BackendFlavorOllama = "ollama"
	BackendFlavorVLLM   = "vllm"

	RateLimitDriverMemory = "memory"
	RateLimitDriverRedis  = "redis"
)

// 상한값. 헬스체크/목록 조회는 짧게, 생성 호출은 길게 가져간다.
// MaxStreamTimeout 은 스트림 한 건 전체(첫 바이트부터 마지막 줄까지)의 상한이다.
const (
	MaxHealthTimeout   = 10 * time.Second
	MaxGenerateTimeout = 120 * time.Second
	MaxStreamTimeout   = 10 * time.Minute
)

type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Backend   BackendConfig   `yaml:"backend"`
	Health    HealthConfig    `yaml:"health"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
	Logging   LoggingConfig   `yaml:"logging"`

	// Warnings 는 로딩 중 보정된 값에 대한 메시지다. 로거 초기화 이후 출력한다.
	Warnings []string `yaml:"-"`
}

type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// Addr 는 http.Server 에 넘길 listen 주소다.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type BackendConfig struct {
	Flavor          string   `yaml:"flavor"`
	BaseURL         string   `yaml:"base_url"`
	DefaultModel    string   `yaml:"default_model"`
	HealthTimeout   Duration `yaml:"health_timeout"`
	GenerateTimeout Duration `yaml:"generate_timeout"`
	StreamTimeout   Duration `yaml:"stream_timeout"`
	PullTimeout     Duration `yaml:"pull_timeout"`
}

type HealthConfig struct {
	Interval Duration `yaml:"interval"`
}

// RateLimitConfig 는 클라이언트 키(IP) 단위 슬라이딩 윈도우 설정이다.
// RequestsPerMinute 가 0 이하이면 제한 없음으로 간주한다.
type RateLimitConfig struct {
	RequestsPerMinute int      `yaml:"requests_per_minute"`
	Window            Duration `yaml:"window"`
	Driver            string   `yaml:"driver"`
	RedisAddr         string   `yaml:"redis_addr"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Duration 은 yaml/env 에서 "30s" 같은 Go duration 문자열과 "30", "10.5" 같은
// 초 단위 숫자를 모두 받는다.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// ParseDuration 은 Duration 형식 문자열을 해석한다.
func ParseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New("empty duration")
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("negative duration %q", raw)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("negative duration %q", raw)
	}
	return parsed, nil
}

// Default 는 설정 파일과 환경변수가 전혀 없을 때의 값이다.
func Default() AppConfig {
	return AppConfig{
		Server: ServerConfig{Host: "0.0.0.0", Port: 9999},
		Backend: BackendConfig{
			Flavor:          BackendFlavorOllama,
			BaseURL:         "http://localhost:11434",
			DefaultModel:    "qwen2.5:0.5b",
			HealthTimeout:   Duration(10 * time.Second),
			GenerateTimeout: Duration(120 * time.Second),
			StreamTimeout:   Duration(300 * time.Second),
			PullTimeout:     Duration(300 * time.Second),
		},
		Health: HealthConfig{Interval: Duration(30 * time.Second)},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 100,
			Window:            Duration(time.Minute),
			Driver:            RateLimitDriverMemory,
			RedisAddr:         "localhost:6379",
		},
		CORS:    CORSConfig{AllowedOrigins: []string{"*"}},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load 는 baseDir 의 .env, config.yaml 을 순서대로 적용한 뒤 환경변수로 덮어쓴다.
// 두 파일 모두 없어도 된다. baseDir 가 비어 있으면 현재 디렉터리를 사용한다.
func Load(baseDir string) (AppConfig, error) {
	c := Default()

	// .env 는 이미 설정된 환경변수를 덮어쓰지 않는다.
	if err := godotenv.Load(filepath.Join(baseDir, ENV_FILE)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return c, fmt.Errorf("load %s: %w", ENV_FILE, err)
	}

	data, err := os.ReadFile(filepath.Join(baseDir, CONFIG_FILE))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("parse %s: %w", CONFIG_FILE, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return c, fmt.Errorf("read %s: %w", CONFIG_FILE, err)
	}

	if err := applyEnv(&c); err != nil {
		return c, err
	}
	if err := c.normalize(); err != nil {
		return c, err
	}
	return c, nil
}

func applyEnv(c *AppConfig) error {
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setList := func(key string, dst *[]string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = splitList(v)
		}
	}
	setInt := func(key string, dst *int) error {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", key, v)
		}
		*dst = n
		return nil
	}
	setDuration := func(key string, dst *Duration) error {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return nil
		}
		d, err := ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = Duration(d)
		return nil
	}

	setString("CONTROLLER_HOST", &c.Server.Host)
	setList("TRUSTED_PROXIES", &c.Server.TrustedProxies)
	setString("BACKEND_FLAVOR", &c.Backend.Flavor)
	setString("LLM_API_HOST", &c.Backend.BaseURL)
	setString("DEFAULT_MODEL", &c.Backend.DefaultModel)
	setString("RATE_LIMIT_DRIVER", &c.RateLimit.Driver)
	setString("REDIS_ADDR", &c.RateLimit.RedisAddr)
	setList("CORS_ALLOWED_ORIGINS", &c.CORS.AllowedOrigins)
	setString("LOG_LEVEL", &c.Logging.Level)

	for _, f := range []func() error{
		func() error { return setInt("CONTROLLER_PORT", &c.Server.Port) },
		func() error { return setInt("RATE_LIMIT_PER_MINUTE", &c.RateLimit.RequestsPerMinute) },
		func() error { return setDuration("HEALTH_CHECK_TIMEOUT", &c.Backend.HealthTimeout) },
		func() error { return setDuration("BACKEND_TIMEOUT", &c.Backend.GenerateTimeout) },
		func() error { return setDuration("STREAM_TIMEOUT", &c.Backend.StreamTimeout) },
		func() error { return setDuration("PULL_TIMEOUT", &c.Backend.PullTimeout) },
		func() error { return setDuration("HEALTH_CHECK_INTERVAL", &c.Health.Interval) },
		func() error { return setDuration("RATE_LIMIT_WINDOW", &c.RateLimit.Window) },
	} {
		if err := f(); err != nil {
			return err
		}
	}
	return nil
}

func (c *AppConfig) normalize() error {
	c.Backend.Flavor = strings.ToLower(strings.TrimSpace(c.Backend.Flavor))
	switch c.Backend.Flavor {
	case BackendFlavorOllama, BackendFlavorVLLM:
	default:
		return fmt.Errorf("backend.flavor: unsupported value %q", c.Backend.Flavor)
	}

	c.RateLimit.Driver = strings.ToLower(strings.TrimSpace(c.RateLimit.Driver))
	switch c.RateLimit.Driver {
	case RateLimitDriverMemory, RateLimitDriverRedis:
	default:
		return fmt.Errorf("rate_limit.driver: unsupported value %q", c.RateLimit.Driver)
	}

	c.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(c.Backend.BaseURL), "/")
	if c.Backend.BaseURL == "" {
		return errors.New("backend.base_url must not be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port: out of range %d", c.Server.Port)
	}

	if c.Backend.HealthTimeout <= 0 || c.Backend.HealthTimeout.Std() > MaxHealthTimeout {
		c.Warnings = append(c.Warnings, fmt.Sprintf("backend.health_timeout %s clamped to %s", c.Backend.HealthTimeout.Std(), MaxHealthTimeout))
		c.Backend.HealthTimeout = Duration(MaxHealthTimeout)
	}
	if c.Backend.GenerateTimeout <= 0 || c.Backend.GenerateTimeout.Std() > MaxGenerateTimeout {
		c.Warnings = append(c.Warnings, fmt.Sprintf("backend.generate_timeout %s clamped to %s", c.Backend.GenerateTimeout.Std(), MaxGenerateTimeout))
		c.Backend.GenerateTimeout = Duration(MaxGenerateTimeout)
	}
	if c.Backend.StreamTimeout <= 0 {
		c.Backend.StreamTimeout = Default().Backend.StreamTimeout
	}
	if c.Backend.StreamTimeout.Std() > MaxStreamTimeout {
		c.Warnings = append(c.Warnings, fmt.Sprintf("backend.stream_timeout %s clamped to %s", c.Backend.StreamTimeout.Std(), MaxStreamTimeout))
		c.Backend.StreamTimeout = Duration(MaxStreamTimeout)
	}
	if c.Backend.PullTimeout <= 0 {
		c.Backend.PullTimeout = Default().Backend.PullTimeout
	}
	if c.Health.Interval <= 0 {
		c.Health.Interval = Default().Health.Interval
	}
	if c.RateLimit.Window <= 0 {
		c.RateLimit.Window = Default().RateLimit.Window
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		c.RateLimit.RequestsPerMinute = 0
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GetBasePath 는 현재 디렉터리에서 위로 올라가며 config.yaml 이 있는 디렉터리를 찾는다.
// 찾지 못하면 현재 디렉터리를 반환한다.
func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return cwd
}
