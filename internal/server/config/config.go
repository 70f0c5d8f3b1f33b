// Package config отвечает за:
// - чтение server.yaml
// - подстановку переменных окружения вида ${JWT_SECRET}
// - переопределение отдельных настроек через переменные окружения (DB_HOST, PORT и т.д.)
// - проставление дефолтов
// - валидацию (чтобы сервер не стартовал с дырявыми настройками, например без ключа подписи)
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config - корневая структура всего конфига сервера.
type Config struct {
	Env        string           `yaml:"env"` // dev|stage|prod
	Server     ServerConfig     `yaml:"server"`
	TLS        TLSConfig        `yaml:"tls"`
	CORS       CORSConfig       `yaml:"cors"`
	DB         DBConfig         `yaml:"db"`
	Migrations MigrationsConfig `yaml:"migrations"`
	Auth       AuthConfig       `yaml:"auth"`
	Password   PasswordConfig   `yaml:"password"`
	Images     ImagesConfig     `yaml:"images"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig - настройки HTTP-сервера.
type ServerConfig struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"` // время на graceful shutdown
	MaxHeaderBytes    int           `yaml:"max_header_bytes"` // лимит размера заголовков
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`   // лимит размера JSON тела запроса
}

// TLSConfig - настройки HTTPS. В отличие от секретов тут TLS опционален:
// фронтенд обычно живёт за reverse proxy.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// CORSConfig - откуда браузерному клиенту разрешено ходить в API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DBConfig - настройки подключения к базе данных.
//
// Если DSN пустой, он собирается из Host/Port/User/Password/Name.
type DBConfig struct {
	DSN             string        `yaml:"dsn"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"` // размер пула
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// MigrationsConfig - настройки миграций БД.
type MigrationsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// AuthConfig - настройки аутентификации.
type AuthConfig struct {
	Issuer    string        `yaml:"issuer"`
	Audience  string        `yaml:"audience"`
	AccessTTL time.Duration `yaml:"access_ttl"`
	JWT       JWTConfig     `yaml:"jwt"`
}

// JWTConfig - как подписываем JWT.
type JWTConfig struct {
	Algorithm  string `yaml:"algorithm"`   // сейчас поддерживаем только HS256
	SigningKey string `yaml:"signing_key"` // может содержать ${JWT_SECRET}
}

// PasswordConfig - настройки хэширования паролей пользователей.
type PasswordConfig struct {
	Hasher string       `yaml:"hasher"` // argon2id|bcrypt
	Argon2 Argon2Config `yaml:"argon2"`
	Bcrypt BcryptConfig `yaml:"bcrypt"`
}

// Argon2Config - параметры argon2id.
type Argon2Config struct {
	Time      uint32 `yaml:"time"`
	MemoryKiB uint32 `yaml:"memory_kib"`
	Threads   uint8  `yaml:"threads"`
	KeyLen    uint32 `yaml:"key_len"`
	SaltLen   uint32 `yaml:"salt_len"`
}

// BcryptConfig - параметры bcrypt.
type BcryptConfig struct {
	Cost int `yaml:"cost"`
}

// ImagesConfig - приём и хранение загруженных картинок.
type ImagesConfig struct {
	Driver       string   `yaml:"driver"`        // local|s3
	Dir          string   `yaml:"dir"`           // каталог для driver=local
	URLPrefix    string   `yaml:"url_prefix"`    // по какому пути отдаём файлы (/images)
	MaxBytes     int64    `yaml:"max_bytes"`     // лимит размера одного файла
	AllowedTypes []string `yaml:"allowed_types"` // MIME allow-list
	S3           S3Config `yaml:"s3"`
}

// S3Config - настройки S3-совместимого хранилища.
type S3Config struct {
	Bucket       string `yaml:"bucket"`
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"` // для minio и прочих совместимых API
	Prefix       string `yaml:"prefix"`
	UsePathStyle bool   `yaml:"use_path_style"`
	AccessKey    string `yaml:"access_key"`
	SecretKey    string `yaml:"secret_key"`
}

// LogConfig - настройки логирования (zap).
type LogConfig struct {
	Level       string `yaml:"level"`  // debug|info|warn|error
	Format      string `yaml:"format"` // json|console
	Dir         string `yaml:"dir"`
	Development bool   `yaml:"development"`
}

// DefaultAllowedImageTypes - картинки, которые принимает сервер.
var DefaultAllowedImageTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/webp",
	"image/gif",
}

// Load читает YAML, подставляет переменные окружения вида ${VAR},
// затем парсит в структуру, применяет env overrides, проставляет дефолты и валидирует.
//
// Если файла нет - конфиг собирается только из окружения и дефолтов.
func Load(path string) (*Config, error) {
	var cfg Config

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		// signing_key: "${JWT_SECRET}" -> signing_key: "реальное_значение"
		expanded := ExpandEnvStrict(string(raw))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("не удалось распарсить yaml: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// работаем только на переменных окружения
	default:
		return nil, fmt.Errorf("не удалось прочитать конфиг: %w", err)
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var envRe = regexp.MustCompile(`\$\{([A-Z0-9_]+)\}`)

// ExpandEnvStrict заменяет ${VAR} на значение из окружения.
// Если переменная не задана - оставляем ${VAR} как есть,
// а потом Validate() упадёт с понятной ошибкой.
func ExpandEnvStrict(s string) string {
	return envRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := envRe.FindStringSubmatch(m)
		if len(sub) != 2 {
			return m
		}
		if val, ok := os.LookupEnv(sub[1]); ok {
			return val
		}
		return m
	})
}

// ApplyDefaults - дефолтные значения, если в yaml поле не задано.
func ApplyDefaults(cfg *Config) {
	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadHeaderTimeout == 0 {
		cfg.Server.ReadHeaderTimeout = 5 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 1 << 20
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxOpenConns == 0 {
		cfg.DB.MaxOpenConns = 10
	}
	if cfg.DB.MaxIdleConns == 0 {
		cfg.DB.MaxIdleConns = cfg.DB.MaxOpenConns
	}
	if cfg.Migrations.Path == "" {
		cfg.Migrations.Path = "file://migrations/postgres"
	}
	if cfg.Auth.AccessTTL == 0 {
		cfg.Auth.AccessTTL = time.Hour
	}
	if cfg.Auth.JWT.Algorithm == "" {
		cfg.Auth.JWT.Algorithm = "HS256"
	}
	if cfg.Password.Hasher == "" {
		cfg.Password.Hasher = "argon2id"
	}
	if cfg.Password.Argon2 == (Argon2Config{}) {
		cfg.Password.Argon2 = Argon2Config{Time: 3, MemoryKiB: 64 * 1024, Threads: 2, KeyLen: 32, SaltLen: 16}
	}
	if cfg.Password.Bcrypt.Cost == 0 {
		cfg.Password.Bcrypt.Cost = 10
	}
	if cfg.Images.Driver == "" {
		cfg.Images.Driver = "local"
	}
	if cfg.Images.Dir == "" {
		cfg.Images.Dir = "public/images"
	}
	if cfg.Images.URLPrefix == "" {
		cfg.Images.URLPrefix = "/images"
	}
	if cfg.Images.MaxBytes == 0 {
		cfg.Images.MaxBytes = 5 << 20
	}
	if len(cfg.Images.AllowedTypes) == 0 {
		cfg.Images.AllowedTypes = append([]string(nil), DefaultAllowedImageTypes...)
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"http://localhost:5173"}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}

// Validate проверяет, что конфиг заполнен корректно и безопасно.
// Если что-то не так - возвращаем ошибку и сервер НЕ стартует.
func (c *Config) Validate() error {
	// Базовая проверка сервера
	if c.Server.Host == "" {
		return errors.New("server.host обязателен")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port некорректен: %d", c.Server.Port)
	}

	// TLS/HTTPS
	if c.TLS.Enabled && (c.TLS.CertFile == "" || c.TLS.KeyFile == "") {
		return errors.New("tls.cert_file и tls.key_file обязательны при tls.enabled=true")
	}

	// База данных
	if c.DB.DSN == "" && (c.DB.Host == "" || c.DB.Name == "") {
		return errors.New("db.dsn или db.host + db.name обязательны")
	}
	if c.DB.MaxOpenConns < 0 {
		return fmt.Errorf("db.max_open_conns некорректен: %d", c.DB.MaxOpenConns)
	}

	// JWT
	alg := strings.ToUpper(strings.TrimSpace(c.Auth.JWT.Algorithm))
	if alg != "HS256" {
		return fmt.Errorf("auth.jwt.algorithm должен быть HS256 (сейчас %q)", c.Auth.JWT.Algorithm)
	}

	key := strings.TrimSpace(c.Auth.JWT.SigningKey)
	if key == "" {
		return errors.New("auth.jwt.signing_key обязателен (через ${JWT_SECRET} или прямо строкой)")
	}
	// Если ${JWT_SECRET} не подставился - значит переменная окружения не задана
	if strings.Contains(key, "${") && strings.Contains(key, "}") {
		return fmt.Errorf("auth.jwt.signing_key содержит неподставленную переменную: %q (нужно задать JWT_SECRET)", key)
	}
	// Для HS256 ключ должен быть длинным и случайным
	if len(key) < 32 {
		return fmt.Errorf("auth.jwt.signing_key слишком короткий (%d символов); нужно >= 32", len(key))
	}
	if c.Auth.AccessTTL <= 0 {
		return fmt.Errorf("auth.access_ttl должен быть > 0 (сейчас %s)", c.Auth.AccessTTL)
	}

	// Хэширование паролей
	switch strings.ToLower(c.Password.Hasher) {
	case "argon2id":
		if c.Password.Argon2.Time == 0 || c.Password.Argon2.MemoryKiB == 0 || c.Password.Argon2.Threads == 0 {
			return errors.New("password.argon2 должен быть настроен для argon2id")
		}
	case "bcrypt":
		if c.Password.Bcrypt.Cost == 0 {
			return errors.New("password.bcrypt.cost должен быть задан для bcrypt")
		}
	default:
		return fmt.Errorf("password.hasher должен быть argon2id|bcrypt (сейчас %q)", c.Password.Hasher)
	}

	// Картинки
	switch c.Images.Driver {
	case "local":
		if c.Images.Dir == "" {
			return errors.New("images.dir обязателен для images.driver=local")
		}
	case "s3":
		if c.Images.S3.Bucket == "" {
			return errors.New("images.s3.bucket обязателен для images.driver=s3")
		}
	default:
		return fmt.Errorf("images.driver должен быть local|s3 (сейчас %q)", c.Images.Driver)
	}
	if c.Images.MaxBytes <= 0 {
		return errors.New("images.max_bytes должен быть > 0")
	}
	if !strings.HasPrefix(c.Images.URLPrefix, "/") {
		return fmt.Errorf("images.url_prefix должен начинаться с / (сейчас %q)", c.Images.URLPrefix)
	}

	return nil
}

// ApplyEnvOverrides даёт возможность переопределять настройки через
// переменные окружения без ${...} в yaml.
// Например PORT=9090 переопределит server.port, DB_POOL_SIZE=20 - db.max_open_conns.
func (c *Config) ApplyEnvOverrides() error {
	if v := firstEnv("PORT", "SERVER_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p <= 0 {
			return fmt.Errorf("PORT некорректен: %q", v)
		}
		c.Server.Port = p
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DB.DSN = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		c.DB.Host = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		c.DB.User = v
	}
	if v, ok := os.LookupEnv("DB_PASSWORD"); ok {
		c.DB.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		c.DB.Name = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p <= 0 {
			return fmt.Errorf("DB_PORT некорректен: %q", v)
		}
		c.DB.Port = p
	}
	if v := os.Getenv("DB_POOL_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("DB_POOL_SIZE некорректен: %q", v)
		}
		c.DB.MaxOpenConns = n
		c.DB.MaxIdleConns = n
	}

	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWT.SigningKey = v
	}
	// JWT_EXPIRES_IN - в секундах
	if v := os.Getenv("JWT_EXPIRES_IN"); v != "" {
		sec, err := strconv.Atoi(v)
		if err != nil || sec <= 0 {
			return fmt.Errorf("JWT_EXPIRES_IN некорректен: %q", v)
		}
		c.Auth.AccessTTL = time.Duration(sec) * time.Second
	}

	if v := os.Getenv("IMAGES_DIR"); v != "" {
		c.Images.Dir = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, p := range strings.Split(v, ",") {
			if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORS.AllowedOrigins = origins
	}
	return nil
}

// PostgresDSN возвращает строку подключения: либо заданный DSN,
// либо собранный из отдельных полей.
func (d DBConfig) PostgresDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Name,
	}
	if d.User != "" {
		if d.Password != "" {
			u.User = url.UserPassword(d.User, d.Password)
		} else {
			u.User = url.User(d.User)
		}
	}
	q := url.Values{}
	if d.SSLMode != "" {
		q.Set("sslmode", d.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr - адрес, на котором слушает HTTP-сервер.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
