package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env      string `yaml:"env" env:"ENV" env-default:"prod"`
	TimeZone string `yaml:"time_zone" env:"TIME_ZONE" env-default:"Europe/Kyiv"`
	ErrorLog string `yaml:"error_log" env:"ERROR_LOG" env-default:"errors.log"`
	// собранный фронтенд, необязателен
	FrontendDir string `yaml:"frontend_dir" env:"FRONTEND_DIR" env-default:"./frontend-dist"`

	HTTPServer `yaml:"http_server"`
	Database   `yaml:"database"`
	Auth       `yaml:"auth"`
	CORS       `yaml:"cors"`
	SyncServer `yaml:"sync_server"`
	Backup     `yaml:"backup"`
	Mail       `yaml:"mail"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:4001"`
	Timeout     time.Duration `yaml:"timeout" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type Database struct {
	DBUser     string `yaml:"db_user" env:"DB_USER" env-required:"true"`
	DBPassword string `yaml:"db_password" env:"DB_PASSWORD"`
	DBHost     string `yaml:"db_host" env:"DB_HOST" env-default:"localhost"`
	DBPort     int    `yaml:"db_port" env:"DB_PORT" env-default:"3306"`
	DBName     string `yaml:"db_name" env:"DB_NAME" env-required:"true"`
	Migrate    bool   `yaml:"migrate" env:"DB_MIGRATE" env-default:"true"`
}

type Auth struct {
	APIToken   string `yaml:"api_token" env:"API_TOKEN"`
	AdminLogin string `yaml:"admin_login" env:"ADMIN_LOGIN" env-default:"admin"`
	// AdminPass is either plain text or a bcrypt hash.
	AdminPass string        `yaml:"admin_pass" env:"ADMIN_PASS"`
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	LockTTL   time.Duration `yaml:"lock_ttl" env-default:"5m"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ORIGINS" env-default:"http://localhost:5173"`
}

type SyncServer struct {
	Address   string        `yaml:"address" env:"SYNC_ADDRESS" env-default:"0.0.0.0:4002"`
	AutoStart bool          `yaml:"auto_start" env:"SYNC_AUTO_START" env-default:"false"`
	TokenTTL  time.Duration `yaml:"token_ttl" env-default:"720h"`
}

type Backup struct {
	Dir  string `yaml:"dir" env:"BACKUP_DIR" env-default:"./backups"`
	At   string `yaml:"at" env-default:"03:00"`
	Keep int    `yaml:"keep" env-default:"14"`
}

type Mail struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT" env-default:"465"`
	User     string `yaml:"user" env:"SMTP_USER"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from" env:"MAIL_FROM"`
	To       string `yaml:"to" env:"MAIL_TO"`
	ReportAt string `yaml:"report_at" env-default:"21:00"`
}

func MustConfig() *Config {
	// .env необязателен
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/local.yaml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return &cfg
}

// Location returns the configured time zone, falling back to local time.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}
