package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds the configuration of all three tools
type Config struct {
	LogLevel string

	DB       DBConfig
	Backup   BackupConfig
	Notifier NotifierConfig
	Bot      BotConfig
}

// DBConfig describes the billing MySQL server
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	PayName  string // second database included in backups
}

type BackupConfig struct {
	Dir           string
	SiteFolder    string
	ZipPassword   string
	ZipEncryption string // "aes256" or "standard"
	TruncateTable string
	MysqldumpPath string
	LogFile       string

	MegaEmail    string
	MegaPassword string
	MegaFolder   string
}

type NotifierConfig struct {
	Token        string
	ChatID       int64
	QuestionsURL string
	AgreementURL string
	LogFile      string
}

type BotConfig struct {
	Token        string
	TicketAPIURL string
	TicketAPIKey string
	ReasonID     int
	PortalURL    string
	EasyPayURL   string
	Privat24URL  string
	ReplyDelay   time.Duration
	LogFile      string
	HealthAddr   string

	StateBackend  string // "memory" or "redis"
	StateTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

var defaults = map[string]interface{}{
	"log_level":             "info",
	"db_host":               "localhost",
	"db_port":               "3306",
	"backup_dir":            "/home/user/scripts/Backup",
	"zip_encryption":        "aes256",
	"backup_truncate_table": "system_events",
	"mysqldump_path":        "mysqldump",
	"mega_folder":           "Happylink",
	"task_log_file":         "/tmp/NewTask.log",
	"questions_url":         "http://localhost/abonents/questions",
	"agreement_url":         "https://service.happylink.net.ua/abonents/detail",
	"bot_log_file":          "/tmp/SupportBot.log",
	"support_reason_id":     "10",
	"portal_url":            "https://my.happylink.net.ua/",
	"easypay_url":           "https://easypay.ua/ua/catalog/internet/happylink",
	"privat24_url":          "https://next.privat24.ua/payments/form/%7B%22token%22%3A%22b9b67f5b-1f2c-47c4-bb1f-be8d48609dc0%22%7D",
	"bot_reply_delay":       "1.1s",
	"bot_state_backend":     "memory",
	"bot_state_ttl":         "30m",
	"redis_addr":            "localhost:6379",
	"redis_db":              "0",
	"health_addr":           ":8080",
}

// Load merges built-in defaults, an optional TOML/YAML file and the environment.
// A .env file in the working directory is loaded into the environment first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		var parser koanf.Parser
		switch strings.ToLower(filepath.Ext(path)) {
		case ".toml":
			parser = toml.Parser()
		case ".yaml", ".yml":
			parser = yaml.Parser()
		default:
			return nil, fmt.Errorf("unsupported config file format: %s", path)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// Environment keys are lower-cased; empty variables do not override.
	envProvider := env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		return strings.ToLower(key), value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	return fromKoanf(k)
}

func fromKoanf(k *koanf.Koanf) (*Config, error) {
	var errList []error
	intVal := func(key string) int {
		v, err := strconv.Atoi(k.String(key))
		if err != nil {
			errList = append(errList, fmt.Errorf("invalid %s: %w", strings.ToUpper(key), err))
		}
		return v
	}
	durationVal := func(key string) time.Duration {
		v, err := time.ParseDuration(k.String(key))
		if err != nil {
			errList = append(errList, fmt.Errorf("invalid %s: %w", strings.ToUpper(key), err))
		}
		return v
	}

	cfg := &Config{LogLevel: k.String("log_level")}

	cfg.DB = DBConfig{
		Host:     k.String("db_host"),
		Port:     intVal("db_port"),
		User:     k.String("db_user"),
		Password: k.String("db_password"),
		Name:     k.String("db_name"),
		PayName:  k.String("db_pay_name"),
	}

	cfg.Backup = BackupConfig{
		Dir:           k.String("backup_dir"),
		SiteFolder:    k.String("site_folder"),
		ZipPassword:   k.String("zip_password"),
		ZipEncryption: strings.ToLower(k.String("zip_encryption")),
		TruncateTable: k.String("backup_truncate_table"),
		MysqldumpPath: k.String("mysqldump_path"),
		LogFile:       k.String("backup_log_file"),
		MegaEmail:     k.String("mega_email"),
		MegaPassword:  k.String("mega_password"),
		MegaFolder:    k.String("mega_folder"),
	}
	if cfg.Backup.LogFile == "" {
		cfg.Backup.LogFile = filepath.Join(cfg.Backup.Dir, "backup.log")
	}

	cfg.Notifier = NotifierConfig{
		Token:        k.String("task_bot_token"),
		QuestionsURL: k.String("questions_url"),
		AgreementURL: k.String("agreement_url"),
		LogFile:      k.String("task_log_file"),
	}
	if raw := k.String("task_chat_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errList = append(errList, fmt.Errorf("invalid TASK_CHAT_ID: %w", err))
		}
		cfg.Notifier.ChatID = id
	}

	cfg.Bot = BotConfig{
		Token:         k.String("bot_token"),
		TicketAPIURL:  k.String("vite_service_api_url"),
		TicketAPIKey:  k.String("vite_service_api_key"),
		ReasonID:      intVal("support_reason_id"),
		PortalURL:     k.String("portal_url"),
		EasyPayURL:    k.String("easypay_url"),
		Privat24URL:   k.String("privat24_url"),
		ReplyDelay:    durationVal("bot_reply_delay"),
		LogFile:       k.String("bot_log_file"),
		HealthAddr:    k.String("health_addr"),
		StateBackend:  strings.ToLower(k.String("bot_state_backend")),
		StateTTL:      durationVal("bot_state_ttl"),
		RedisAddr:     k.String("redis_addr"),
		RedisPassword: k.String("redis_password"),
		RedisDB:       intVal("redis_db"),
	}

	if len(errList) > 0 {
		return nil, errors.Join(errList...)
	}
	return cfg, nil
}

func (c *Config) validateDB() error {
	if c.DB.Host == "" || c.DB.User == "" || c.DB.Name == "" {
		return errors.New("DB_HOST, DB_USER and DB_NAME are required")
	}
	return nil
}

// ValidateBackup checks the settings the backup job needs
func (c *Config) ValidateBackup() error {
	if err := c.validateDB(); err != nil {
		return err
	}
	if c.Backup.Dir == "" {
		return errors.New("BACKUP_DIR is required")
	}
	if c.Backup.ZipPassword == "" {
		return errors.New("ZIP_PASSWORD is required")
	}
	switch c.Backup.ZipEncryption {
	case "aes256", "standard":
	default:
		return fmt.Errorf("ZIP_ENCRYPTION must be aes256 or standard, got %q", c.Backup.ZipEncryption)
	}
	if c.Backup.MegaEmail == "" || c.Backup.MegaPassword == "" {
		return errors.New("MEGA_EMAIL and MEGA_PASSWORD are required")
	}
	return nil
}

// ValidateNotifier checks the settings the ticket notifier needs
func (c *Config) ValidateNotifier() error {
	if err := c.validateDB(); err != nil {
		return err
	}
	if c.Notifier.Token == "" {
		return errors.New("TASK_BOT_TOKEN is required")
	}
	if c.Notifier.ChatID == 0 {
		return errors.New("TASK_CHAT_ID is required")
	}
	return nil
}

// ValidateBot checks the settings the support bot needs
func (c *Config) ValidateBot() error {
	if err := c.validateDB(); err != nil {
		return err
	}
	if c.Bot.Token == "" {
		return errors.New("BOT_TOKEN is required")
	}
	if c.Bot.TicketAPIURL == "" || c.Bot.TicketAPIKey == "" {
		return errors.New("VITE_SERVICE_API_URL and VITE_SERVICE_API_KEY are required")
	}
	switch c.Bot.StateBackend {
	case "memory":
	case "redis":
		if c.Bot.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required when BOT_STATE_BACKEND is redis")
		}
	default:
		return fmt.Errorf("BOT_STATE_BACKEND must be memory or redis, got %q", c.Bot.StateBackend)
	}
	return nil
}

// DatabaseNames lists the databases the backup job dumps, in order
func (c *Config) DatabaseNames() []string {
	names := []string{c.DB.Name}
	if c.DB.PayName != "" {
		names = append(names, c.DB.PayName)
	}
	return names
}
