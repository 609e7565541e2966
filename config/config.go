package config

import (
	"os"
	"path/filepath"

	"risk-insight/utils"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Listen        string            `yaml:"listen"`
		Static        string            `yaml:"static"`
		StaticDefault string            `yaml:"static_default"`
		StaticAllowed []string          `yaml:"static_allowed"`
		LogDir        string            `yaml:"log_dir"`
		OutputDir     string            `yaml:"output_dir"`
		TemplateVars  map[string]string `yaml:"template_vars"`
	} `yaml:"server"`
	JWT struct {
		Secret            string `yaml:"secret"`
		ExpirationMinutes int    `yaml:"expiration_minutes"`
	} `yaml:"jwt"`
	Auth struct {
		Enabled     bool   `yaml:"enabled"`
		UserBackend string `yaml:"user_backend"` // "file", "mysql", "postgres", "sqlite3"
		UserFile    string `yaml:"user_file"`
		HashMacro   string `yaml:"hash_macro"`
		Salt        string `yaml:"salt"`
		DBDSN       string `yaml:"db_dsn"`
		UserRequest string `yaml:"user_request"` // ex: SELECT hash, salt, is_admin FROM users WHERE name = ? AND pass = ?
		DBHashMacro string `yaml:"db_hash_macro"`
		DBPassHash  bool   `yaml:"db_pass_hash"`
	} `yaml:"auth"`
	Scheduler struct {
		Cron                string `yaml:"cron"`
		PollIntervalSeconds int    `yaml:"poll_interval_seconds"`
	} `yaml:"scheduler"`
	Workers   int    `yaml:"workers"`
	HistoryDB string `yaml:"history_db"`
}

func LoadConfig(file string) (*Config, error) {
	var cfg Config
	root := utils.GetProjectRoot()
	cfgPath := filepath.Join(root, file)
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Server.OutputDir == "" {
		cfg.Server.OutputDir = "output"
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.Scheduler.Cron == "" {
		cfg.Scheduler.Cron = "0 9 * * 1"
	}
	if cfg.Scheduler.PollIntervalSeconds <= 0 {
		cfg.Scheduler.PollIntervalSeconds = 30
	}
	return &cfg, nil
}
