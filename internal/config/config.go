package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration. Precedence: environment
// variables (CT_ prefix) over the YAML file over built-in defaults, with any
// .env file in the working directory loaded into the environment first.
type Config struct {
	Data   DataConfig   `yaml:"data" envconfig:"DATA"`
	Oracle OracleConfig `yaml:"oracle" envconfig:"ORACLE"`
	Server ServerConfig `yaml:"server" envconfig:"SERVER"`
	Log    LogConfig    `yaml:"log" envconfig:"LOG"`
	Export ExportConfig `yaml:"export" envconfig:"EXPORT"`
}

// DataConfig selects the dataset source.
type DataConfig struct {
	// Source is "csv" or "oracle".
	Source string `yaml:"source" envconfig:"SOURCE"`
	Path   string `yaml:"path" envconfig:"PATH"`
}

// OracleConfig holds connection parameters for the Oracle-hosted sales table.
type OracleConfig struct {
	Host           string `yaml:"host" envconfig:"HOST"`
	Port           string `yaml:"port" envconfig:"PORT"`
	Service        string `yaml:"service" envconfig:"SERVICE"`
	Username       string `yaml:"username" envconfig:"USERNAME"`
	Password       string `yaml:"password" envconfig:"PASSWORD"`
	WalletLocation string `yaml:"wallet_location" envconfig:"WALLET_LOCATION"`
	Table          string `yaml:"table" envconfig:"TABLE"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Addr string `yaml:"addr" envconfig:"ADDR"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"`
}

// ExportConfig controls where filtered-subset exports are written.
type ExportConfig struct {
	Dir string `yaml:"dir" envconfig:"DIR"`
}

// Load builds the configuration: .env file into the environment, then
// CT_-prefixed environment variables, then the YAML file at path (if it
// exists) for fields the environment left unset, then defaults.
func Load(path string) (*Config, error) {
	loadEnvFile(".env")

	var cfg Config
	if err := envconfig.Process("CT", &cfg); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			var fileCfg Config
			if err := yaml.Unmarshal(data, &fileCfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
			cfg.merge(fileCfg)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// merge fills fields the environment left empty from the file config.
func (c *Config) merge(file Config) {
	fill(&c.Data.Source, file.Data.Source)
	fill(&c.Data.Path, file.Data.Path)
	fill(&c.Oracle.Host, file.Oracle.Host)
	fill(&c.Oracle.Port, file.Oracle.Port)
	fill(&c.Oracle.Service, file.Oracle.Service)
	fill(&c.Oracle.Username, file.Oracle.Username)
	fill(&c.Oracle.Password, file.Oracle.Password)
	fill(&c.Oracle.WalletLocation, file.Oracle.WalletLocation)
	fill(&c.Oracle.Table, file.Oracle.Table)
	fill(&c.Server.Addr, file.Server.Addr)
	fill(&c.Log.Level, file.Log.Level)
	fill(&c.Log.Format, file.Log.Format)
	fill(&c.Export.Dir, file.Export.Dir)
}

func (c *Config) applyDefaults() {
	fill(&c.Data.Source, "csv")
	fill(&c.Data.Path, "data/Real_Estate_Sales_2001-2022_GL.csv")
	fill(&c.Oracle.Host, "localhost")
	fill(&c.Oracle.Port, "1521")
	fill(&c.Oracle.Service, "XE")
	fill(&c.Oracle.Table, "REAL_ESTATE_SALES")
	fill(&c.Server.Addr, ":5006")
	fill(&c.Log.Level, "info")
	fill(&c.Log.Format, "text")
	fill(&c.Export.Dir, "exports")
}

func fill(dst *string, val string) {
	if *dst == "" {
		*dst = val
	}
}

// loadEnvFile reads KEY=value lines into the environment without overriding
// variables that are already set. A missing file is not an error.
func loadEnvFile(filename string) {
	file, err := os.Open(filename)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.Index(line, "=")
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
			value = value[1 : len(value)-1]
		}
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
