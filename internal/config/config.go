// Package config loads inkwell configuration from a YAML file with
// environment overrides (prefix INKWELL_). Secrets come from the
// environment; everything else has a workable default.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration.
type Config struct {
	DB      DBConfig      `mapstructure:"db"`
	Log     LogConfig     `mapstructure:"log"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
	Mail    MailConfig    `mapstructure:"mail"`
	Monitor MonitorConfig `mapstructure:"monitor"`
	Printer PrinterConfig `mapstructure:"printer"`
	Audio   AudioConfig   `mapstructure:"audio"`
	Trigger TriggerConfig `mapstructure:"trigger"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type MailConfig struct {
	// Source selects the connector: "gmail" or "imap".
	Source string `mapstructure:"source"`

	Gmail GmailConfig `mapstructure:"gmail"`
	IMAP  IMAPConfig  `mapstructure:"imap"`
}

type GmailConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	TokenFile       string `mapstructure:"token_file"`
}

type IMAPConfig struct {
	Host     string `mapstructure:"host"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Mailbox  string `mapstructure:"mailbox"`
}

type MonitorConfig struct {
	IntervalMinutes int `mapstructure:"interval_minutes"`
	MaxPerCycle     int `mapstructure:"max_per_cycle"`
}

type PrinterConfig struct {
	BluetoothAddr string   `mapstructure:"bluetooth_addr"`
	RFCOMMPorts   []string `mapstructure:"rfcomm_ports"`
	SerialPort    string   `mapstructure:"serial_port"`
	NetworkHost   string   `mapstructure:"network_host"`
	USBVendor     uint16   `mapstructure:"usb_vendor"`
	USBProduct    uint16   `mapstructure:"usb_product"`
	FilePath      string   `mapstructure:"file_path"`
	AgentName     string   `mapstructure:"agent_name"`
}

type AudioConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	File        string  `mapstructure:"file"`
	Sink        string  `mapstructure:"sink"`
	LeadSeconds float64 `mapstructure:"lead_seconds"`
}

type TriggerConfig struct {
	Enabled             bool    `mapstructure:"enabled"`
	WebhookURL          string  `mapstructure:"webhook_url"`
	StopWebhookURL      string  `mapstructure:"stop_webhook_url"`
	LeadSeconds         float64 `mapstructure:"lead_seconds"`
	PlayDurationSeconds float64 `mapstructure:"play_duration_seconds"`
	CooldownSeconds     float64 `mapstructure:"cooldown_seconds"`
}

// Load reads configuration from path (or ~/.inkwell/config.yaml when empty),
// applies INKWELL_ env overrides, and fills defaults. A missing config file
// is fine; missing credentials surface later at startup validation.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("INKWELL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".inkwell"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if path != "" {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()

	v.SetDefault("db.path", filepath.Join(home, ".inkwell", "inkwell.db"))
	v.SetDefault("log.level", "info")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("mail.source", "gmail")
	v.SetDefault("mail.gmail.credentials_file", filepath.Join(home, ".inkwell", "credentials.json"))
	v.SetDefault("mail.gmail.token_file", filepath.Join(home, ".inkwell", "token.json"))
	v.SetDefault("mail.imap.mailbox", "INBOX")
	v.SetDefault("monitor.interval_minutes", 5)
	v.SetDefault("monitor.max_per_cycle", 20)
	v.SetDefault("printer.rfcomm_ports", []string{"/dev/rfcomm0", "/dev/rfcomm1"})
	v.SetDefault("printer.file_path", "printed_missions.txt")
	v.SetDefault("printer.agent_name", "Agent")
	v.SetDefault("audio.lead_seconds", 1.0)
	v.SetDefault("trigger.lead_seconds", 3.0)
	v.SetDefault("trigger.play_duration_seconds", 28.0)
	v.SetDefault("trigger.cooldown_seconds", 5.0)
}

// Validate checks the startup-fatal settings: everything else degrades at
// runtime, but without a classifier credential the pipeline cannot work.
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("gemini API key not set (gemini.api_key or GEMINI_API_KEY)")
	}
	switch c.Mail.Source {
	case "gmail", "imap":
	default:
		return fmt.Errorf("unknown mail source %q (want gmail or imap)", c.Mail.Source)
	}
	return nil
}
