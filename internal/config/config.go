package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	GPS   GPSConfig   `yaml:"gps"`
	Clock ClockConfig `yaml:"clock"`
	PPS   PPSConfig   `yaml:"pps"`
	MQTT  MQTTConfig  `yaml:"mqtt"`
	Web   WebConfig   `yaml:"web"`
}

type GPSConfig struct {
	// Source selects how NMEA is ingested: "tcp" (networked receiver) or
	// "serial" (direct UART). When empty, defaults to "tcp".
	Source string       `yaml:"source"`
	TCP    TCPConfig    `yaml:"tcp"`
	Serial SerialConfig `yaml:"serial"`

	// ReadTimeout bounds a single line read from the transport.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// MaxTimeouts is how many consecutive read timeouts are tolerated before
	// the connection is forcibly cycled.
	MaxTimeouts int `yaml:"max_timeouts"`

	// CooldownUnit scales the reconnect cooldowns (10 units after a refused
	// connection, 5 units after the timeout limit). One second on real
	// hardware; tests shrink it.
	CooldownUnit time.Duration `yaml:"cooldown_unit"`

	// RefreshPeriod re-requests a fresh fix on a timer. Zero disables.
	RefreshPeriod time.Duration `yaml:"refresh_period"`

	// Debug logs every accepted line and parse reject.
	Debug bool `yaml:"debug"`
}

type TCPConfig struct {
	Addr        string        `yaml:"addr"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

type SerialConfig struct {
	Device string `yaml:"device"`
	Baud   uint   `yaml:"baud"`
}

type ClockConfig struct {
	// Set enables adjusting the system clock from accepted GPS time.
	// Requires CAP_SYS_TIME; when false, derived time is only published.
	Set bool `yaml:"set"`
}

type PPSConfig struct {
	Enable bool   `yaml:"enable"`
	Chip   string `yaml:"chip"`
	Line   int    `yaml:"line"`
}

type MQTTConfig struct {
	// Broker is the MQTT URL, e.g. "tcp://localhost:1883". Empty disables
	// MQTT publishing.
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	FixTopic    string `yaml:"fix_topic"`
	StatusTopic string `yaml:"status_topic"`
}

type WebConfig struct {
	Addr string `yaml:"addr"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	switch cfg.GPS.Source {
	case "":
		cfg.GPS.Source = "tcp"
	case "tcp", "serial":
	default:
		return Config{}, fmt.Errorf("gps.source must be 'tcp' or 'serial'")
	}

	if cfg.GPS.Source == "serial" && cfg.GPS.Serial.Device == "" {
		return Config{}, fmt.Errorf("gps.serial.device is required when gps.source is 'serial'")
	}
	if cfg.GPS.Serial.Baud == 0 {
		cfg.GPS.Serial.Baud = 9600
	}

	if cfg.GPS.TCP.Addr == "" {
		// Common default for WiFi NMEA bridges.
		cfg.GPS.TCP.Addr = "192.168.1.1:50000"
	}
	if cfg.GPS.TCP.DialTimeout <= 0 {
		cfg.GPS.TCP.DialTimeout = 3 * time.Second
	}

	if cfg.GPS.ReadTimeout <= 0 {
		cfg.GPS.ReadTimeout = 3 * time.Second
	}
	if cfg.GPS.MaxTimeouts <= 0 {
		cfg.GPS.MaxTimeouts = 5
	}
	if cfg.GPS.CooldownUnit <= 0 {
		cfg.GPS.CooldownUnit = 1 * time.Second
	}
	if cfg.GPS.RefreshPeriod < 0 {
		return Config{}, fmt.Errorf("gps.refresh_period must be >= 0")
	}

	if cfg.PPS.Enable {
		if cfg.PPS.Chip == "" {
			cfg.PPS.Chip = "/dev/gpiochip0"
		}
		if cfg.PPS.Line < 0 {
			return Config{}, fmt.Errorf("pps.line must be >= 0")
		}
	}

	if cfg.MQTT.Broker != "" {
		if cfg.MQTT.ClientID == "" {
			cfg.MQTT.ClientID = "gpsnmead"
		}
		if cfg.MQTT.FixTopic == "" {
			cfg.MQTT.FixTopic = "gps/fix"
		}
		if cfg.MQTT.StatusTopic == "" {
			cfg.MQTT.StatusTopic = "gps/status"
		}
	}

	if cfg.Web.Addr == "" {
		cfg.Web.Addr = ":8080"
	}

	return cfg, nil
}
