package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func requireErrEq(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %q, got nil", want)
	}
	if err.Error() != want {
		t.Fatalf("error=%q want %q", err.Error(), want)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeTempConfig(t, "gps: {}\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.GPS.Source != "tcp" {
		t.Fatalf("source=%q want tcp", cfg.GPS.Source)
	}
	if cfg.GPS.TCP.Addr != "192.168.1.1:50000" {
		t.Fatalf("tcp.addr=%q", cfg.GPS.TCP.Addr)
	}
	if cfg.GPS.ReadTimeout != 3*time.Second {
		t.Fatalf("read_timeout=%s want 3s", cfg.GPS.ReadTimeout)
	}
	if cfg.GPS.MaxTimeouts != 5 {
		t.Fatalf("max_timeouts=%d want 5", cfg.GPS.MaxTimeouts)
	}
	if cfg.GPS.CooldownUnit != 1*time.Second {
		t.Fatalf("cooldown_unit=%s want 1s", cfg.GPS.CooldownUnit)
	}
	if cfg.GPS.Serial.Baud != 9600 {
		t.Fatalf("serial.baud=%d want 9600", cfg.GPS.Serial.Baud)
	}
	if cfg.Web.Addr != ":8080" {
		t.Fatalf("web.addr=%q want :8080", cfg.Web.Addr)
	}
}

func TestLoad_SerialRequiresDevice(t *testing.T) {
	path := writeTempConfig(t, "gps:\n  source: serial\n")
	_, err := Load(path)
	requireErrEq(t, err, "gps.serial.device is required when gps.source is 'serial'")
}

func TestLoad_RejectsUnknownSource(t *testing.T) {
	path := writeTempConfig(t, "gps:\n  source: carrier-pigeon\n")
	_, err := Load(path)
	requireErrEq(t, err, "gps.source must be 'tcp' or 'serial'")
}

func TestLoad_MQTTDefaultsOnlyWhenEnabled(t *testing.T) {
	path := writeTempConfig(t, "gps: {}\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.MQTT.FixTopic != "" {
		t.Fatalf("expected no mqtt defaults when broker unset, got topic %q", cfg.MQTT.FixTopic)
	}

	path = writeTempConfig(t, "mqtt:\n  broker: 'tcp://localhost:1883'\n")
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.MQTT.ClientID != "gpsnmead" || cfg.MQTT.FixTopic != "gps/fix" || cfg.MQTT.StatusTopic != "gps/status" {
		t.Fatalf("mqtt defaults not applied: %+v", cfg.MQTT)
	}
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeTempConfig(t, `
gps:
  source: serial
  serial:
    device: /dev/ttyUSB0
    baud: 4800
  read_timeout: 2s
  max_timeouts: 3
  cooldown_unit: 500ms
  refresh_period: 30s
  debug: true
clock:
  set: true
pps:
  enable: true
  line: 18
web:
  addr: ':9090'
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.GPS.Serial.Device != "/dev/ttyUSB0" || cfg.GPS.Serial.Baud != 4800 {
		t.Fatalf("serial config = %+v", cfg.GPS.Serial)
	}
	if cfg.GPS.RefreshPeriod != 30*time.Second {
		t.Fatalf("refresh_period=%s", cfg.GPS.RefreshPeriod)
	}
	if !cfg.Clock.Set {
		t.Fatalf("expected clock.set")
	}
	if !cfg.PPS.Enable || cfg.PPS.Chip != "/dev/gpiochip0" || cfg.PPS.Line != 18 {
		t.Fatalf("pps config = %+v", cfg.PPS)
	}
	if cfg.Web.Addr != ":9090" {
		t.Fatalf("web.addr=%q", cfg.Web.Addr)
	}
}
