package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gpsnmead/internal/clock"
	"gpsnmead/internal/config"
	"gpsnmead/internal/gps"
	"gpsnmead/internal/mqtt"
	"gpsnmead/internal/pps"
	"gpsnmead/internal/transport"
	"gpsnmead/internal/web"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./gpsnmead.yaml", "Path to YAML config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var conn transport.Conn
	switch cfg.GPS.Source {
	case "serial":
		conn = transport.NewSerial(cfg.GPS.Serial.Device, cfg.GPS.Serial.Baud)
		log.Printf("gps source=serial device=%s baud=%d", cfg.GPS.Serial.Device, cfg.GPS.Serial.Baud)
	default:
		conn = transport.NewTCP(cfg.GPS.TCP.Addr, cfg.GPS.TCP.DialTimeout)
		log.Printf("gps source=tcp addr=%s", cfg.GPS.TCP.Addr)
	}

	var clk gps.ClockSetter = clock.Nop{}
	if cfg.Clock.Set {
		clk = clock.System{}
		log.Printf("clock set enabled")
	}

	var pub gps.Publisher
	var mqttPub *mqtt.Publisher
	if cfg.MQTT.Broker != "" {
		mqttPub, err = mqtt.New(mqtt.Config{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			FixTopic:    cfg.MQTT.FixTopic,
			StatusTopic: cfg.MQTT.StatusTopic,
		})
		if err != nil {
			log.Fatalf("mqtt connect failed: %v", err)
		}
		defer mqttPub.Close()
		pub = mqttPub
	}

	svc := gps.New(gps.Config{
		ReadTimeout:  cfg.GPS.ReadTimeout,
		MaxTimeouts:  cfg.GPS.MaxTimeouts,
		CooldownUnit: cfg.GPS.CooldownUnit,
		Debug:        cfg.GPS.Debug,
	}, conn, clk, pub)

	// Handshake before committing to full acquisition.
	if !svc.Probe(cfg.GPS.ReadTimeout) {
		log.Fatalf("handshake failed: stream does not look like NMEA")
	}
	log.Printf("gps handshake ok")

	if err := svc.Start(ctx); err != nil {
		log.Fatalf("gps start failed: %v", err)
	}
	defer svc.Close()

	var ppsMon *pps.Monitor
	if cfg.PPS.Enable {
		ppsMon, err = pps.New(pps.Config{Chip: cfg.PPS.Chip, Line: cfg.PPS.Line})
		if err != nil {
			log.Printf("pps disabled: %v", err)
		} else {
			defer ppsMon.Close()
			log.Printf("pps enabled chip=%s line=%d", cfg.PPS.Chip, cfg.PPS.Line)
		}
	}

	var ppsSrc web.PPSSource
	if ppsMon != nil {
		ppsSrc = ppsMon
	}
	httpServer := &http.Server{
		Addr:    cfg.Web.Addr,
		Handler: web.Handler(svc, ppsSrc, svc),
	}
	go func() {
		log.Printf("web listening on %s", cfg.Web.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("web server stopped: %v", err)
			cancel()
		}
	}()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer shutdownCancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	if cfg.GPS.RefreshPeriod > 0 {
		go func() {
			ticker := time.NewTicker(cfg.GPS.RefreshPeriod)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if svc.RequestRefresh() == gps.RefreshBusy {
						log.Printf("gps refresh still outstanding")
					}
				}
			}
		}()
	}

	log.Printf("gpsnmead started")
	<-ctx.Done()
	log.Printf("gpsnmead stopping")
}
