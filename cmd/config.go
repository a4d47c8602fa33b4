package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"orderflow/internal/core/domain/model/eta"
	"orderflow/internal/pkg/errs"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPPort     string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBSslMode    string
	AMQPURL      string
	AMQPExchange string
	LogLevel     string
	TuningFile   string

	Tuning Tuning
}

// Tuning holds the knobs read from the optional YAML tuning file.
type Tuning struct {
	ETA         ETATuning         `yaml:"eta"`
	Idempotency IdempotencyTuning `yaml:"idempotency"`
	Abuse       AbuseTuning       `yaml:"abuse"`
	Realtime    RealtimeTuning    `yaml:"realtime"`
}

type ETATuning struct {
	WindowCap int `yaml:"window_cap"`
}

type IdempotencyTuning struct {
	TTL  time.Duration `yaml:"ttl"`
	Wait time.Duration `yaml:"wait"`
}

type AbuseTuning struct {
	Threshold int           `yaml:"threshold"`
	Window    time.Duration `yaml:"window"`
	Cooldown  time.Duration `yaml:"cooldown"`
}

type RealtimeTuning struct {
	MaxConnsPerSource int           `yaml:"max_conns_per_source"`
	OutboundWatermark int           `yaml:"outbound_watermark"`
	Keepalive         time.Duration `yaml:"keepalive"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
}

func DefaultTuning() Tuning {
	return Tuning{
		ETA: ETATuning{WindowCap: eta.DefaultWindowCap},
		Idempotency: IdempotencyTuning{
			TTL:  10 * time.Minute,
			Wait: 5 * time.Second,
		},
		Abuse: AbuseTuning{
			Threshold: 3,
			Window:    10 * time.Minute,
			Cooldown:  15 * time.Minute,
		},
		Realtime: RealtimeTuning{
			MaxConnsPerSource: 8,
			OutboundWatermark: 64,
			Keepalive:         15 * time.Second,
			WriteTimeout:      10 * time.Second,
		},
	}
}

// LoadTuning overlays the file at path on the defaults. An empty path keeps
// the defaults; unknown keys are rejected.
func LoadTuning(path string) (Tuning, error) {
	tuning := DefaultTuning()
	if path == "" {
		return tuning, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("read tuning file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&tuning); err != nil && !errors.Is(err, io.EOF) {
		return Tuning{}, fmt.Errorf("parse tuning file %s: %w", path, err)
	}
	return tuning, nil
}

func (t Tuning) Validate() error {
	var err error
	if t.ETA.WindowCap < 1 || t.ETA.WindowCap > 1000 {
		err = errors.Join(err, errs.NewValueIsOutOfRangeError("eta.window_cap", t.ETA.WindowCap, 1, 1000))
	}
	if t.Idempotency.TTL <= 0 {
		err = errors.Join(err, errs.NewValueIsInvalidError("idempotency.ttl"))
	}
	if t.Idempotency.Wait <= 0 {
		err = errors.Join(err, errs.NewValueIsInvalidError("idempotency.wait"))
	}
	if t.Abuse.Threshold < 1 {
		err = errors.Join(err, errs.NewValueIsOutOfRangeError("abuse.threshold", t.Abuse.Threshold, 1, 1000))
	}
	if t.Abuse.Window <= 0 {
		err = errors.Join(err, errs.NewValueIsInvalidError("abuse.window"))
	}
	if t.Abuse.Cooldown <= 0 {
		err = errors.Join(err, errs.NewValueIsInvalidError("abuse.cooldown"))
	}
	if t.Realtime.MaxConnsPerSource < 1 {
		err = errors.Join(err, errs.NewValueIsOutOfRangeError(
			"realtime.max_conns_per_source", t.Realtime.MaxConnsPerSource, 1, 1024))
	}
	if t.Realtime.OutboundWatermark < 1 {
		err = errors.Join(err, errs.NewValueIsOutOfRangeError(
			"realtime.outbound_watermark", t.Realtime.OutboundWatermark, 1, 65536))
	}
	if t.Realtime.Keepalive <= 0 {
		err = errors.Join(err, errs.NewValueIsInvalidError("realtime.keepalive"))
	}
	if t.Realtime.WriteTimeout <= 0 {
		err = errors.Join(err, errs.NewValueIsInvalidError("realtime.write_timeout"))
	}
	return err
}

func (c Config) Validate() error {
	var err error
	if c.HTTPPort == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("HTTP_PORT"))
	}
	if c.DBHost == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("DB_HOST"))
	}
	if c.DBName == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("DB_NAME"))
	}
	if c.DBUser == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("DB_USER"))
	}
	return errors.Join(err, c.Tuning.Validate())
}

// DSN is the libpq-style connection string for the gorm postgres driver.
func (c Config) DSN() string {
	sslMode := c.DBSslMode
	if sslMode == "" {
		sslMode = "disable"
	}
	port := c.DBPort
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, port, c.DBUser, c.DBPassword, c.DBName, sslMode)
}
