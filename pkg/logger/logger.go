package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with typed structured fields.
type Logger struct {
	zl zerolog.Logger
}

type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json or console
	Output     string // stdout, stderr, or file path
	TimeFormat string
}

func New(cfg *Config) (*Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	var output io.Writer
	switch cfg.Output {
	case "", "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("could not open log file: %w", err)
		}
		output = file
	}

	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339Nano
	}
	zerolog.TimeFieldFormat = cfg.TimeFormat

	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: cfg.TimeFormat,
		}
	}

	zl := zerolog.New(output).
		With().
		Timestamp().
		Logger()

	return &Logger{zl: zl}, nil
}

// Nop returns a logger that discards everything. Handy in tests.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.emit(l.zl.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.emit(l.zl.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.emit(l.zl.Warn(), msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.emit(l.zl.Error(), msg, fields) }

func (l *Logger) emit(ev *zerolog.Event, msg string, fields []Field) {
	for _, f := range fields {
		f.AddTo(ev)
	}
	ev.Msg(msg)
}

// Field adds one typed key/value to a log event.
type Field interface {
	AddTo(ev *zerolog.Event)
}

type stringField struct {
	key, value string
}

func (f stringField) AddTo(ev *zerolog.Event) { ev.Str(f.key, f.value) }

type intField struct {
	key   string
	value int
}

func (f intField) AddTo(ev *zerolog.Event) { ev.Int(f.key, f.value) }

type int64Field struct {
	key   string
	value int64
}

func (f int64Field) AddTo(ev *zerolog.Event) { ev.Int64(f.key, f.value) }

type errorField struct {
	value error
}

func (f errorField) AddTo(ev *zerolog.Event) { ev.Err(f.value) }

type anyField struct {
	key   string
	value interface{}
}

func (f anyField) AddTo(ev *zerolog.Event) { ev.Interface(f.key, f.value) }

type boolField struct {
	key   string
	value bool
}

func (f boolField) AddTo(ev *zerolog.Event) { ev.Bool(f.key, f.value) }

// --- Field constructors ---

func String(key, value string) Field { return stringField{key: key, value: value} }

func Int(key string, value int) Field { return intField{key: key, value: value} }

func Int64(key string, value int64) Field { return int64Field{key: key, value: value} }

func Error(err error) Field { return errorField{value: err} }

func Any(key string, value interface{}) Field { return anyField{key: key, value: value} }

func Bool(key string, value bool) Field { return boolField{key: key, value: value} }

func Duration(key string, value time.Duration) Field {
	return int64Field{key: key, value: value.Milliseconds()}
}

func Strings(key string, value []string) Field {
	return String(key, strings.Join(value, ", "))
}
