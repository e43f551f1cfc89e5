// Package config holds the settings the server is started with. A Config
// is built once and only read afterwards.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

type Config struct {
	Port int
	Root string

	IndexFile        string
	NotFoundFile     string
	NotSupportedFile string

	SubmitPath      string
	SuccessLocation string

	// MaxConns bounds concurrently handled connections; 0 means no bound.
	MaxConns int
	// LingerTimeout caps the drain of unread request bytes after a
	// response; 0 skips the drain.
	LingerTimeout time.Duration

	LogLevel  string
	LogFormat string
}

func Default() Config {
	return Config{
		Port:             8080,
		Root:             ".",
		IndexFile:        "index.html",
		NotFoundFile:     "404.html",
		NotSupportedFile: "not_supported.html",
		SubmitPath:       "/submit",
		SuccessLocation:  "success.html",
		LingerTimeout:    500 * time.Millisecond,
		LogLevel:         zerolog.LevelInfoValue,
		LogFormat:        FormatConsole,
	}
}

// Parse builds a Config from command-line arguments on top of Default.
func Parse(name string, args []string, output io.Writer) (Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.IntVar(&cfg.Port, "port", cfg.Port, "TCP port to listen on")
	fs.StringVar(&cfg.Root, "root", cfg.Root, "document root directory")
	fs.StringVar(&cfg.IndexFile, "index", cfg.IndexFile, "document served for paths ending in /")
	fs.StringVar(&cfg.NotFoundFile, "not-found", cfg.NotFoundFile, "document sent with 404 responses")
	fs.StringVar(&cfg.NotSupportedFile, "not-supported", cfg.NotSupportedFile, "document sent with 501 responses")
	fs.StringVar(&cfg.SubmitPath, "submit-path", cfg.SubmitPath, "path accepting form submissions")
	fs.StringVar(&cfg.SuccessLocation, "success-location", cfg.SuccessLocation, "redirect target after a successful submission")
	fs.IntVar(&cfg.MaxConns, "max-conns", cfg.MaxConns, "maximum concurrent connections (0 = unbounded)")
	fs.DurationVar(&cfg.LingerTimeout, "linger", cfg.LingerTimeout, "how long to drain unread request bytes before closing")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (trace, debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log output format (console or json)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Root == "" {
		errs = append(errs, errors.New("root must not be empty"))
	}
	for flagName, v := range map[string]string{
		"index":            c.IndexFile,
		"not-found":        c.NotFoundFile,
		"not-supported":    c.NotSupportedFile,
		"success-location": c.SuccessLocation,
	} {
		if v == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", flagName))
		}
	}
	if !strings.HasPrefix(c.SubmitPath, "/") {
		errs = append(errs, fmt.Errorf("submit path %q must start with /", c.SubmitPath))
	}
	if c.MaxConns < 0 {
		errs = append(errs, fmt.Errorf("max-conns %d is negative", c.MaxConns))
	}
	if c.LingerTimeout < 0 {
		errs = append(errs, fmt.Errorf("linger %s is negative", c.LingerTimeout))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != FormatConsole && c.LogFormat != FormatJSON {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Addr is the listen address for Port.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Logger builds the process logger described by LogLevel and LogFormat.
func (c Config) Logger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if c.LogFormat == FormatConsole {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
