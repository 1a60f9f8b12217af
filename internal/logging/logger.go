package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/agisilaos/annofab-cli/internal/config"
)

const FileName = "annofabcli.log"

type Options struct {
	// LogDir receives annofabcli.log as JSON lines. Ignored when Disable is set.
	LogDir  string
	Disable bool
	Debug   bool
	Stderr  io.Writer
}

// Setup initializes the global logger. Console output goes to Stderr; unless
// disabled, the same events are appended to LogDir/annofabcli.log. The
// returned func closes the log file.
func Setup(opts Options) (func() error, error) {
	if opts.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	console := zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.TimeOnly}
	if opts.Disable || opts.LogDir == "" {
		log.Logger = zerolog.New(console).With().Timestamp().Logger()
		return func() error { return nil }, nil
	}
	if err := config.EnsureDir(opts.LogDir); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(opts.LogDir, FileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, f)).With().Timestamp().Logger()
	return f.Close, nil
}
