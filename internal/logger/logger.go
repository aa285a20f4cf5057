package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

const serviceName = "engagement-service"

var Logger zerolog.Logger

type Options struct {
	Level   string // debug|info|warn|error
	Format  string // json|console
	NoColor bool
	Caller  bool
}

func Init(opts Options) {
	InitWithWriter(os.Stdout, opts)
}

func InitWithWriter(w io.Writer, opts Options) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var base zerolog.Logger
	if strings.TrimSpace(opts.Format) == "json" {
		base = zerolog.New(w)
	} else {
		base = zerolog.New(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    opts.NoColor,
		})
	}

	l := base.With().Timestamp().Str("service", serviceName).Logger().Level(level)
	if opts.Caller {
		l = l.With().Caller().Logger()
	}

	Logger = l
	zlog.Logger = Logger
}
