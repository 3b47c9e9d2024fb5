package providers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/structures"
)

type TypeEnum int

const (
	TypeApp TypeEnum = iota
	TypeCrawler
	TypeBungie
	TypeStore
	TypeWebhook
)

var typeNames = map[TypeEnum]string{
	TypeApp:     "app",
	TypeCrawler: "crawler",
	TypeBungie:  "bungie",
	TypeStore:   "store",
	TypeWebhook: "webhook",
}

func (t TypeEnum) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "app"
}

type Logger interface {
	Debugf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Errorf(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

// LogProvider writes one log file per channel type. In debug mode every
// channel is echoed to the console as well.
type LogProvider struct {
	loggers map[TypeEnum]zerolog.Logger
	files   []*os.File
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Logger.Level, err)
	}

	lp := &LogProvider{
		loggers: make(map[TypeEnum]zerolog.Logger, len(typeNames)),
	}

	for t, name := range typeNames {
		path := filepath.Join(conf.Logger.Dir, name+".log")
		file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, os.FileMode(conf.Logger.Mode))
		if err != nil {
			lp.Close()
			return nil, fmt.Errorf("cannot open log file %s: %w", path, err)
		}
		lp.files = append(lp.files, file)

		var w io.Writer = file
		if conf.Debug {
			w = zerolog.MultiLevelWriter(file, zerolog.ConsoleWriter{Out: os.Stderr})
		}
		lp.loggers[t] = zerolog.New(w).Level(level).With().Timestamp().Str("channel", name).Logger()
	}

	return lp, nil
}

func (lp *LogProvider) logger(t TypeEnum) *zerolog.Logger {
	if l, ok := lp.loggers[t]; ok {
		return &l
	}
	l := lp.loggers[TypeApp]
	return &l
}

func (lp *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	lp.logger(t).Debug().Msgf(format, args...)
}

func (lp *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	lp.logger(t).Info().Msgf(format, args...)
}

func (lp *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	lp.logger(t).Warn().Msgf(format, args...)
}

func (lp *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	lp.logger(t).Error().Msgf(format, args...)
}

func (lp *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	lp.logger(t).Fatal().Msgf(format, args...)
}

func (lp *LogProvider) Close() {
	for _, f := range lp.files {
		_ = f.Close()
	}
}
