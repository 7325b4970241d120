package providers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"emd/internal/structures"
)

type TypeEnum int

const (
	TypeApp TypeEnum = iota
	TypeGet
	TypePost
)

// Logger is the app-wide logging surface: one log stream per traffic
// type, all backed by zerolog file writers.
type Logger interface {
	Debugf(t TypeEnum, format string, args ...any)
	Infof(t TypeEnum, format string, args ...any)
	Warnf(t TypeEnum, format string, args ...any)
	Errorf(t TypeEnum, format string, args ...any)
	Close()
}

func GetLogTypeByRequestType(method string) TypeEnum {
	if method == "POST" {
		return TypePost
	}
	return TypeGet
}

type logFile struct {
	file   *os.File
	logger zerolog.Logger
}

type LogProvider struct {
	streams map[TypeEnum]*logFile
}

var streamNames = map[TypeEnum]string{
	TypeApp:  "app.log",
	TypeGet:  "get.log",
	TypePost: "post.log",
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Logger.Level, err)
	}

	if info, err := os.Stat(conf.Logger.Dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("log directory %s is not usable", conf.Logger.Dir)
	}

	lp := &LogProvider{streams: make(map[TypeEnum]*logFile, len(streamNames))}
	for t, name := range streamNames {
		path := filepath.Join(conf.Logger.Dir, name)
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, os.FileMode(conf.Logger.Mode))
		if err != nil {
			lp.Close()
			return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
		}
		lp.streams[t] = &logFile{
			file:   file,
			logger: zerolog.New(file).Level(level).With().Timestamp().Logger(),
		}
	}
	return lp, nil
}

func (lp *LogProvider) stream(t TypeEnum) *zerolog.Logger {
	if s, ok := lp.streams[t]; ok {
		return &s.logger
	}
	return &lp.streams[TypeApp].logger
}

func (lp *LogProvider) Debugf(t TypeEnum, format string, args ...any) {
	lp.stream(t).Debug().Msgf(format, args...)
}

func (lp *LogProvider) Infof(t TypeEnum, format string, args ...any) {
	lp.stream(t).Info().Msgf(format, args...)
}

func (lp *LogProvider) Warnf(t TypeEnum, format string, args ...any) {
	lp.stream(t).Warn().Msgf(format, args...)
}

func (lp *LogProvider) Errorf(t TypeEnum, format string, args ...any) {
	lp.stream(t).Error().Msgf(format, args...)
}

func (lp *LogProvider) Close() {
	for _, s := range lp.streams {
		if s != nil && s.file != nil {
			_ = s.file.Close()
		}
	}
}
