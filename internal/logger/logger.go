package logger

import (
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/go-certichain/certichain/cmd/certichain/config"
)

const (
	internalLogFile = "certichain.log"
	accessLogFile   = "access.log"
)

var accessWriter io.Writer = os.Stderr

// Init initializes the logger from the loaded config
func Init() {
	conf := config.Get().Logging
	log.SetFormatter(
		&log.TextFormatter{
			FullTimestamp: true,
			DisableColors: conf.Internal.Dir != "",
		},
	)
	out, err := newWriter(conf.Internal.LoggerConf, internalLogFile)
	if err != nil {
		log.WithError(err).Fatal("could not open internal log file")
	}
	log.SetOutput(out)
	level, err := log.ParseLevel(conf.Internal.Level)
	if err != nil {
		log.WithError(err).Error("unknown log level, using INFO")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	accessWriter, err = newWriter(conf.Access, accessLogFile)
	if err != nil {
		log.WithError(err).Fatal("could not open access log file")
	}
}

// AccessWriter returns the writer for the http access log
func AccessWriter() io.Writer {
	return accessWriter
}

// newWriter returns a writer to the file in conf.Dir and, if requested or no
// dir is set, to stderr
func newWriter(conf config.LoggerConf, filename string) (io.Writer, error) {
	var writers []io.Writer
	if conf.StdErr || conf.Dir == "" {
		writers = append(writers, os.Stderr)
	}
	if conf.Dir != "" {
		f, err := os.OpenFile(
			filepath.Join(conf.Dir, filename), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640,
		)
		if err != nil {
			return nil, err
		}
		writers = append(writers, f)
	}
	if len(writers) == 1 {
		return writers[0], nil
	}
	return io.MultiWriter(writers...), nil
}
