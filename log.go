package btctransfer

import (
	"io"

	"github.com/sirupsen/logrus"
)

// defaultLogger returns logger, or a logger that discards everything when
// logger is nil.
func defaultLogger(logger logrus.FieldLogger) logrus.FieldLogger {
	if logger != nil {
		return logger
	}
	nullLogger := logrus.New()
	nullLogger.SetOutput(io.Discard)
	return nullLogger
}
