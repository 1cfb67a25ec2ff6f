package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/2beens/fittrack/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultMaxLogFileSizeMB = 50

type LoggerSetupParams struct {
	LogFileName      string
	LogToStdout      bool
	LogLevel         string
	LogFormatJSON    bool
	MaxFileSizeMB    int
	Environment      string
	SentryEnabled    bool
	SentryDSN        string
	SentryServerName string
}

// Setup configures the package-level logrus logger. The returned func flushes
// sentry and closes the log file; call it on shutdown.
func Setup(params LoggerSetupParams) func() {
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logrus.SetLevel(GetLevel(params.LogLevel))

	sentryOn := params.SentryEnabled && setupSentry(params)

	output, logFile := logOutput(params)
	logrus.SetOutput(output)

	return func() {
		if sentryOn {
			sentry.Flush(2 * time.Second)
		}
		if logFile != nil {
			_ = logFile.Close()
		}
	}
}

func setupSentry(params LoggerSetupParams) bool {
	if params.SentryDSN == "" {
		logrus.Warnln("sentry enabled, but no DSN given")
		return false
	}

	err := sentry.Init(sentry.ClientOptions{
		Environment:      params.Environment,
		Dsn:              params.SentryDSN,
		TracesSampleRate: 1.0,
		ServerName:       params.SentryServerName,
	})
	if err != nil {
		logrus.Errorf("sentry.Init: %s", err)
		return false
	}

	logrus.AddHook(NewSentryHook([]logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
	}))
	logrus.Infoln("sentry set up successfully")
	return true
}

// logOutput picks stdout, a rotating file, or both.
func logOutput(params LoggerSetupParams) (io.Writer, *lumberjack.Logger) {
	if params.LogFileName == "" {
		logrus.Println("writing logs only to STDOUT")
		return os.Stdout, nil
	}

	fileName := params.LogFileName
	if !strings.HasSuffix(fileName, ".log") {
		fileName += ".log"
	}
	maxSize := params.MaxFileSizeMB
	if maxSize <= 0 {
		maxSize = defaultMaxLogFileSizeMB
	}

	// rotated files are kept, no MaxBackups / MaxAge
	logFile := &lumberjack.Logger{
		Filename:  fileName,
		MaxSize:   maxSize, // megabytes
		LocalTime: false,   // UTC in rotated file names
		Compress:  true,
	}

	if !params.LogToStdout {
		return logFile, logFile
	}
	logrus.Println("writing logs to file and STDOUT")
	return pkg.NewCombinedWriter(os.Stdout, logFile), logFile
}

// GetLevel parses a level name, defaulting to trace for anything unknown.
func GetLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.TraceLevel
	}
	return parsed
}
