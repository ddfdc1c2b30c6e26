package hwprobe

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelError LogLevel = "error"
)

func (lvl LogLevel) IsValid() bool {
	switch lvl {
	case LogLevelDebug:
		fallthrough
	case LogLevelInfo:
		fallthrough
	case LogLevelError:
		return true
	default:
		return false
	}
}

func (lvl LogLevel) LogrusLevel() logrus.Level {
	switch lvl {
	case LogLevelDebug:
		return logrus.DebugLevel
	case LogLevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// plainFormatter renders entries as "LEVEL: message k=v ...", the format wrapper
// scripts grep the diagnostic stream for. The package field is dropped.
type plainFormatter struct{}

func (f *plainFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := &bytes.Buffer{}
	b.WriteString(levelLabel(entry.Level))
	b.WriteString(": ")
	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k == "package" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, " %s=%v", k, entry.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

func levelLabel(lvl logrus.Level) string {
	if lvl == logrus.WarnLevel {
		return "WARN"
	}
	return strings.ToUpper(lvl.String())
}

type logrusFileHook struct {
	file      *os.File
	formatter *logrus.TextFormatter
}

func addLogFileHook(file string, flag int, chmod os.FileMode) error {
	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("unable to create the logs dir '%s': %s", dir, err.Error())
	}

	logFile, err := os.OpenFile(file, flag, chmod)
	if err != nil {
		return fmt.Errorf("unable to write log file: %s", err.Error())
	}

	plainFormatter := &logrus.TextFormatter{FullTimestamp: true, DisableColors: true}
	logrus.AddHook(&logrusFileHook{logFile, plainFormatter})

	return nil
}

// Fire event
func (hook *logrusFileHook) Fire(entry *logrus.Entry) error {
	line, err := hook.formatter.Format(entry)
	if err != nil {
		return err
	}
	if _, err = hook.file.Write(line); err != nil {
		fmt.Fprintf(os.Stderr, "unable to write file on filehook(entry.String)%v", err)
		return err
	}

	return nil
}

func (hook *logrusFileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// ConfigureLogger sends diagnostics to out in the plain format and, if
// configured, appends them to the log file as well.
func ConfigureLogger(cfg *Config, out io.Writer) {
	logrus.SetFormatter(&plainFormatter{})
	logrus.SetOutput(out)
	logrus.SetLevel(cfg.LogLevel.LogrusLevel())

	if cfg.LogFile != "" {
		logrus.Debugf("Adding log file hook %s", cfg.LogFile)
		if err := addLogFileHook(cfg.LogFile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644); err != nil {
			logrus.Warnf("Can't write logs to file: %s", err.Error())
		}
	}
}
