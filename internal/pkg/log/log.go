// Package log add logging utilities.
package log

import (
	"io"
	"os"
	"strings"
	"time"

	"robonav/internal/pkg/message"
	"robonav/internal/pkg/session"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetLogger sets the default logger's level.
func SetLogger(level string) {
	customFormatter := new(logrus.TextFormatter)
	customFormatter.TimestampFormat = time.RFC3339
	customFormatter.FullTimestamp = true
	logrus.SetFormatter(customFormatter)
	logrus.SetLevel(ParseLevel(level))
}

// ParseLevel maps a level name to a logrus level, falling back to error.
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.ErrorLevel
	}
}

// SetOutput routes the default logger to a rolling file at path.
// An empty path keeps logging on stderr. The returned closer flushes the file.
func SetOutput(path string) io.Closer {
	if path == "" {
		logrus.SetOutput(os.Stderr)
		return nopCloser{}
	}
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
	}
	logrus.SetOutput(lj)
	return lj
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ClientMessageToFields describes a parsed robot message.
func ClientMessageToFields(msg message.Client) logrus.Fields {
	fields := logrus.Fields{
		"kind": msg.Kind().String(),
	}
	switch m := msg.(type) {
	case message.Username:
		fields["username"] = m.Name
	case message.KeyIndex:
		fields["key_index"] = m.Index
	case message.Confirmation:
		fields["hash"] = m.Hash
	case message.Position:
		fields["x"] = m.X
		fields["y"] = m.Y
	case message.Secret:
		fields["secret"] = m.Text
	case message.Stray:
		fields["body"] = m.Body
	}
	return fields
}

// ServerMessageToFields describes an outbound server message.
func ServerMessageToFields(msg message.Server) logrus.Fields {
	return logrus.Fields{
		"kind": msg.Kind.String(),
		"body": msg.Body(),
	}
}

// StateToFields describes a session state.
func StateToFields(state session.State) logrus.Fields {
	fields := logrus.Fields{
		"state": state.Name(),
	}
	switch st := state.(type) {
	case session.Navigating:
		fields["position"] = st.Nav.Position.String()
		fields["heading"] = st.Nav.Heading.String()
		fields["pending"] = len(st.Nav.Pending)
	case session.Charging:
		fields["suspended"] = st.Previous.Name()
	}
	return fields
}
