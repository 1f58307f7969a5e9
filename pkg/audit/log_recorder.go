package audit

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
)

// LogRecorder emits each audit event as a structured JSON log line,
// suitable for shipping to a log pipeline or SIEM. It is independent of
// the application logger so security events can be routed separately.
type LogRecorder struct {
	logger *logrus.Logger
}

// NewLogRecorder creates a recorder writing JSON lines to output
func NewLogRecorder(output io.Writer) *LogRecorder {
	logger := logrus.New()
	logger.SetOutput(output)
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	logger.SetLevel(logrus.InfoLevel)

	return &LogRecorder{logger: logger}
}

// Record writes the event as one log line
func (r *LogRecorder) Record(ctx context.Context, event *Event) error {
	fields := logrus.Fields{
		"event_type": string(event.EventType),
		"outcome":    event.Outcome,
	}
	if event.UserID != "" {
		fields["user_id"] = event.UserID
	}
	if event.ProjectID != "" {
		fields["project_id"] = event.ProjectID
	}
	if event.Action != "" {
		fields["action"] = event.Action
	}
	if event.Reason != "" {
		fields["reason"] = event.Reason
	}
	if event.GrantedBy != "" {
		fields["granted_by"] = event.GrantedBy
	}
	if event.Method != "" {
		fields["method"] = event.Method
	}
	if event.RequestID != "" {
		fields["request_id"] = event.RequestID
	}
	if event.IPAddress != "" {
		fields["ip_address"] = event.IPAddress
	}

	entry := r.logger.WithFields(fields)
	if !event.Timestamp.IsZero() {
		entry = entry.WithTime(event.Timestamp)
	}
	entry.Info("audit event")
	return nil
}

// Close is a no-op; logrus does not buffer
func (r *LogRecorder) Close() error {
	return nil
}
