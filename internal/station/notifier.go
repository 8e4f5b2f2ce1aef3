package station

import (
	"weighstation/internal/logger"
	"weighstation/internal/models"
)

// LogNotifier routes transient operator notifications to the application
// logger. A headless deployment has no toast surface, so this is the
// default way operator feedback becomes visible.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(level models.LogLevel, message string) {
	if n.log == nil {
		return
	}
	switch level {
	case models.LevelError:
		n.log.Errorw("notify", "msg", message)
	case models.LevelWarning:
		n.log.Warnw("notify", "msg", message)
	default:
		n.log.Infow("notify", "msg", message)
	}
}
