// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package window

import (
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
)

// IssueInfo shows an information dialog.
func IssueInfo(message string) error {
	return sdl.ShowSimpleMessageBox(sdl.MESSAGEBOX_INFORMATION, "Information.", message, nil)
}

// IssueWarn shows a warning dialog.
func IssueWarn(message string) error {
	return sdl.ShowSimpleMessageBox(sdl.MESSAGEBOX_WARNING, "Warning!", message, nil)
}

// IssueError shows an error dialog.
func IssueError(message string) error {
	return sdl.ShowSimpleMessageBox(sdl.MESSAGEBOX_ERROR, "Error!", message, nil)
}

// NewMessageBoxHook creates a logrus hook showing a dialog for
// every entry at or above minLevel.
func NewMessageBoxHook(minLevel log.Level) *MessageBoxHook {
	return &MessageBoxHook{
		minLevel: minLevel,
		show: func(level log.Level, message string) error {
			switch level {
			case log.InfoLevel:
				return IssueInfo(message)
			case log.WarnLevel:
				return IssueWarn(message)
			default:
				return IssueError(message)
			}
		},
	}
}

// MessageBoxHook forwards log entries to message boxes.
type MessageBoxHook struct {
	minLevel log.Level
	show     func(level log.Level, message string) error
}

// Levels implements logrus.Hook
func (h *MessageBoxHook) Levels() []log.Level {
	var levels []log.Level
	for _, l := range log.AllLevels {
		if l <= h.minLevel {
			levels = append(levels, l)
		}
	}
	return levels
}

// Fire implements logrus.Hook
func (h *MessageBoxHook) Fire(entry *log.Entry) error {
	return h.show(entry.Level, entry.Message)
}
