package config

import (
	"time"

	"github.com/sirupsen/logrus"
)

type Config interface {
	PollInterval() time.Duration
	HistorySize() int
	ClearScreen() bool
	PlotPath() string

	SetPollInterval(time.Duration) error
	SetHistorySize(int) error
	SetClearScreen(bool)
	SetPlotPath(string)

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error

	LogrusFields() logrus.Fields
}
