package config

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battmon/pkg/utils/ptr"
)

// Bounds of the poll interval, in seconds.
const (
	MinPollInterval = 1
	MaxPollInterval = 3600
)

var (
	defaultFileConfig = &RawFileConfig{
		PollInterval: ptr.To(1),
		// One hour of samples at the default interval.
		HistorySize: ptr.To(3600),
		ClearScreen: ptr.To(true),
		PlotPath:    ptr.To(""),
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

// DefaultPath returns battmon.json in the user config directory, or in
// the working directory if there is none.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "battmon.json"
	}
	return filepath.Join(dir, "battmon", "battmon.json")
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = &RawFileConfig{}
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

type RawFileConfig struct {
	// PollInterval is in seconds.
	PollInterval *int    `json:"pollInterval,omitempty"`
	HistorySize  *int    `json:"historySize,omitempty"`
	ClearScreen  *bool   `json:"clearScreen,omitempty"`
	PlotPath     *string `json:"plotPath,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	rawConfig := &RawFileConfig{
		PollInterval: ptr.To(int(c.PollInterval() / time.Second)),
		HistorySize:  ptr.To(c.HistorySize()),
		ClearScreen:  ptr.To(c.ClearScreen()),
		PlotPath:     ptr.To(c.PlotPath()),
	}

	return rawConfig, nil
}

func (f *File) PollInterval() time.Duration {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	seconds := *defaultFileConfig.PollInterval
	if f.c.PollInterval != nil && *f.c.PollInterval >= MinPollInterval && *f.c.PollInterval <= MaxPollInterval {
		seconds = *f.c.PollInterval
	}

	return time.Duration(seconds) * time.Second
}

func (f *File) HistorySize() int {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	size := *defaultFileConfig.HistorySize
	if f.c.HistorySize != nil && *f.c.HistorySize >= 1 {
		size = *f.c.HistorySize
	}

	return size
}

func (f *File) ClearScreen() bool {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	var clearScreen bool

	if f.c.ClearScreen != nil {
		clearScreen = *f.c.ClearScreen
	} else {
		clearScreen = *defaultFileConfig.ClearScreen
	}

	return clearScreen
}

func (f *File) PlotPath() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	var plotPath string

	if f.c.PlotPath != nil {
		plotPath = *f.c.PlotPath
	} else {
		plotPath = *defaultFileConfig.PlotPath
	}

	return plotPath
}

func (f *File) SetPollInterval(d time.Duration) error {
	if f.c == nil {
		panic("config is nil")
	}

	seconds := int(d / time.Second)
	if d%time.Second != 0 || seconds < MinPollInterval || seconds > MaxPollInterval {
		return pkgerrors.Errorf("poll interval must be a whole number of seconds between %d and %d, got %s", MinPollInterval, MaxPollInterval, d)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.PollInterval = &seconds

	return nil
}

func (f *File) SetHistorySize(i int) error {
	if f.c == nil {
		panic("config is nil")
	}

	if i < 1 {
		return pkgerrors.Errorf("history size must be at least 1, got %d", i)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.HistorySize = &i

	return nil
}

func (f *File) SetClearScreen(b bool) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.ClearScreen = &b
}

func (f *File) SetPlotPath(p string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.PlotPath = &p
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	if dir := filepath.Dir(f.filepath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return pkgerrors.Wrapf(err, "failed to create directory %s", dir)
		}
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	return logrus.Fields{
		"pollInterval": f.PollInterval().String(),
		"historySize":  f.HistorySize(),
		"clearScreen":  f.ClearScreen(),
		"plotPath":     f.PlotPath(),
	}
}
