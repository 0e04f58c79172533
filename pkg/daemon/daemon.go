// Package daemon serves the telemetry of one monitored battery over a
// unix socket.
package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battmon/pkg/battery"
	"github.com/charlie0129/battmon/pkg/config"
	"github.com/charlie0129/battmon/pkg/events"
	"github.com/charlie0129/battmon/pkg/monitor"
	"github.com/charlie0129/battmon/pkg/platform"
)

// Server answers API requests from the state of a Monitor.
type Server struct {
	mon  *monitor.Monitor
	hub  *events.EventHub
	conf config.Config
}

func NewServer(mon *monitor.Monitor, hub *events.EventHub, conf config.Config) *Server {
	return &Server{mon: mon, hub: hub, conf: conf}
}

func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/identity", s.getIdentity)
	router.GET("/status", s.getStatus)
	router.GET("/history", s.getHistory)
	router.GET("/events", s.streamEvents)
	router.GET("/config", s.getConfig)
	router.GET("/version", getVersion)

	return router
}

// reloadConfig applies a changed configuration to the running monitor.
func (s *Server) reloadConfig() error {
	if err := s.conf.Load(); err != nil {
		return err
	}
	s.mon.SetInterval(s.conf.PollInterval())
	s.mon.Recorder().Resize(s.conf.HistorySize())
	logrus.WithFields(s.conf.LogrusFields()).Infof("config reloaded")
	return nil
}

func Run(configPath string, unixSocketPath string, allowNonRoot bool) error {
	conf, err := config.NewFile(configPath)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to parse config during startup")
	}
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	h, id, err := battery.Acquire(platform.New())
	if err != nil {
		return err
	}
	defer func() {
		logrus.Info("closing battery handle")
		if err := h.Close(); err != nil {
			logrus.Errorf("failed to close battery handle: %v", err)
		}
	}()
	logrus.WithFields(logrus.Fields{
		"chemistry": id.Chemistry,
		"tag":       h.Tag(),
		"path":      h.Path(),
	}).Info("battery acquired")

	hub := events.NewEventHub()
	mon := monitor.New(h, id, monitor.Options{
		Interval:    conf.PollInterval(),
		HistorySize: conf.HistorySize(),
		Hub:         hub,
	})
	s := NewServer(mon, hub, conf)

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			if err := s.reloadConfig(); err != nil {
				logrus.Errorf("failed to reload config: %v", err)
			}
		}
	}()

	// Handle common process-killing signals, so we can gracefully shut down.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Handler: s.Router(),
		// Event streams end with the base context.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	// A socket left behind by a crashed daemon would make Listen fail.
	if fi, err := os.Stat(unixSocketPath); err == nil && fi.Mode()&os.ModeSocket != 0 {
		logrus.Warnf("removing stale socket %s", unixSocketPath)
		_ = os.Remove(unixSocketPath)
	}

	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to listen on %s", unixSocketPath)
	}

	if allowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", unixSocketPath)
		if err := os.Chmod(unixSocketPath, 0777); err != nil {
			_ = l.Close()
			return pkgerrors.Wrapf(err, "failed to change permissions of %s", unixSocketPath)
		}
	}

	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("http server failed: %v", err)
			stop()
		}
	}()

	monErr := make(chan error, 1)
	go func() {
		monErr <- mon.Run(ctx, nil)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logrus.Info("caught signal: shutting down.")
	case runErr = <-monErr:
		logrus.Errorf("monitor stopped: %v", runErr)
		stop()
	}

	logrus.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	// The handle may only be closed once the monitor no longer polls it.
	if runErr == nil {
		<-monErr
	}

	logrus.Info("exiting")
	return runErr
}
