package daemon

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlie0129/battmon/pkg/battery"
	"github.com/charlie0129/battmon/pkg/config"
	"github.com/charlie0129/battmon/pkg/version"
)

type statusResponse struct {
	Status   *battery.Status `json:"status"`
	Ts       int64           `json:"ts"`
	Failures int             `json:"failures"`
}

func (s *Server) getIdentity(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, s.mon.Identity())
}

func (s *Server) getStatus(c *gin.Context) {
	st, ts, ok := s.mon.Latest()
	if !ok {
		c.IndentedJSON(http.StatusServiceUnavailable, "battery has not been sampled yet")
		return
	}

	c.IndentedJSON(http.StatusOK, statusResponse{
		Status:   st,
		Ts:       ts.Unix(),
		Failures: s.mon.Failures(),
	})
}

func (s *Server) getHistory(c *gin.Context) {
	last := c.Query("last")
	if last == "" {
		c.IndentedJSON(http.StatusOK, s.mon.Recorder().Records())
		return
	}

	d, err := time.ParseDuration(last)
	if err != nil || d <= 0 {
		err := fmt.Errorf("last must be a positive duration, got %q", last)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	c.IndentedJSON(http.StatusOK, s.mon.Recorder().RecordsIn(d))
}

// streamEvents sends hub events as SSE. Repeated name query parameters
// restrict the stream to those event names.
func (s *Server) streamEvents(c *gin.Context) {
	ch := s.hub.Subscribe(c.QueryArray("name")...)
	defer s.hub.Unsubscribe(ch)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			c.SSEvent(ev.Name, ev.Data)
			c.Writer.Flush()
		}
	}
}

func (s *Server) getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(s.conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}
