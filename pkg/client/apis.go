package client

import (
	"encoding/json"
	"net/url"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/charlie0129/battmon/pkg/battery"
	"github.com/charlie0129/battmon/pkg/monitor"
)

func (c *Client) GetIdentity() (*battery.Identity, error) {
	ret, err := c.Get("/identity")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get battery identity")
	}

	var id battery.Identity
	if err := json.Unmarshal([]byte(ret), &id); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal battery identity")
	}
	return &id, nil
}

// StatusResponse is the latest sample held by the daemon.
type StatusResponse struct {
	Status *battery.Status `json:"status"`
	// Unix seconds of the sample.
	Ts int64 `json:"ts"`
	// Consecutive failed polls since this sample.
	Failures int `json:"failures"`
}

func (c *Client) GetStatus() (*StatusResponse, error) {
	ret, err := c.Get("/status")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get battery status")
	}

	var st StatusResponse
	if err := json.Unmarshal([]byte(ret), &st); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal battery status")
	}
	return &st, nil
}

// GetHistory returns the samples taken within last, or all of them if
// last is zero.
func (c *Client) GetHistory(last time.Duration) ([]monitor.Record, error) {
	path := "/history"
	if last > 0 {
		path += "?last=" + url.QueryEscape(last.String())
	}
	ret, err := c.Get(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get history")
	}

	var records []monitor.Record
	if err := json.Unmarshal([]byte(ret), &records); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal history")
	}
	return records, nil
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}

	var v string
	if err := json.Unmarshal([]byte(ret), &v); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to unmarshal version")
	}
	return v, nil
}
