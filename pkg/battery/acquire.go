package battery

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battmon/pkg/batclass"
	"github.com/charlie0129/battmon/pkg/platform"
)

// Acquire finds the first battery of the host, opens a channel to it and
// reads its identity. Each step runs only if the previous one succeeded.
// On failure nothing stays open.
func Acquire(p platform.Platform) (*Handle, *Identity, error) {
	logrus.Tracef("Acquire called")

	set, err := p.Enumerate(platform.BatteryClass)
	if err != nil {
		return nil, nil, newError(NoDeviceClass, "enumerate battery class", err)
	}
	defer func() {
		if err := set.Close(); err != nil {
			logrus.Warnf("failed to release device set: %v", err)
		}
	}()

	iface, err := set.Interface(0)
	if err != nil {
		if errors.Is(err, platform.ErrNoMoreItems) {
			return nil, nil, newError(NoBatteryPresent, "enumerate battery interfaces", err)
		}
		return nil, nil, newError(NoDeviceClass, "enumerate battery interfaces", err)
	}

	path, err := resolvePath(set, iface)
	if err != nil {
		return nil, nil, newError(PathResolutionFailed, "resolve interface path", err)
	}
	logrus.WithField("path", path).Debug("battery interface resolved")

	ch, err := p.Open(path)
	if err != nil {
		return nil, nil, newError(OpenFailed, "open "+path, err)
	}

	h := &Handle{ch: ch, power: p, path: path}
	id, err := h.identify()
	if err != nil {
		if cerr := h.Close(); cerr != nil {
			logrus.Warnf("failed to close battery channel: %v", cerr)
		}
		return nil, nil, err
	}

	return h, id, nil
}

// resolvePath probes for the size of the interface path, then fetches
// it into a buffer of exactly that size.
func resolvePath(set platform.DeviceSet, iface platform.Interface) (string, error) {
	_, required, err := set.InterfacePath(iface, nil)
	if err != nil && !errors.Is(err, platform.ErrInsufficientBuffer) {
		return "", err
	}
	if required <= 0 {
		return "", fmt.Errorf("invalid interface path size %d", required)
	}

	path, _, err := set.InterfacePath(iface, make([]byte, required))
	if err != nil {
		return "", err
	}

	return path, nil
}

// identify queries the tag and then the static information of the battery.
func (h *Handle) identify() (*Identity, error) {
	out := make([]byte, batclass.TagSize)
	n, err := h.ch.Control(batclass.IOCTLQueryTag, nil, out)
	if err != nil {
		return nil, newError(TagQueryFailed, "query battery tag", err)
	}
	tag, err := batclass.DecodeTag(out[:n])
	if err != nil {
		return nil, newError(TagQueryFailed, "query battery tag", err)
	}
	if tag == batclass.TagInvalid {
		return nil, newError(TagQueryFailed, "query battery tag", errors.New("driver returned an invalid tag"))
	}
	h.tag = tag

	in := batclass.Encode(batclass.QueryInformation{
		BatteryTag:       tag,
		InformationLevel: batclass.LevelInformation,
	})
	out = make([]byte, batclass.InformationSize)
	n, err = h.ch.Control(batclass.IOCTLQueryInformation, in, out)
	if err != nil {
		return nil, newError(InfoQueryFailed, "query battery information", err)
	}
	var info batclass.Information
	if err := batclass.Decode(out[:n], &info); err != nil {
		return nil, newError(InfoQueryFailed, "query battery information", err)
	}

	logrus.WithFields(logrus.Fields{
		"tag":       tag,
		"chemistry": fmt.Sprintf("% x", info.Chemistry[:]),
	}).Debug("battery identified")

	return &Identity{
		Chemistry:           ChemistryLabel(info.Chemistry),
		ChemistryCode:       info.Chemistry,
		Rechargeable:        info.Technology == 1,
		Capabilities:        info.Capabilities,
		DesignedCapacity:    info.DesignedCapacity,
		FullChargedCapacity: info.FullChargedCapacity,
		CycleCount:          info.CycleCount,
	}, nil
}
