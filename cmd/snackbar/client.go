package main

import (
	"fmt"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/dbus"
	"github.com/jmylchreest/snackbar/internal/model"
	"github.com/jmylchreest/snackbar/internal/web"
)

// appName identifies the CLI to the notification server.
const appName = "snackbar"

const (
	transportDBus = "dbus"
	transportHTTP = "http"
)

// daemonClient is the part of the daemon the send and close commands use.
type daemonClient interface {
	Show(req model.Request) (string, error)
	Hide(id string) (bool, error)
}

// dbusClient adapts the notification bus client to daemonClient.
type dbusClient struct {
	c *dbus.Client
}

func (d dbusClient) Show(req model.Request) (string, error) {
	id, err := d.c.Notify(appName, req)
	if err != nil {
		return "", err
	}
	return dbus.ToastID(id), nil
}

func (d dbusClient) Hide(id string) (bool, error) {
	n, ok := dbus.ParseToastID(id)
	if !ok {
		return false, fmt.Errorf("not a notification id: %q", id)
	}
	if err := d.c.Close(n); err != nil {
		return false, err
	}
	return true, nil
}

// newDaemonClient connects with the configured transport.
func newDaemonClient() (daemonClient, error) {
	switch cfg.Client.Transport {
	case "", transportDBus:
		c, err := dbus.NewClient()
		if err != nil {
			return nil, fmt.Errorf("failed to connect to session bus: %w", err)
		}
		return dbusClient{c: c}, nil
	case transportHTTP:
		return newWebClient()
	default:
		return nil, fmt.Errorf("unknown transport %q (want dbus or http)", cfg.Client.Transport)
	}
}

// newWebClient connects to the daemon's web bridge. The live queue is only
// reachable this way.
func newWebClient() (*web.Client, error) {
	address := cfg.Client.Address
	if address == "" {
		address = config.DefaultWebListen
	}
	logger.Debug("using web bridge", "address", address)
	return web.NewClient(address)
}
