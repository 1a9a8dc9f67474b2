package dbus

import (
	"math"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/snackbar/internal/model"
)

// Client calls a running notification server on the session bus.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// NewClient connects to the session bus.
func NewClient() (*Client, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, &BridgeError{Op: "connect", Err: err}
	}
	return &Client{
		conn: conn,
		obj:  conn.Object(DBusBusName, DBusPath),
	}, nil
}

// EncodeRequest converts a toast request into Notify arguments.
func EncodeRequest(appName string, req model.Request) (*DBusNotification, error) {
	cfg, err := req.Config()
	if err != nil {
		return nil, err
	}

	n := &DBusNotification{
		AppName:       appName,
		Summary:       cfg.Message,
		Hints:         make(map[string]dbus.Variant),
		ExpireTimeout: -1,
	}

	if req.ID != "" {
		if id, ok := ParseToastID(req.ID); ok {
			n.ReplacesID = id
		}
	}

	if cfg.Type != "" {
		n.Hints[HintType] = dbus.MakeVariant(string(cfg.Type))
		urgency := UrgencyNormal
		if cfg.Type == model.TypeError {
			urgency = UrgencyCritical
		}
		n.Hints["urgency"] = dbus.MakeVariant(urgency)
	}

	if cfg.Timeout != nil {
		ms := cfg.Timeout.Milliseconds()
		n.ExpireTimeout = int32(min(ms, math.MaxInt32))
	}

	if cfg.HideDismissBtn != nil && *cfg.HideDismissBtn {
		n.Hints[HintHideDismiss] = dbus.MakeVariant(true)
	}
	if cfg.Loading {
		n.Hints[HintLoading] = dbus.MakeVariant(true)
	}

	if ab := cfg.ActionButton; ab != nil {
		n.Actions = []string{DefaultActionKey, ab.Caption}
		if ab.Link != "" {
			n.Hints[HintLink] = dbus.MakeVariant(ab.Link)
		}
		if ab.LinkTarget != "" {
			n.Hints[HintLinkTarget] = dbus.MakeVariant(ab.LinkTarget)
		}
	}
	return n, nil
}

// Notify sends a request and returns the notification id.
func (c *Client) Notify(appName string, req model.Request) (uint32, error) {
	n, err := EncodeRequest(appName, req)
	if err != nil {
		return 0, err
	}

	var id uint32
	call := c.obj.Call(DBusInterface+".Notify", 0,
		n.AppName, n.ReplacesID, n.AppIcon, n.Summary, n.Body, n.Actions, n.Hints, n.ExpireTimeout)
	if err := call.Store(&id); err != nil {
		return 0, &BridgeError{Op: "Notify", Err: err}
	}
	return id, nil
}

// Close asks the server to close a notification.
func (c *Client) Close(id uint32) error {
	if err := c.obj.Call(DBusInterface+".CloseNotification", 0, id).Err; err != nil {
		return &BridgeError{Op: "CloseNotification", ID: id, Err: err}
	}
	return nil
}

// ServerInformation returns the running server's identity.
func (c *Client) ServerInformation() (ServerInfo, error) {
	var info ServerInfo
	err := c.obj.Call(DBusInterface+".GetServerInformation", 0).
		Store(&info.Name, &info.Vendor, &info.Version, &info.SpecVersion)
	if err != nil {
		return ServerInfo{}, &BridgeError{Op: "GetServerInformation", Err: err}
	}
	return info, nil
}

// Capabilities returns the running server's capabilities.
func (c *Client) Capabilities() ([]string, error) {
	var caps []string
	if err := c.obj.Call(DBusInterface+".GetCapabilities", 0).Store(&caps); err != nil {
		return nil, &BridgeError{Op: "GetCapabilities", Err: err}
	}
	return caps, nil
}
