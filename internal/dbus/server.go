package dbus

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

const (
	// DBusInterface is the notification interface name.
	DBusInterface = "org.freedesktop.Notifications"
	// DBusPath is the notification object path.
	DBusPath = "/org/freedesktop/Notifications"
	// DBusBusName is the bus name to claim.
	DBusBusName = "org.freedesktop.Notifications"
)

// introspectXML describes the exported interface for D-Bus tooling.
const introspectXML = `<node name="` + DBusPath + `">
  <interface name="` + DBusInterface + `">
    <method name="GetCapabilities">
      <arg name="capabilities" type="as" direction="out"/>
    </method>
    <method name="GetServerInformation">
      <arg name="name" type="s" direction="out"/>
      <arg name="vendor" type="s" direction="out"/>
      <arg name="version" type="s" direction="out"/>
      <arg name="spec_version" type="s" direction="out"/>
    </method>
    <method name="Notify">
      <arg name="app_name" type="s" direction="in"/>
      <arg name="replaces_id" type="u" direction="in"/>
      <arg name="app_icon" type="s" direction="in"/>
      <arg name="summary" type="s" direction="in"/>
      <arg name="body" type="s" direction="in"/>
      <arg name="actions" type="as" direction="in"/>
      <arg name="hints" type="a{sv}" direction="in"/>
      <arg name="expire_timeout" type="i" direction="in"/>
      <arg name="id" type="u" direction="out"/>
    </method>
    <method name="CloseNotification">
      <arg name="id" type="u" direction="in"/>
    </method>
    <signal name="NotificationClosed">
      <arg name="id" type="u"/>
      <arg name="reason" type="u"/>
    </signal>
    <signal name="ActionInvoked">
      <arg name="id" type="u"/>
      <arg name="action_key" type="s"/>
    </signal>
  </interface>` + introspect.IntrospectDataString + `</node>`

var errNotConnected = errors.New("not connected to D-Bus")

// Handler receives the calls that touch the toast queue.
type Handler interface {
	// HandleNotify shows n under id. An error is returned to the caller
	// and the id is released.
	HandleNotify(n *DBusNotification, id uint32) error
	// HandleClose hides the toast for an active id.
	HandleClose(id uint32)
}

// emitter sends signals. *dbus.Conn satisfies it.
type emitter interface {
	Emit(path dbus.ObjectPath, name string, values ...any) error
}

// NotificationServer implements org.freedesktop.Notifications. It hands
// out ids, remembers which are still on screen and reports their fate.
type NotificationServer struct {
	info    ServerInfo
	logger  *slog.Logger
	handler Handler

	conn *dbus.Conn
	emit emitter

	mu     sync.Mutex
	lastID uint32
	active map[uint32]struct{}
}

// NewNotificationServer creates a server answering GetServerInformation
// with info.
func NewNotificationServer(info ServerInfo, logger *slog.Logger) *NotificationServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationServer{
		info:   info,
		logger: logger,
		active: make(map[uint32]struct{}),
	}
}

// SetHandler sets the queue side. Call before Start.
func (s *NotificationServer) SetHandler(h Handler) {
	s.handler = h
}

// Start connects to the session bus, exports the service and claims the
// bus name. Another running notification daemon makes it fail.
func (s *NotificationServer) Start() error {
	if s.conn != nil {
		return fmt.Errorf("server already running")
	}

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	if err := conn.Export(s, DBusPath, DBusInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}
	if err := conn.Export(introspect.Introspectable(introspectXML), DBusPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(DBusBusName, dbus.NameFlagDoNotQueue|dbus.NameFlagReplaceExisting)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", DBusBusName)
	}

	s.conn = conn
	s.emit = conn
	s.logger.Info("D-Bus notification server started", "name", DBusBusName)
	return nil
}

// Stop releases the bus name. The shared session connection stays open.
func (s *NotificationServer) Stop() error {
	if s.conn == nil {
		return nil
	}
	if _, err := s.conn.ReleaseName(DBusBusName); err != nil {
		s.logger.Warn("failed to release bus name", "error", err)
	}
	_ = s.conn.Export(nil, DBusPath, DBusInterface)
	s.conn = nil
	s.logger.Info("D-Bus notification server stopped")
	return nil
}

// GetCapabilities implements GetCapabilities() -> as.
func (s *NotificationServer) GetCapabilities() ([]string, *dbus.Error) {
	return ServerCapabilities, nil
}

// GetServerInformation implements GetServerInformation() -> (ssss).
func (s *NotificationServer) GetServerInformation() (string, string, string, string, *dbus.Error) {
	return s.info.Name, s.info.Vendor, s.info.Version, s.info.SpecVersion, nil
}

// Notify implements Notify(susssasa{sv}i) -> u. A non-zero replacesID
// keeps the id, so the toast is replaced in place.
func (s *NotificationServer) Notify(
	appName string,
	replacesID uint32,
	appIcon string,
	summary string,
	body string,
	actions []string,
	hints map[string]dbus.Variant,
	expireTimeout int32,
) (uint32, *dbus.Error) {
	s.mu.Lock()
	id := replacesID
	if _, ok := s.active[id]; id == 0 || !ok {
		// An unknown replaces_id is a new notification.
		s.lastID++
		id = s.lastID
	}
	s.active[id] = struct{}{}
	s.mu.Unlock()

	s.logger.Debug("notify", "app", appName, "id", id, "replaces", replacesID)

	if s.handler == nil {
		return id, nil
	}

	n := &DBusNotification{
		AppName:       appName,
		ReplacesID:    replacesID,
		AppIcon:       appIcon,
		Summary:       summary,
		Body:          body,
		Actions:       actions,
		Hints:         hints,
		ExpireTimeout: expireTimeout,
	}
	if err := s.handler.HandleNotify(n, id); err != nil {
		s.release(id)
		s.logger.Debug("notification rejected", "id", id, "error", err)
		return 0, dbus.MakeFailedError(err)
	}
	return id, nil
}

// CloseNotification implements CloseNotification(u). Unknown ids are
// ignored.
func (s *NotificationServer) CloseNotification(id uint32) *dbus.Error {
	if !s.Active(id) {
		return nil
	}
	if s.handler != nil {
		s.handler.HandleClose(id)
	}
	// Usually reported already through the queue's close hook.
	if err := s.ReportClosed(id, CloseReasonClosed); err != nil {
		s.logger.Warn("failed to report closed notification", "id", id, "error", err)
	}
	return nil
}

// Active reports whether id is on screen and not yet reported closed.
func (s *NotificationServer) Active(id uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[id]
	return ok
}

// release forgets id and reports whether it was active.
func (s *NotificationServer) release(id uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[id]
	delete(s.active, id)
	return ok
}

// ReportClosed emits NotificationClosed once per id. Later calls for the
// same id are no-ops.
func (s *NotificationServer) ReportClosed(id uint32, reason CloseReason) error {
	if !s.release(id) {
		return nil
	}
	return s.signal("NotificationClosed", id, id, uint32(reason))
}

// ReportAction emits ActionInvoked for an active id.
func (s *NotificationServer) ReportAction(id uint32, key string) error {
	if !s.Active(id) {
		return nil
	}
	return s.signal("ActionInvoked", id, id, key)
}

func (s *NotificationServer) signal(name string, id uint32, values ...any) error {
	if s.emit == nil {
		return &BridgeError{Op: name, ID: id, Err: errNotConnected}
	}
	if err := s.emit.Emit(DBusPath, DBusInterface+"."+name, values...); err != nil {
		return &BridgeError{Op: name, ID: id, Err: err}
	}
	s.logger.Debug("signal emitted", "signal", name, "id", id)
	return nil
}
