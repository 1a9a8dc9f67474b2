package audio

import (
	"log/slog"
	"maps"
	"os"
	"sync"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/model"
)

// Manager plays the configured sound for each toast type.
type Manager struct {
	mu     sync.RWMutex
	logger *slog.Logger
	player *Player
	config *config.DaemonConfig

	// Toast type to sound path mapping
	sounds map[model.Type]string
}

// NewManager creates a new audio manager playing through the system speaker.
func NewManager(cfg *config.DaemonConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return newManager(cfg, NewPlayer(logger, nil), logger)
}

func newManager(cfg *config.DaemonConfig, player *Player, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		logger: logger,
		player: player,
		config: cfg,
		sounds: make(map[model.Type]string),
	}
	m.loadSoundConfig()
	return m
}

// loadSoundConfig loads sounds from the configuration.
func (m *Manager) loadSoundConfig() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sounds = make(map[model.Type]string)
	if m.config == nil {
		return
	}

	// Config uses 0-100, player uses 0.0-1.0
	m.player.SetVolume(float64(m.config.Audio.Volume) / 100.0)

	for _, t := range model.Types {
		path := m.config.GetSoundForType(t)
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			m.logger.Warn("sound file not found", "type", t, "path", path)
			continue
		}
		m.sounds[t] = path
		m.logger.Debug("loaded sound", "type", t, "path", path)
	}
}

// Start preloads every configured sound.
func (m *Manager) Start() {
	sounds := m.Sounds()
	m.preload(sounds)
	m.logger.Info("audio manager started", "sounds", len(sounds), "enabled", m.enabled())
}

func (m *Manager) preload(sounds map[model.Type]string) {
	for _, path := range sounds {
		if err := m.player.Preload(path); err != nil {
			m.logger.Warn("failed to preload sound", "path", path, "error", err)
		}
	}
}

// Stop shuts down the audio manager.
func (m *Manager) Stop() {
	m.player.Close()
	m.logger.Debug("audio manager stopped")
}

func (m *Manager) enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config != nil && m.config.Audio.Enabled
}

// PlayForType plays the sound configured for the toast type.
func (m *Manager) PlayForType(t model.Type) error {
	if !m.enabled() {
		return nil
	}

	m.mu.RLock()
	path, ok := m.sounds[t]
	m.mu.RUnlock()

	if !ok {
		m.logger.Debug("no sound configured for type", "type", t)
		return nil
	}

	return m.player.Play(path)
}

// PlayFile plays a specific sound file.
func (m *Manager) PlayFile(path string) error {
	if !m.enabled() {
		return nil
	}
	return m.player.Play(path)
}

// Sounds returns a copy of the type to path mapping.
func (m *Manager) Sounds() map[model.Type]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[model.Type]string, len(m.sounds))
	maps.Copy(out, m.sounds)
	return out
}

// SetVolume sets the playback volume (0.0 to 1.0).
func (m *Manager) SetVolume(volume float64) {
	m.player.SetVolume(volume)
}

// GetVolume returns the current volume.
func (m *Manager) GetVolume() float64 {
	return m.player.GetVolume()
}

// Reload drops cached sounds and reads the configuration again.
func (m *Manager) Reload() {
	m.player.ClearCache()
	m.loadSoundConfig()
	m.preload(m.Sounds())
	m.logger.Debug("audio manager reloaded")
}

// UpdateConfig updates the configuration and reloads sounds.
// This is called when the config file is hot-reloaded.
func (m *Manager) UpdateConfig(cfg *config.DaemonConfig) {
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()

	m.logger.Debug("audio manager config updated")
	m.Reload()
}
