package audio

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/model"
)

type fakeOutput struct {
	mu      sync.Mutex
	inits   int
	rate    beep.SampleRate
	played  []beep.Streamer
	closed  bool
	initErr error
}

func (f *fakeOutput) Init(sr beep.SampleRate, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.initErr != nil {
		return f.initErr
	}
	f.inits++
	f.rate = sr
	return nil
}

func (f *fakeOutput) Play(s ...beep.Streamer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.played = append(f.played, s...)
}

func (f *fakeOutput) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func writeWAV(t *testing.T, dir, name string, rate beep.SampleRate) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Silence(rate.N(50*time.Millisecond)), format))
	return path
}

func TestVolumeToDecibels(t *testing.T) {
	assert.Equal(t, -100.0, volumeToDecibels(0))
	assert.Equal(t, 0.0, volumeToDecibels(1))
	assert.InDelta(t, -6.02, volumeToDecibels(0.5), 0.01)
	assert.InDelta(t, -12.04, volumeToDecibels(0.25), 0.01)
}

func TestPlayer_Play(t *testing.T) {
	dir := t.TempDir()
	path := writeWAV(t, dir, "ping.wav", 44100)

	out := &fakeOutput{}
	p := NewPlayer(nil, out)

	require.NoError(t, p.Play(path))
	assert.True(t, p.Cached(path))
	assert.Equal(t, 1, out.inits)
	assert.Equal(t, beep.SampleRate(44100), out.rate)
	require.Len(t, out.played, 1)
	_, wrapped := out.played[0].(*effects.Volume)
	assert.False(t, wrapped, "full volume plays unmodified")

	p.SetVolume(0.5)
	require.NoError(t, p.Play(path))
	assert.Equal(t, 1, out.inits, "output initialized once")
	require.Len(t, out.played, 2)
	vol, ok := out.played[1].(*effects.Volume)
	require.True(t, ok)
	assert.InDelta(t, -6.02, vol.Volume, 0.01)

	p.Close()
	assert.True(t, out.closed)
	assert.False(t, p.Cached(path))
}

func TestPlayer_Errors(t *testing.T) {
	dir := t.TempDir()
	p := NewPlayer(nil, &fakeOutput{})

	assert.NoError(t, p.Play(""))

	err := p.Play(filepath.Join(dir, "missing.wav"))
	assert.Error(t, err)

	flac := filepath.Join(dir, "sound.flac")
	require.NoError(t, os.WriteFile(flac, []byte("x"), 0644))
	err = p.Preload(flac)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported audio format")

	bad := filepath.Join(dir, "bad.wav")
	require.NoError(t, os.WriteFile(bad, []byte("not a wav"), 0644))
	assert.Error(t, p.Preload(bad))
}

func TestPlayer_VolumeClamped(t *testing.T) {
	p := NewPlayer(nil, &fakeOutput{})
	p.SetVolume(3)
	assert.Equal(t, 1.0, p.GetVolume())
	p.SetVolume(-1)
	assert.Equal(t, 0.0, p.GetVolume())
}

func TestManager_PlayForType(t *testing.T) {
	dir := t.TempDir()
	errSound := writeWAV(t, dir, "error.wav", 22050)

	cfg := config.DefaultDaemonConfig()
	cfg.Audio.Enabled = true
	cfg.Audio.Volume = 100
	cfg.Audio.Sounds.Error = errSound
	cfg.Audio.Sounds.Warn = filepath.Join(dir, "missing.wav")

	out := &fakeOutput{}
	m := newManager(cfg, NewPlayer(nil, out), nil)

	sounds := m.Sounds()
	assert.Equal(t, map[model.Type]string{model.TypeError: errSound}, sounds)

	m.Start()
	assert.True(t, m.player.Cached(errSound))

	require.NoError(t, m.PlayForType(model.TypeInfo))
	assert.Empty(t, out.played)

	require.NoError(t, m.PlayForType(model.TypeError))
	assert.Len(t, out.played, 1)

	disabled := *cfg
	disabled.Audio.Enabled = false
	m.UpdateConfig(&disabled)
	require.NoError(t, m.PlayForType(model.TypeError))
	assert.Len(t, out.played, 1)

	m.Stop()
	assert.True(t, out.closed)
}

func TestManager_Volume(t *testing.T) {
	cfg := config.DefaultDaemonConfig()
	cfg.Audio.Volume = 40
	m := newManager(cfg, NewPlayer(nil, &fakeOutput{}), nil)
	assert.InDelta(t, 0.4, m.GetVolume(), 0.0001)

	m.SetVolume(0.9)
	assert.InDelta(t, 0.9, m.GetVolume(), 0.0001)
}
