package platform

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ezlockin/internal/core/model"
)

func writeSilentWav(t *testing.T, path string, rate beep.SampleRate) {
	t.Helper()
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()
	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(file, beep.Silence(rate.N(time.Second/10)), format))
}

func TestLoadSoundsDecodesAvailableCues(t *testing.T) {
	folder := t.TempDir()
	writeSilentWav(t, filepath.Join(folder, "start.wav"), 44100)
	writeSilentWav(t, filepath.Join(folder, "short.wav"), 22050)

	player, err := LoadSounds(folder, map[model.Cue]string{
		model.CueStartFocus:      "start.wav",
		model.CueStartShortBreak: "short.wav",
		model.CueStartLongBreak:  "missing.wav",
	})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoSounds))
	assert.Contains(t, err.Error(), string(model.CueStartLongBreak))

	assert.True(t, player.Has(model.CueStartFocus))
	assert.True(t, player.Has(model.CueStartShortBreak))
	assert.False(t, player.Has(model.CueStartLongBreak))
	assert.False(t, player.Has(model.CueEndLongBreak))

	assert.Equal(t, beep.SampleRate(44100), player.format.SampleRate)
	assert.Equal(t, player.format, player.buffers[model.CueStartShortBreak].Format())
	assert.InDelta(t, 4410, player.buffers[model.CueStartShortBreak].Len(), 50)
}

func TestLoadSoundsMissingFolder(t *testing.T) {
	player, err := LoadSounds(filepath.Join(t.TempDir(), "study_music"), map[model.Cue]string{
		model.CueStartFocus: "start.mp3",
	})
	assert.ErrorIs(t, err, ErrNoSounds)
	assert.False(t, player.Has(model.CueStartFocus))
	assert.NotPanics(t, func() { player.Play(model.CueStartFocus) })
}

func TestLoadSoundsRejectsUnknownFormat(t *testing.T) {
	folder := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(folder, "cue.ogg"), []byte("OggS"), 0o644))

	_, err := LoadSounds(folder, map[model.Cue]string{model.CueStartFocus: "cue.ogg"})
	assert.ErrorIs(t, err, ErrNoSounds)
	assert.Contains(t, err.Error(), "unsupported sound format")
}

func TestSetVolumeMapsPercentToBeepUnits(t *testing.T) {
	player := &SoundPlayer{}

	player.SetVolume(100)
	assert.False(t, player.silent)
	assert.InDelta(t, 0, player.volume, 1e-9)

	player.SetVolume(50)
	assert.InDelta(t, -1, player.volume, 1e-9)

	player.SetVolume(250)
	assert.InDelta(t, 0, player.volume, 1e-9)

	player.SetVolume(0)
	assert.True(t, player.silent)
	assert.NotPanics(t, func() { player.Play(model.CueStartFocus) })
}

func TestNilPlayerIsSilent(t *testing.T) {
	var player *SoundPlayer
	assert.False(t, player.Has(model.CueStartFocus))
	assert.NotPanics(t, func() { player.Play(model.CueStartFocus) })
	assert.NotPanics(t, func() { player.SetVolume(50) })
}
