package platform

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/rs/zerolog/log"

	"ezlockin/internal/core/model"
)

// ErrNoSounds is returned when no cue file could be decoded.
var ErrNoSounds = errors.New("no sound cues available")

// SoundPlayer plays pre-decoded cue sounds.
type SoundPlayer struct {
	mu      sync.Mutex
	format  beep.Format
	buffers map[model.Cue]*beep.Buffer
	volume  float64
	silent  bool

	speakerOnce sync.Once
	speakerErr  error
}

// LoadSounds decodes every cue file in folder. Files that are missing or
// cannot be decoded are skipped and reported in the joined error; the
// player is still usable for the remaining cues.
func LoadSounds(folder string, files map[model.Cue]string) (*SoundPlayer, error) {
	player := &SoundPlayer{buffers: make(map[model.Cue]*beep.Buffer)}

	info, err := os.Stat(folder)
	if err != nil {
		return player, fmt.Errorf("%w: sound folder: %v", ErrNoSounds, err)
	}
	if !info.IsDir() {
		return player, fmt.Errorf("%w: %s is not a directory", ErrNoSounds, folder)
	}

	var errs []error
	for _, cue := range model.Cues() {
		name, ok := files[cue]
		if !ok || name == "" {
			continue
		}
		path := filepath.Join(folder, name)
		buffer, err := player.decode(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("cue %s: %w", cue, err))
			continue
		}
		player.buffers[cue] = buffer
	}

	if len(player.buffers) == 0 {
		errs = append(errs, ErrNoSounds)
	}
	return player, errors.Join(errs...)
}

// Has reports whether a sound was loaded for cue.
func (player *SoundPlayer) Has(cue model.Cue) bool {
	if player == nil {
		return false
	}
	player.mu.Lock()
	defer player.mu.Unlock()
	_, ok := player.buffers[cue]
	return ok
}

// SetVolume sets playback loudness as a percentage of the recorded level.
// Zero mutes the player and values above 100 are clamped.
func (player *SoundPlayer) SetVolume(percent int) {
	if player == nil {
		return
	}
	percent = max(0, min(percent, 100))
	player.mu.Lock()
	defer player.mu.Unlock()
	player.silent = percent == 0
	player.volume = 0
	if !player.silent {
		player.volume = math.Log2(float64(percent) / 100)
	}
}

// Play starts cue asynchronously. The speaker is opened on first use and a
// failure to open it silences the player for the rest of the run.
func (player *SoundPlayer) Play(cue model.Cue) {
	if player == nil {
		return
	}
	player.mu.Lock()
	buffer, ok := player.buffers[cue]
	format := player.format
	volume := player.volume
	silent := player.silent
	player.mu.Unlock()
	if !ok || silent {
		return
	}

	player.speakerOnce.Do(func() {
		player.speakerErr = speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10))
		if player.speakerErr != nil {
			log.Warn().Err(player.speakerErr).Msg("audio output unavailable, sound cues disabled")
		}
	})
	if player.speakerErr != nil {
		return
	}

	speaker.Play(&effects.Volume{
		Streamer: buffer.Streamer(0, buffer.Len()),
		Base:     2,
		Volume:   volume,
	})
}

// decode reads an mp3 or wav file into a buffer, resampling to the format
// of the first decoded cue so a single speaker serves all of them.
func (player *SoundPlayer) decode(path string) (*beep.Buffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(file)
	case ".wav":
		streamer, format, err = wav.Decode(file)
	default:
		file.Close()
		return nil, fmt.Errorf("unsupported sound format %q", filepath.Ext(path))
	}
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer streamer.Close()

	if player.format.SampleRate == 0 {
		player.format = format
	}

	buffer := beep.NewBuffer(player.format)
	if format.SampleRate == player.format.SampleRate {
		buffer.Append(streamer)
	} else {
		buffer.Append(beep.Resample(4, format.SampleRate, player.format.SampleRate, streamer))
	}
	return buffer, nil
}
