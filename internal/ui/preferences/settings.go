package preferences

import (
	"maps"
	"time"

	"ezlockin/internal/core/model"
)

// Settings defines editable user preferences.
type Settings struct {
	StudyMin           time.Duration
	StudyMax           time.Duration
	ShortBreak         time.Duration
	LongBreak          time.Duration
	LongBreakThreshold time.Duration

	SoundEnabled bool
	SoundFolder  string
	SoundFiles   map[model.Cue]string
	// SoundVolume is a percentage of the recorded loudness; 0 mutes the cues.
	SoundVolume int

	// IdlePauseAfter of zero disables idle auto-pause.
	IdlePauseAfter time.Duration

	WindowOpacity float64
	AlwaysOnTop   bool
}

// DefaultSettings returns default settings for EZLockIn.
func DefaultSettings() Settings {
	return Settings{
		StudyMin:           180 * time.Second,
		StudyMax:           300 * time.Second,
		ShortBreak:         10 * time.Second,
		LongBreak:          20 * time.Minute,
		LongBreakThreshold: 90 * time.Minute,
		SoundEnabled:       true,
		SoundFolder:        "study_music",
		SoundFiles:         DefaultSoundFiles(),
		SoundVolume:        100,
		WindowOpacity:      0.8,
		AlwaysOnTop:        true,
	}
}

// DefaultSoundFiles returns the cue to file name mapping used when none is configured.
func DefaultSoundFiles() map[model.Cue]string {
	return map[model.Cue]string{
		model.CueStartFocus:      "start_study.mp3",
		model.CueStartShortBreak: "start_short_break.mp3",
		model.CueStartLongBreak:  "start_long_break.mp3",
		model.CueEndLongBreak:    "end_long_break.mp3",
	}
}

// Clone returns a copy that does not share the sound file map.
func (settings Settings) Clone() Settings {
	settings.SoundFiles = maps.Clone(settings.SoundFiles)
	return settings
}

// CycleConfig converts settings to the cycle configuration.
func (settings Settings) CycleConfig() model.CycleConfig {
	return model.CycleConfig{
		Focus: model.FocusRange{
			Min: settings.StudyMin,
			Max: settings.StudyMax,
		},
		ShortBreak:         settings.ShortBreak,
		LongBreak:          settings.LongBreak,
		LongBreakThreshold: settings.LongBreakThreshold,
		IdlePauseAfter:     settings.IdlePauseAfter,
		IdleCheckInterval:  5 * time.Second,
	}
}
