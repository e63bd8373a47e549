package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"ezlockin/internal/core/model"
	"ezlockin/internal/ui/preferences"
)

// ConfigFileName is the configuration document inside the data directory.
const ConfigFileName = "config.yaml"

type yamlSettings struct {
	StudyTimeMin       *int              `yaml:"study_time_min"`
	StudyTimeMax       *int              `yaml:"study_time_max"`
	ShortBreakSeconds  *int              `yaml:"short_break_seconds"`
	LongBreakSeconds   *int              `yaml:"long_break_seconds"`
	LongBreakThreshold *int              `yaml:"long_break_threshold"`
	SoundEnabled       *bool             `yaml:"sound_enabled"`
	SoundFolder        *string           `yaml:"sound_folder"`
	SoundFiles         map[string]string `yaml:"sound_files"`
	SoundVolume        *int              `yaml:"sound_volume"`
	IdlePauseSeconds   *int              `yaml:"idle_pause_seconds"`
	WindowOpacity      *float64          `yaml:"window_opacity"`
	AlwaysOnTop        *bool             `yaml:"always_on_top"`
}

// ConfigPath returns the configuration document path for a data directory.
func ConfigPath(dir string) string {
	return filepath.Join(dir, ConfigFileName)
}

// LoadSettings reads user preferences from config.yaml in dir.
// A missing document is created with defaults. Missing keys are back-filled
// and the document rewritten. Invalid values fall back to their defaults
// and are reported as joined *ConfigError values; the returned settings are
// always usable.
func LoadSettings(dir string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()
	configPath := ConfigPath(dir)

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := SaveSettings(dir, settings); err != nil {
				return settings, err
			}
			log.Info().Str("path", configPath).Msg("created default config")
			return settings, nil
		}
		return settings, &PersistenceError{Op: "read config", Path: configPath, Err: err}
	}

	var fileData yamlSettings
	var typeErr *yaml.TypeError
	var problems []error
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		if !errors.As(err, &typeErr) {
			return settings, &ConfigError{Path: configPath, Reason: "parse yaml", Err: err}
		}
		for _, message := range typeErr.Errors {
			problems = append(problems, &ConfigError{Path: configPath, Reason: message})
		}
	}

	applier := settingsApplier{path: configPath}
	applier.apply(&settings, fileData)
	problems = append(problems, applier.problems...)

	// A document with type errors is left alone so the user's edits are not lost.
	if len(applier.missing) > 0 && typeErr == nil {
		if err := SaveSettings(dir, settings); err != nil {
			problems = append(problems, err)
		} else {
			log.Info().Strs("keys", applier.missing).Str("path", configPath).Msg("back-filled missing config keys")
		}
	}

	return settings, errors.Join(problems...)
}

// SaveSettings writes user preferences to config.yaml in dir.
func SaveSettings(dir string, settings preferences.Settings) error {
	configPath := ConfigPath(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &PersistenceError{Op: "create config directory", Path: dir, Err: err}
	}

	soundFiles := make(map[string]string, len(settings.SoundFiles))
	for cue, file := range settings.SoundFiles {
		soundFiles[string(cue)] = file
	}

	fileData := yamlSettings{
		StudyTimeMin:       intPtr(seconds(settings.StudyMin)),
		StudyTimeMax:       intPtr(seconds(settings.StudyMax)),
		ShortBreakSeconds:  intPtr(seconds(settings.ShortBreak)),
		LongBreakSeconds:   intPtr(seconds(settings.LongBreak)),
		LongBreakThreshold: intPtr(seconds(settings.LongBreakThreshold)),
		SoundEnabled:       &settings.SoundEnabled,
		SoundFolder:        &settings.SoundFolder,
		SoundFiles:         soundFiles,
		SoundVolume:        &settings.SoundVolume,
		IdlePauseSeconds:   intPtr(seconds(settings.IdlePauseAfter)),
		WindowOpacity:      &settings.WindowOpacity,
		AlwaysOnTop:        &settings.AlwaysOnTop,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return &PersistenceError{Op: "write config", Path: configPath, Err: err}
	}

	return nil
}

type settingsApplier struct {
	path     string
	missing  []string
	problems []error
}

func (applier *settingsApplier) apply(settings *preferences.Settings, fileData yamlSettings) {
	applier.seconds("study_time_min", fileData.StudyTimeMin, &settings.StudyMin, false)
	applier.seconds("study_time_max", fileData.StudyTimeMax, &settings.StudyMax, false)
	applier.seconds("short_break_seconds", fileData.ShortBreakSeconds, &settings.ShortBreak, false)
	applier.seconds("long_break_seconds", fileData.LongBreakSeconds, &settings.LongBreak, false)
	applier.seconds("long_break_threshold", fileData.LongBreakThreshold, &settings.LongBreakThreshold, false)
	applier.seconds("idle_pause_seconds", fileData.IdlePauseSeconds, &settings.IdlePauseAfter, true)

	// The generator falls back to the minimum, so an inverted range is kept as is.
	if settings.StudyMin > settings.StudyMax {
		applier.invalid("study_time_max", fmt.Sprintf("%d is less than study_time_min %d, focus phases will use the minimum",
			seconds(settings.StudyMax), seconds(settings.StudyMin)))
	}

	if fileData.SoundEnabled == nil {
		applier.missing = append(applier.missing, "sound_enabled")
	} else {
		settings.SoundEnabled = *fileData.SoundEnabled
	}

	switch {
	case fileData.SoundFolder == nil:
		applier.missing = append(applier.missing, "sound_folder")
	case *fileData.SoundFolder == "":
		applier.invalid("sound_folder", "must not be empty")
	default:
		settings.SoundFolder = *fileData.SoundFolder
	}

	applier.soundFiles(settings, fileData.SoundFiles)

	switch {
	case fileData.SoundVolume == nil:
		applier.missing = append(applier.missing, "sound_volume")
	case *fileData.SoundVolume < 0 || *fileData.SoundVolume > 100:
		applier.invalid("sound_volume", fmt.Sprintf("%d is outside 0-100", *fileData.SoundVolume))
	default:
		settings.SoundVolume = *fileData.SoundVolume
	}

	switch {
	case fileData.WindowOpacity == nil:
		applier.missing = append(applier.missing, "window_opacity")
	case *fileData.WindowOpacity < 0.1 || *fileData.WindowOpacity > 1:
		applier.invalid("window_opacity", fmt.Sprintf("%.2f is outside 0.1-1.0", *fileData.WindowOpacity))
	default:
		settings.WindowOpacity = *fileData.WindowOpacity
	}

	if fileData.AlwaysOnTop == nil {
		applier.missing = append(applier.missing, "always_on_top")
	} else {
		settings.AlwaysOnTop = *fileData.AlwaysOnTop
	}
}

func (applier *settingsApplier) seconds(key string, value *int, target *time.Duration, allowZero bool) {
	switch {
	case value == nil:
		applier.missing = append(applier.missing, key)
	case *value < 0 || (*value == 0 && !allowZero):
		applier.invalid(key, fmt.Sprintf("%d must be a positive number of seconds", *value))
	default:
		*target = time.Duration(*value) * time.Second
	}
}

func (applier *settingsApplier) soundFiles(settings *preferences.Settings, files map[string]string) {
	if files == nil {
		applier.missing = append(applier.missing, "sound_files")
		return
	}
	known := make(map[string]bool, len(settings.SoundFiles))
	for _, cue := range model.Cues() {
		known[string(cue)] = true
	}
	for name, file := range files {
		if !known[name] {
			applier.invalid("sound_files."+name, "unknown cue")
			continue
		}
		if file == "" {
			applier.invalid("sound_files."+name, "must not be empty")
			continue
		}
		settings.SoundFiles[model.Cue(name)] = file
	}
	for _, cue := range model.Cues() {
		if _, ok := files[string(cue)]; !ok {
			applier.missing = append(applier.missing, "sound_files."+string(cue))
		}
	}
}

func (applier *settingsApplier) invalid(key, reason string) {
	err := &ConfigError{Path: applier.path, Key: key, Reason: reason}
	log.Warn().Str("key", key).Str("path", applier.path).Msg(reason)
	applier.problems = append(applier.problems, err)
}

func seconds(value time.Duration) int {
	return int(value / time.Second)
}

func intPtr(value int) *int {
	return &value
}
