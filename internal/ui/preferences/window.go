package preferences

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

var errInvertedRange = errors.New("minimum focus must not exceed maximum focus")

// Window handles the preferences UI.
type Window struct {
	window      fyne.Window
	settings    Settings
	onSave      func(Settings) error
	studyMin    *widget.Entry
	studyMax    *widget.Entry
	shortBreak  *widget.Entry
	longBreak   *widget.Entry
	threshold   *widget.Entry
	idlePause   *widget.Entry
	soundFolder *widget.Entry
	sound       *widget.Check
	volume      *widget.Slider
	opacity     *widget.Slider
	alwaysOnTop *widget.Check
	message     *widget.Label
}

// New creates a preferences window. onSave persists the edited settings;
// an error keeps the window open and is shown to the user.
func New(app fyne.App, settings Settings, onSave func(Settings) error) *Window {
	window := app.NewWindow("EZLockIn Preferences")

	prefs := &Window{
		window:      window,
		onSave:      onSave,
		studyMin:    widget.NewEntry(),
		studyMax:    widget.NewEntry(),
		shortBreak:  widget.NewEntry(),
		longBreak:   widget.NewEntry(),
		threshold:   widget.NewEntry(),
		idlePause:   widget.NewEntry(),
		soundFolder: widget.NewEntry(),
		sound:       widget.NewCheck("Play sound cues", nil),
		volume:      widget.NewSlider(0, 100),
		opacity:     widget.NewSlider(0.1, 1),
		alwaysOnTop: widget.NewCheck("Keep status window on top", nil),
		message:     widget.NewLabel(""),
	}
	prefs.opacity.Step = 0.05
	prefs.volume.Step = 5
	prefs.message.Wrapping = fyne.TextWrapWord

	form := container.NewVBox(
		widget.NewLabelWithStyle("Cycle", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Focus between"), prefs.studyMin, widget.NewLabel("and"), prefs.studyMax, widget.NewLabel("sec")),
		container.NewHBox(widget.NewLabel("Short break"), prefs.shortBreak, widget.NewLabel("sec")),
		container.NewHBox(widget.NewLabel("Long break"), prefs.longBreak, widget.NewLabel("min")),
		container.NewHBox(widget.NewLabel("Long break after"), prefs.threshold, widget.NewLabel("min of focus")),
		container.NewHBox(widget.NewLabel("Pause when idle for"), prefs.idlePause, widget.NewLabel("sec (0 = off)")),
		widget.NewLabelWithStyle("Sound", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.sound,
		container.NewBorder(nil, nil, widget.NewLabel("Volume"), nil, prefs.volume),
		container.NewBorder(nil, nil, widget.NewLabel("Folder"), nil, prefs.soundFolder),
		widget.NewLabelWithStyle("Window", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel("Status window opacity"),
		prefs.opacity,
		prefs.alwaysOnTop,
		prefs.message,
	)

	saveButton := widget.NewButton("Save", prefs.handleSave)
	cancelButton := widget.NewButton("Cancel", window.Hide)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(460, 520))
	window.SetCloseIntercept(window.Hide)

	prefs.UpdateSettings(settings)
	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings.Clone()
	prefs.studyMin.SetText(strconv.Itoa(int(settings.StudyMin / time.Second)))
	prefs.studyMax.SetText(strconv.Itoa(int(settings.StudyMax / time.Second)))
	prefs.shortBreak.SetText(strconv.Itoa(int(settings.ShortBreak / time.Second)))
	prefs.longBreak.SetText(strconv.Itoa(int(settings.LongBreak / time.Minute)))
	prefs.threshold.SetText(strconv.Itoa(int(settings.LongBreakThreshold / time.Minute)))
	prefs.idlePause.SetText(strconv.Itoa(int(settings.IdlePauseAfter / time.Second)))
	prefs.soundFolder.SetText(settings.SoundFolder)
	prefs.sound.SetChecked(settings.SoundEnabled)
	prefs.volume.SetValue(float64(settings.SoundVolume))
	prefs.opacity.SetValue(settings.WindowOpacity)
	prefs.alwaysOnTop.SetChecked(settings.AlwaysOnTop)
	prefs.message.SetText("")
}

// Settings returns the settings last loaded or saved.
func (prefs *Window) Settings() Settings {
	return prefs.settings.Clone()
}

func (prefs *Window) handleSave() {
	settings, err := prefs.collect()
	if err == nil && prefs.onSave != nil {
		err = prefs.onSave(settings)
	}
	if err != nil {
		prefs.message.SetText(err.Error())
		return
	}
	prefs.settings = settings
	prefs.message.SetText("Saved. Restart EZLockIn to apply the new settings.")
}

// collect reads the form. Fields that do not parse are reported together.
func (prefs *Window) collect() (Settings, error) {
	settings := prefs.settings.Clone()
	var problems []string

	readPositive := func(entry *widget.Entry, name string, unit time.Duration, target *time.Duration) {
		value, ok := parsePositiveInt(entry.Text)
		if !ok {
			problems = append(problems, name+" must be a positive whole number")
			return
		}
		*target = time.Duration(value) * unit
	}
	readPositive(prefs.studyMin, "minimum focus", time.Second, &settings.StudyMin)
	readPositive(prefs.studyMax, "maximum focus", time.Second, &settings.StudyMax)
	readPositive(prefs.shortBreak, "short break", time.Second, &settings.ShortBreak)
	readPositive(prefs.longBreak, "long break", time.Minute, &settings.LongBreak)
	readPositive(prefs.threshold, "long break threshold", time.Minute, &settings.LongBreakThreshold)

	if value, err := strconv.Atoi(strings.TrimSpace(prefs.idlePause.Text)); err != nil || value < 0 {
		problems = append(problems, "idle pause must be zero or a positive whole number")
	} else {
		settings.IdlePauseAfter = time.Duration(value) * time.Second
	}

	folder := strings.TrimSpace(prefs.soundFolder.Text)
	if folder == "" {
		problems = append(problems, "sound folder must not be empty")
	}
	settings.SoundFolder = folder
	settings.SoundEnabled = prefs.sound.Checked
	settings.SoundVolume = int(math.Round(prefs.volume.Value))
	settings.WindowOpacity = prefs.opacity.Value
	settings.AlwaysOnTop = prefs.alwaysOnTop.Checked

	if len(problems) > 0 {
		return Settings{}, fmt.Errorf("invalid preferences: %s", strings.Join(problems, "; "))
	}
	if settings.StudyMin > settings.StudyMax {
		return Settings{}, errInvertedRange
	}
	return settings, nil
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
