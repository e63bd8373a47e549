package overlay

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"

	"ezlockin/internal/core/cycle"
	"ezlockin/internal/ui/display"
)

// Config defines status window visuals.
type Config struct {
	Opacity     uint8
	AlwaysOnTop bool
}

// Window is the small floating status window.
type Window struct {
	app           fyne.App
	window        fyne.Window
	config        Config
	background    *canvas.Rectangle
	headlineLabel *canvas.Text
	clockLabel    *canvas.Text
	estimateLabel *canvas.Text
	totalLabel    *canvas.Text
}

const (
	windowWidth  = float32(240)
	windowHeight = float32(130)
)

var (
	focusColor = color.NRGBA{R: 232, G: 190, B: 66, A: 255}
	breakColor = color.NRGBA{R: 102, G: 204, B: 153, A: 255}
	textColor  = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	dimColor   = color.NRGBA{R: 190, G: 190, B: 190, A: 255}
)

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// New creates the status window. It starts hidden.
func New(app fyne.App, config Config) *Window {
	window := app.NewWindow("EZLockIn")
	if driver, ok := app.Driver().(splashWindowDriver); ok && config.AlwaysOnTop {
		// Splash windows are undecorated and float above normal windows on most drivers.
		window = driver.CreateSplashWindow()
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	background := canvas.NewRectangle(color.NRGBA{A: config.Opacity})

	headlineLabel := canvas.NewText(display.Headline(cycle.Status{}), textColor)
	headlineLabel.TextStyle = fyne.TextStyle{Bold: true}
	headlineLabel.TextSize = 15

	clockLabel := canvas.NewText("--:--", focusColor)
	clockLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	clockLabel.TextSize = 30

	estimateLabel := canvas.NewText("", dimColor)
	estimateLabel.TextSize = 12

	totalLabel := canvas.NewText("", dimColor)
	totalLabel.TextSize = 12

	content := container.New(&statusLayout{}, headlineLabel, clockLabel, estimateLabel, totalLabel)
	window.SetContent(container.NewStack(background, content))
	window.SetCloseIntercept(window.Hide)

	overlay := &Window{
		app:           app,
		window:        window,
		config:        config,
		background:    background,
		headlineLabel: headlineLabel,
		clockLabel:    clockLabel,
		estimateLabel: estimateLabel,
		totalLabel:    totalLabel,
	}
	overlay.SetStatus(cycle.Status{Phase: cycle.PhaseIdle})
	overlay.window.Resize(fyne.NewSize(windowWidth, windowHeight))
	return overlay
}

// Show displays the window and reapplies native window attributes.
func (overlay *Window) Show() {
	overlay.window.Show()
	overlay.applyNative()
}

// Hide hides the window without stopping the timer.
func (overlay *Window) Hide() {
	overlay.window.Hide()
}

// SetStatus renders status. Callers on other goroutines must wrap it in fyne.Do.
func (overlay *Window) SetStatus(status cycle.Status) {
	overlay.headlineLabel.Text = display.Headline(status)
	if status.Phase == cycle.PhaseIdle {
		overlay.clockLabel.Text = "--:--"
	} else {
		overlay.clockLabel.Text = display.Clock(status.Remaining)
	}
	overlay.clockLabel.Color = focusColor
	if status.Active().IsBreak() {
		overlay.clockLabel.Color = breakColor
	}
	overlay.estimateLabel.Text = display.LongBreakEstimate(status)
	overlay.totalLabel.Text = display.TotalFocus(status.Lifetime)

	overlay.headlineLabel.Refresh()
	overlay.clockLabel.Refresh()
	overlay.estimateLabel.Refresh()
	overlay.totalLabel.Refresh()
}

// UpdateConfig updates window visuals. AlwaysOnTop only takes effect on the
// next start where the driver has to create a different kind of window.
func (overlay *Window) UpdateConfig(config Config) {
	overlay.config = config
	overlay.background.FillColor = color.NRGBA{A: config.Opacity}
	canvas.Refresh(overlay.background)
	overlay.applyNative()
}

// OpacityToAlpha converts a 0..1 opacity into a color alpha.
func OpacityToAlpha(opacity float64) uint8 {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return uint8(opacity * 255)
}

type statusLayout struct{}

func (layout *statusLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) < 4 {
		return
	}
	pad := size.Height * 0.08
	availableWidth := size.Width - pad*2
	if availableWidth < 0 {
		availableWidth = 0
	}

	y := pad
	for index, object := range objects[:4] {
		objectSize := object.MinSize()
		object.Move(fyne.NewPos(pad, y))
		object.Resize(fyne.NewSize(availableWidth, objectSize.Height))
		y += objectSize.Height
		if index < 2 {
			y += 4
		}
	}
}

func (layout *statusLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	if len(objects) < 4 {
		return fyne.NewSize(0, 0)
	}
	var width, height float32
	for _, object := range objects[:4] {
		objectSize := object.MinSize()
		if objectSize.Width > width {
			width = objectSize.Width
		}
		height += objectSize.Height
	}
	return fyne.NewSize(width+20, height+28)
}
