//go:build !windows

package overlay

// applyNative is a no-op; other drivers only get the translucent background.
func (overlay *Window) applyNative() {}
