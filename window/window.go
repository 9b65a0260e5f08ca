// Package window owns the GLFW window and OpenGL context the renderer
// draws into: creation, icon, viewport, and fullscreen toggling. It knows
// nothing about grids, tabs, or glyphs — that's the renderer's job.
package window

import (
	"fmt"
	"image"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/raventerminal/core/assets"
)

func init() {
	// GLFW must be driven from the thread that called glfw.Init.
	runtime.LockOSThread()
}

// Config is the requested window size and title at creation time.
type Config struct {
	Width  int
	Height int
	Title  string
}

// DefaultConfig is an 900x600 window titled "Raven Terminal".
func DefaultConfig() Config {
	return Config{
		Width:  900,
		Height: 600,
		Title:  "Raven Terminal",
	}
}

// windowedGeometry is the position/size to restore when leaving
// fullscreen, captured at the moment fullscreen is entered.
type windowedGeometry struct {
	x, y, width, height int
}

// Window wraps a GLFW window bound to an OpenGL 4.1 core-profile context.
type Window struct {
	glfw         *glfw.Window
	width        int
	height       int
	config       Config
	isFullscreen bool
	saved        windowedGeometry
}

// NewWindow creates a GLFW window, makes its OpenGL context current, and
// enables the blend mode the renderer needs for alpha-coverage glyph
// textures.
func NewWindow(config Config) (*Window, error) {
	if config.Width <= 0 {
		config.Width = DefaultConfig().Width
	}
	if config.Height <= 0 {
		config.Height = DefaultConfig().Height
	}

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("window: init glfw: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.DoubleBuffer, glfw.True)

	// X11 window class, so tiling WMs (i3, Hyprland) can match it.
	glfw.WindowHintString(glfw.X11ClassName, "raven-terminal")
	glfw.WindowHintString(glfw.X11InstanceName, "raven-terminal")

	glfwWin, err := glfw.CreateWindow(config.Width, config.Height, config.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("window: create window: %w", err)
	}

	glfwWin.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		glfwWin.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("window: init opengl: %w", err)
	}

	glfw.SwapInterval(1)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	w := &Window{
		glfw:   glfwWin,
		width:  config.Width,
		height: config.Height,
		config: config,
	}
	w.loadIcon()

	return w, nil
}

// GLFW returns the underlying GLFW window
func (w *Window) GLFW() *glfw.Window {
	return w.glfw
}

// GetSize returns the current window size
func (w *Window) GetSize() (int, int) {
	return w.glfw.GetSize()
}

// GetFramebufferSize returns the framebuffer size
func (w *Window) GetFramebufferSize() (int, int) {
	return w.glfw.GetFramebufferSize()
}

// ShouldClose returns true if the window should close
func (w *Window) ShouldClose() bool {
	return w.glfw.ShouldClose()
}

// SetShouldClose sets the window close flag
func (w *Window) SetShouldClose(close bool) {
	w.glfw.SetShouldClose(close)
}

// SwapBuffers swaps the front and back buffers
func (w *Window) SwapBuffers() {
	w.glfw.SwapBuffers()
}

// Clear clears the screen with the given color
func (w *Window) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

// SetViewport sets the OpenGL viewport
func (w *Window) SetViewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// ToggleFullscreen swaps between windowed and borderless-fullscreen on
// the primary monitor, restoring the saved windowed geometry on the way
// back out.
func (w *Window) ToggleFullscreen() {
	if w.isFullscreen {
		g := w.saved
		w.glfw.SetMonitor(nil, g.x, g.y, g.width, g.height, 0)
		w.isFullscreen = false
		return
	}

	x, y := w.glfw.GetPos()
	width, height := w.glfw.GetSize()
	w.saved = windowedGeometry{x: x, y: y, width: width, height: height}

	monitor := glfw.GetPrimaryMonitor()
	mode := monitor.GetVideoMode()
	w.glfw.SetMonitor(monitor, 0, 0, mode.Width, mode.Height, mode.RefreshRate)
	w.isFullscreen = true
}

// IsFullscreen reports whether the window is currently fullscreen.
func (w *Window) IsFullscreen() bool {
	return w.isFullscreen
}

func (w *Window) loadIcon() {
	if icons := assets.LoadMultiSizeIcons(); len(icons) > 0 {
		w.glfw.SetIcon(icons)
	}
}

// SetIcon overrides the window icon with caller-supplied images.
func (w *Window) SetIcon(icons []image.Image) {
	if len(icons) > 0 {
		w.glfw.SetIcon(icons)
	}
}

// Destroy tears down the GLFW window and terminates GLFW.
func (w *Window) Destroy() {
	w.glfw.Destroy()
	glfw.Terminate()
}

// PollEvents processes the OS event queue; must be called from the main
// loop every frame.
func PollEvents() {
	glfw.PollEvents()
}
