// Package commands handles text typed at the prompt that the terminal
// intercepts instead of forwarding to the shell (keybinding help, font
// switching), backed by the same actions.Registry plugins register into.
package commands

import (
	"fmt"
	"strings"

	"github.com/raventerminal/core/actions"
	"github.com/raventerminal/core/font"
)

const builtinPluginID = "builtin"

// CommandResult is the outcome of HandleCommand: Handled reports whether
// input was a terminal command rather than shell input, Output is what
// to print in its place.
type CommandResult struct {
	Handled bool
	Output  string
}

// FontChanger lets a command handler change and enumerate fonts without
// depending on the renderer package directly.
type FontChanger interface {
	ChangeFont(name string) error
	CurrentFont() string
	GetAvailableFonts() []font.Info
}

// Registry is the terminal's builtin text commands, registered into a
// shared actions.Registry so a command palette (or `list-actions`) can
// enumerate builtin and plugin-contributed actions through one surface.
type Registry struct {
	actions *actions.Registry
}

// NewRegistry registers the builtin commands into reg and returns a
// Registry for dispatching them.
func NewRegistry(reg *actions.Registry) *Registry {
	r := &Registry{actions: reg}
	r.registerBuiltins()
	return r
}

func (r *Registry) registerBuiltins() {
	builtins := []actions.Action{
		{ID: "builtin.keybindings", Name: "keybindings", Description: "Show the keybinding reference", Category: "help", PluginID: builtinPluginID},
		{ID: "builtin.change_font", Name: "change-font", Description: "Change the terminal font", Category: "appearance", PluginID: builtinPluginID},
		{ID: "builtin.list_fonts", Name: "list-fonts", Description: "List available fonts", Category: "appearance", PluginID: builtinPluginID},
	}
	for _, a := range builtins {
		_ = r.actions.Register(a) // already present is not an error here
	}
}

// Actions exposes the shared registry, so a command palette can list
// builtin and plugin actions together.
func (r *Registry) Actions() *actions.Registry { return r.actions }

// HandleCommand checks whether input is one of the registry's builtin
// commands and, if so, handles it without touching the shell.
func (r *Registry) HandleCommand(input string, fontChanger FontChanger) CommandResult {
	input = strings.TrimSpace(input)

	switch {
	case input == "keybindings" || input == "raven-keybindings":
		return CommandResult{Handled: true, Output: getKeybindingsHelp()}
	case strings.HasPrefix(input, "change-font "), strings.HasPrefix(input, "change-font\t"):
		args := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(input, "change-font "), "change-font\t"))
		return handleChangeFont(args, fontChanger)
	case input == "change-font":
		return handleListFonts(fontChanger)
	case input == "list-fonts", input == "fonts":
		return handleListFonts(fontChanger)
	default:
		return CommandResult{Handled: false}
	}
}

func getKeybindingsHelp() string {
	return `
Raven Terminal - Keybindings
============================

General:
  Ctrl+Q          Exit terminal
  Ctrl+Shift+Q    Force exit
  Ctrl+Shift+C    Copy selection
  Ctrl+Shift+V    Paste

Tabs:
  Ctrl+Shift+T    New tab
  Ctrl+Shift+X    Close current tab
  Ctrl+Tab        Next tab
  Ctrl+Shift+Tab  Previous tab

View:
  Ctrl+=          Zoom in
  Ctrl+-          Zoom out
  Ctrl+0          Reset zoom
  Shift+Enter     Toggle fullscreen
  Shift+PageUp    Scroll up
  Shift+PageDown  Scroll down

Terminal Commands:
  keybindings     Show this help
  change-font     List available fonts
  change-font <name>  Change font (e.g., change-font firacode)
  list-fonts      List available fonts

`
}

func handleChangeFont(fontName string, fontChanger FontChanger) CommandResult {
	if fontName == "" {
		return handleListFonts(fontChanger)
	}

	fontName = strings.ToLower(strings.TrimSpace(fontName))

	if err := fontChanger.ChangeFont(fontName); err != nil {
		available := fontChanger.GetAvailableFonts()
		names := make([]string, 0, len(available))
		for _, f := range available {
			names = append(names, f.Family)
		}
		return CommandResult{
			Handled: true,
			Output:  fmt.Sprintf("\nError: %v\nAvailable fonts: %s\n\n", err, strings.Join(names, ", ")),
		}
	}

	return CommandResult{
		Handled: true,
		Output:  fmt.Sprintf("\nFont changed to: %s\n\n", fontName),
	}
}

func handleListFonts(fontChanger FontChanger) CommandResult {
	available := fontChanger.GetAvailableFonts()
	current := fontChanger.CurrentFont()

	var sb strings.Builder
	sb.WriteString("\nAvailable Fonts:\n")
	sb.WriteString("================\n")

	for _, f := range available {
		marker := "  "
		if f.Family == current {
			marker = "> "
		}
		sb.WriteString(fmt.Sprintf("%s%s\n", marker, f.Family))
	}

	sb.WriteString("\nUsage: change-font <name>\n")
	sb.WriteString("Example: change-font firacode\n\n")

	return CommandResult{Handled: true, Output: sb.String()}
}
