package config

// ThemeOption is one selectable color theme: its persisted name and the
// label shown to the user. The renderer package resolves Name to a
// concrete palette via its own ThemeByName.
type ThemeOption struct {
	Name  string
	Label string
}

var themeCatalog = []ThemeOption{
	{Name: "raven-blue", Label: "Raven Blue"},
	{Name: "crow-black", Label: "Crow Black"},
	{Name: "magpie-black-white-grey", Label: "Magpie Black/White/Grey"},
	{Name: "catppuccin-mocha", Label: "Catppuccin Mocha"},
}

// ThemeOptions lists every theme the renderer knows how to draw.
func ThemeOptions() []ThemeOption {
	return append([]ThemeOption(nil), themeCatalog...)
}

// ThemeLabel returns the display label for a persisted theme name,
// defaulting to "Raven Blue" for an unset or unrecognized name.
func ThemeLabel(name string) string {
	for _, opt := range themeCatalog {
		if opt.Name == name {
			return opt.Label
		}
	}
	return "Raven Blue"
}
