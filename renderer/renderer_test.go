package renderer

import "testing"

func TestThemeByNameKnownThemes(t *testing.T) {
	names := []string{"raven-blue", "crow-black", "magpie-black-white-grey", "catppuccin-mocha"}
	seen := map[[4]float32]bool{}
	for _, name := range names {
		th := ThemeByName(name)
		if th.Background == th.Foreground {
			t.Errorf("theme %q: background and foreground collide", name)
		}
		if seen[th.Background] {
			t.Errorf("theme %q: background duplicates another theme's background", name)
		}
		seen[th.Background] = true
	}
}

func TestThemeByNameUnknownFallsBackToDefault(t *testing.T) {
	got := ThemeByName("not-a-real-theme")
	want := DefaultTheme()
	if got != want {
		t.Errorf("ThemeByName(unknown) = %+v, want default %+v", got, want)
	}
}

func TestThemeByNameCaseAndWhitespaceInsensitive(t *testing.T) {
	got := ThemeByName("  Crow-Black  ")
	want := ThemeByName("crow-black")
	if got != want {
		t.Errorf("ThemeByName with whitespace/case = %+v, want %+v", got, want)
	}
}

func TestClampFontSize(t *testing.T) {
	cases := []struct {
		in, want float32
	}{
		{0, minFontSize},
		{minFontSize - 1, minFontSize},
		{minFontSize, minFontSize},
		{20, 20},
		{maxFontSize, maxFontSize},
		{maxFontSize + 10, maxFontSize},
	}
	for _, c := range cases {
		if got := clampFontSize(c.in); got != c.want {
			t.Errorf("clampFontSize(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestCalculateGridSize(t *testing.T) {
	cols, rows := calculateGridSize(10, 20, 135, 12, 12, 800, 600)
	wantCols := int((float32(800) - 135 - 10) / 10)
	wantRows := int((float32(600) - 24) / 20)
	if cols != wantCols || rows != wantRows {
		t.Errorf("calculateGridSize = (%d, %d), want (%d, %d)", cols, rows, wantCols, wantRows)
	}
}

func TestCalculateGridSizeNeverBelowOne(t *testing.T) {
	cols, rows := calculateGridSize(50, 50, 135, 12, 12, 100, 100)
	if cols < 1 || rows < 1 {
		t.Errorf("calculateGridSize for a tiny window = (%d, %d), want both >= 1", cols, rows)
	}
}

func TestExtractAlpha(t *testing.T) {
	rgba := []byte{
		255, 255, 255, 10,
		255, 255, 255, 200,
	}
	alpha := extractAlpha(rgba)
	if len(alpha) != 2 || alpha[0] != 10 || alpha[1] != 200 {
		t.Errorf("extractAlpha(%v) = %v, want [10 200]", rgba, alpha)
	}
}

func TestOrthoMatrixIdentityScale(t *testing.T) {
	m := orthoMatrix(0, 800, 600, 0, -1, 1)
	if m[0] <= 0 || m[5] >= 0 {
		t.Errorf("orthoMatrix sign convention unexpected: m[0]=%v m[5]=%v", m[0], m[5])
	}
}
