// Package renderer implements the Renderer Surface (spec component C8):
// an OpenGL core-profile GL backend that draws the tab bar and the
// active tab's grid through the Font System, Glyph Shaper and Glyph
// Atlas (font, shaper, atlas) instead of a single pre-baked glyph map.
package renderer

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/raventerminal/core/assets/fonts"
	"github.com/raventerminal/core/atlas"
	"github.com/raventerminal/core/cell"
	"github.com/raventerminal/core/font"
	"github.com/raventerminal/core/grid"
	"github.com/raventerminal/core/shaper"
	"github.com/raventerminal/core/tab"
)

// Theme is the set of colors one named appearance resolves to.
type Theme struct {
	Background [4]float32
	Foreground [4]float32
	Cursor     [4]float32
	TabBar     [4]float32
	TabActive  [4]float32
	Selection  [4]float32
}

// DefaultTheme is the "raven-blue" theme.
func DefaultTheme() Theme { return ThemeByName("raven-blue") }

// ThemeByName resolves a persisted theme name (config.ThemeOptions) to
// its concrete palette, defaulting to raven-blue for anything unknown.
func ThemeByName(name string) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "crow-black":
		return Theme{
			Background: [4]float32{0.020, 0.020, 0.020, 1.0},
			Foreground: [4]float32{0.902, 0.902, 0.902, 1.0},
			Cursor:     [4]float32{0.965, 0.965, 0.965, 1.0},
			TabBar:     [4]float32{0.000, 0.000, 0.000, 1.0},
			TabActive:  [4]float32{0.702, 0.702, 0.702, 1.0},
			Selection:  [4]float32{0.702, 0.702, 0.702, 0.35},
		}
	case "magpie-black-white-grey", "magpie-black-and-white-grey":
		return Theme{
			Background: [4]float32{0.067, 0.067, 0.067, 1.0},
			Foreground: [4]float32{0.961, 0.961, 0.961, 1.0},
			Cursor:     [4]float32{1.000, 1.000, 1.000, 1.0},
			TabBar:     [4]float32{0.039, 0.039, 0.039, 1.0},
			TabActive:  [4]float32{0.816, 0.816, 0.816, 1.0},
			Selection:  [4]float32{0.816, 0.816, 0.816, 0.35},
		}
	case "catppuccin-mocha", "catppuccin", "catpuccin":
		return Theme{
			Background: [4]float32{0.118, 0.118, 0.180, 1.0},
			Foreground: [4]float32{0.804, 0.839, 0.957, 1.0},
			Cursor:     [4]float32{0.961, 0.761, 0.906, 1.0},
			TabBar:     [4]float32{0.094, 0.094, 0.145, 1.0},
			TabActive:  [4]float32{0.537, 0.706, 0.980, 1.0},
			Selection:  [4]float32{0.537, 0.706, 0.980, 0.35},
		}
	case "raven-blue":
		fallthrough
	default:
		return Theme{
			Background: [4]float32{0.051, 0.063, 0.102, 1.0},
			Foreground: [4]float32{0.910, 0.929, 0.969, 1.0},
			Cursor:     [4]float32{0.635, 0.878, 0.780, 1.0},
			TabBar:     [4]float32{0.039, 0.047, 0.078, 1.0},
			TabActive:  [4]float32{0.455, 0.714, 1.0, 1.0},
			Selection:  [4]float32{0.455, 0.714, 1.0, 0.35},
		}
	}
}

const (
	defaultFontSize = 15.0
	minFontSize     = 8.0
	maxFontSize     = 32.0
	zoomStep        = 2.0

	atlasWidth  = 1024
	atlasHeight = 1024
)

// Renderer draws tab bar chrome and one active grid onto the current
// OpenGL context, sourcing glyphs from a Font System + Glyph Atlas pair
// instead of one statically pre-rendered font sheet.
type Renderer struct {
	theme Theme

	fonts  *font.System
	atlas  *atlas.Atlas
	face   *font.Face
	shaper *shaper.Shaper

	cellWidth, cellHeight         float32
	fontSize                      float32
	baseFontSize                  float32
	defaultFontSize               float32
	baseCellWidth, baseCellHeight float32
	paddingTop, paddingBottom     float32
	tabBarWidth                   float32
	currentFont                   string

	atlasTexture uint32
	atlasSeen    int // Metrics.Rasterizations last uploaded to the GPU

	quadVAO, quadVBO       uint32
	program, fontProgram   uint32
	fontVAO, fontVBO       uint32

	colorLoc, projLoc                int32
	texColorLoc, texProjLoc, texLoc  int32

	hoverGrid                          *grid.Grid
	hoverRow, hoverStartCol, hoverEndCol int
	hoverActive                        bool
}

// New creates a Renderer against the current OpenGL context, loading the
// default embedded font at the default size.
func New() (*Renderer, error) {
	r := &Renderer{
		theme:           DefaultTheme(),
		fontSize:        defaultFontSize,
		baseFontSize:    defaultFontSize,
		defaultFontSize: defaultFontSize,
		paddingTop:      12.0,
		paddingBottom:   12.0,
		tabBarWidth:     135.0,
		currentFont:     fonts.DefaultFontName(),
		fonts:           font.NewSystem(),
		atlas:           atlas.New(atlasWidth, atlasHeight),
	}

	if err := r.initGL(); err != nil {
		return nil, err
	}
	if err := r.loadFace(r.currentFont, float64(r.fontSize)); err != nil {
		return nil, err
	}
	r.uploadAtlas()

	r.baseCellWidth = r.cellWidth
	r.baseCellHeight = r.cellHeight

	return r, nil
}

// loadFace resolves family at size through the Font System, rebuilds the
// Shaper bound to it, and resets the atlas (a font/size change makes
// every previously packed glyph stale).
func (r *Renderer) loadFace(family string, size float64) error {
	face, err := r.fonts.LoadFont(family, size)
	if err != nil {
		return fmt.Errorf("renderer: load font %q: %w", family, err)
	}

	metrics := face.Face.Metrics()
	r.cellHeight = float32((metrics.Ascent + metrics.Descent).Ceil())
	if advance, ok := face.Face.GlyphAdvance('M'); ok {
		r.cellWidth = float32(advance.Ceil())
	}

	r.face = face
	r.shaper = shaper.New(face, size)
	r.atlas.Clear()
	r.atlasSeen = 0

	return nil
}

// SetThemeByName applies a named theme to the renderer.
func (r *Renderer) SetThemeByName(name string) {
	r.theme = ThemeByName(name)
}

func (r *Renderer) initGL() error {
	vertShader := `
		#version 410 core
		layout (location = 0) in vec2 aPos;
		uniform mat4 projection;
		void main() {
			gl_Position = projection * vec4(aPos, 0.0, 1.0);
		}
	` + "\x00"

	fragShader := `
		#version 410 core
		out vec4 FragColor;
		uniform vec4 color;
		void main() {
			FragColor = color;
		}
	` + "\x00"

	var err error
	r.program, err = createProgram(vertShader, fragShader)
	if err != nil {
		return fmt.Errorf("renderer: quad shader: %w", err)
	}
	r.colorLoc = gl.GetUniformLocation(r.program, gl.Str("color\x00"))
	r.projLoc = gl.GetUniformLocation(r.program, gl.Str("projection\x00"))

	textVertShader := `
		#version 410 core
		layout (location = 0) in vec4 vertex;
		out vec2 TexCoords;
		uniform mat4 projection;
		void main() {
			gl_Position = projection * vec4(vertex.xy, 0.0, 1.0);
			TexCoords = vertex.zw;
		}
	` + "\x00"

	textFragShader := `
		#version 410 core
		in vec2 TexCoords;
		out vec4 FragColor;
		uniform sampler2D text;
		uniform vec4 textColor;
		void main() {
			float alpha = texture(text, TexCoords).r;
			FragColor = vec4(textColor.rgb, textColor.a * alpha);
		}
	` + "\x00"

	r.fontProgram, err = createProgram(textVertShader, textFragShader)
	if err != nil {
		return fmt.Errorf("renderer: text shader: %w", err)
	}
	r.texColorLoc = gl.GetUniformLocation(r.fontProgram, gl.Str("textColor\x00"))
	r.texProjLoc = gl.GetUniformLocation(r.fontProgram, gl.Str("projection\x00"))
	r.texLoc = gl.GetUniformLocation(r.fontProgram, gl.Str("text\x00"))

	gl.GenVertexArrays(1, &r.quadVAO)
	gl.GenBuffers(1, &r.quadVBO)
	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, 6*2*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 2*4, 0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	gl.GenVertexArrays(1, &r.fontVAO)
	gl.GenBuffers(1, &r.fontVBO)
	gl.BindVertexArray(r.fontVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.fontVBO)
	gl.BufferData(gl.ARRAY_BUFFER, 6*4*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 4, gl.FLOAT, false, 4*4, 0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	gl.GenTextures(1, &r.atlasTexture)
	gl.BindTexture(gl.TEXTURE_2D, r.atlasTexture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return nil
}

// uploadAtlas re-uploads the atlas's packed alpha coverage to the GPU.
// Called whenever a glyph miss added a new rasterization.
func (r *Renderer) uploadAtlas() {
	w, h := r.atlas.Dimensions()
	alpha := extractAlpha(r.atlas.TextureData())

	gl.BindTexture(gl.TEXTURE_2D, r.atlasTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RED, int32(w), int32(h), 0, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(alpha))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	r.atlasSeen = r.atlas.Metrics().Rasterizations
}

func extractAlpha(rgba []byte) []byte {
	out := make([]byte, len(rgba)/4)
	for i := range out {
		out[i] = rgba[i*4+3]
	}
	return out
}

// Render draws the tab bar and the active tab's grid.
func (r *Renderer) Render(tm *tab.Manager, width, height int, cursorVisible bool) {
	r.RenderWithHelp(tm, width, height, cursorVisible, false)
}

// HitTest maps a window-space (x, y) coordinate to a grid (col, row),
// for mouse selection and click-to-open-URL. ok is false for clicks
// landing in the tab bar or outside the grid's current bounds.
func (r *Renderer) HitTest(x, y float64, g *grid.Grid) (col, row int, ok bool) {
	offsetX := float64(r.tabBarWidth + 5)
	offsetY := float64(r.paddingTop)
	if x < offsetX || y < offsetY {
		return 0, 0, false
	}
	col = int((x - offsetX) / float64(r.cellWidth))
	row = int((y - offsetY) / float64(r.cellHeight))
	if col < 0 || col >= g.Cols() || row < 0 || row >= g.Rows() {
		return 0, 0, false
	}
	return col, row, true
}

// RenderWithHelp draws the tab bar and active grid, optionally overlaying
// the keybinding help panel.
func (r *Renderer) RenderWithHelp(tm *tab.Manager, width, height int, cursorVisible, showHelp bool) {
	proj := orthoMatrix(0, float32(width), float32(height), 0, -1, 1)

	gl.ClearColor(r.theme.Background[0], r.theme.Background[1], r.theme.Background[2], r.theme.Background[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)

	r.renderTabBar(tm, width, height, proj)

	if active := tm.ActiveTab(); active != nil {
		r.renderGrid(active.Grid, width, height, proj, cursorVisible)
	}

	if showHelp {
		r.renderHelpPanel(width, height, proj)
	}
}

func (r *Renderer) renderTabBar(tm *tab.Manager, width, height int, proj [16]float32) {
	r.drawRect(0, 0, r.tabBarWidth, float32(height), r.theme.TabBar, proj)
	r.drawRect(r.tabBarWidth-2, 0, 2, float32(height), r.theme.Foreground, proj)

	scale := r.baseFontSize / r.fontSize
	cellH := r.cellHeight * scale

	header := fmt.Sprintf("RT %d/%d", tm.ActiveIndex()+1, tm.TabCount())
	r.drawTextScaled(10, cellH, header, r.theme.TabActive, proj, scale)

	tabs := tm.GetTabs()
	activeIdx := tm.ActiveIndex()
	for i, t := range tabs {
		y := cellH*2 + float32(i)*cellH*1.2
		prefix := "  "
		clr := r.theme.Foreground
		if i == activeIdx {
			prefix = "> "
			clr = r.theme.TabActive
		}
		text := fmt.Sprintf("%sTab %d", prefix, t.ID())
		r.drawTextScaled(10, y, text, clr, proj, scale)
	}
}

func (r *Renderer) renderGrid(g *grid.Grid, width, height int, proj [16]float32, cursorVisible bool) {
	offsetX := r.tabBarWidth + 5
	offsetY := r.paddingTop
	availableWidth := float32(width) - r.tabBarWidth - 10
	availableHeight := float32(height) - r.paddingTop - r.paddingBottom
	r.renderGridAt(g, offsetX, offsetY, availableWidth, availableHeight, proj, cursorVisible)
}

func (r *Renderer) renderGridAt(g *grid.Grid, offsetX, offsetY, paneWidth, paneHeight float32, proj [16]float32, cursorVisible bool) {
	cols, rows := g.Cols(), g.Rows()

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			c, ok := g.GetCell(col, row)
			if !ok {
				c = cell.Empty()
			}
			x := offsetX + float32(col)*r.cellWidth
			y := offsetY + float32(row)*r.cellHeight

			if x+r.cellWidth > offsetX+paneWidth || y+r.cellHeight > offsetY+paneHeight {
				continue
			}

			fg, bg := colorRGBA(c.Fg), colorRGBA(c.Bg)
			if c.Attrs.Has(cell.Reverse) {
				fg, bg = bg, fg
			}

			if c.Bg != cell.DefaultBg() || c.Attrs.Has(cell.Reverse) {
				r.drawRect(x, y, r.cellWidth, r.cellHeight, bg, proj)
			}

			if g.IsSelected(col, row) {
				r.drawRect(x, y, r.cellWidth, r.cellHeight, r.theme.Selection, proj)
			}

			if c.Glyph != ' ' && c.Glyph != 0 && !c.Attrs.Has(cell.Hidden) {
				r.drawChar(x, y+r.cellHeight, c.Glyph, fg, proj)
			}

			underline := c.Attrs.Has(cell.Underline) || c.Attrs.Has(cell.Strikethrough)
			if r.hoverActive && r.hoverGrid == g && row == r.hoverRow && col >= r.hoverStartCol && col <= r.hoverEndCol {
				underline = true
			}
			if underline && c.Glyph != ' ' && c.Glyph != 0 {
				lineY := y + r.cellHeight - 1
				if c.Attrs.Has(cell.Strikethrough) && !c.Attrs.Has(cell.Underline) {
					lineY = y + r.cellHeight*0.5
				}
				r.drawRect(x, lineY, r.cellWidth, 1, fg, proj)
			}
		}
	}

	if cursorVisible && g.ViewportOffset() == 0 {
		cursorCol, cursorRow := g.GetCursor()
		cursorX := offsetX + float32(cursorCol)*r.cellWidth
		cursorY := offsetY + float32(cursorRow)*r.cellHeight

		if cursorX+r.cellWidth <= offsetX+paneWidth && cursorY+r.cellHeight <= offsetY+paneHeight {
			r.drawRect(cursorX, cursorY, r.cellWidth, r.cellHeight, r.theme.Cursor, proj)

			if c, ok := g.GetCell(cursorCol, cursorRow); ok && c.Glyph != ' ' && c.Glyph != 0 {
				r.drawChar(cursorX, cursorY+r.cellHeight, c.Glyph, r.theme.Background, proj)
			}
		}
	}
}

func colorRGBA(c cell.Color) [4]float32 {
	return [4]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
}

// SetHoverURL sets the hover underline range for a grid (a URL the mouse
// is currently over).
func (r *Renderer) SetHoverURL(g *grid.Grid, row, startCol, endCol int) {
	if g == nil || row < 0 || startCol < 0 || endCol < startCol {
		r.ClearHoverURL()
		return
	}
	r.hoverGrid = g
	r.hoverRow = row
	r.hoverStartCol = startCol
	r.hoverEndCol = endCol
	r.hoverActive = true
}

// ClearHoverURL clears any active hover underline.
func (r *Renderer) ClearHoverURL() {
	r.hoverGrid = nil
	r.hoverActive = false
}

// DrawToast renders a small, bottom-right notification overlay.
func (r *Renderer) DrawToast(message string, width, height int) {
	if strings.TrimSpace(message) == "" {
		return
	}
	proj := orthoMatrix(0, float32(width), float32(height), 0, -1, 1)

	paddingX := r.cellWidth * 0.8
	paddingY := r.cellHeight * 0.35
	runes := []rune(message)
	textWidth := float32(len(runes)) * r.cellWidth
	boxW := textWidth + paddingX*2
	boxH := r.cellHeight + paddingY*2
	margin := r.cellWidth * 0.8

	maxWidth := float32(width) - margin*2
	if boxW > maxWidth {
		maxChars := int((maxWidth - paddingX*2) / r.cellWidth)
		if maxChars > 3 {
			message = string(runes[:maxChars-3]) + "..."
			runes = []rune(message)
			textWidth = float32(len(runes)) * r.cellWidth
			boxW = textWidth + paddingX*2
		} else {
			return
		}
	}

	x := float32(width) - boxW - margin
	y := float32(height) - boxH - margin
	bg := r.theme.TabBar
	bg[3] = 0.85

	r.drawRect(x, y, boxW, boxH, bg, proj)
	r.drawText(x+paddingX, y+boxH-paddingY, message, r.theme.Foreground, proj)
}

var helpLines = []string{
	"Keybindings",
	"",
	"Ctrl+Q           Exit",
	"Ctrl+Shift+T/X   New / close tab",
	"Ctrl+Tab         Next tab",
	"Ctrl+Shift+C/V   Copy / paste",
	"Ctrl+=/-/0       Zoom in / out / reset",
	"Shift+Enter      Toggle fullscreen",
	"Shift+PageUp/Dn  Scroll",
	"Ctrl+Shift+?     Toggle this help",
}

func (r *Renderer) renderHelpPanel(width, height int, proj [16]float32) {
	panelW := r.cellWidth * 32
	panelH := r.cellHeight * float32(len(helpLines)+2)
	x := (float32(width) - panelW) / 2
	y := (float32(height) - panelH) / 2

	bg := r.theme.TabBar
	bg[3] = 0.92
	r.drawRect(x, y, panelW, panelH, bg, proj)
	r.drawRect(x, y, panelW, 2, r.theme.TabActive, proj)
	r.drawRect(x, y+panelH-2, panelW, 2, r.theme.TabActive, proj)

	for i, line := range helpLines {
		ly := y + r.cellHeight*float32(i+1)
		r.drawText(x+r.cellWidth, ly, line, r.theme.Foreground, proj)
	}
}

func (r *Renderer) drawRect(x, y, w, h float32, clr [4]float32, proj [16]float32) {
	vertices := []float32{
		x, y,
		x + w, y,
		x + w, y + h,
		x, y,
		x + w, y + h,
		x, y + h,
	}

	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.projLoc, 1, false, &proj[0])
	gl.Uniform4fv(r.colorLoc, 1, &clr[0])

	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

// drawChar rasterizes (via the atlas, on a cache miss) and draws ch with
// its bottom-left baseline at (x, y).
func (r *Renderer) drawChar(x, y float32, ch rune, clr [4]float32, proj [16]float32) {
	r.drawCharScaled(x, y, ch, clr, proj, 1.0)
}

func (r *Renderer) drawCharScaled(x, y float32, ch rune, clr [4]float32, proj [16]float32, scale float32) {
	region, err := r.atlas.GetOrRasterize(r.face, ch, float64(r.fontSize))
	if err != nil {
		region, err = r.atlas.GetOrRasterize(r.face, '?', float64(r.fontSize))
		if err != nil {
			return
		}
	}
	if seen := r.atlas.Metrics().Rasterizations; seen != r.atlasSeen {
		r.uploadAtlas()
	}

	w := float32(region.Width) * scale
	h := float32(region.Height) * scale
	tx, ty := region.TexCoords[0], region.TexCoords[1]
	tw, th := region.TexCoords[2]-tx, region.TexCoords[3]-ty

	vertices := []float32{
		x, y - h, tx, ty,
		x + w, y - h, tx + tw, ty,
		x + w, y, tx + tw, ty + th,
		x, y - h, tx, ty,
		x + w, y, tx + tw, ty + th,
		x, y, tx, ty + th,
	}

	gl.UseProgram(r.fontProgram)
	gl.UniformMatrix4fv(r.texProjLoc, 1, false, &proj[0])
	gl.Uniform4fv(r.texColorLoc, 1, &clr[0])
	gl.Uniform1i(r.texLoc, 0)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.atlasTexture)

	gl.BindVertexArray(r.fontVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.fontVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

// drawText draws text left to right, advancing the pen by each glyph's
// shaped advance (falling back to the cell width for anything the
// shaper reports no coverage for).
func (r *Renderer) drawText(x, y float32, text string, clr [4]float32, proj [16]float32) {
	r.drawTextScaled(x, y, text, clr, proj, 1.0)
}

func (r *Renderer) drawTextScaled(x, y float32, text string, clr [4]float32, proj [16]float32, scale float32) {
	for _, ch := range text {
		r.drawCharScaled(x, y, ch, clr, proj, scale)
		adv, ok := r.shaper.GlyphMetrics(ch)
		if !ok || adv == 0 {
			adv = r.cellWidth
		}
		x += adv * scale
	}
}

// CellDimensions returns the current (possibly zoomed) cell size.
func (r *Renderer) CellDimensions() (float32, float32) {
	return r.cellWidth, r.cellHeight
}

// TabBarWidth returns the tab bar's fixed pixel width.
func (r *Renderer) TabBarWidth() float32 {
	return r.tabBarWidth
}

// CalculateGridSize returns how many columns and rows of cells fit in a
// window of the given pixel size.
func (r *Renderer) CalculateGridSize(width, height int) (cols, rows int) {
	return calculateGridSize(r.cellWidth, r.cellHeight, r.tabBarWidth, r.paddingTop, r.paddingBottom, width, height)
}

func calculateGridSize(cellWidth, cellHeight, tabBarWidth, paddingTop, paddingBottom float32, width, height int) (cols, rows int) {
	availableWidth := float32(width) - tabBarWidth - 10
	availableHeight := float32(height) - paddingTop - paddingBottom
	cols = int(availableWidth / cellWidth)
	rows = int(availableHeight / cellHeight)
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return
}

// ChangeFont switches the active font family, keeping the current size.
func (r *Renderer) ChangeFont(name string) error {
	if err := r.loadFace(name, float64(r.fontSize)); err != nil {
		return err
	}
	r.currentFont = name
	r.uploadAtlas()
	return nil
}

// CurrentFont returns the active font family name.
func (r *Renderer) CurrentFont() string {
	return r.currentFont
}

// GetAvailableFonts lists the terminal's bundled fonts (the ones a user
// can reliably `change-font` to, regardless of what's on the host).
func (r *Renderer) GetAvailableFonts() []font.Info {
	available := fonts.AvailableFonts()
	infos := make([]font.Info, len(available))
	for i, f := range available {
		infos[i] = font.Info{Family: f.Name}
	}
	return infos
}

// ZoomIn increases the font size by one step, up to maxFontSize.
func (r *Renderer) ZoomIn() error {
	return r.SetFontSize(r.fontSize + zoomStep)
}

// ZoomOut decreases the font size by one step, down to minFontSize.
func (r *Renderer) ZoomOut() error {
	return r.SetFontSize(r.fontSize - zoomStep)
}

// ZoomReset restores the default font size.
func (r *Renderer) ZoomReset() error {
	return r.SetFontSize(r.defaultFontSize)
}

// SetDefaultFontSize sets the size ZoomReset returns to, and applies it
// immediately.
func (r *Renderer) SetDefaultFontSize(size float32) error {
	size = clampFontSize(size)
	r.defaultFontSize = size
	return r.setFontSize(size)
}

// SetFontSize sets the current font size without changing the default.
func (r *Renderer) SetFontSize(size float32) error {
	return r.setFontSize(clampFontSize(size))
}

// GetFontSize returns the current font size.
func (r *Renderer) GetFontSize() float32 {
	return r.fontSize
}

func (r *Renderer) setFontSize(size float32) error {
	if size == r.fontSize {
		return nil
	}
	if err := r.loadFace(r.currentFont, float64(size)); err != nil {
		return err
	}
	r.fontSize = size
	r.uploadAtlas()
	return nil
}

func clampFontSize(size float32) float32 {
	if size < minFontSize {
		return minFontSize
	}
	if size > maxFontSize {
		return maxFontSize
	}
	return size
}

// Destroy releases every OpenGL resource the renderer owns.
func (r *Renderer) Destroy() {
	gl.DeleteVertexArrays(1, &r.quadVAO)
	gl.DeleteBuffers(1, &r.quadVBO)
	gl.DeleteVertexArrays(1, &r.fontVAO)
	gl.DeleteBuffers(1, &r.fontVBO)
	gl.DeleteProgram(r.program)
	gl.DeleteProgram(r.fontProgram)
	gl.DeleteTextures(1, &r.atlasTexture)
}

func orthoMatrix(left, right, bottom, top, near, far float32) [16]float32 {
	return [16]float32{
		2 / (right - left), 0, 0, 0,
		0, 2 / (top - bottom), 0, 0,
		0, 0, -2 / (far - near), 0,
		-(right + left) / (right - left), -(top + bottom) / (top - bottom), -(far + near) / (far - near), 1,
	}
}

func createProgram(vertexSource, fragmentSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("renderer: link program: %v", log)
	}

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("renderer: compile shader: %v", log)
	}

	return shader, nil
}
