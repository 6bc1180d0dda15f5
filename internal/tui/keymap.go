package tui

// Key binding constants used in handleKey.
const (
	KeyCtrlC     = "ctrl+c"
	KeyEsc       = "esc"
	KeyEnter     = "enter"
	KeyTab       = "tab"
	KeyBackspace = "backspace"
	KeyCtrlU     = "ctrl+u"
	KeyUp        = "up"
	KeyDown      = "down"
	KeyJ         = "j"
	KeyK         = "k"
	KeyQuit      = "q"
	KeySave      = "s"
	KeyNew       = "n"
	KeyDelete    = "d"
	KeyRefresh   = "r"
	KeyEdit      = "e"

	// Editor
	KeyShiftTab = "shift+tab"
	KeyCtrlS    = "ctrl+s"
	KeyCtrlN    = "ctrl+n"
	KeyCtrlX    = "ctrl+x"
)
