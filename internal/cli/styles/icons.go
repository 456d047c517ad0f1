package styles

// Nerd Font icons (requires a Nerd Font to display correctly)
const (
	IconHorizontal = "\uf0db" // columns
	IconVertical   = "\uf0c9" // bars
	IconLeaf       = "\uf2d0" // window maximize
	IconWindow     = "\uf2d2" // window restore
	IconActive     = "\uf111" // filled circle
	IconClosing    = "\uf00d" // x
	IconLayout     = "\uf009" // th-large
	IconCheck      = "\uf00c" // check
	IconWarning    = "\uf071" // warning
)
