package render

// Theme holds colors for instruction graph rendering.
type Theme struct {
	Background string
	NodeFill   string
	NodeBorder string
	TextColor  string

	// Edge colors by kind.
	EdgeFall      string
	EdgeTaken     string // taken side of a conditional branch
	EdgeNotTaken  string // fall-through side of a conditional branch
	EdgeJump      string // goto, jsr
	EdgeSwitch    string
	EdgeException string

	// Node accents.
	EntryBorder string
	TermFill    string // returns, athrow, ret
	DeadText    string // unreachable instructions
}

// NASA is the NASA/Bauhaus theme: geometric, monochrome, sparse color.
var NASA = Theme{
	Background: "#F5F5F5",
	NodeFill:   "white",
	NodeBorder: "#1A1A1A",
	TextColor:  "#1A1A1A",

	EdgeFall:      "#424242", // dark gray
	EdgeTaken:     "#0B3D91", // NASA blue
	EdgeNotTaken:  "#FC3D21", // NASA red
	EdgeJump:      "#00695C", // teal
	EdgeSwitch:    "#E65100", // deep orange
	EdgeException: "#9E9E9E", // gray

	EntryBorder: "#0B3D91",
	TermFill:    "#ECEFF1", // blue-gray 50
	DeadText:    "#9E9E9E",
}
