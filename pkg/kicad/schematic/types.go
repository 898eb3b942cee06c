// Package schematic reads the sheet hierarchy of KiCad schematic files
// (.kicad_sch).
package schematic

// Schematic holds the parts of a schematic file that describe its place in
// a hierarchical design.
type Schematic struct {
	Version   int     // File format version
	Generator string  // Generator info (e.g., "eeschema")
	UUID      string  // Schematic UUID
	Sheets    []Sheet // Hierarchical sheet references, in file order
}

// Sheet is a hierarchical sheet symbol: one instantiation of a child
// schematic file.
type Sheet struct {
	UUID       string            // Sheet UUID
	Name       string            // Sheetname property
	FileName   string            // Sheetfile property, relative to the parent file
	Position   Position          // Sheet position in mm
	Size       Size              // Sheet size in mm
	Properties map[string]string // Every property, including name and file
}

// Position is a schematic location in mm
type Position struct {
	X float64
	Y float64
}

// Size is a width/height pair in mm
type Size struct {
	Width  float64
	Height float64
}
