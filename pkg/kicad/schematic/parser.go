package schematic

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/alecthomas/participle/v2"
)

// Minimum supported KiCad version (6.0)
const MinSupportedVersion = 20211014

// ErrNotSchematic is returned when the file root is not a kicad_sch node.
var ErrNotSchematic = errors.New("not a KiCad schematic file")

var (
	buildOnce sync.Once
	grammar   *participle.Parser[File]
	buildErr  error
)

func parser() (*participle.Parser[File], error) {
	buildOnce.Do(func() {
		grammar, buildErr = participle.Build[File](
			participle.Lexer(SchematicLexer),
			participle.Elide("Whitespace"),
			participle.Unquote("String"),
		)
		if buildErr != nil {
			buildErr = fmt.Errorf("failed to build parser: %w", buildErr)
		}
	})
	return grammar, buildErr
}

// ParseFile reads and parses a KiCad schematic file
func ParseFile(filename string) (*Schematic, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	p, err := parser()
	if err != nil {
		return nil, err
	}
	ast, err := p.Parse(filename, file)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return build(ast)
}

// Parse reads and parses a KiCad schematic from an io.Reader
func Parse(r io.Reader) (*Schematic, error) {
	p, err := parser()
	if err != nil {
		return nil, err
	}
	ast, err := p.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return build(ast)
}

// ParseString parses a KiCad schematic from a string
func ParseString(input string) (*Schematic, error) {
	p, err := parser()
	if err != nil {
		return nil, err
	}
	ast, err := p.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return build(ast)
}

// build extracts the hierarchy data from the parsed tree. Unknown tags are
// ignored.
func build(ast *File) (*Schematic, error) {
	root := ast.Root
	if root == nil || root.Head != "kicad_sch" {
		head := ""
		if root != nil {
			head = root.Head
		}
		return nil, fmt.Errorf("%w: expected 'kicad_sch', got '%s'", ErrNotSchematic, head)
	}

	sch := &Schematic{}
	if err := parseHeader(root, sch); err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	if node, ok := root.Find("uuid"); ok {
		sch.UUID = node.Arg(0)
	}

	for _, node := range root.FindAll("sheet") {
		sch.Sheets = append(sch.Sheets, parseSheet(node))
	}

	return sch, nil
}

// parseHeader extracts version and generator information
func parseHeader(root *List, sch *Schematic) error {
	versionNode, found := root.Find("version")
	if !found {
		return fmt.Errorf("missing required 'version' field")
	}

	ver, err := strconv.Atoi(versionNode.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to parse version: %w", err)
	}

	if ver < MinSupportedVersion {
		return fmt.Errorf("unsupported KiCad version: %d (minimum required: %d / KiCad 6.0)", ver, MinSupportedVersion)
	}
	sch.Version = ver

	if genNode, found := root.Find("generator"); found {
		sch.Generator = genNode.Arg(0)
	}

	return nil
}

// parseSheet reads a (sheet ...) node. KiCad 6 names the properties
// "Sheet name" and "Sheet file"; later versions use "Sheetname" and
// "Sheetfile".
func parseSheet(node *List) Sheet {
	sheet := Sheet{Properties: make(map[string]string)}

	if atNode, found := node.Find("at"); found {
		sheet.Position.X, _ = strconv.ParseFloat(atNode.Arg(0), 64)
		sheet.Position.Y, _ = strconv.ParseFloat(atNode.Arg(1), 64)
	}

	if sizeNode, found := node.Find("size"); found {
		sheet.Size.Width, _ = strconv.ParseFloat(sizeNode.Arg(0), 64)
		sheet.Size.Height, _ = strconv.ParseFloat(sizeNode.Arg(1), 64)
	}

	if uuidNode, found := node.Find("uuid"); found {
		sheet.UUID = uuidNode.Arg(0)
	}

	for _, prop := range node.FindAll("property") {
		key, value := prop.Arg(0), prop.Arg(1)
		sheet.Properties[key] = value
		switch key {
		case "Sheetname", "Sheet name":
			sheet.Name = value
		case "Sheetfile", "Sheet file":
			sheet.FileName = value
		}
	}

	return sheet
}
