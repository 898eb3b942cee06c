package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/OpenTraceLab/hierpcb/internal/config"
	"github.com/OpenTraceLab/hierpcb/internal/hierarchy"
	"github.com/OpenTraceLab/hierpcb/internal/logger"
)

// project is a design opened from the command line: its hierarchy, the
// persisted choices and the run settings.
type project struct {
	boardPath string
	settings  *config.Settings
	store     *config.Store
	hier      *hierarchy.Hierarchy
	log       *logger.Logger
}

// rootSchematic accepts the design's board or root schematic and returns
// the root schematic.
func rootSchematic(arg string) (string, error) {
	switch filepath.Ext(arg) {
	case ".kicad_pcb", ".kicad_pro":
		return strings.TrimSuffix(arg, filepath.Ext(arg)) + ".kicad_sch", nil
	case ".kicad_sch":
		return arg, nil
	}
	return "", fmt.Errorf("%s: expected a .kicad_pcb or .kicad_sch file", arg)
}

func loadSettings() (*config.Settings, error) {
	if settingsFile == "" {
		return config.DefaultSettings(), nil
	}
	s, err := config.LoadSettings(settingsFile)
	if err != nil {
		return nil, fmt.Errorf("error loading settings: %w", err)
	}
	return s, nil
}

// openProject loads the design named by arg. With logToFile set and the
// log_file setting on, the run log also goes to <board>.projinst.log,
// truncated first.
func openProject(arg string, logToFile bool) (*project, error) {
	sch, err := rootSchematic(arg)
	if err != nil {
		return nil, err
	}
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}

	boardPath := hierarchy.BoardPath(sch)
	var outputs []string
	if logToFile && settings.LogFile {
		logPath := config.LogPath(boardPath)
		if err := os.WriteFile(logPath, nil, 0644); err != nil {
			return nil, fmt.Errorf("error creating log file: %w", err)
		}
		outputs = append(outputs, logPath)
	}
	log, err := logger.New(settings.LogMode, verbose, outputs...)
	if err != nil {
		return nil, fmt.Errorf("error creating logger: %w", err)
	}

	hier, err := hierarchy.Build(sch, log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	store, err := config.Open(config.StorePath(hier.BoardPath))
	if err != nil {
		log.Sync()
		return nil, err
	}
	hier.Load(store)

	return &project{
		boardPath: hier.BoardPath,
		settings:  settings,
		store:     store,
		hier:      hier,
		log:       log,
	}, nil
}

// room finds a room by sheet file name, sheet path or store key.
func (p *project) room(name string) (*hierarchy.Room, bool) {
	for _, r := range p.hier.Rooms {
		if filepath.Base(r.SheetPath) == name || r.SheetPath == name || r.Key() == name {
			return r, true
		}
	}
	return nil, false
}
