package replicate

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/OpenTraceLab/hierpcb/internal/config"
	"github.com/OpenTraceLab/hierpcb/internal/hierarchy"
	"github.com/OpenTraceLab/hierpcb/internal/logger"
	"github.com/OpenTraceLab/hierpcb/pkg/kicad/pcb"
)

// ErrApplyInProgress is returned when a run is started while another is
// still going.
var ErrApplyInProgress = errors.New("apply already in progress")

// Logger receives the engine's diagnostics.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Report summarises a run.
type Report struct {
	Instances  int // instances replicated
	Skipped    int // enabled instances whose anchor was not found
	Footprints int
	Traces     int
	Drawings   int
	Zones      int
	Removed    int // volatile items cleared before recreation
	Warnings   []string

	log Logger
}

func (r *Report) warn(msg string, keysAndValues ...interface{}) {
	if r.log != nil {
		r.log.Warn(msg, keysAndValues...)
	}

	var sb strings.Builder
	sb.WriteString(msg)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fmt.Fprintf(&sb, " %v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	r.Warnings = append(r.Warnings, sb.String())
}

// Engine replicates template rooms onto one target board.
type Engine struct {
	board    *pcb.Board
	settings *config.Settings
	log      Logger
	running  atomic.Bool
}

// NewEngine returns an engine for board. A nil settings value selects the
// defaults and a nil log discards diagnostics.
func NewEngine(board *pcb.Board, settings *config.Settings, log Logger) *Engine {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{board: board, settings: settings, log: log}
}

// Board returns the target board.
func (e *Engine) Board() *pcb.Board { return e.board }

// ApplyChildren replicates every enabled instance at or below n, visiting
// the tree in pre-order. A failed instance stops the run; instances done
// before it keep their changes.
func (e *Engine) ApplyChildren(n hierarchy.Node) (*Report, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, ErrApplyInProgress
	}
	defer e.running.Store(false)

	report := &Report{log: e.log}
	err := e.apply(n, report)
	e.board.Refresh()

	e.log.Info("apply finished",
		"instances", report.Instances,
		"skipped", report.Skipped,
		"footprints", report.Footprints,
		"traces", report.Traces,
		"drawings", report.Drawings,
		"zones", report.Zones,
		"warnings", len(report.Warnings))
	return report, err
}

func (e *Engine) apply(n hierarchy.Node, report *Report) error {
	switch v := n.(type) {
	case *hierarchy.Leaf:
		if !v.Instance.Enabled {
			return nil
		}
		return e.ApplyInstance(v.Instance, report)
	case *hierarchy.Branch:
		for _, child := range v.Children {
			if err := e.apply(child, report); err != nil {
				return err
			}
		}
	}
	return nil
}

// GroupName returns the managed group name of an instance.
func (e *Engine) GroupName(inst *hierarchy.Instance) string {
	return e.settings.GroupPrefix + inst.UUIDPath
}

// ApplyInstance replicates one instance: it places the footprints, then
// clears and recreates the instance's drawings, traces and zones. Counts
// and warnings are added to report.
func (e *Engine) ApplyInstance(inst *hierarchy.Instance, report *Report) error {
	if report.log == nil {
		report.log = e.log
	}
	room := inst.Room
	log := []interface{}{"instance", inst.Name, "path", inst.UUIDPath}

	resolver := NewResolver(e.board, inst.UUIDPath)
	anchor := room.Anchor()
	target, ok := resolver.Resolve(anchor)
	if !ok {
		report.Skipped++
		report.warn("anchor footprint not found in target, instance skipped",
			append(log, "anchor", anchor.Reference(), "want", resolver.Path(anchor))...)
		return nil
	}

	xf := NewTransform(anchor, target)
	group, err := GetOrCreate(e.board, e.GroupName(inst))
	if err != nil {
		return fmt.Errorf("instance %s: %w", inst.UUIDPath, err)
	}
	custody := NewCustodian(e.board, group)

	removed := ClearVolatile(e.board, group)
	report.Removed += removed
	e.log.Debug("cleared volatile items", append(log, "group", group.Name(), "removed", removed)...)

	fps := &footprintSync{
		resolver: resolver,
		xf:       xf,
		custody:  custody,
		padMatch: e.settings.PadMatch,
		skipOOB:  e.settings.SkipOutOfBounds,
		nets:     NewNetMap(),
		report:   report,
		log:      e.log,
	}
	report.Footprints += fps.run(room.Board)

	n, err := CopyDrawings(room.Board, xf, custody)
	report.Drawings += n
	if err != nil {
		return fmt.Errorf("instance %s: %w", inst.UUIDPath, err)
	}
	n, err = CopyTraces(room.Board, xf, fps.nets, custody)
	report.Traces += n
	if err != nil {
		return fmt.Errorf("instance %s: %w", inst.UUIDPath, err)
	}
	n, err = CopyZones(room.Board, xf, fps.nets, custody)
	report.Zones += n
	if err != nil {
		return fmt.Errorf("instance %s: %w", inst.UUIDPath, err)
	}

	report.Instances++
	e.log.Info("instance replicated",
		append(log, "anchor", anchor.Reference(), "rotation", xf.Rotation().Format(), "nets", fps.nets.Len())...)
	return nil
}
