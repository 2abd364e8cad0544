package importer

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/sleroq/evernote-to-obsidian/internal/logger"
)

// Control is the progress and cancellation surface the importer reports
// through. Callbacks are synchronous and must not block.
type Control interface {
	Status(message string)
	Progress(done, total int)
	Success(id string)
	Skipped(id string, reason string)
	Failed(id string, err error)
	Cancelled() bool
}

// ConsoleControl renders a progress bar on stderr and forwards per-note
// outcomes to the logger. Cancellation follows the supplied context.
type ConsoleControl struct {
	ctx context.Context
	bar importProgressBar
}

// NewConsoleControl builds the default control surface.
func NewConsoleControl(ctx context.Context) *ConsoleControl {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ConsoleControl{ctx: ctx, bar: newImportProgressBar()}
}

func (c *ConsoleControl) Status(message string) {
	c.bar.SetLabel(message)
	logger.Info(message)
}

func (c *ConsoleControl) Progress(done, total int) {
	c.bar.Set(done, total)
}

func (c *ConsoleControl) Success(id string) {
	logger.Debug("note imported", map[string]interface{}{"note": id})
}

func (c *ConsoleControl) Skipped(id string, reason string) {
	logger.Warn("note skipped", map[string]interface{}{"note": id, "reason": reason})
}

func (c *ConsoleControl) Failed(id string, err error) {
	logger.Error("import failed", err, map[string]interface{}{"id": id})
}

func (c *ConsoleControl) Cancelled() bool {
	return c.ctx.Err() != nil
}

// Close finishes the progress bar line.
func (c *ConsoleControl) Close() {
	c.bar.Close()
}

type importProgressBar struct {
	enabled         bool
	total           int
	current         int
	lastRenderWidth int
	label           string
	bar             progress.Model
}

func newImportProgressBar() importProgressBar {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 36

	if cols, err := strconv.Atoi(strings.TrimSpace(os.Getenv("COLUMNS"))); err == nil && cols > 0 {
		width := cols - 40
		if width < 16 {
			width = 16
		}
		if width > 64 {
			width = 64
		}
		bar.Width = width
	}

	return importProgressBar{
		enabled: isTerminal(os.Stderr),
		bar:     bar,
	}
}

func (p *importProgressBar) SetLabel(label string) {
	if !p.enabled {
		return
	}
	p.label = label
	if p.total > 0 {
		p.render()
	}
}

func (p *importProgressBar) Set(done, total int) {
	if !p.enabled {
		return
	}
	p.current = done
	p.total = total
	if p.total > 0 {
		p.render()
	}
}

func (p *importProgressBar) Close() {
	if !p.enabled {
		return
	}
	if p.lastRenderWidth > 0 {
		fmt.Fprint(os.Stderr, "\n")
		p.lastRenderWidth = 0
	}
}

func (p *importProgressBar) render() {
	percent := float64(p.current) / float64(p.total)
	if percent < 0 {
		percent = 0
	}
	if percent > 1 {
		percent = 1
	}
	line := fmt.Sprintf("%s %3.0f%% %d/%d %s", p.bar.ViewAs(percent), percent*100, p.current, p.total, strings.TrimSpace(p.label))
	pad := ""
	if p.lastRenderWidth > len(line) {
		pad = strings.Repeat(" ", p.lastRenderWidth-len(line))
	}
	fmt.Fprintf(os.Stderr, "\r%s%s", line, pad)
	p.lastRenderWidth = len(line)
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv("TERM")), "dumb") {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
