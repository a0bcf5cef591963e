package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// progressReporter draws a bar over the headers of one run. A disabled
// reporter does nothing.
type progressReporter struct {
	enabled bool
	out     io.Writer
	bar     *progressbar.ProgressBar
}

func newProgressReporter(enabled bool, out io.Writer) *progressReporter {
	return &progressReporter{enabled: enabled, out: out}
}

// Active reports whether a bar is currently drawn.
func (p *progressReporter) Active() bool {
	return p.bar != nil
}

func (p *progressReporter) Start(total int, description string) {
	if !p.enabled || total < 2 {
		return
	}
	out := p.out
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("headers/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(out)
		}),
	)
}

func (p *progressReporter) Advance() {
	if p.bar != nil {
		p.bar.Add(1)
	}
}

// Clear erases the bar so a message can be printed on a clean line.
func (p *progressReporter) Clear() {
	if p.bar != nil {
		p.bar.Clear()
	}
}

func (p *progressReporter) Finish() {
	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
}
