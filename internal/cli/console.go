package cli

import (
	"fmt"
	"io"
	"log"
)

// Verbosity levels, matching the verbosity config option.
const (
	levelErrors = iota
	levelWarnings
	levelNormal
	levelVerbose
)

// console routes user-facing output by verbosity. Errors and warnings go to
// errOut, everything else to out.
type console struct {
	level  int
	out    io.Writer
	errOut io.Writer
	warn   *log.Logger
}

func newConsole(level int, out, errOut io.Writer) *console {
	c := &console{level: level, out: out, errOut: errOut}
	if level >= levelWarnings {
		c.warn = log.New(errOut, "", 0)
	} else {
		c.warn = log.New(io.Discard, "", 0)
	}
	return c
}

// Logger is handed to the parser and watcher, which prefix their own
// warnings.
func (c *console) Logger() *log.Logger {
	return c.warn
}

func (c *console) Errorf(format string, args ...any) {
	fmt.Fprintf(c.errOut, "ERROR: "+format+"\n", args...)
}

func (c *console) Warnf(format string, args ...any) {
	c.warn.Printf("WARNING: "+format, args...)
}

func (c *console) Printf(format string, args ...any) {
	if c.level >= levelNormal {
		fmt.Fprintf(c.out, format+"\n", args...)
	}
}

func (c *console) Debugf(format string, args ...any) {
	if c.level >= levelVerbose {
		fmt.Fprintf(c.out, format+"\n", args...)
	}
}
