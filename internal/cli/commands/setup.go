package commands

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/HamletTheHamster/labutils/datafile"
	"github.com/HamletTheHamster/labutils/internal/config"
	"github.com/HamletTheHamster/labutils/measure"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
}

// NewCommandContext collects the configuration and logger stored by the
// root command.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	return &CommandContext{
		Cfg:    config.FromContext(cmd.Context()),
		Logger: config.GetLogger(cmd.Context()),
	}
}

// Format turns the output settings into a measurement format.
func (c *CommandContext) Format() measure.Format {
	f := measure.Format{Digits: c.Cfg.Digits, LaTeX: c.Cfg.LaTeX}
	switch c.Cfg.Style {
	case "fixed":
		f.Style = measure.Fixed
	case "exp":
		f.Style = measure.Exp
	}
	return f
}

// ReadTable reads path with the data file settings.
func (c *CommandContext) ReadTable(path string, cols []string, text bool) (*datafile.Table, error) {
	return datafile.Read(path, datafile.Options{
		Layout:  c.Cfg.Layout,
		Delim:   c.Cfg.Delim,
		Decimal: c.Cfg.Decimal,
		Sheet:   c.Cfg.Sheet,
		Cols:    cols,
		Text:    text,
		Logger:  c.Logger,
	})
}

// RunDir creates the dated directory of this run under Cfg.Out, named
// like 2006-Jan-02/150405 note. It returns "" when Out is empty.
func (c *CommandContext) RunDir(now time.Time) (string, error) {
	if c.Cfg.Out == "" {
		return "", nil
	}
	name := now.Format("150405")
	if c.Cfg.Note != "" {
		name += " " + c.Cfg.Note
	}
	path := filepath.Join(c.Cfg.Out, now.Format("2006-Jan-02"), name)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("failed to create run directory: %w", err)
	}
	c.Logger.Debug("run directory", "path", path)
	return path, nil
}

// writeLog writes the run log to dir/log.txt.
func writeLog(dir string, lines []string) error {
	txt, err := os.Create(filepath.Join(dir, "log.txt"))
	if err != nil {
		return fmt.Errorf("failed to create log: %w", err)
	}
	defer txt.Close()

	w := bufio.NewWriter(txt)
	for _, line := range lines {
		if _, err := w.WriteString(line); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return txt.Close()
}
