package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// ProductionLogger is a hand-rolled structured logger writing either JSON
// lines or human-readable text to stdout/stderr. No external logging
// library (zap/zerolog) is introduced here (see DESIGN.md for the stdlib
// justification).
type ProductionLogger struct {
	component string
	format    string // "json" or "text"
	debug     bool
	output    io.Writer
}

var _ ComponentAwareLogger = (*ProductionLogger)(nil)

// NewProductionLogger builds a logger writing to stdout (or stderr if
// outputName == "stderr").
func NewProductionLogger(component, format, outputName string, debug bool) *ProductionLogger {
	var out io.Writer = os.Stdout
	if outputName == "stderr" {
		out = os.Stderr
	}
	return &ProductionLogger{component: component, format: format, debug: debug, output: out}
}

func (p *ProductionLogger) WithComponent(component string) Logger {
	clone := *p
	clone.component = component
	return &clone
}

func (p *ProductionLogger) Info(msg string, fields map[string]interface{}) {
	p.logEvent("INFO", msg, fields)
}
func (p *ProductionLogger) Error(msg string, fields map[string]interface{}) {
	p.logEvent("ERROR", msg, fields)
}
func (p *ProductionLogger) Warn(msg string, fields map[string]interface{}) {
	p.logEvent("WARN", msg, fields)
}
func (p *ProductionLogger) Debug(msg string, fields map[string]interface{}) {
	if p.debug {
		p.logEvent("DEBUG", msg, fields)
	}
}

func (p *ProductionLogger) InfoWithContext(_ context.Context, msg string, fields map[string]interface{}) {
	p.Info(msg, fields)
}
func (p *ProductionLogger) ErrorWithContext(_ context.Context, msg string, fields map[string]interface{}) {
	p.Error(msg, fields)
}
func (p *ProductionLogger) WarnWithContext(_ context.Context, msg string, fields map[string]interface{}) {
	p.Warn(msg, fields)
}
func (p *ProductionLogger) DebugWithContext(_ context.Context, msg string, fields map[string]interface{}) {
	p.Debug(msg, fields)
}

func (p *ProductionLogger) logEvent(level, msg string, fields map[string]interface{}) {
	ts := time.Now().Format(time.RFC3339)

	if p.format == "json" {
		entry := map[string]interface{}{
			"timestamp": ts,
			"level":     level,
			"component": p.component,
			"message":   msg,
		}
		for k, v := range fields {
			entry[k] = v
		}
		if data, err := json.Marshal(entry); err == nil {
			fmt.Fprintln(p.output, string(data))
		}
		return
	}

	var sb strings.Builder
	for k, v := range fields {
		fmt.Fprintf(&sb, " %s=%v", k, v)
	}
	fmt.Fprintf(p.output, "%s [%-5s] [%s] %s%s\n", ts, level, p.component, msg, sb.String())
}
