// Package logging provides the engine's bracket-tagged log lines
// (fmt.Printf("[VALUATION] ...")-style). Wrapping it here keeps call sites
// terse without pulling in a structured-logging library.
package logging

import "log"

// Logger prefixes every line with a fixed component tag, e.g. "[WACC]".
type Logger struct {
	tag string
}

// Tag returns a Logger for the named component.
func Tag(component string) *Logger {
	return &Logger{tag: "[" + component + "]"}
}

func (l *Logger) Printf(format string, args ...interface{}) {
	log.Printf(l.tag+" "+format, args...)
}

func (l *Logger) Println(args ...interface{}) {
	log.Println(append([]interface{}{l.tag}, args...)...)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	log.Printf(l.tag+" [WARNING] "+format, args...)
}
