// Package springlog wraps the standard log package so that every line
// carries the identity of the data-owning process. In a distributed run
// each rank produces its own batch stream, so interleaved logs are
// unreadable without the prefix.
package springlog

import (
	"fmt"
	"log"
	"os"
)

var (
	rank = os.Getenv("RANK")

	prefix = buildPrefix(rank)
	flags  = log.LstdFlags | log.Lshortfile | log.Lmicroseconds
)

func buildPrefix(rank string) string {
	if rank == "" {
		return ""
	}
	return fmt.Sprintf("[rank=%s] ", rank)
}

func init() {
	// for clients still using the standard log package
	log.SetPrefix(prefix)
	log.SetFlags(flags)
}

// Basic prefixes log lines with the process rank, if any
var Basic = &Logger{
	Default: log.New(os.Stderr, prefix, flags),
}

// Logger encapsulates multiple logging handlers
type Logger struct {
	Default   *log.Logger
	Durations Durations
}

// Interface encapsulates the relevant methods of log.Logger
type Interface interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

// Printf implements Interface
func (l *Logger) Printf(format string, v ...interface{}) {
	l.Default.Output(2, fmt.Sprintf(format, v...))
}

// Println implements Interface
func (l *Logger) Println(v ...interface{}) {
	l.Default.Output(2, fmt.Sprintln(v...))
}
