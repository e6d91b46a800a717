package internal

import (
	"log"
	"os"
)

// NewLogger returns a logger prefixed with the component name.
func NewLogger(component string) *log.Logger {
	prefix := "mmnotify"
	if component != "" {
		prefix = prefix + "/" + component
	}
	return log.New(os.Stdout, prefix+" ", log.LstdFlags|log.Lmicroseconds)
}
