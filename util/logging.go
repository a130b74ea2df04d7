package util

import (
	"os"

	"github.com/mattn/go-colorable"
	log "github.com/sirupsen/logrus"
)

// SetupLogging configures the global logger. format is "text" or "json";
// text output is colored when stdout is a terminal.
func SetupLogging(level, format string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)

	if format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
		log.SetOutput(os.Stdout)
		return nil
	}
	log.SetFormatter(&log.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	log.SetOutput(colorable.NewColorableStdout())
	return nil
}
