package bench

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
)

const (
	PlaintextFormatString = "text"
	JSONFormatString      = "json"
)

// ConfigureLogging points logrus at stderr with the chosen format and level.
func ConfigureLogging(format string, debug bool) error {
	switch format {
	case PlaintextFormatString, "":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case JSONFormatString:
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	log.SetOutput(os.Stderr)
	if debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
	return nil
}
