package dispatcher

import log "github.com/sirupsen/logrus"

func init() {
	// Setup logrus
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
	log.SetLevel(log.InfoLevel)
}

// SetLogLevel sets the logrus level from a name such as "debug" or "warn".
func SetLogLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	return nil
}
