package graceful

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
)

func MakeSigintChan() chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	return sigCh
}

// OnSignal calls stop once SIGINT or SIGTERM arrives.
func OnSignal(logger *logrus.Logger, stop func()) {
	sigCh := MakeSigintChan()
	go func() {
		sig := <-sigCh
		logger.Infof("received exit signal: %v", sig)
		stop()
	}()
}
