package transfer

import (
	"github.com/sirupsen/logrus"
)

// maxPasses bounds how often effects may feed each other within one reaction.
const maxPasses = 8

// effect runs whenever the value returned by key differs from the value seen
// on its previous run. Keys must be comparable.
type effect struct {
	name   string
	key    func() any
	run    func()
	last   any
	primed bool
}

type reactor struct {
	effects []*effect
	logger  *logrus.Logger
}

func (r *reactor) register(name string, key func() any, run func()) {
	r.effects = append(r.effects, &effect{name: name, key: key, run: run})
}

// react re-runs changed effects until their keys settle.
func (r *reactor) react() {
	for pass := 0; pass < maxPasses; pass++ {
		changed := false
		for _, e := range r.effects {
			k := e.key()
			if e.primed && k == e.last {
				continue
			}
			e.last = k
			e.primed = true
			e.run()
			changed = true
		}
		if !changed {
			return
		}
	}
	r.logger.Warn("transfer effects did not settle")
}

// forget makes every effect run on the next reaction.
func (r *reactor) forget() {
	for _, e := range r.effects {
		e.primed = false
		e.last = nil
	}
}
