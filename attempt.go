package tiktok

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// attempt runs fn and reports its outcome without letting a failure (error
// or panic) escape. DOM-level failures are expected and only logged at
// debug level.
func attempt(log logrus.FieldLogger, name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", name, r)
		}
		if err != nil {
			log.WithField("step", name).Debugf("step failed: %v", err)
		}
	}()
	return fn()
}

// step is one stage of an ordered extraction cascade. needed is checked
// right before run so earlier stages can satisfy later ones.
type step[T any] struct {
	name   string
	needed func(*T) bool
	run    func(*T) error
}

// runSteps evaluates steps in order against target, skipping stages whose
// postcondition already holds and continuing past failed ones.
func runSteps[T any](log logrus.FieldLogger, target *T, steps []step[T]) {
	for _, s := range steps {
		if s.needed != nil && !s.needed(target) {
			continue
		}
		_ = attempt(log, s.name, func() error { return s.run(target) })
	}
}
