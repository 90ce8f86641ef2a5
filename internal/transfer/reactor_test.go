package transfer

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestReactor_RunsOnlyChangedEffects(t *testing.T) {
	r := &reactor{logger: logrus.New()}
	a, b := 0, 0
	var runsA, runsB int
	r.register("a", func() any { return a }, func() { runsA++ })
	r.register("b", func() any { return b }, func() { runsB++ })

	r.react()
	assert.Equal(t, 1, runsA)
	assert.Equal(t, 1, runsB)

	r.react()
	assert.Equal(t, 1, runsA)
	assert.Equal(t, 1, runsB)

	b = 5
	r.react()
	assert.Equal(t, 1, runsA)
	assert.Equal(t, 2, runsB)

	r.forget()
	r.react()
	assert.Equal(t, 2, runsA)
	assert.Equal(t, 3, runsB)
}

func TestReactor_ChainsUntilStable(t *testing.T) {
	r := &reactor{logger: logrus.New()}
	input, derived := 1, 0
	var downstream int
	// registered before its producer so the change lands in a second pass
	r.register("consumer", func() any { return derived }, func() { downstream++ })
	r.register("producer", func() any { return input }, func() { derived = input * 2 })

	r.react()
	assert.Equal(t, 2, derived)
	assert.Equal(t, 2, downstream)

	input = 3
	r.react()
	assert.Equal(t, 6, derived)
	assert.Equal(t, 3, downstream)
}
