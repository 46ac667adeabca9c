package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusAvailable, StatusConfirmed))
	assert.True(t, CanTransition(StatusAvailable, StatusUnavailable))
	assert.False(t, CanTransition(StatusConfirmed, StatusAvailable))
	assert.False(t, CanTransition(StatusConfirmed, StatusUnavailable))
	assert.False(t, CanTransition(StatusUnavailable, StatusAvailable))
	assert.False(t, CanTransition(StatusUnavailable, StatusConfirmed))
	assert.False(t, CanTransition(StatusAvailable, StatusAvailable))
}

// Property: no sequence of permitted transitions ever re-enters available,
// and at most one transition happens before the status becomes terminal.
func TestStatusTransitionsAreOneShot(t *testing.T) {
	statuses := []string{StatusAvailable, StatusConfirmed, StatusUnavailable}

	rapid.Check(t, func(rt *rapid.T) {
		status := StatusAvailable
		transitions := 0
		steps := rapid.IntRange(1, 20).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			next := rapid.SampledFrom(statuses).Draw(rt, "next")
			if CanTransition(status, next) {
				status = next
				transitions++
			}
		}
		if transitions > 1 {
			rt.Fatalf("status machine allowed %d transitions", transitions)
		}
		if transitions > 0 && status == StatusAvailable {
			rt.Fatalf("status re-entered available")
		}
	})
}
