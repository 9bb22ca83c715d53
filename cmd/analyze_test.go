package cmd

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveWorkers(t *testing.T) {
	assert.Equal(t, 3, effectiveWorkers(3))
	assert.Equal(t, 1, effectiveWorkers(1))
	assert.Equal(t, runtime.GOMAXPROCS(0), effectiveWorkers(0))
	assert.Equal(t, runtime.GOMAXPROCS(0), effectiveWorkers(-2))
}
