package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan(t *testing.T) {
	steps, err := plan("all")
	require.NoError(t, err)
	assert.Equal(t, []string{"calculate", "intelligent", "alerts"}, steps)

	steps, err = plan("alerts")
	require.NoError(t, err)
	assert.Equal(t, []string{"alerts"}, steps)

	_, err = plan("")
	assert.Error(t, err)
}
