package app

import (
	"testing"

	"github.com/fekuna/pharmastock-service/config"
	"github.com/fekuna/pharmastock-service/internal/reorder"
	"github.com/stretchr/testify/assert"
)

func TestResolverFromConfig(t *testing.T) {
	r := ResolverFromConfig(config.ReorderConfig{DefaultLevel: 50, ZeroIsAbsent: true})
	assert.Equal(t, 50, r.DefaultLevel)
	assert.Equal(t, reorder.ZeroAsAbsent, r.ZeroPolicy)
	assert.Equal(t, 50, r.ResolveEffectiveLevel(reorder.Candidates{Manual: reorder.Int(0)}))

	r = ResolverFromConfig(config.ReorderConfig{DefaultLevel: 50, ZeroIsAbsent: false})
	assert.Equal(t, reorder.ZeroIsValid, r.ZeroPolicy)
	assert.Equal(t, 0, r.ResolveEffectiveLevel(reorder.Candidates{Manual: reorder.Int(0)}))
}
