package semant

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cool-semant/types"
)

func TestEnvShadowing(t *testing.T) {
	env := NewEnv()
	env.EnterScope()
	env.Add("x", types.Int)
	env.Add("y", types.Bool)

	env.EnterScope()
	env.Add("x", types.String)
	assert.Equal(t, 2, env.Depth())

	got, ok := env.Lookup("x")
	assert.True(t, ok)
	assert.Equal(t, types.String, got)

	got, ok = env.Lookup("y")
	assert.True(t, ok)
	assert.Equal(t, types.Bool, got)

	_, ok = env.Probe("y")
	assert.False(t, ok, "Probe must not see outer scopes")

	env.ExitScope()
	got, _ = env.Lookup("x")
	assert.Equal(t, types.Int, got)

	env.ExitScope()
	_, ok = env.Lookup("x")
	assert.False(t, ok)
	assert.Equal(t, 0, env.Depth())
}

func TestEnvMisuseIsInternal(t *testing.T) {
	env := NewEnv()
	_, ok := env.Probe("x")
	assert.False(t, ok)
	assert.Panics(t, func() { env.ExitScope() })
	assert.Panics(t, func() { env.Add("x", types.Int) })
}
