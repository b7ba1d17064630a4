package variables_test

import (
	"testing"

	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/aretw0/keyframe/pkg/variables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore() *variables.Store {
	return variables.New([]domain.Variable{
		{ID: "counter", DefaultValue: domain.Number(0)},
		{ID: "open", DefaultValue: domain.Bool(false)},
		{ID: "label", DefaultValue: domain.String("hi")},
		{ID: "empty"},
	})
}

func TestStore_CounterScenario(t *testing.T) {
	s := newStore()

	for i := 0; i < 3; i++ {
		_, err := s.Increment("counter", 1)
		require.NoError(t, err)
	}
	prev, err := s.Decrement("counter", 5)
	require.NoError(t, err)
	assert.Equal(t, domain.Number(3), prev)

	got, err := s.Get("counter")
	require.NoError(t, err)
	assert.Equal(t, domain.Number(-2), got)
}

func TestStore_Toggle(t *testing.T) {
	s := newStore()

	prev, err := s.Toggle("open")
	require.NoError(t, err)
	assert.Equal(t, domain.Bool(false), prev)
	v, _ := s.Get("open")
	assert.Equal(t, domain.Bool(true), v)

	// Unset and string values are coerced by truthiness and always become booleans.
	_, err = s.Toggle("empty")
	require.NoError(t, err)
	v, _ = s.Get("empty")
	assert.Equal(t, domain.Bool(true), v)

	_, err = s.Toggle("label")
	require.NoError(t, err)
	v, _ = s.Get("label")
	assert.Equal(t, domain.Bool(false), v)
}

func TestStore_IncrementCoercesNumbers(t *testing.T) {
	s := variables.New([]domain.Variable{
		{ID: "text", DefaultValue: domain.String(" 41 ")},
		{ID: "junk", DefaultValue: domain.String("abc")},
		{ID: "flag", DefaultValue: domain.Bool(true)},
	})

	_, _ = s.Increment("text", 1)
	_, _ = s.Increment("junk", 1)
	_, _ = s.Increment("flag", 1)

	v, _ := s.Get("text")
	assert.Equal(t, domain.Number(42), v)
	v, _ = s.Get("junk")
	assert.Equal(t, domain.Number(1), v)
	v, _ = s.Get("flag")
	assert.Equal(t, domain.Number(2), v)
}

func TestStore_UnknownVariable(t *testing.T) {
	s := newStore()
	before := s.Values()

	_, err := s.Set("ghost", domain.Number(1))
	assert.ErrorIs(t, err, domain.ErrVariableNotFound)
	_, err = s.Toggle("ghost")
	assert.ErrorIs(t, err, domain.ErrVariableNotFound)
	_, err = s.Increment("ghost", 1)
	assert.ErrorIs(t, err, domain.ErrVariableNotFound)
	_, err = s.Get("ghost")
	assert.ErrorIs(t, err, domain.ErrVariableNotFound)

	assert.Equal(t, before, s.Values())
	assert.False(t, s.Has("ghost"))
}

func TestStore_ResetAndRestore(t *testing.T) {
	s := newStore()
	_, _ = s.Set("label", domain.String("changed"))
	_, _ = s.Increment("counter", 7)

	snap := s.Values()
	s.Reset()
	v, _ := s.Get("counter")
	assert.Equal(t, domain.Number(0), v)

	snap["ghost"] = domain.Number(9)
	delete(snap, "open")
	s.Restore(snap)

	v, _ = s.Get("counter")
	assert.Equal(t, domain.Number(7), v)
	v, _ = s.Get("label")
	assert.Equal(t, domain.String("changed"), v)
	v, _ = s.Get("open")
	assert.Equal(t, domain.Bool(false), v)
	assert.False(t, s.Has("ghost"))
}

func TestStore_ValuesIsACopy(t *testing.T) {
	s := newStore()
	vals := s.Values()
	vals["counter"] = domain.Number(100)

	v, _ := s.Get("counter")
	assert.Equal(t, domain.Number(0), v)
	assert.Equal(t, []string{"counter", "open", "label", "empty"}, s.IDs())
}
