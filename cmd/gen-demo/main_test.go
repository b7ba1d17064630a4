package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/keyframe"
	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_LibraryLoadsBack(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demo")
	var out bytes.Buffer
	require.NoError(t, generate(context.Background(), dir, &out))
	assert.Contains(t, out.String(), "wrote carousel (3 screens, 6 transitions)")

	loader, err := keyframe.OpenLoader(dir)
	require.NoError(t, err)
	ids, err := loader.ListDocuments()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"carousel", "settings"}, ids)

	carousel, err := keyframe.Load(loader, "carousel")
	require.NoError(t, err)
	assert.Len(t, carousel.Screens, 3)
	require.Len(t, carousel.Transitions, 6)
	assert.IsType(t, domain.DragTrigger{}, carousel.Transitions[0].Triggers[0])

	settings, err := keyframe.Load(loader, "settings")
	require.NoError(t, err)
	require.Len(t, settings.Variables, 2)
	assert.Equal(t, domain.Bool(false), settings.Variables[0].DefaultValue)
	assert.Equal(t, domain.Number(5), settings.Variables[1].DefaultValue)
	assert.Len(t, settings.Interactions, 5)
}
