package loam

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/keyframe/internal/testutils"
	"github.com/aretw0/keyframe/pkg/document"
	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/aretw0/loam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for filename, content := range files {
		err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644)
		require.NoError(t, err)
	}
}

func TestLoader_GetDocument_Markdown(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)
	seed(t, tmpDir, map[string]string{
		"onboarding.md": `---
name: Onboarding
initialScreen: welcome
variables:
  - id: step
    defaultValue: 0
screens:
  - id: welcome
    elements:
      - id: cta
        x: 10
        width: 120
  - id: done
    elements: []
transitions:
  - from: welcome
    to: done
    duration: 300
    trigger:
      type: timer
      delay: 2000
---
Reviewer notes live in the body and are ignored.`,
	})

	loader := New(loam.NewTypedRepository[PrototypeMetadata](repo))

	data, err := loader.GetDocument("onboarding")
	require.NoError(t, err)

	proto, err := document.Parse(data, document.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "Onboarding", proto.Name)
	assert.Equal(t, "welcome", proto.InitialScreenID)
	require.Len(t, proto.Screens, 2)
	cta, ok := proto.Screens[0].Element("cta")
	require.True(t, ok)
	assert.Equal(t, 120.0, cta.Geometry.Width)
	require.Len(t, proto.Transitions, 1)
	assert.IsType(t, domain.TimerTrigger{}, proto.Transitions[0].Triggers[0])
	require.Len(t, proto.Variables, 1)
	assert.Equal(t, domain.Number(0), proto.Variables[0].DefaultValue)
}

func TestLoader_GetDocument_DefaultsNameToID(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)
	seed(t, tmpDir, map[string]string{
		"checkout.json": `{"screens": [{"id": "cart"}]}`,
	})

	loader := New(loam.NewTypedRepository[PrototypeMetadata](repo))

	data, err := loader.GetDocument("checkout")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name":"checkout"`)
	assert.Contains(t, string(data), `"transitions":[]`)

	_, err = loader.GetDocument("missing")
	assert.Error(t, err)
}

func TestLoader_ListDocuments_NormalizesIDs(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)
	seed(t, tmpDir, map[string]string{
		"start.md": `---
id: start.md
---
Hello`,
		"choice.json": `{
  "id": "choice.json",
  "screens": []
}`,
		"implicit.md": `---
name: Implicit
---
ID is implied from filename`,
	})

	loader := New(loam.NewTypedRepository[PrototypeMetadata](repo))

	ids, err := loader.ListDocuments()
	require.NoError(t, err)

	assert.Contains(t, ids, "start", "start.md should become start")
	assert.Contains(t, ids, "choice", "choice.json should become choice")
	assert.Contains(t, ids, "implicit", "implicit.md should become implicit")
	assert.Len(t, ids, 3)
}

func TestLoader_ListDocuments_DetectsCollisions(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)
	seed(t, tmpDir, map[string]string{
		"foo.md": `---
id: foo
---
Explicit ID`,
		"foo.json": `{
  "id": "foo",
  "screens": []
}`,
	})

	loader := New(loam.NewTypedRepository[PrototypeMetadata](repo))

	_, err := loader.ListDocuments()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
	assert.Contains(t, err.Error(), "foo")
}

func TestNormalize(t *testing.T) {
	in := []any{map[any]any{"id": "a", 1: []any{map[any]any{"x": 2}}}}
	out := normalize(in)
	assert.Equal(t, []any{map[string]any{"id": "a", "1": []any{map[string]any{"x": 2}}}}, out)
	assert.Equal(t, []any{}, normalize(nil))
}
