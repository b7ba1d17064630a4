package memory_test

import (
	"testing"

	"github.com/aretw0/keyframe/pkg/adapters/memory"
	"github.com/aretw0/keyframe/pkg/document"
	"github.com/aretw0/keyframe/pkg/domain"
	contract "github.com/aretw0/keyframe/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLoader_Contract(t *testing.T) {
	data := map[string]string{
		"onboarding": `{"screens": [{"id": "welcome"}]}`,
		"checkout":   "screens:\n  - id: cart\n",
	}

	// The contract compares raw bytes.
	bytesData := make(map[string][]byte)
	for k, v := range data {
		bytesData[k] = []byte(v)
	}

	loader := memory.NewLoader(data)

	contract.DocumentLoaderContractTest(t, loader, bytesData)
}

func TestNewFromPrototypes(t *testing.T) {
	proto := &domain.Prototype{
		Name:    "demo",
		Screens: []domain.Screen{{ID: "a"}, {ID: "b"}},
	}
	loader, err := memory.NewFromPrototypes(proto)
	require.NoError(t, err)

	ids, err := loader.ListDocuments()
	require.NoError(t, err)
	assert.Equal(t, []string{"demo"}, ids)

	raw, err := loader.GetDocument("demo")
	require.NoError(t, err)
	decoded, err := document.Parse(raw, document.FormatAuto)
	require.NoError(t, err)
	assert.Len(t, decoded.Screens, 2)

	_, err = memory.NewFromPrototypes(&domain.Prototype{})
	assert.Error(t, err)
}
