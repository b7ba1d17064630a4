package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/keyframe/pkg/adapters/file"
	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const menuDoc = `name: menu
initialScreen: closed
screens:
  - id: closed
    elements:
      - id: toggle
        width: 40
        height: 40
        prototypeLink:
          target: open
          transition: { type: dissolve, duration: 200 }
  - id: open
transitions:
  - from: open
    to: closed
    duration: 150
    easing: easeIn
    triggers:
      - { type: timer, delay: 3000 }
`

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "menu.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCLI_Version(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "keyframe version ")
}

func TestCLI_ValidateGraphExport(t *testing.T) {
	doc := writeDoc(t, menuDoc)

	out, err := run(t, "validate", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "menu: valid ✅")

	out, err = run(t, "graph", "--dir", doc)
	require.NoError(t, err)
	assert.Contains(t, out, `closed(("closed"))`)
	assert.Contains(t, out, `closed -. "toggle tap · dissolve" .-> open`)
	assert.Contains(t, out, `open -- "⏱️ 3000ms · 150ms" --> closed`)

	out, err = run(t, "export", doc, "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "initialScreen: closed")

	out, err = run(t, "inspect", doc, "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, "| open | - | 0 | 0 |")
}

func TestCLI_ValidateFails(t *testing.T) {
	doc := writeDoc(t, "screens:\n  - id: a\ntransitions:\n  - { from: a, to: ghost }\n")

	out, err := run(t, "validate", doc)
	assert.ErrorContains(t, err, "1 of 1 documents have errors")
	assert.Contains(t, out, `target screen "ghost" not found`)
}

func TestCLI_Curve(t *testing.T) {
	out, err := run(t, "curve", "linear", "--samples", "4")
	require.NoError(t, err)
	assert.Contains(t, out, " 0.50   0.500")
	assert.Contains(t, out, "overshoot 0.0%")

	out, err = run(t, "curve", "--spring", "1,300,10", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"overshoot"`)

	_, err = run(t, "curve", "wobble")
	assert.ErrorContains(t, err, "unknown curve")

	_, err = run(t, "curve", "--bezier", "1,2")
	assert.ErrorContains(t, err, "expected 4")
}

func TestCLI_Sessions(t *testing.T) {
	dir := t.TempDir()
	storeDir := filepath.Join(dir, "sessions")
	configPath := filepath.Join(dir, "keyframe.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("store:\n  backend: file\n  path: "+storeDir+"\n"), 0644))

	store := file.NewStore(storeDir)
	snap := &domain.Snapshot{CurrentScreen: "open", History: []string{"closed"}, Now: time.Unix(0, 0).UTC()}
	require.NoError(t, store.Save(context.Background(), "demo", snap))

	out, err := run(t, "session", "ls", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "- demo")

	out, err = run(t, "session", "inspect", "demo", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, `"currentScreen": "open"`)

	doc := writeDoc(t, menuDoc)
	out, err = run(t, "graph", doc, "--session", "demo", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "class closed visited;")
	assert.Contains(t, out, "class open current;")

	out, err = run(t, "session", "rm", "--all", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed session 'demo'")

	out, err = run(t, "session", "ls", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No stored sessions found.")
}
