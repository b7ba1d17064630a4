package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	loamAdapter "github.com/aretw0/keyframe/pkg/adapters/loam"
	"github.com/aretw0/keyframe/pkg/document"
	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/aretw0/keyframe/pkg/dsl"
	"github.com/aretw0/loam"
)

// gen-demo writes a demo prototype library readable by "keyframe play <dir>".
func main() {
	targetDir := "examples/demo-library"
	if len(os.Args) > 1 {
		targetDir = os.Args[1]
	}

	fmt.Printf("Generating demo library in: %s\n", targetDir)
	if err := generate(context.Background(), targetDir, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println("Done. Verify contents in", targetDir)
}

// generate saves every demo prototype into a loam repository at targetDir.
func generate(ctx context.Context, targetDir string, w io.Writer) error {
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return err
	}

	// Init Loam (No Versioning = pure file generation)
	repo, err := loam.Init(targetDir, loam.WithVersioning(false))
	if err != nil {
		return fmt.Errorf("failed to initialize loam: %w", err)
	}
	typedRepo := loam.NewTypedRepository[loamAdapter.PrototypeMetadata](repo)

	for _, b := range []*dsl.Builder{carousel(), settings()} {
		proto, err := b.Build()
		if err != nil {
			return err
		}
		meta, err := metadata(proto)
		if err != nil {
			return err
		}

		// Markdown body holds reviewer notes; the prototype lives in the front matter.
		err = typedRepo.Save(ctx, &loam.DocumentModel[loamAdapter.PrototypeMetadata]{
			ID:      proto.Name,
			Content: fmt.Sprintf("# %s\n\nGenerated by gen-demo.\n", proto.Name),
			Data:    meta,
		})
		if err != nil {
			return fmt.Errorf("failed to save %s: %w", proto.Name, err)
		}
		fmt.Fprintf(w, "  wrote %s (%d screens, %d transitions)\n", proto.Name, len(proto.Screens), len(proto.Transitions))
	}
	return nil
}

// metadata converts a prototype to the front-matter shape through its canonical JSON.
func metadata(p *domain.Prototype) (loamAdapter.PrototypeMetadata, error) {
	var meta loamAdapter.PrototypeMetadata
	data, err := document.Encode(p)
	if err != nil {
		return meta, err
	}
	err = json.Unmarshal(data, &meta)
	meta.ID = p.Name
	return meta, err
}

func carousel() *dsl.Builder {
	b := dsl.New("carousel")
	b.Variable("slide", 1)
	for i, next := range []string{"slide-2", "slide-3", "slide-1"} {
		id := fmt.Sprintf("slide-%d", i+1)
		b.Screen(id).Element("card").At(16, 100).Size(343, 480).Radius(24)
		b.Transition(id, next).
			On(dsl.Drag(domain.DirectionLeft, 50)).
			Duration(350 * time.Millisecond).
			Ease("easeOut")
		b.Transition(id, next).After(4 * time.Second).Duration(600 * time.Millisecond).Ease("gentle")
	}
	return b
}

func settings() *dsl.Builder {
	b := dsl.New("settings")
	b.Variable("dark", false).Variable("volume", 5)

	b.Screen("main").
		Element("theme").At(16, 80).Size(343, 44).Text("Dark mode").
		On(domain.EventTap, dsl.Toggle("dark")).
		Element("louder").At(16, 140).Size(343, 44).Text("Volume +").
		On(domain.EventTap, dsl.IncrementBy("volume", 2)).
		Element("help").At(16, 200).Size(343, 44).Text("Help").
		On(domain.EventTap, dsl.OpenURL("https://example.com/help", true)).
		Element("reset").At(16, 260).Size(343, 44).Text("Reset").
		On(domain.EventLongPress, dsl.Reset())

	b.Screen("dark-preview").State("dark").
		Element("done").At(16, 16).Size(64, 32).Text("Done").
		On(domain.EventTap, dsl.Toggle("dark"), dsl.Back())
	b.Transition("main", "dark-preview").
		On(dsl.When("dark", domain.CompareEquals, true)).
		Duration(200 * time.Millisecond)
	return b
}
