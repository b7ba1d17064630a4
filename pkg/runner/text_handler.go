package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/muesli/termenv"
)

// TextHandler implements the line-based command interface.
type TextHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Prompt  bool
	profile termenv.Profile

	inputChan chan lineResult
	startOnce sync.Once
}

type lineResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithPrompt prints "> " before every read.
func WithPrompt(prompt bool) TextHandlerOption {
	return func(h *TextHandler) {
		h.Prompt = prompt
	}
}

// WithColorProfile colors the output. The default profile is plain ASCII.
func WithColorProfile(p termenv.Profile) TextHandlerOption {
	return func(h *TextHandler) {
		h.profile = p
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		profile: termenv.Ascii,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan lineResult)
		go h.pump()
	})
}

func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- lineResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				h.inputChan <- lineResult{err: err}
			}
			close(h.inputChan)
			return
		}
	}
}

// Input reads the next non-empty, non-comment line and parses it.
func (h *TextHandler) Input(ctx context.Context) (Command, error) {
	h.initPump()

	for {
		if h.Prompt {
			fmt.Fprint(h.Writer, "> ")
		}

		select {
		case <-ctx.Done():
			return Command{}, ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return Command{}, io.EOF
			}
			if res.err != nil {
				return Command{}, res.err
			}
			text := strings.TrimSpace(res.text)
			if text == "" || strings.HasPrefix(text, "#") {
				continue
			}
			clean, err := SanitizeInput(text)
			if err != nil {
				return Command{}, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
			}
			return ParseCommand(clean)
		}
	}
}

// Notify prints one host callback.
func (h *TextHandler) Notify(ctx context.Context, n Notice) error {
	var line string
	switch e := n.Data.(type) {
	case *domain.NavigateEvent:
		arrow := "→"
		if e.Back {
			arrow = "←"
		}
		line = h.paint(fmt.Sprintf("%s %s", arrow, e.To), "#818cf8")
	case *domain.VariableEvent:
		line = h.paint(fmt.Sprintf("%s = %s (was %s)", e.VariableID, e.Value, e.Previous), "#a78bfa")
	case *domain.StateChangeEvent:
		line = h.paint(fmt.Sprintf("state %s on %s", e.StateID, e.ElementID), "#c084fc")
	case *domain.OpenURLEvent:
		target := "same tab"
		if e.NewTab {
			target = "new tab"
		}
		line = h.paint(fmt.Sprintf("open %s (%s)", e.URL, target), "#e879f9")
	case *domain.GestureEvent:
		at := ""
		if e.ElementID != "" {
			at = " on " + e.ElementID
		}
		line = h.faint(fmt.Sprintf("· %s%s", e.Gesture, at))
	case *domain.TransitionEvent:
		if n.Kind == NoticeRejected {
			line = h.paint(fmt.Sprintf("busy (%s), dropped %s → %s", e.Phase, e.From, e.To), "#fb7185")
			break
		}
		name := e.ID
		if name == "" {
			name = string(e.Kind)
		}
		line = h.faint(fmt.Sprintf("%s %s → %s over %s", name, e.From, e.To, e.Duration))
	default:
		line = fmt.Sprintf("%s %v", n.Kind, n.Data)
	}
	_, err := fmt.Fprintln(h.Writer, line)
	return err
}

// Respond prints the result of a command followed by a status line.
func (h *TextHandler) Respond(ctx context.Context, cmd Command, resp Response) error {
	var b strings.Builder

	if out := resp.Outcome; out != nil {
		switch {
		case out.Rejected:
			b.WriteString("rejected, a transition is running\n")
		case out.Started && out.TransitionID != "":
			fmt.Fprintf(&b, "started %s\n", out.TransitionID)
		case !out.Consumed && !out.Started && cmd.Kind == CommandEvent:
			b.WriteString(h.faint("no match") + "\n")
		}
		for _, e := range out.Errors {
			fmt.Fprintf(&b, "error: %s\n", e)
		}
	}
	if resp.Accepted != nil && !*resp.Accepted {
		b.WriteString("ignored\n")
	}
	if resp.Variables != nil {
		ids := make([]string, 0, len(resp.Variables))
		for id := range resp.Variables {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			fmt.Fprintf(&b, "  %s = %s\n", id, resp.Variables[id])
		}
	}
	if f := resp.Frame; f != nil {
		fmt.Fprintf(&b, "frame %s %s %.3f\n", f.Screen, f.Phase, f.Progress)
		for _, el := range f.Elements {
			fmt.Fprintf(&b, "  %-12s x=%.1f y=%.1f w=%.1f h=%.1f opacity=%.2f\n", el.ID, el.X, el.Y, el.Width, el.Height, el.Opacity)
		}
		for _, l := range f.Layers {
			fmt.Fprintf(&b, "  layer %-6s offset=(%.2f, %.2f) opacity=%.2f\n", l.Screen, l.OffsetX, l.OffsetY, l.Opacity)
		}
	}
	if s := resp.Snapshot; s != nil {
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		b.Write(data)
		b.WriteByte('\n')
	}
	if cmd.Kind == CommandWait {
		fmt.Fprintf(&b, "%s\n", h.faint("waited "+cmd.Wait.Round(time.Millisecond).String()))
	}

	b.WriteString(h.paint(fmt.Sprintf("[%s · %s]", resp.Screen, resp.Phase), "#f472b6"))
	_, err := fmt.Fprintln(h.Writer, b.String())
	return err
}

// SystemOutput prints a meta-message.
func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "[System] %s\n", msg)
	return err
}

func (h *TextHandler) paint(s, hex string) string {
	return h.profile.String(s).Foreground(h.profile.Color(hex)).String()
}

func (h *TextHandler) faint(s string) string {
	return h.profile.String(s).Faint().String()
}
