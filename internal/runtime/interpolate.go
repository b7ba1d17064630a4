package runtime

import (
	"time"

	"github.com/aretw0/keyframe/pkg/curve"
	"github.com/aretw0/keyframe/pkg/domain"
)

// Frame samples what a host should render at the scheduler's current time.
func (e *Engine) Frame() domain.Frame {
	frame := domain.Frame{Screen: e.current, Phase: e.phase}
	f := e.inFlight
	if f == nil {
		frame.Progress = 1
		frame.Elements = e.staticElements(e.current)
		return frame
	}

	from, _ := e.proto.Screen(f.From)
	to, _ := e.proto.Screen(f.To)
	now := e.now()

	switch f.Kind {
	case domain.KindEdge:
		if !f.Swapped {
			frame.Elements = e.staticElements(e.current)
			return frame
		}
		raw := normalized(now, f.StartedAt.Add(f.Delay), f.Duration)
		frame.Progress = e.curve.Progress(raw)
		frame.Elements, frame.Entering, frame.Leaving = Interpolate(from, to, frame.Progress)
	case domain.KindLink:
		raw := normalized(now, f.StartedAt, f.Duration)
		frame.Progress = e.curve.Progress(raw)
		if f.Animation == domain.AnimationSmartAnimate {
			frame.Elements, frame.Entering, frame.Leaving = Interpolate(from, to, frame.Progress)
			return frame
		}
		frame.Elements = e.staticElements(e.current)
		frame.Layers = LinkLayers(f, e.curve, raw)
	}
	return frame
}

func normalized(now, start time.Time, d time.Duration) float64 {
	if d <= 0 {
		return 1
	}
	raw := float64(now.Sub(start)) / float64(d)
	switch {
	case raw < 0:
		return 0
	case raw > 1:
		return 1
	}
	return raw
}

func (e *Engine) staticElements(screenID string) []domain.ElementFrame {
	screen, ok := e.proto.Screen(screenID)
	if !ok {
		return nil
	}
	out := make([]domain.ElementFrame, len(screen.Elements))
	for i := range screen.Elements {
		out[i] = elementFrame(&screen.Elements[i])
	}
	return out
}

func elementFrame(el *domain.Element) domain.ElementFrame {
	return domain.ElementFrame{
		ID:           el.ID,
		X:            el.Geometry.X,
		Y:            el.Geometry.Y,
		Width:        el.Geometry.Width,
		Height:       el.Geometry.Height,
		Opacity:      el.Style.Opacity,
		CornerRadius: el.Style.CornerRadius,
		Rotation:     el.Style.Rotation,
		Scale:        el.Style.Scale,
	}
}

// Lerp blends a toward b. The endpoints are exact: p=0 yields a and p=1 yields b.
func Lerp(a, b, p float64) float64 {
	return a*(1-p) + b*p
}

// Interpolate pairs the elements of from and to by ID and blends every
// animatable property with eased progress p. Elements present on only one
// side are reported in entering (only in to) or leaving (only in from) and
// are not interpolated.
func Interpolate(from, to *domain.Screen, p float64) (elements []domain.ElementFrame, entering, leaving []string) {
	if from == nil || to == nil {
		return nil, nil, nil
	}
	for i := range to.Elements {
		b := &to.Elements[i]
		a, ok := from.Element(b.ID)
		if !ok {
			entering = append(entering, b.ID)
			continue
		}
		fa, fb := elementFrame(a), elementFrame(b)
		elements = append(elements, domain.ElementFrame{
			ID:           b.ID,
			X:            Lerp(fa.X, fb.X, p),
			Y:            Lerp(fa.Y, fb.Y, p),
			Width:        Lerp(fa.Width, fb.Width, p),
			Height:       Lerp(fa.Height, fb.Height, p),
			Opacity:      Lerp(fa.Opacity, fb.Opacity, p),
			CornerRadius: Lerp(fa.CornerRadius, fb.CornerRadius, p),
			Rotation:     Lerp(fa.Rotation, fb.Rotation, p),
			Scale:        Lerp(fa.Scale, fb.Scale, p),
		})
	}
	for i := range from.Elements {
		if _, ok := to.Element(from.Elements[i].ID); !ok {
			leaving = append(leaving, from.Elements[i].ID)
		}
	}
	return elements, entering, leaving
}

// LinkLayers computes the whole-screen layers of a link animation at raw
// (linear) progress, bottom layer first. Offsets are fractions of the viewport.
// Midpoint animations ease each half separately.
func LinkLayers(f *domain.InFlight, c curve.Curve, raw float64) []domain.Layer {
	out := domain.Layer{Screen: f.From, Opacity: 1}
	in := domain.Layer{Screen: f.To, Opacity: 1}
	p := c.Progress(raw)

	horizontal, sign := f.Direction.Axis()
	offset := func(l *domain.Layer, v float64) {
		if horizontal {
			l.OffsetX = v
		} else {
			l.OffsetY = v
		}
	}

	switch f.Animation {
	case domain.AnimationDissolve, domain.AnimationSmartAnimate:
		if raw < 0.5 {
			out.Opacity = clampUnit(1 - c.Progress(raw*2))
			in.Opacity = 0
		} else {
			out.Opacity = 0
			in.Opacity = clampUnit(c.Progress((raw - 0.5) * 2))
		}
		return []domain.Layer{out, in}
	case domain.AnimationPush:
		offset(&out, sign*p)
		offset(&in, sign*(p-1))
		return []domain.Layer{out, in}
	case domain.AnimationMoveIn:
		offset(&in, sign*(p-1))
		return []domain.Layer{out, in}
	case domain.AnimationSlideIn:
		offset(&in, sign*(p-1))
		in.Opacity = clampUnit(p)
		return []domain.Layer{out, in}
	case domain.AnimationMoveOut:
		offset(&out, sign*p)
		return []domain.Layer{in, out}
	case domain.AnimationSlideOut:
		offset(&out, sign*p)
		out.Opacity = clampUnit(1 - p)
		return []domain.Layer{in, out}
	}
	if raw < 1 {
		return []domain.Layer{out}
	}
	return []domain.Layer{in}
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
