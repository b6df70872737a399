package state

import (
	"math"

	"ppsim/internal/core"
	"ppsim/internal/distribution"
)

// Controls lists the HUD-adjustable fields of a Stative. Angles are in degrees.
func Controls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "num", Label: "Particles", Type: core.ParamTypeInt, Step: 100, Min: 1, HasMin: true, Max: MaxPopulation, HasMax: true},
		{Key: "width", Label: "Width", Type: core.ParamTypeInt, Step: 50, Min: 50, HasMin: true, Max: 1 << 14, HasMax: true},
		{Key: "height", Label: "Height", Type: core.ParamTypeInt, Step: 50, Min: 50, HasMin: true, Max: 1 << 14, HasMax: true},
		{Key: "distribution", Label: "Distribution", Type: core.ParamTypeEnum, Step: 1},
		{Key: "alpha", Label: "Alpha (deg)", Type: core.ParamTypeFloat, Step: 1, Min: -180, HasMin: true, Max: 180, HasMax: true},
		{Key: "beta", Label: "Beta (deg)", Type: core.ParamTypeFloat, Step: 1, Min: -180, HasMin: true, Max: 180, HasMax: true},
		{Key: "scope", Label: "Scope", Type: core.ParamTypeFloat, Step: 1, Min: 0, HasMin: true, Max: 500, HasMax: true},
		{Key: "speed", Label: "Speed", Type: core.ParamTypeFloat, Step: 0.1, Min: 0, HasMin: true, Max: 100, HasMax: true},
		{Key: "radius", Label: "Particle radius", Type: core.ParamTypeFloat, Step: 0.5, Min: 0, HasMin: true, Max: 20, HasMax: true},
		{Key: "coloring", Label: "Coloring", Type: core.ParamTypeEnum, Step: 1},
	}
}

// Parameters groups the fields of s for display.
func (s Stative) Parameters() core.ParameterSnapshot {
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{
			Name: "World",
			Params: []core.Parameter{
				core.IntParam("num", "Particles", s.Num),
				core.IntParam("width", "Width", s.Width),
				core.IntParam("height", "Height", s.Height),
				core.EnumParam("distribution", "Distribution", s.Distribution.String()),
			},
		},
		{
			Name: "Motion",
			Params: []core.Parameter{
				core.FloatParam("alpha", "Alpha (deg)", round(RadToDeg(s.Alpha), 2)),
				core.FloatParam("beta", "Beta (deg)", round(RadToDeg(s.Beta), 2)),
				core.FloatParam("scope", "Scope", s.Scope),
				core.FloatParam("speed", "Speed", round(s.Speed, 2)),
			},
		},
		{
			Name: "Display",
			Params: []core.Parameter{
				core.FloatParam("radius", "Particle radius", s.Radius),
				core.EnumParam("coloring", "Coloring", s.Coloring.String()),
			},
		},
	}}
}

// Adjust moves the field named key by steps control increments and returns the
// new proposal. It reports false for an unknown key.
func (s Stative) Adjust(key string, steps int) (Stative, bool) {
	var ctrl core.ParameterControl
	found := false
	for _, c := range Controls() {
		if c.Key == key {
			ctrl, found = c, true
			break
		}
	}
	if !found {
		return s, false
	}
	delta := ctrl.Step * float64(steps)
	switch key {
	case "num":
		s.Num = int(ctrl.Clamp(float64(s.Num) + delta))
	case "width":
		s.Width = int(ctrl.Clamp(float64(s.Width) + delta))
	case "height":
		s.Height = int(ctrl.Clamp(float64(s.Height) + delta))
	case "distribution":
		kinds := distribution.Kinds()
		s.Distribution = kinds[cycle(int(s.Distribution), steps, len(kinds))]
	case "alpha":
		s.Alpha = DegToRad(ctrl.Clamp(round(RadToDeg(s.Alpha), 6) + delta))
	case "beta":
		s.Beta = DegToRad(ctrl.Clamp(round(RadToDeg(s.Beta), 6) + delta))
	case "scope":
		s.Scope = ctrl.Clamp(s.Scope + delta)
	case "speed":
		s.Speed = round(ctrl.Clamp(s.Speed+delta), 6)
	case "radius":
		s.Radius = ctrl.Clamp(s.Radius + delta)
	case "coloring":
		schemes := Colorings()
		s.Coloring = schemes[cycle(int(s.Coloring), steps, len(schemes))]
	}
	return s, true
}

func cycle(v, steps, n int) int {
	return ((v+steps)%n + n) % n
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
