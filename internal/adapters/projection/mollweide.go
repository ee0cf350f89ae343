package projection

import (
	"math"

	"github.com/jobrunner/sphaera/internal/domain"
)

// Newton iterations stop when the auxiliary angle moves less than this.
const mollweideEpsilon = 1e-9

// Mollweide is the equal-area pseudocylindrical projection.
type Mollweide struct{}

// NewMollweide creates a Mollweide projection.
func NewMollweide() *Mollweide {
	return &Mollweide{}
}

// Name returns the projection name.
func (m *Mollweide) Name() string {
	return NameMollweide
}

// GeoBound returns the whole sphere.
func (m *Mollweide) GeoBound() domain.GeoBound {
	return domain.GeoBound{West: -180, South: -90, East: 180, North: 90}
}

// Project maps geo onto the 2√2 by √2 ellipse.
func (m *Mollweide) Project(geo []float64, dest []float64) []float64 {
	if len(geo) < 2 {
		return zero(dest)
	}
	lambda := geo[0] * degToRad
	theta := auxTheta(geo[1] * degToRad)
	h := heightOf(geo)

	dest = vec3(dest)
	dest[0] = 2 * math.Sqrt2 / math.Pi * lambda * math.Cos(theta)
	dest[1] = math.Sqrt2 * math.Sin(theta)
	dest[2] = h
	return dest
}

// UnProject inverts Project; points outside the ellipse fail.
func (m *Mollweide) UnProject(xyz []float64, dest []float64) ([]float64, bool) {
	if len(xyz) < 3 {
		return nil, false
	}
	s := xyz[1] / math.Sqrt2
	if math.Abs(s) > 1 {
		return nil, false
	}
	theta := math.Asin(s)
	cosTheta := math.Cos(theta)

	lambda := 0.0
	if cosTheta > 0 {
		lambda = math.Pi * xyz[0] / (2 * math.Sqrt2 * cosTheta)
	}
	if math.Abs(lambda) > math.Pi+1e-9 {
		return nil, false
	}
	phi := math.Asin(math.Max(-1, math.Min(1, (2*theta+math.Sin(2*theta))/math.Pi)))

	z := xyz[2]
	dest = vec3(dest)
	dest[0] = lambda * radToDeg
	dest[1] = phi * radToDeg
	dest[2] = z
	return dest, true
}

// auxTheta solves 2θ + sin 2θ = π sin φ by Newton's method.
func auxTheta(phi float64) float64 {
	if math.Abs(phi) >= math.Pi/2 {
		return phi
	}
	target := math.Pi * math.Sin(phi)
	theta2 := phi * 2
	for i := 0; i < 50; i++ {
		delta := (theta2 + math.Sin(theta2) - target) / (1 + math.Cos(theta2))
		theta2 -= delta
		if math.Abs(delta) < mollweideEpsilon {
			break
		}
	}
	return theta2 / 2
}
