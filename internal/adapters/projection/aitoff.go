package projection

import (
	"math"

	"github.com/jobrunner/sphaera/internal/domain"
)

const (
	aitoffEpsilon    = 0.005
	aitoffIterations = 25
)

// Aitoff is the Aitoff projection. Its inverse has no closed form and is
// solved by Newton-Raphson iteration.
type Aitoff struct{}

// NewAitoff creates an Aitoff projection.
func NewAitoff() *Aitoff {
	return &Aitoff{}
}

// Name returns the projection name.
func (a *Aitoff) Name() string {
	return NameAitoff
}

// GeoBound returns the whole sphere.
func (a *Aitoff) GeoBound() domain.GeoBound {
	return domain.GeoBound{West: -180, South: -90, East: 180, North: 90}
}

// Project maps geo into the 2π by π ellipse.
func (a *Aitoff) Project(geo []float64, dest []float64) []float64 {
	if len(geo) < 2 {
		return zero(dest)
	}
	halfLambda := geo[0] * degToRad / 2
	phi := geo[1] * degToRad
	h := heightOf(geo)

	cosPhi := math.Cos(phi)
	s := sinci(math.Acos(cosPhi * math.Cos(halfLambda)))

	dest = vec3(dest)
	dest[0] = 2 * cosPhi * math.Sin(halfLambda) * s
	dest[1] = math.Sin(phi) * s
	dest[2] = h
	return dest
}

// UnProject inverts Project. Points outside the ellipse with semi-axes π and
// π/2 fail.
func (a *Aitoff) UnProject(xyz []float64, dest []float64) ([]float64, bool) {
	if len(xyz) < 3 {
		return nil, false
	}
	x, y := xyz[0], xyz[1]
	if x*x+4*y*y > math.Pi*math.Pi+aitoffEpsilon {
		return nil, false
	}

	lambda, phi := x, y
	for i := 0; i < aitoffIterations; i++ {
		sinLambda := math.Sin(lambda)
		sinHalf, cosHalf := math.Sincos(lambda / 2)
		sinPhi, cosPhi := math.Sincos(phi)
		sin2Phi := math.Sin(2 * phi)
		sinPhiSq := sinPhi * sinPhi
		cosPhiSq := cosPhi * cosPhi
		sinHalfSq := sinHalf * sinHalf

		var e, f float64
		if c := 1 - cosPhiSq*cosHalf*cosHalf; c != 0 {
			f = 1 / c
			e = math.Acos(cosPhi*cosHalf) * math.Sqrt(f)
		}

		fx := 2*e*cosPhi*sinHalf - x
		fy := e*sinPhi - y
		dxLambda := f * (cosPhiSq*sinHalfSq + e*cosPhi*cosHalf*sinPhiSq)
		dxPhi := f * (0.5*sinLambda*sin2Phi - e*2*sinPhi*sinHalf)
		dyLambda := f * 0.25 * (sin2Phi*sinHalf - e*sinPhi*cosPhiSq*sinLambda)
		dyPhi := f * (sinPhiSq*cosHalf + e*sinHalfSq*cosPhi)

		den := dxPhi*dyLambda - dyPhi*dxLambda
		if den == 0 {
			break
		}
		dLambda := (fy*dxPhi - fx*dyPhi) / den
		dPhi := (fx*dyLambda - fy*dxLambda) / den
		lambda -= dLambda
		phi -= dPhi
		if math.Abs(dLambda) <= aitoffEpsilon && math.Abs(dPhi) <= aitoffEpsilon {
			break
		}
	}

	z := xyz[2]
	dest = vec3(dest)
	dest[0] = lambda * radToDeg
	dest[1] = phi * radToDeg
	dest[2] = z
	return dest, true
}

// sinci is x / sin(x), continuous at zero.
func sinci(x float64) float64 {
	if x == 0 {
		return 1
	}
	return x / math.Sin(x)
}
