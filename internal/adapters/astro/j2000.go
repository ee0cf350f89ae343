// Package astro provides the equatorial/galactic rotation used by the sky
// frames.
package astro

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/jobrunner/sphaera/internal/ports/output"
)

// eqToGal is the IAU J2000 rotation from equatorial to galactic unit vectors
// (Hipparcos, ESA SP-1200 vol. 1, section 1.5.3).
var eqToGal = []float64{
	-0.0548755604162154, -0.8734370902348850, -0.4838350155487132,
	+0.4941094278755837, -0.4448296299600112, +0.7469822444972189,
	-0.8676661490190047, -0.1980763734312015, +0.4559837761750669,
}

// J2000 rotates positions between the J2000 equatorial and galactic frames.
// It is immutable and safe for concurrent use.
type J2000 struct {
	toGal *mat.Dense
	toEq  *mat.Dense
}

// NewJ2000 creates the rotation.
func NewJ2000() *J2000 {
	toGal := mat.NewDense(3, 3, eqToGal)
	toEq := mat.DenseCopyOf(toGal.T())
	return &J2000{toGal: toGal, toEq: toEq}
}

// Transform rotates [lon, lat] degrees. The resulting longitude is in
// (-180, 180].
func (j *J2000) Transform(geo []float64, kind output.TransformKind) []float64 {
	m := j.toEq
	if kind == output.EQ2GAL {
		m = j.toGal
	}

	lon := geo[0] * math.Pi / 180
	lat := geo[1] * math.Pi / 180
	sLon, cLon := math.Sincos(lon)
	sLat, cLat := math.Sincos(lat)

	in := mat.NewVecDense(3, []float64{cLat * cLon, cLat * sLon, sLat})
	var out mat.VecDense
	out.MulVec(m, in)

	x, y, z := out.AtVec(0), out.AtVec(1), out.AtVec(2)
	z = math.Max(-1, math.Min(1, z))

	return []float64{
		math.Atan2(y, x) * 180 / math.Pi,
		math.Asin(z) * 180 / math.Pi,
	}
}

// Matrix returns a copy of the rotation for kind.
func (j *J2000) Matrix(kind output.TransformKind) *mat.Dense {
	if kind == output.EQ2GAL {
		return mat.DenseCopyOf(j.toGal)
	}
	return mat.DenseCopyOf(j.toEq)
}
