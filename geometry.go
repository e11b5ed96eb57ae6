package garden

import "math/rand/v2"

// MaxGridDivisions caps the cells per side of a Grid.
const MaxGridDivisions = 512

// RandomCube returns n points uniformly distributed in a cube of edge size
// centred on the origin. rng may be nil for the global source.
func RandomCube(n int, size float32, rng *rand.Rand) []Vec3 {
	if n <= 0 {
		return nil
	}
	next := rand.Float32
	if rng != nil {
		next = rng.Float32
	}
	pts := make([]Vec3, n)
	for i := range pts {
		pts[i] = Vec3{
			X: (next() - 0.5) * size,
			Y: (next() - 0.5) * size,
			Z: (next() - 0.5) * size,
		}
	}
	return pts
}

// Grid returns the segments of a size x size grid in the XZ plane, centred on
// the origin, with divisions cells per side. Divisions are clamped to
// [1, MaxGridDivisions].
func Grid(size float32, divisions int) []Vec3 {
	if divisions < 1 {
		divisions = 1
	}
	if divisions > MaxGridDivisions {
		divisions = MaxGridDivisions
	}
	half := size / 2
	step := size / float32(divisions)

	segs := make([]Vec3, 0, (divisions+1)*4)
	for i := 0; i <= divisions; i++ {
		k := -half + float32(i)*step
		segs = append(segs,
			Vec3{X: -half, Z: k}, Vec3{X: half, Z: k},
			Vec3{X: k, Z: -half}, Vec3{X: k, Z: half},
		)
	}
	return segs
}

// NewGrid creates a lines node holding Grid(size, divisions).
func NewGrid(name string, size float32, divisions int, c Color) *Node {
	return NewLines(name, Grid(size, divisions), c)
}
