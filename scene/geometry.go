package scene

import (
	"github.com/chewxy/math32"
)

// SphereGeometry builds a UV sphere with (width+1)*(height+1) vertices.
func SphereGeometry(radius float32, width, height int) ([]float32, []uint32) {
	if width < 3 {
		width = 3
	}
	if height < 2 {
		height = 2
	}
	positions := make([]float32, 0, 3*(width+1)*(height+1))
	for y := 0; y <= height; y++ {
		v := float32(y) / float32(height)
		theta := v * math32.Pi
		for x := 0; x <= width; x++ {
			u := float32(x) / float32(width)
			phi := u * 2 * math32.Pi
			positions = append(positions,
				-radius*math32.Cos(phi)*math32.Sin(theta),
				radius*math32.Cos(theta),
				radius*math32.Sin(phi)*math32.Sin(theta),
			)
		}
	}

	indices := make([]uint32, 0, 6*width*height)
	row := uint32(width + 1)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			a := uint32(y)*row + uint32(x) + 1
			b := uint32(y)*row + uint32(x)
			c := uint32(y+1)*row + uint32(x)
			d := uint32(y+1)*row + uint32(x) + 1
			if y != 0 {
				indices = append(indices, a, b, d)
			}
			if y != height-1 {
				indices = append(indices, b, c, d)
			}
		}
	}
	return positions, indices
}
