// World generation. The uniform generator is the reproducible default; the
// noise generator produces contiguous regions from layered simplex noise.
package world

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/civsim/internal/entropy"
)

// GenMode selects the terrain generator.
type GenMode string

const (
	GenUniform GenMode = "uniform"
	GenNoise   GenMode = "noise"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Size int     // Side length of the square grid
	Mode GenMode // Generator to use
	Seed int64   // Noise seed (noise mode only)

	MountainLvl float64 // Elevation above which cells become mountain (noise mode)
	HillLvl     float64 // Elevation above which cells become hill (noise mode)
	ForestRain  float64 // Rainfall above which lowland becomes forest (noise mode)
}

// DefaultGenConfig returns the standard 10×10 uniform configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Size:        DefaultSize,
		Mode:        GenUniform,
		MountainLvl: 0.68,
		HillLvl:     0.55,
		ForestRain:  0.52,
	}
}

// Generate fills every cell independently and uniformly from the four terrain
// kinds. It consumes exactly size*size draws, in row-major order.
func Generate(size int, rng entropy.Source) *Grid {
	g := &Grid{size: size, cells: make([]TerrainKind, size*size)}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			g.cells[y*size+x] = TerrainKinds[rng.Intn(len(TerrainKinds))]
		}
	}
	return g
}

// GenerateFromConfig dispatches to the configured generator. The uniform path
// draws from rng; the noise path is seeded from cfg.Seed and leaves rng
// untouched.
func GenerateFromConfig(cfg GenConfig, rng entropy.Source) *Grid {
	if cfg.Mode == GenNoise {
		return GenerateNoise(cfg)
	}
	return Generate(cfg.Size, rng)
}

// GenerateNoise derives terrain from elevation and rainfall noise layers.
func GenerateNoise(cfg GenConfig) *Grid {
	elevNoise := opensimplex.NewNormalized(cfg.Seed)
	rainNoise := opensimplex.NewNormalized(cfg.Seed + 1)

	g := &Grid{size: cfg.Size, cells: make([]TerrainKind, cfg.Size*cfg.Size)}
	for y := 0; y < cfg.Size; y++ {
		for x := 0; x < cfg.Size; x++ {
			fx, fy := float64(x), float64(y)
			elev := octaveNoise(elevNoise, fx, fy, 3, 0.15, 0.5)
			rain := octaveNoise(rainNoise, fx, fy, 2, 0.12, 0.5)
			g.cells[y*cfg.Size+x] = deriveTerrain(elev, rain, cfg)
		}
	}
	return g
}

func deriveTerrain(elev, rain float64, cfg GenConfig) TerrainKind {
	if elev > cfg.MountainLvl {
		return TerrainMountain
	}
	if elev > cfg.HillLvl {
		return TerrainHill
	}
	if rain > cfg.ForestRain {
		return TerrainForest
	}
	return TerrainPlain
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
