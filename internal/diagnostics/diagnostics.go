// Package diagnostics provides pure scalar summaries of field
// snapshots: amplitude, norms, energy, entropy, and DFT-based spectral
// measures. All functions are O(N) except the spectrum, which is a
// naive O(N^2) DFT acceptable at the target grid sizes (<=512).
//
// Every integral quantity uses the dx-weighted convention.
package diagnostics

import (
	"math"

	"github.com/san-kum/fracsim/internal/fracdyn"
)

// Summary bundles the standard scalar diagnostics of one snapshot.
type Summary struct {
	MaxAmplitude    float64 `json:"max_amplitude"`
	L2Norm          float64 `json:"l2_norm"`
	Energy          float64 `json:"energy"`
	Entropy         float64 `json:"entropy"`
	Enstrophy       float64 `json:"enstrophy"`
	SpectralEntropy float64 `json:"spectral_entropy"`
	TurbulenceIndex float64 `json:"turbulence_index"`
}

func Summarize(psi fracdyn.Field, dx float64) Summary {
	spectrum := PowerSpectrum(psi)
	return Summary{
		MaxAmplitude:    psi.MaxAbs(),
		L2Norm:          psi.L2(dx),
		Energy:          Energy(psi, dx),
		Entropy:         ShannonEntropy(psi),
		Enstrophy:       Enstrophy(psi, dx),
		SpectralEntropy: SpectralEntropy(spectrum),
		TurbulenceIndex: TurbulenceIndex(spectrum),
	}
}

// Energy is the discrete functional dx * sum(0.5*grad^2 + 0.25*psi^4)
// with a periodic central-difference gradient.
func Energy(psi fracdyn.Field, dx float64) float64 {
	n := len(psi)
	if n < 2 {
		return 0
	}
	total := 0.0
	for i := 0; i < n; i++ {
		next := psi[(i+1)%n]
		prev := psi[(i-1+n)%n]
		grad := (next - prev) / (2 * dx)
		v := psi[i]
		total += 0.5*grad*grad + 0.25*v*v*v*v
	}
	return total * dx
}

// ShannonEntropy is -sum p*ln(p) over the normalized squared-amplitude
// distribution p_i = psi_i^2 / sum psi^2, with 0*ln(0) = 0. A zero
// field has zero entropy.
func ShannonEntropy(psi fracdyn.Field) float64 {
	total := 0.0
	for _, v := range psi {
		total += v * v
	}
	if total == 0 {
		return 0
	}

	entropy := 0.0
	for _, v := range psi {
		p := v * v / total
		if p > 0 {
			entropy -= p * math.Log(p)
		}
	}
	return entropy
}

// Enstrophy is the dx-weighted sum of squared amplitudes.
func Enstrophy(psi fracdyn.Field, dx float64) float64 {
	sum := 0.0
	for _, v := range psi {
		sum += v * v
	}
	return dx * sum
}
