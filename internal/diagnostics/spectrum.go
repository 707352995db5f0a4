package diagnostics

import (
	"math"

	"github.com/san-kum/fracsim/internal/fracdyn"
)

// PowerSpectrum returns the DFT magnitudes |X_k| for k = 0..N/2. The
// transform is the naive O(N^2) sum; it imposes no power-of-two
// restriction on N, which the analyzers cannot guarantee.
func PowerSpectrum(psi fracdyn.Field) []float64 {
	n := len(psi)
	if n == 0 {
		return nil
	}
	half := n/2 + 1
	spectrum := make([]float64, half)
	for k := 0; k < half; k++ {
		re, im := 0.0, 0.0
		for i, v := range psi {
			phase := -2 * math.Pi * float64(k) * float64(i) / float64(n)
			re += v * math.Cos(phase)
			im += v * math.Sin(phase)
		}
		spectrum[k] = math.Hypot(re, im)
	}
	return spectrum
}

// SpectralEntropy is the Shannon entropy of the normalized spectral
// power distribution. Flat (noisy) spectra score high, single-mode
// fields score near zero.
func SpectralEntropy(spectrum []float64) float64 {
	total := 0.0
	for _, m := range spectrum {
		total += m * m
	}
	if total == 0 {
		return 0
	}
	entropy := 0.0
	for _, m := range spectrum {
		p := m * m / total
		if p > 0 {
			entropy -= p * math.Log(p)
		}
	}
	return entropy
}

// TurbulenceIndex is the ratio of spectral energy above the quarter-
// Nyquist cut to the energy at or below it. Values near zero indicate
// a smooth field; energy piling into high modes drives it up.
func TurbulenceIndex(spectrum []float64) float64 {
	if len(spectrum) == 0 {
		return 0
	}
	cut := len(spectrum) / 2
	low, high := 0.0, 0.0
	for k, m := range spectrum {
		if k <= cut {
			low += m * m
		} else {
			high += m * m
		}
	}
	if low == 0 {
		if high == 0 {
			return 0
		}
		// finite sentinel so reports stay JSON-encodable
		return math.MaxFloat64
	}
	return high / low
}

// DominantMode returns the index of the strongest non-constant mode.
func DominantMode(spectrum []float64) int {
	best, bestMag := 0, 0.0
	for k := 1; k < len(spectrum); k++ {
		if spectrum[k] > bestMag {
			best, bestMag = k, spectrum[k]
		}
	}
	return best
}
