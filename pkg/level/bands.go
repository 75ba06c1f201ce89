package level

import "math"

const (
	lowestFrequency  = 100.0
	highestFrequency = 4000.0
	probesPerBand    = 4
	floorDecibel     = -60.0
)

// Levels holds one value in [0, 1] per frequency band.
type Levels []float64

func (this Levels) Max() (result float64) {
	for _, v := range this {
		result = math.Max(result, v)
	}
	return result
}

// bandEdges splits the speech range logarithmically into n bands.
func bandEdges(n int) []float64 {
	result := make([]float64, n+1)
	ratio := math.Pow(highestFrequency/lowestFrequency, 1/float64(n))
	for i := range result {
		result[i] = lowestFrequency * math.Pow(ratio, float64(i))
	}
	return result
}

// computeLevels measures the energy of the given window inside each band.
// Every band is probed at a few frequencies with the Goertzel algorithm on
// the Hann-windowed samples; the mean magnitude is mapped from
// [floorDecibel, 0] dBFS onto [0, 1].
func computeLevels(samples []float32, sampleRate int, bands int) Levels {
	result := make(Levels, bands)
	n := len(samples)
	if n == 0 || sampleRate <= 0 || bands <= 0 {
		return result
	}

	windowed := make([]float64, n)
	var windowSum float64
	for i, s := range samples {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
		windowed[i] = float64(s) * w
		windowSum += w
	}
	if windowSum == 0 {
		return result
	}

	nyquist := float64(sampleRate) / 2
	edges := bandEdges(bands)
	for b := 0; b < bands; b++ {
		var sum float64
		var probes int
		for p := 0; p < probesPerBand; p++ {
			frequency := edges[b] * math.Pow(edges[b+1]/edges[b], (float64(p)+0.5)/probesPerBand)
			if frequency >= nyquist {
				continue
			}
			sum += goertzel(windowed, frequency, float64(sampleRate))
			probes++
		}
		if probes == 0 {
			continue
		}
		amplitude := 2 * (sum / float64(probes)) / windowSum
		result[b] = normalize(amplitude)
	}
	return result
}

func goertzel(samples []float64, frequency, sampleRate float64) float64 {
	coefficient := 2 * math.Cos(2*math.Pi*frequency/sampleRate)
	var s1, s2 float64
	for _, x := range samples {
		s0 := x + coefficient*s1 - s2
		s2 = s1
		s1 = s0
	}
	power := s1*s1 + s2*s2 - coefficient*s1*s2
	if power < 0 {
		return 0
	}
	return math.Sqrt(power)
}

func normalize(amplitude float64) float64 {
	if amplitude <= 0 {
		return 0
	}
	db := 20 * math.Log10(amplitude)
	return math.Min(1, math.Max(0, (db-floorDecibel)/-floorDecibel))
}

// pulse is the synthetic pattern shown while the assistant speaks.
func pulse(bands int, seconds float64) Levels {
	result := make(Levels, bands)
	for i := range result {
		phase := float64(i) * math.Pi / float64(bands)
		result[i] = 0.5 + 0.4*math.Sin(2*math.Pi*1.5*seconds+phase)
	}
	return result
}

// static is shown if the microphone cannot be used: a fixed arch, highest
// in the middle.
func static(bands int) Levels {
	result := make(Levels, bands)
	middle := float64(bands-1) / 2
	for i := range result {
		distance := math.Abs(float64(i) - middle)
		result[i] = 0.6 - 0.3*distance/math.Max(middle, 1)
	}
	return result
}
