package dataset

import (
	"fmt"
	"math"
	"math/rand"

	"osis/internal/channel"
	"osis/internal/physics"
)

// Measurement effect model. These shape the gap between the stored
// baseline and the simulated measurement; the residual learner has to
// recover them from data.
const (
	crosstalkAlpha     = 0.002
	isiPenaltyKnee     = 0.8
	isiPenaltyScale    = 5.0
	humidityKnee       = 40.0
	humidityScale      = 0.05
	layerPenaltyScale  = 2.0
	layerPenaltyPower  = 1.5
	prmlGainDB         = 2.5
	ctcGainDB          = 1.5
	baselineNoiseDB    = 0.2
	measurementNoiseDB = 0.5
	floorSNRDB         = 1.0
)

// Row is one dataset record: the sampled channel parameters plus the
// stored baseline, the simulated measurement, and the thermal factor.
type Row struct {
	channel.Record
	PhysicsSNRDB  float64
	MeasuredSNRDB float64
	ThermalFactor float64
}

// Generate samples n rows from the profile using the supplied RNG. The
// caller owns the RNG; the same seed always reproduces the same rows.
func Generate(p Profile, n int, rng *rand.Rand) ([]Row, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, fmt.Errorf("generate: sample count %d below 1", n)
	}
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = sample(p, rng)
	}
	return rows, nil
}

func sample(p Profile, rng *rand.Rand) Row {
	wl := p.Wavelengths[rng.Intn(len(p.Wavelengths))]
	na := uniform(rng, wl.NA)
	pitch := wl.BasePitchNm * uniform(rng, p.PitchJitter)
	spot := physics.SpotSizeNm(float64(wl.WavelengthNm), na)
	isi := spot / pitch

	layers := pickLayers(rng, p.Layers)
	spacing := p.SingleLayerSpacingNm
	if layers > 1 {
		spacing = uniform(rng, p.LayerSpacingNm)
	}

	mat := pickMaterial(rng, p.Materials)

	rec := channel.Record{
		LaserWavelengthNm:      wl.WavelengthNm,
		NumericalAperture:      na,
		SpotSizeNm:             spot,
		TrackPitchNm:           pitch,
		LayerCount:             layers,
		LayerSpacingNm:         spacing,
		ISIFactor:              isi,
		CrosstalkFactor:        crosstalk(pitch, spot),
		RecordingMaterial:      mat.Name,
		ThermalConductivityWMK: uniform(rng, mat.Conductivity),
		ActivationEnergyEV:     uniform(rng, mat.Activation),
		TemperatureC:           uniform(rng, p.TemperatureC),
		RelativeHumidity:       uniform(rng, p.RelativeHumidity),
		PRMLEnabled:            bernoulli(rng, p.PRMLRate),
		CTCEnabled:             bernoulli(rng, p.CTCRate),
	}

	tf, snr := physics.Baseline(rec)
	// The stored baseline carries generation noise. Training consumes the
	// stored column as-is; inference recomputes the clean value.
	storedPhysics := snr + rng.NormFloat64()*baselineNoiseDB

	measured := storedPhysics + measuredOffset(rec, rng)
	if measured < floorSNRDB {
		measured = floorSNRDB
	}

	return Row{
		Record:        rec,
		PhysicsSNRDB:  storedPhysics,
		MeasuredSNRDB: measured,
		ThermalFactor: tf,
	}
}

// crosstalk models inter-track coupling as exp(-alpha*(pitch - spot)).
// When the spot overflows the pitch the exponent flips sign and the
// factor exceeds 1, which is what tight blue-laser geometry produces.
func crosstalk(pitchNm, spotNm float64) float64 {
	return math.Exp(-crosstalkAlpha * (pitchNm - spotNm))
}

// measuredOffset is the gap between the stored baseline and the simulated
// measurement: nonlinear density, humidity, and layer penalties, the
// electronics gains, and measurement noise.
func measuredOffset(rec channel.Record, rng *rand.Rand) float64 {
	var offset float64
	if rec.ISIFactor > isiPenaltyKnee {
		d := rec.ISIFactor - isiPenaltyKnee
		offset -= isiPenaltyScale * d * d
	}
	if rec.Material() == channel.MaterialDYELTH && rec.RelativeHumidity > humidityKnee {
		offset -= humidityScale * (rec.RelativeHumidity - humidityKnee)
	}
	if rec.LayerCount > 1 {
		offset -= layerPenaltyScale * math.Pow(float64(rec.LayerCount-1), layerPenaltyPower)
	}
	if rec.PRMLEnabled == 1 {
		offset += prmlGainDB
	}
	if rec.CTCEnabled == 1 {
		offset += ctcGainDB
	}
	return offset + rng.NormFloat64()*measurementNoiseDB
}

func uniform(rng *rand.Rand, r Range) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

func bernoulli(rng *rand.Rand, rate float64) int {
	if rng.Float64() < rate {
		return 1
	}
	return 0
}

func pickLayers(rng *rand.Rand, choices []LayerChoice) int {
	var total float64
	for _, c := range choices {
		total += c.Weight
	}
	r := rng.Float64() * total
	for _, c := range choices {
		r -= c.Weight
		if r < 0 {
			return c.Count
		}
	}
	return choices[len(choices)-1].Count
}

func pickMaterial(rng *rand.Rand, mats []MaterialClass) MaterialClass {
	var total float64
	for _, m := range mats {
		total += m.Weight
	}
	r := rng.Float64() * total
	for _, m := range mats {
		r -= m.Weight
		if r < 0 {
			return m
		}
	}
	return mats[len(mats)-1]
}
