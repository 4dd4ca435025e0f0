package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"osis/internal/channel"
)

// ErrHeaderMismatch reports a CSV whose header differs from the dataset
// column contract.
var ErrHeaderMismatch = errors.New("dataset header mismatch")

// Columns returns the CSV column names in contract order: the channel
// parameter fields followed by the stored baseline, the measurement, and
// the thermal factor. The names are the stable interface between
// generation, training, and verification.
func Columns() []string {
	return append(channel.FieldNames(), "physics_snr_db", "measured_snr_db", "thermal_factor")
}

// WriteFile writes rows to path as CSV under the column contract.
func WriteFile(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset: %w", err)
	}
	if err := Write(f, rows); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close dataset: %w", err)
	}
	return nil
}

// Write streams rows as CSV. Floats use the shortest representation that
// parses back to the identical value.
func Write(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns()); err != nil {
		return fmt.Errorf("write dataset header: %w", err)
	}
	for i, r := range rows {
		if err := cw.Write(encodeRow(r)); err != nil {
			return fmt.Errorf("write dataset row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadFile loads a dataset CSV, checking the header against the column
// contract and reporting row failures with their line number.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	rows, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return rows, nil
}

// Read parses a dataset CSV from r.
func Read(r io.Reader) ([]Row, error) {
	cols := Columns()
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(cols)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, csv.ErrFieldCount) {
			return nil, fmt.Errorf("%w: %v", ErrHeaderMismatch, err)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, want := range cols {
		if header[i] != want {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrHeaderMismatch, i+1, header[i], want)
		}
	}

	var rows []Row
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row, err := decodeRow(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := row.Record.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func encodeRow(r Row) []string {
	return []string{
		strconv.Itoa(r.LaserWavelengthNm),
		ftoa(r.NumericalAperture),
		ftoa(r.SpotSizeNm),
		ftoa(r.TrackPitchNm),
		strconv.Itoa(r.LayerCount),
		ftoa(r.LayerSpacingNm),
		ftoa(r.ISIFactor),
		ftoa(r.CrosstalkFactor),
		r.RecordingMaterial,
		ftoa(r.ThermalConductivityWMK),
		ftoa(r.ActivationEnergyEV),
		ftoa(r.TemperatureC),
		ftoa(r.RelativeHumidity),
		strconv.Itoa(r.PRMLEnabled),
		strconv.Itoa(r.CTCEnabled),
		ftoa(r.PhysicsSNRDB),
		ftoa(r.MeasuredSNRDB),
		ftoa(r.ThermalFactor),
	}
}

func decodeRow(fields []string) (Row, error) {
	var (
		r   Row
		err error
	)
	if r.LaserWavelengthNm, err = atoi("laser_wavelength_nm", fields[0]); err != nil {
		return Row{}, err
	}
	if r.NumericalAperture, err = atof("numerical_aperture", fields[1]); err != nil {
		return Row{}, err
	}
	if r.SpotSizeNm, err = atof("spot_size_nm", fields[2]); err != nil {
		return Row{}, err
	}
	if r.TrackPitchNm, err = atof("track_pitch_nm", fields[3]); err != nil {
		return Row{}, err
	}
	if r.LayerCount, err = atoi("layer_count", fields[4]); err != nil {
		return Row{}, err
	}
	if r.LayerSpacingNm, err = atof("layer_spacing_nm", fields[5]); err != nil {
		return Row{}, err
	}
	if r.ISIFactor, err = atof("isi_factor", fields[6]); err != nil {
		return Row{}, err
	}
	if r.CrosstalkFactor, err = atof("crosstalk_factor", fields[7]); err != nil {
		return Row{}, err
	}
	r.RecordingMaterial = fields[8]
	if r.ThermalConductivityWMK, err = atof("thermal_conductivity_w_mk", fields[9]); err != nil {
		return Row{}, err
	}
	if r.ActivationEnergyEV, err = atof("activation_energy_ev", fields[10]); err != nil {
		return Row{}, err
	}
	if r.TemperatureC, err = atof("temperature_c", fields[11]); err != nil {
		return Row{}, err
	}
	if r.RelativeHumidity, err = atof("relative_humidity", fields[12]); err != nil {
		return Row{}, err
	}
	if r.PRMLEnabled, err = atoi("prml_enabled", fields[13]); err != nil {
		return Row{}, err
	}
	if r.CTCEnabled, err = atoi("ctc_enabled", fields[14]); err != nil {
		return Row{}, err
	}
	if r.PhysicsSNRDB, err = atof("physics_snr_db", fields[15]); err != nil {
		return Row{}, err
	}
	if r.MeasuredSNRDB, err = atof("measured_snr_db", fields[16]); err != nil {
		return Row{}, err
	}
	if r.ThermalFactor, err = atof("thermal_factor", fields[17]); err != nil {
		return Row{}, err
	}
	return r, nil
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func atoi(col, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", col, err)
	}
	return v, nil
}

func atof(col, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", col, err)
	}
	return v, nil
}
