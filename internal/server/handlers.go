package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"osis/internal/channel"
)

type predictResponse struct {
	PhysicsSNRDB   float64 `json:"physics_snr_db"`
	MLResidualDB   float64 `json:"ml_residual_db"`
	PredictedSNRDB float64 `json:"predicted_snr_db"`
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	code := http.StatusOK
	defer func() {
		s.metrics.requests.WithLabelValues(strconv.Itoa(code)).Inc()
		s.metrics.duration.Observe(time.Since(started).Seconds())
	}()

	rec, err := decodeRecord(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		code = http.StatusBadRequest
		s.writeError(w, code, err)
		return
	}

	p, err := s.pred.Predict(rec)
	if err != nil {
		code = http.StatusInternalServerError
		if errors.Is(err, channel.ErrValidation) {
			code = http.StatusBadRequest
		}
		s.writeError(w, code, err)
		return
	}
	if p.ZeroFilled > 0 {
		s.metrics.zeroFills.Add(float64(p.ZeroFilled))
	}

	s.log.Debug("prediction served",
		"wavelength_nm", rec.LaserWavelengthNm,
		"material", rec.RecordingMaterial,
		"predicted_snr_db", p.FinalSNR)
	s.writeJSON(w, http.StatusOK, predictResponse{
		PhysicsSNRDB:   round2(p.PhysicsSNR),
		MLResidualDB:   round2(p.Residual),
		PredictedSNRDB: round2(p.FinalSNR),
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, staticFS, "static/index.html")
}

// decodeRecord decodes a prediction request. Every channel field must be
// present in the payload; extra fields are ignored.
func decodeRecord(body io.Reader) (channel.Record, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return channel.Record{}, fmt.Errorf("read body: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return channel.Record{}, fmt.Errorf("malformed JSON: %w", err)
	}
	var missing []string
	for _, name := range channel.FieldNames() {
		if _, ok := raw[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return channel.Record{}, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	var rec channel.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return channel.Record{}, fmt.Errorf("invalid field values: %w", err)
	}
	return rec, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	s.log.Warn("request rejected", "code", code, "error", err)
	s.writeJSON(w, code, map[string]string{"error": err.Error()})
}
