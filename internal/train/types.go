// Package train fits the residual model on dataset rows, evaluates it in
// final-SNR space, and assembles the deployable artifact. It also replays
// full datasets through the inference path for post-hoc verification.
package train

// Metric is one evaluation figure with its advisory threshold.
type Metric struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
	Pass      bool    `json:"pass"`
	Detail    string  `json:"detail,omitempty"`
}

// MetricSet is the evaluation of one model against one sample set.
type MetricSet struct {
	Metrics []Metric `json:"metrics"`
}

// ByID returns the metric with the given ID.
func (ms MetricSet) ByID(id string) (Metric, bool) {
	for _, m := range ms.Metrics {
		if m.ID == id {
			return m, true
		}
	}
	return Metric{}, false
}

// PassCount returns how many metrics passed and the total count.
func (ms MetricSet) PassCount() (passed, total int) {
	for _, m := range ms.Metrics {
		if m.Pass {
			passed++
		}
	}
	return passed, len(ms.Metrics)
}

// Values returns metric values keyed by ID, the shape the artifact
// embeds.
func (ms MetricSet) Values() map[string]float64 {
	out := make(map[string]float64, len(ms.Metrics))
	for _, m := range ms.Metrics {
		out[m.ID] = m.Value
	}
	return out
}
