package train

import (
	"fmt"
	"strings"
)

// Report renders the metric block the training and verification commands
// print. The R² score keeps five decimals; error metrics get four and a
// dB unit.
func (ms MetricSet) Report(title string) string {
	var b strings.Builder
	rule := strings.Repeat("-", 30)

	b.WriteString(rule + "\n")
	b.WriteString(title + "\n")
	b.WriteString(rule + "\n")
	for _, m := range ms.Metrics {
		if m.ID == "R2" {
			fmt.Fprintf(&b, "%s: %.5f\n", m.Name, m.Value)
			continue
		}
		fmt.Fprintf(&b, "%s: %.4f dB\n", m.Name, m.Value)
	}
	b.WriteString(rule + "\n")
	return b.String()
}
