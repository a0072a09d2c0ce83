// Package safety decides whether a token candidate is allowed to be bought.
// A gate verdict reads an existing analysis record; the analyzer produces
// those records from the Birdeye oracle.
package safety

import (
	logger "github.com/sirupsen/logrus"

	"tokensniper/src/model"
)

// RejectReason explains why the gate refused a candidate.
type RejectReason string

const (
	RejectNoData       RejectReason = "no_safety_data"
	RejectRiskTooHigh  RejectReason = "risk_score_too_high"
	RejectMarkedUnsafe RejectReason = "marked_unsafe"
)

// Verdict is the gate's answer for one candidate.
type Verdict struct {
	Passed   bool
	Bypassed bool
	Reason   RejectReason
}

type Gate struct{}

func NewGate() *Gate { return &Gate{} }

// Evaluate checks a candidate's latest analysis against the cycle's
// settings snapshot. Checks short-circuit in order: missing data, score
// above the configured maximum, then an explicit danger status. When safety
// checking is disabled the gate passes everything.
func (g *Gate) Evaluate(record *model.TokenSafety, settings model.Snapshot) Verdict {
	if !settings.SafetyCheckEnabled {
		return Verdict{Passed: true, Bypassed: true}
	}

	if record == nil {
		return Verdict{Reason: RejectNoData}
	}

	if record.RugpullRiskScore > settings.MaxRugpullRisk {
		logger.WithFields(map[string]interface{}{
			"component": "safety_gate",
			"token":     record.TokenAddress,
			"score":     record.RugpullRiskScore,
			"max":       settings.MaxRugpullRisk,
		}).Debug("Candidate rejected on risk score")

		return Verdict{Reason: RejectRiskTooHigh}
	}

	if record.SafetyStatus == model.SafetyStatusDanger {
		return Verdict{Reason: RejectMarkedUnsafe}
	}

	return Verdict{Passed: true}
}
