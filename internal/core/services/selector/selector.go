// Package selector picks which positioning algorithms run for one
// request. Selection happens in three phases: hard disqualification on
// the scenario context, multiplicative weighting from each algorithm's
// factor tables, then pruning of low-weight entries.
package selector

import (
	"fmt"
	"sort"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/domain"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/ports"
)

const (
	// pruneThreshold drops algorithms whose combined weight falls
	// below it, unless the very-weak override fires.
	pruneThreshold = 0.4

	// dominantWeight caps the finalist count to three once any
	// algorithm clears it.
	dominantWeight = 0.8

	maxFinalistsWhenDominant = 3

	veryWeakOverrideReason = "prioritised: very weak signals"
)

// Select runs the three selection phases over algos in their given
// order. The returned finalists are sorted by descending weight with
// the algorithm ID as tie-breaker.
func Select(sc domain.SelectionContext, algos []ports.Algorithm) domain.AlgorithmSelection {
	evals := make([]domain.AlgorithmWeight, 0, len(algos))
	for _, a := range algos {
		ev := domain.AlgorithmWeight{Algorithm: a.ID()}
		if reasons := disqualify(a.ID(), sc); len(reasons) > 0 {
			ev.Reasons = reasons
			evals = append(evals, ev)
			continue
		}

		ev.Weight = a.BaseWeight(sc.APCountFactor) *
			a.SignalQualityMultiplier(sc.SignalQuality) *
			a.GeometricQualityMultiplier(sc.GeometricQuality) *
			a.SignalDistributionMultiplier(sc.SignalDistribution)

		if ev.Weight < pruneThreshold {
			ev.Reasons = []string{fmt.Sprintf("weight %.2f below threshold %.2f", ev.Weight, pruneThreshold)}
		} else {
			ev.Selected = true
		}
		evals = append(evals, ev)
	}

	finalists := make([]domain.AlgorithmWeight, 0, len(evals))
	for _, ev := range evals {
		if ev.Selected {
			finalists = append(finalists, ev)
		}
	}

	// Very weak signals must still yield an answer: force proximity
	// back in even below the prune threshold.
	if len(finalists) == 0 && sc.SignalQuality == domain.SignalVeryWeak {
		for i := range evals {
			if evals[i].Algorithm != domain.AlgorithmProximity {
				continue
			}
			evals[i].Selected = true
			evals[i].Reasons = []string{veryWeakOverrideReason}
			finalists = append(finalists, evals[i])
			break
		}
	}

	sort.SliceStable(finalists, func(i, j int) bool {
		if finalists[i].Weight != finalists[j].Weight {
			return finalists[i].Weight > finalists[j].Weight
		}
		return finalists[i].Algorithm < finalists[j].Algorithm
	})

	// A clearly dominant algorithm makes running a long tail pointless.
	if len(finalists) > maxFinalistsWhenDominant && finalists[0].Weight > dominantWeight {
		for _, dropped := range finalists[maxFinalistsWhenDominant:] {
			for i := range evals {
				if evals[i].Algorithm == dropped.Algorithm {
					evals[i].Selected = false
					evals[i].Reasons = []string{"pruned: outside top three"}
				}
			}
		}
		finalists = finalists[:maxFinalistsWhenDominant]
	}

	return domain.AlgorithmSelection{Finalists: finalists, Evaluations: evals}
}

// disqualify applies the hard constraints. An empty result means the
// algorithm proceeds to weighting.
func disqualify(id domain.AlgorithmID, sc domain.SelectionContext) []string {
	var reasons []string

	switch sc.APCountFactor {
	case domain.CountSingle:
		if id != domain.AlgorithmProximity {
			reasons = append(reasons, "disqualified: requires multiple access points")
		}
	case domain.CountTwo:
		if id == domain.AlgorithmTrilateration || id == domain.AlgorithmMaxLikelihood {
			reasons = append(reasons, "disqualified: requires at least three access points")
		}
	case domain.CountThree:
		if id == domain.AlgorithmMaxLikelihood {
			reasons = append(reasons, "disqualified: requires at least four access points")
		}
	}

	if sc.GeometricQuality == domain.GeometryCollinear && id == domain.AlgorithmTrilateration {
		reasons = append(reasons, "disqualified: collinear access point geometry")
	}

	if sc.SignalQuality == domain.SignalVeryWeak && id != domain.AlgorithmProximity {
		reasons = append(reasons, "disqualified: very weak signals")
	}

	return reasons
}
