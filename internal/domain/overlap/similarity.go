package overlap

import (
	"math"
	"sort"
)

// ActiveAxes returns the sorted axes whose weight magnitude meets epsilon.
func ActiveAxes(weights map[string]float64, epsilon float64) []string {
	axes := make([]string, 0, len(weights))
	for axis, w := range weights {
		if math.Abs(w) >= epsilon {
			axes = append(axes, axis)
		}
	}
	sort.Strings(axes)
	return axes
}

// Jaccard computes the Jaccard overlap of two axis sets. When both sets are
// empty the configured emptyValue is returned, so "both structurally
// inactive" can count as either full overlap (1.0) or none (0.0).
func Jaccard(a, b []string, emptyValue float64) float64 {
	if len(a) == 0 && len(b) == 0 {
		return emptyValue
	}

	setA := make(map[string]bool, len(a))
	for _, axis := range a {
		setA[axis] = true
	}
	union := make(map[string]bool, len(a)+len(b))
	intersection := 0
	for _, axis := range a {
		union[axis] = true
	}
	for _, axis := range b {
		if setA[axis] {
			intersection++
		}
		union[axis] = true
	}
	return float64(intersection) / float64(len(union))
}

// SignAgreement computes the soft-sign agreement ratio over the axes active
// in either prototype that are present in both weight maps. A weight with
// magnitude at or below softThreshold is neutral and agrees with any sign.
// With no shared considered axes the agreement is 0.
func SignAgreement(weightsA, weightsB map[string]float64, activeEither []string, softThreshold float64) float64 {
	considered := 0
	matching := 0
	for _, axis := range activeEither {
		wa, okA := weightsA[axis]
		wb, okB := weightsB[axis]
		if !okA || !okB {
			continue
		}
		considered++
		if signsAgree(wa, wb, softThreshold) {
			matching++
		}
	}
	if considered == 0 {
		return 0
	}
	return float64(matching) / float64(considered)
}

func signsAgree(a, b, softThreshold float64) bool {
	if math.Abs(a) <= softThreshold || math.Abs(b) <= softThreshold {
		return true
	}
	return (a > 0) == (b > 0)
}

// WeightCosineSimilarity calculates the cosine similarity of two full weight
// vectors over the union of their axes, with missing axes treated as 0.
// Returns a value between -1 and 1, where 1 means identical direction.
func WeightCosineSimilarity(weightsA, weightsB map[string]float64) float64 {
	if len(weightsA) == 0 || len(weightsB) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for axis, wa := range weightsA {
		dot += wa * weightsB[axis]
		normA += wa * wa
	}
	for _, wb := range weightsB {
		normB += wb * wb
	}

	normA = math.Sqrt(normA)
	normB = math.Sqrt(normB)

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (normA * normB)
}

// UnionAxes returns the sorted union of two axis slices.
func UnionAxes(a, b []string) []string {
	set := make(map[string]bool, len(a)+len(b))
	for _, axis := range a {
		set[axis] = true
	}
	for _, axis := range b {
		set[axis] = true
	}
	union := make([]string, 0, len(set))
	for axis := range set {
		union = append(union, axis)
	}
	sort.Strings(union)
	return union
}
