package complaint

import "math"

var riskBonus = map[string]float64{
	"critical": 50,
	"high":     30,
	"medium":   10,
}

// Priority maps a danger score (0..10) and risk level onto 0..100.
func Priority(dangerScore float64, riskLevel string) int {
	p := math.Round(dangerScore*10 + riskBonus[riskLevel])
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return int(p)
}
