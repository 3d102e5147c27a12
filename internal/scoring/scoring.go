// Package scoring computes standard fantasy points from named stat categories.
package scoring

import "math"

// Categories holds the per-game stat categories used by standard scoring.
type Categories struct {
	PassingYards      float64
	PassingTouchdowns float64
	Interceptions     float64
	RushingYards      float64
	RushingTouchdowns float64
	ReceivingYards    float64
	ReceivingTDs      float64
	Receptions        float64
	Fumbles           float64
}

// StandardPoints applies standard scoring:
// passing 1pt/25yds, 4/TD, -2/INT; rushing 1pt/10yds, 6/TD;
// receiving 1pt/10yds, 6/TD, 1/reception; fumbles -2.
// The result is rounded to one decimal place.
func StandardPoints(c Categories) float64 {
	points := c.PassingYards / 25
	points += c.PassingTouchdowns * 4
	points -= c.Interceptions * 2

	points += c.RushingYards / 10
	points += c.RushingTouchdowns * 6

	points += c.ReceivingYards / 10
	points += c.ReceivingTDs * 6
	points += c.Receptions

	points -= c.Fumbles * 2

	return math.Round(points*10) / 10
}

// Named renders the categories under their persisted stat names, with the
// computed fantasy point total included.
func (c Categories) Named() map[string]float64 {
	return map[string]float64{
		"passing_yards":   c.PassingYards,
		"passing_tds":     c.PassingTouchdowns,
		"interceptions":   c.Interceptions,
		"rushing_yards":   c.RushingYards,
		"rushing_tds":     c.RushingTouchdowns,
		"receiving_yards": c.ReceivingYards,
		"receiving_tds":   c.ReceivingTDs,
		"receptions":      c.Receptions,
		"fumbles":         c.Fumbles,
		"fantasy_points":  StandardPoints(c),
	}
}
