// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"math/rand/v2"

	"github.com/danielhkuo/taskgate/models"
)

// minWeight backs priority <= 0 so zero-priority sites remain
// reachable instead of being starved out of the cumulative scan.
const minWeight = 0.1

func weightOf(s models.Site) float64 {
	if s.Priority <= 0 {
		return minWeight
	}
	return float64(s.Priority)
}

func totalWeight(sites []models.Site) float64 {
	var sum float64
	for _, s := range sites {
		sum += weightOf(s)
	}
	return sum
}

// pickWeighted selects a site by cumulative-weight scan. roll must be
// uniform in [0, totalWeight(sites)). The last site absorbs any
// floating-point slack at the top of the range.
func pickWeighted(sites []models.Site, roll float64) models.Site {
	var cum float64
	for _, s := range sites {
		cum += weightOf(s)
		if roll < cum {
			return s
		}
	}
	return sites[len(sites)-1]
}

// pickRandomSite draws a site proportionally to priority. The caller
// guarantees sites is non-empty (the eligibility query already ran).
func pickRandomSite(sites []models.Site) models.Site {
	return pickWeighted(sites, rand.Float64()*totalWeight(sites))
}
