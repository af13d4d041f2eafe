package metrics

import "fmt"

// aboveAverageFactor is the multiple of the global average beyond which a
// country gets the reduce-consumption tip instead of the keep-it-up one.
const aboveAverageFactor = 1.2

// Tips returns the static climate-action recommendations for a country. Only
// the first entry depends on the data: above vs below the global average.
func Tips(country string, current, avg float64) []string {
	tips := make([]string, 0, 6)
	if current > avg*aboveAverageFactor {
		tips = append(tips, fmt.Sprintf(
			"Reduce energy consumption: %s's emissions are above average. Consider energy-efficient appliances and renewable energy sources.", country))
	} else {
		tips = append(tips, fmt.Sprintf(
			"Maintain sustainable practices: %s is performing better than average. Continue efforts to reduce emissions.", country))
	}
	tips = append(tips,
		"Promote electric vehicles: transportation is a major contributor to emissions. Support EV infrastructure development.",
		"Protect and expand forests: natural carbon sinks are crucial for offsetting emissions.",
		"Advocate for industrial regulations: support policies that require industries to reduce their carbon footprint.",
		"Educate communities: raise awareness about sustainable practices and climate action.",
	)
	return tips
}
