package probe

import (
	"math"
	"strconv"
	"strings"
)

// commonFrameRates are the canonical rates an estimate snaps to.
var commonFrameRates = []int{24, 25, 30, 50, 60, 90, 120}

// frameRateTolerance is the maximum distance for snapping to a canonical rate.
const frameRateTolerance = 5

// ClosestFrameRate snaps a measured packet rate to the nearest canonical frame
// rate when it is within tolerance, otherwise rounds it.
func ClosestFrameRate(rate float64) int {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return 0
	}
	closest := commonFrameRates[0]
	for _, candidate := range commonFrameRates[1:] {
		if math.Abs(float64(candidate)-rate) < math.Abs(float64(closest)-rate) {
			closest = candidate
		}
	}
	if math.Abs(rate-float64(closest)) > frameRateTolerance {
		return int(math.Round(rate))
	}
	return closest
}

// parseFrameRate handles fractional formats like "24000/1001" or "23.976"
func parseFrameRate(fpsStr string) float64 {
	fpsStr = strings.TrimSpace(fpsStr)
	if fpsStr == "" {
		return 0
	}
	if strings.Contains(fpsStr, "/") {
		parts := strings.Split(fpsStr, "/")
		if len(parts) == 2 {
			num, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
			den, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
			if err1 == nil && err2 == nil && den > 0 {
				return num / den
			}
		}
		return 0
	}
	fps, _ := strconv.ParseFloat(fpsStr, 64)
	return fps
}
