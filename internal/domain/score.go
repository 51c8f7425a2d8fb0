package domain

import "time"

// WellnessScore converts raw metrics into a 0-100 score from three
// independently thresholded bands: steps contribute up to 40 points,
// sleep and calories up to 30 each.
func WellnessScore(steps int64, sleepHours float64, calories int64) int {
	score := 0

	switch {
	case steps >= 10000:
		score += 40
	case steps >= 7000:
		score += 30
	case steps >= 5000:
		score += 20
	default:
		score += 10
	}

	switch {
	case sleepHours >= 7 && sleepHours <= 9:
		score += 30
	case sleepHours >= 6 && sleepHours <= 10:
		score += 20
	default:
		score += 10
	}

	switch {
	case calories >= 1800 && calories <= 2200:
		score += 30
	case calories >= 1500 && calories <= 2500:
		score += 20
	default:
		score += 10
	}

	return score
}

// Score returns the wellness score for a single log.
func (l HealthLog) Score() int {
	return WellnessScore(l.Steps, l.SleepHours, l.Calories)
}

// Streak counts consecutive calendar days walking backward from the most
// recent log. It grows while adjacent entries are exactly one day apart and
// stops on the first gap larger than one day. Logs must be ordered by date
// ascending; entries with unparseable dates end the walk.
func Streak(logs []HealthLog) int {
	if len(logs) == 0 {
		return 0
	}

	streak := 1
	prev, err := parseDay(logs[len(logs)-1].LogDate)
	if err != nil {
		return 0
	}

	for i := len(logs) - 2; i >= 0; i-- {
		cur, err := parseDay(logs[i].LogDate)
		if err != nil {
			break
		}
		diff := int(prev.Sub(cur).Hours() / 24)
		if diff == 1 {
			streak++
		} else if diff > 1 {
			break
		}
		prev = cur
	}
	return streak
}

// PersonalBestSteps returns the maximum step count across the given logs.
func PersonalBestSteps(logs []HealthLog) int64 {
	var best int64
	for _, l := range logs {
		if l.Steps > best {
			best = l.Steps
		}
	}
	return best
}

func parseDay(day string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", day, time.UTC)
}
