package feed

import (
	"fmt"
	"strconv"
	"strings"
)

// parseISODuration converts the ISO-8601 durations the Data API returns
// (PT4M13S, PT1H2M, P1DT2H) into whole seconds. Fractional components never
// appear in video durations and are rejected.
func parseISODuration(value string) (int, error) {
	s := strings.TrimSpace(value)
	if s == "" || s[0] != 'P' {
		return 0, fmt.Errorf("invalid ISO-8601 duration %q", value)
	}
	s = s[1:]

	var total, number, components int
	var haveNumber, inTime bool
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			start := i
			for i < len(s) && s[i] >= '0' && s[i] <= '9' {
				i++
			}
			n, err := strconv.Atoi(s[start:i])
			if err != nil {
				return 0, fmt.Errorf("invalid ISO-8601 duration %q", value)
			}
			number, haveNumber = n, true
			i--
		case c == 'T':
			if inTime {
				return 0, fmt.Errorf("invalid ISO-8601 duration %q", value)
			}
			inTime = true
		default:
			if !haveNumber {
				return 0, fmt.Errorf("invalid ISO-8601 duration %q", value)
			}
			unit, err := durationUnitSeconds(c, inTime)
			if err != nil {
				return 0, fmt.Errorf("invalid ISO-8601 duration %q: %w", value, err)
			}
			total += number * unit
			number, haveNumber = 0, false
			components++
		}
	}
	if haveNumber || components == 0 {
		return 0, fmt.Errorf("invalid ISO-8601 duration %q", value)
	}
	return total, nil
}

func durationUnitSeconds(designator byte, inTime bool) (int, error) {
	switch designator {
	case 'D':
		return 24 * 3600, nil
	case 'H':
		return 3600, nil
	case 'M':
		if inTime {
			return 60, nil
		}
		// Months are meaningless for video lengths.
		return 0, fmt.Errorf("unsupported designator M outside time section")
	case 'S':
		return 1, nil
	default:
		return 0, fmt.Errorf("unsupported designator %q", string(designator))
	}
}
