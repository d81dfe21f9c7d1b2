package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Resolve turns a date mention into a concrete time, resolved against the
// supplied reference timestamp. Relative expressions ("next Friday", "in two
// weeks") are handled here; anything absolute falls through to dateparse.
// The second return value is false when the text is unresolvable.
func Resolve(text string, ref time.Time) (time.Time, bool) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	normalized = strings.TrimPrefix(normalized, "by ")
	normalized = strings.TrimPrefix(normalized, "on ")
	normalized = strings.TrimPrefix(normalized, "due ")
	normalized = strings.TrimSpace(normalized)
	if normalized == "" {
		return time.Time{}, false
	}

	if t, ok := resolveRelative(normalized, ref); ok {
		return t, true
	}

	t, err := dateparse.ParseAny(text)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"a": 1, "an": 1,
}

var inExprRe = regexp.MustCompile(`^in (\w+) (day|days|week|weeks|month|months|hour|hours)$`)

func resolveRelative(text string, ref time.Time) (time.Time, bool) {
	switch text {
	case "today":
		return ref, true
	case "tomorrow":
		return ref.AddDate(0, 0, 1), true
	case "next week":
		return ref.AddDate(0, 0, 7), true
	case "next month":
		return ref.AddDate(0, 1, 0), true
	case "end of month", "end of the month", "month end", "月底":
		return endOfMonth(ref), true
	case "今天":
		return ref, true
	case "明天":
		return ref.AddDate(0, 0, 1), true
	case "后天":
		return ref.AddDate(0, 0, 2), true
	case "下周":
		return ref.AddDate(0, 0, 7), true
	case "下个月":
		return ref.AddDate(0, 1, 0), true
	}

	// "next friday", "this friday", and bare weekday names; the bare and
	// "this" forms resolve to the upcoming occurrence
	name := strings.TrimPrefix(strings.TrimPrefix(text, "next "), "this ")
	if day, ok := weekdays[name]; ok {
		offset := (int(day) - int(ref.Weekday()) + 7) % 7
		if offset == 0 {
			offset = 7
		}
		// "next friday" skips this week's friday when it is still ahead
		if strings.HasPrefix(text, "next ") && int(day) > int(ref.Weekday()) {
			offset += 7
		}
		return ref.AddDate(0, 0, offset), true
	}

	if t, ok := resolveChineseWeekday(text, ref); ok {
		return t, true
	}

	if m := inExprRe.FindStringSubmatch(text); m != nil {
		n, ok := numberWords[m[1]]
		if !ok {
			parsed, err := strconv.Atoi(m[1])
			if err != nil {
				return time.Time{}, false
			}
			n = parsed
		}
		switch {
		case strings.HasPrefix(m[2], "day"):
			return ref.AddDate(0, 0, n), true
		case strings.HasPrefix(m[2], "week"):
			return ref.AddDate(0, 0, n*7), true
		case strings.HasPrefix(m[2], "month"):
			return ref.AddDate(0, n, 0), true
		case strings.HasPrefix(m[2], "hour"):
			return ref.Add(time.Duration(n) * time.Hour), true
		}
	}

	return time.Time{}, false
}

// cnWeekdayIndex is Monday-based, matching how 周一..周日 count the week.
var cnWeekdayIndex = map[rune]int{
	'一': 0, '二': 1, '三': 2, '四': 3, '五': 4, '六': 5, '日': 6, '天': 6,
}

// resolveChineseWeekday handles 本周X/这周X (that day within the current
// Monday-based week) and 下周X (the same day one week later).
func resolveChineseWeekday(text string, ref time.Time) (time.Time, bool) {
	next := false
	switch {
	case strings.HasPrefix(text, "下周"):
		next = true
		text = strings.TrimPrefix(text, "下周")
	case strings.HasPrefix(text, "本周"):
		text = strings.TrimPrefix(text, "本周")
	case strings.HasPrefix(text, "这周"):
		text = strings.TrimPrefix(text, "这周")
	default:
		return time.Time{}, false
	}
	runes := []rune(text)
	if len(runes) != 1 {
		return time.Time{}, false
	}
	idx, ok := cnWeekdayIndex[runes[0]]
	if !ok {
		return time.Time{}, false
	}
	refIdx := (int(ref.Weekday()) + 6) % 7
	offset := idx - refIdx
	if next {
		offset += 7
	}
	return ref.AddDate(0, 0, offset), true
}

func endOfMonth(ref time.Time) time.Time {
	firstOfNext := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location()).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1)
}
