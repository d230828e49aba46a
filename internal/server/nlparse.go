package server

import (
	"strconv"
	"strings"
	"time"

	"taskdeck/internal/model"
)

var (
	highPriorityWords = map[string]bool{"urgent": true, "important": true, "asap": true, "critical": true, "high": true}
	lowPriorityWords  = map[string]bool{"low": true, "someday": true, "eventually": true, "whenever": true}

	weekdays = map[string]time.Weekday{
		"sunday": time.Sunday, "sun": time.Sunday,
		"monday": time.Monday, "mon": time.Monday,
		"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
		"wednesday": time.Wednesday, "wed": time.Wednesday,
		"thursday": time.Thursday, "thu": time.Thursday, "thurs": time.Thursday,
		"friday": time.Friday, "fri": time.Friday,
		"saturday": time.Saturday, "sat": time.Saturday,
	}

	// Connectors dropped when they end up dangling next to a consumed phrase.
	connectors = map[string]bool{"by": true, "on": true, "due": true, "for": true, "in": true, "next": true, "priority": true, "list": true}
)

// ParseNaturalLanguage turns free text like "urgent: call the bank tomorrow #errands"
// into draft fields. It never fails; text it does not understand becomes the title.
//
// Recognized: priority words, status hints ("started", "in progress", "done"),
// "#list" or "for <built-in list>", and dates (today, tonight, tomorrow,
// weekday names, "next week", "in N days|weeks", YYYY-MM-DD). Text after
// " - " becomes the description.
func ParseNaturalLanguage(text string, now time.Time) model.ParsedTask {
	out := model.ParsedTask{Status: model.StatusTodo, Priority: model.PriorityMedium}

	text = strings.TrimSpace(text)
	if head, tail, ok := strings.Cut(text, " - "); ok {
		text = strings.TrimSpace(head)
		out.Description = model.OptString(strings.TrimSpace(tail))
	}

	words := strings.Fields(text)
	used := make([]bool, len(words))
	lower := make([]string, len(words))
	for i, w := range words {
		lower[i] = strings.ToLower(strings.Trim(w, ",.;:!?"))
	}
	today := model.DayOf(now)

	consume := func(i int) {
		used[i] = true
		// Swallow connectors immediately before the phrase ("due", "by", "on"...).
		for j := i - 1; j >= 0 && !used[j] && connectors[lower[j]]; j-- {
			used[j] = true
		}
	}

	for i := 0; i < len(words); i++ {
		if used[i] {
			continue
		}
		w := lower[i]
		next := ""
		if i+1 < len(words) {
			next = lower[i+1]
		}

		switch {
		case strings.HasPrefix(words[i], "#") && len(w) > 1:
			out.List = model.Some(model.NormalizeListName(strings.TrimPrefix(w, "#")))
			consume(i)

		case w == "for" && model.IsBuiltinList(next):
			out.List = model.Some(next)
			used[i], used[i+1] = true, true
			i++

		case highPriorityWords[w] && (w != "high" || next == "priority"):
			out.Priority = model.PriorityHigh
			consume(i)
			if next == "priority" {
				used[i+1] = true
				i++
			}

		case lowPriorityWords[w] && (w != "low" || next == "priority"):
			out.Priority = model.PriorityLow
			consume(i)
			if next == "priority" {
				used[i+1] = true
				i++
			}

		case w == "started" || w == "in-progress" || w == "ongoing":
			out.Status = model.StatusInProgress
			consume(i)

		case w == "in" && next == "progress":
			out.Status = model.StatusInProgress
			used[i], used[i+1] = true, true
			i++

		case w == "done" || w == "finished" || w == "completed":
			out.Status = model.StatusDone
			consume(i)

		case w == "today" || w == "tonight":
			out.DueDate = model.Some(today.String())
			consume(i)

		case w == "tomorrow" || w == "tmrw":
			out.DueDate = model.Some(today.AddDays(1).String())
			consume(i)

		case w == "next" && next == "week":
			out.DueDate = model.Some(today.AddDays(7).String())
			used[i], used[i+1] = true, true
			consume(i)
			i++

		case w == "in" && i+2 < len(words):
			n, err := strconv.Atoi(next)
			unit := lower[i+2]
			if err != nil || n < 0 {
				continue
			}
			switch unit {
			case "day", "days":
				out.DueDate = model.Some(today.AddDays(n).String())
			case "week", "weeks":
				out.DueDate = model.Some(today.AddDays(7 * n).String())
			default:
				continue
			}
			used[i], used[i+1], used[i+2] = true, true, true
			consume(i)
			i += 2

		default:
			if wd, ok := weekdays[w]; ok {
				out.DueDate = model.Some(nextWeekday(today, now.Weekday(), wd).String())
				consume(i)
				continue
			}
			if day, ok := model.ParseDay(w); ok && len(w) == len(time.DateOnly) {
				out.DueDate = model.Some(day.String())
				consume(i)
			}
		}
	}

	var title []string
	for i, w := range words {
		if !used[i] {
			title = append(title, w)
		}
	}
	// Trailing connectors left over ("call mom on") read badly in a title.
	for len(title) > 0 && connectors[strings.ToLower(title[len(title)-1])] {
		title = title[:len(title)-1]
	}
	out.Title = strings.TrimSpace(strings.Trim(strings.Join(title, " "), ",;:-"))
	if out.Title == "" {
		out.Title = text
	}
	return out
}

// nextWeekday returns the next date falling on want, never today itself.
func nextWeekday(today model.Day, current, want time.Weekday) model.Day {
	ahead := (int(want) - int(current) + 7) % 7
	if ahead == 0 {
		ahead = 7
	}
	return today.AddDays(ahead)
}
