package schedule

import (
	"strconv"
	"strings"
	"time"
)

// Selector names are matched case-insensitively, keys are lower case.
var weekdayNames = map[string]time.Weekday{
	"mo": time.Monday,
	"tu": time.Tuesday,
	"we": time.Wednesday,
	"th": time.Thursday,
	"fr": time.Friday,
	"sa": time.Saturday,
	"su": time.Sunday,
}

var monthNames = map[string]int{
	"jan": 0, "feb": 1, "mar": 2, "apr": 3, "may": 4, "jun": 5,
	"jul": 6, "aug": 7, "sep": 8, "oct": 9, "nov": 10, "dec": 11,
}

var holidayNames = map[string]bool{"ph": true, "sh": true}

var stateNames = map[string]ruleState{
	"open":    stateOpen,
	"off":     stateClosed,
	"closed":  stateClosed,
	"unknown": stateUnknown,
}

// Parse reads an opening-hours string. Rules are separated by ";" and a later
// rule replaces earlier ones on every date it selects. A rule joined with ","
// ("Mo-Fr 09:00-18:00, Sa 10:00-14:00") is additional: it adds to the rules in
// force on its dates instead of replacing them.
func Parse(spec string) (*Schedule, error) {
	trimmed := strings.TrimSpace(spec)
	if trimmed == "" {
		return nil, &ParseError{Spec: spec, Reason: "empty"}
	}
	if strings.Contains(trimmed, "||") {
		return nil, &ParseError{Spec: spec, Token: "||", Reason: "fallback rules are not supported"}
	}

	s := &Schedule{spec: spec}
	for _, group := range strings.Split(trimmed, ";") {
		for i, part := range splitAdditional(group) {
			part = normalizeRule(part)
			if part == "" {
				continue
			}
			r, err := parseRule(spec, part)
			if err != nil {
				return nil, err
			}
			r.additive = i > 0
			s.rules = append(s.rules, r)
		}
	}
	if len(s.rules) == 0 {
		return nil, &ParseError{Spec: spec, Reason: "no rules"}
	}
	return s, nil
}

// splitAdditional cuts a rule group at every "," that follows a time or state and
// is followed by a weekday, month or holiday selector. Commas inside selector and
// time lists ("Sa,Su", "10:00-12:00,14:00-18:00") are left alone.
func splitAdditional(group string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(group); i++ {
		if group[i] != ',' {
			continue
		}
		if endsRule(group[start:i]) && startsSelector(group[i+1:]) {
			parts = append(parts, group[start:i])
			start = i + 1
		}
	}
	return append(parts, group[start:])
}

func endsRule(text string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}
	last := fields[len(fields)-1]
	if _, ok := stateNames[strings.ToLower(last)]; ok {
		return true
	}
	c := last[len(last)-1]
	return c == '+' || (c >= '0' && c <= '9')
}

func startsSelector(text string) bool {
	text = strings.TrimLeft(text, " \t")
	end := strings.IndexAny(text, " ,-")
	if end < 0 {
		end = len(text)
	}
	word := strings.ToLower(text[:end])
	_, day := weekdayNames[word]
	_, month := monthNames[word]
	return day || month || holidayNames[word]
}

// normalizeRule collapses whitespace and the spaces people put around "," and "-".
func normalizeRule(part string) string {
	part = strings.Join(strings.Fields(part), " ")
	part = strings.ReplaceAll(part, ", ", ",")
	part = strings.ReplaceAll(part, " ,", ",")
	part = strings.ReplaceAll(part, " - ", "-")
	return part
}

func parseRule(spec, text string) (rule, error) {
	r := rule{anyMonth: true, anyWeekday: true, state: stateOpen}
	if text == "24/7" {
		r.spans = []span{{start: 0, end: minutesPerDay}}
		return r, nil
	}

	tokens := strings.Split(text, " ")
	i := 0
	if i < len(tokens) && parseMonths(tokens[i], &r) {
		i++
	}
	if i < len(tokens) && parseWeekdays(tokens[i], &r) {
		i++
	}
	if i < len(tokens) && tokens[i] == "24/7" {
		r.spans = []span{{start: 0, end: minutesPerDay}}
		i++
	} else if i < len(tokens) && looksLikeTime(tokens[i]) {
		spans, err := parseSpans(spec, tokens[i])
		if err != nil {
			return rule{}, err
		}
		r.spans = spans
		i++
	}
	if i < len(tokens) {
		if st, ok := stateNames[strings.ToLower(tokens[i])]; ok {
			r.state = st
			i++
		}
	}
	if i == 0 {
		return rule{}, &ParseError{Spec: spec, Token: tokens[0], Reason: "unrecognised selector"}
	}
	if i < len(tokens) {
		return rule{}, &ParseError{Spec: spec, Token: tokens[i], Reason: "unexpected token"}
	}
	return r, nil
}

// parseMonths fills r.months when every comma item is a month or month range.
func parseMonths(tok string, r *rule) bool {
	var set [12]bool
	for _, item := range strings.Split(tok, ",") {
		from, to, isRange := strings.Cut(item, "-")
		a, ok := monthNames[strings.ToLower(from)]
		if !ok {
			return false
		}
		b := a
		if isRange {
			if b, ok = monthNames[strings.ToLower(to)]; !ok {
				return false
			}
		}
		for m := a; ; m = (m + 1) % 12 {
			set[m] = true
			if m == b {
				break
			}
		}
	}
	r.months = set
	r.anyMonth = false
	return true
}

// parseWeekdays fills r.weekdays when every comma item is a weekday, a weekday
// range or a holiday selector. Holidays never match: there is no holiday calendar.
func parseWeekdays(tok string, r *rule) bool {
	var set [7]bool
	days := 0
	for _, item := range strings.Split(tok, ",") {
		if holidayNames[strings.ToLower(item)] {
			continue
		}
		from, to, isRange := strings.Cut(item, "-")
		a, ok := weekdayNames[strings.ToLower(from)]
		if !ok {
			return false
		}
		b := a
		if isRange {
			if b, ok = weekdayNames[strings.ToLower(to)]; !ok {
				return false
			}
		}
		for d := a; ; d = (d + 1) % 7 {
			set[d] = true
			days++
			if d == b {
				break
			}
		}
	}
	r.weekdays = set
	r.anyWeekday = false
	r.neverMatch = days == 0
	return true
}

func looksLikeTime(tok string) bool {
	return len(tok) > 0 && tok[0] >= '0' && tok[0] <= '9'
}

func parseSpans(spec, tok string) ([]span, error) {
	var spans []span
	for _, item := range strings.Split(tok, ",") {
		if strings.HasSuffix(item, "+") {
			start, err := parseClock(spec, strings.TrimSuffix(item, "+"))
			if err != nil {
				return nil, err
			}
			if start >= minutesPerDay {
				return nil, &ParseError{Spec: spec, Token: item, Reason: "start after midnight"}
			}
			spans = append(spans, span{start: start, end: minutesPerDay, openEnd: true})
			continue
		}

		from, to, ok := strings.Cut(item, "-")
		if !ok {
			return nil, &ParseError{Spec: spec, Token: item, Reason: "expected HH:MM-HH:MM"}
		}
		start, err := parseClock(spec, from)
		if err != nil {
			return nil, err
		}
		end, err := parseClock(spec, to)
		if err != nil {
			return nil, err
		}
		if start >= minutesPerDay {
			return nil, &ParseError{Spec: spec, Token: item, Reason: "start after midnight"}
		}
		if end <= start {
			end += minutesPerDay
		}
		if end > 2*minutesPerDay {
			return nil, &ParseError{Spec: spec, Token: item, Reason: "range longer than a day"}
		}
		spans = append(spans, span{start: start, end: end})
	}
	return spans, nil
}

// parseClock reads HH:MM, allowing hours up to 48 for ranges past midnight.
func parseClock(spec, s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(mm) != 2 || len(hh) == 0 || len(hh) > 2 {
		return 0, &ParseError{Spec: spec, Token: s, Reason: "expected HH:MM"}
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 48 {
		return 0, &ParseError{Spec: spec, Token: s, Reason: "invalid hour"}
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, &ParseError{Spec: spec, Token: s, Reason: "invalid minute"}
	}
	return h*60 + m, nil
}
