package itinerary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	dateLayout     = "2006-01-02"
	defaultTitle   = "Untitled"
	hoursPerDay    = 24 * time.Hour
	violationsRoot = "root"
)

var clockRe = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type Options struct {
	// RequireTitle rejects plans without a non-empty title.
	RequireTitle bool
	// DefaultStart anchors undated days when the plan carries no dates at all.
	DefaultStart *time.Time
	// Location is used for dates and times. Defaults to UTC.
	Location *time.Location
	Now      func() time.Time
}

func (o Options) location() *time.Location {
	if o.Location != nil {
		return o.Location
	}
	return time.UTC
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Normalize decodes and validates a model-produced or client-submitted plan.
// Every returned day carries a concrete date and the trip satisfies
// StartDate <= EndDate.
func Normalize(raw []byte, opts Options) (*Itinerary, error) {
	var in rawItinerary
	if err := decode(raw, &in); err != nil {
		return nil, err
	}

	var violations []string
	if opts.RequireTitle && strings.TrimSpace(in.Title) == "" {
		violations = append(violations, "title: required")
	}
	if err := validate.Struct(in); err != nil {
		violations = append(violations, describe(err)...)
	}
	if len(violations) > 0 {
		return nil, newValidationError(violations...)
	}

	loc := opts.location()
	explicitStart, hasStart := parseDate(in.StartDate, loc)
	explicitEnd, hasEnd := parseDate(in.EndDate, loc)

	anchor, hasAnchor := explicitStart, hasStart
	dayDates := make([]time.Time, len(in.Days))
	dated := make([]bool, len(in.Days))
	for i, d := range in.Days {
		dayDates[i], dated[i] = parseDate(d.Date, loc)
		if !hasAnchor && dated[i] {
			anchor, hasAnchor = dayDates[i].AddDate(0, 0, -i), true
		}
	}
	if !hasAnchor && opts.DefaultStart != nil {
		anchor, hasAnchor = truncateDay(*opts.DefaultStart, loc), true
	}

	out := &Itinerary{
		Title:       strings.TrimSpace(in.Title),
		Destination: strings.TrimSpace(in.Destination),
		Currency:    strings.TrimSpace(in.Currency),
		Days:        make([]Day, 0, len(in.Days)),
	}

	for i, d := range in.Days {
		date := dayDates[i]
		if !dated[i] {
			if !hasAnchor {
				violations = append(violations, fmt.Sprintf("days[%d].date: cannot be resolved", i))
				continue
			}
			date = anchor.AddDate(0, 0, i)
		}

		src := d.Activities
		if len(src) == 0 {
			src = d.Items
		}
		acts := make([]Activity, 0, len(src))
		for _, a := range src {
			acts = append(acts, toActivity(a, date, loc))
		}

		out.Days = append(out.Days, Day{
			Date:        date,
			City:        strings.TrimSpace(d.City),
			Title:       strings.TrimSpace(d.Title),
			Summary:     strings.TrimSpace(d.Summary),
			BudgetCents: d.BudgetCents,
			Activities:  acts,
		})
	}
	if len(violations) > 0 {
		return nil, newValidationError(violations...)
	}

	switch {
	case hasStart:
		out.StartDate = explicitStart
	case len(out.Days) > 0:
		out.StartDate = out.Days[0].Date
	default:
		out.StartDate = truncateDay(opts.now(), loc)
	}

	switch {
	case hasEnd:
		out.EndDate = explicitEnd
	case len(out.Days) > 0:
		out.EndDate = out.Days[len(out.Days)-1].Date
	default:
		out.EndDate = out.StartDate
	}
	if out.EndDate.Before(out.StartDate) {
		out.EndDate = out.StartDate
	}

	return out, nil
}

func decode(raw []byte, into *rawItinerary) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return newValidationError(violationsRoot + ": expected a JSON object")
	}

	if err := json.Unmarshal(raw, into); err != nil {
		var typeErr *json.UnmarshalTypeError
		var syntaxErr *json.SyntaxError
		switch {
		case errors.As(err, &typeErr):
			field := typeErr.Field
			if field == "" {
				field = violationsRoot
			}
			return newValidationError(fmt.Sprintf("%s: expected %s, got %s", field, typeErr.Type, typeErr.Value))
		case errors.As(err, &syntaxErr):
			return newValidationError(fmt.Sprintf("%s: invalid JSON at offset %d", violationsRoot, syntaxErr.Offset))
		default:
			return newValidationError(fmt.Sprintf("%s: %v", violationsRoot, err))
		}
	}
	return nil
}

func describe(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		if i := strings.Index(ns, "."); i >= 0 {
			ns = ns[i+1:]
		}
		if fe.Param() != "" {
			out = append(out, fmt.Sprintf("%s: must satisfy %s=%s", ns, fe.Tag(), fe.Param()))
		} else {
			out = append(out, fmt.Sprintf("%s: must satisfy %s", ns, fe.Tag()))
		}
	}
	return out
}

func toActivity(a rawActivity, date time.Time, loc *time.Location) Activity {
	title := strings.TrimSpace(a.Title)
	if title == "" {
		title = defaultTitle
	}

	act := Activity{
		Title:      title,
		Notes:      strings.TrimSpace(a.Notes),
		Kind:       strings.TrimSpace(a.Kind),
		PlaceID:    strings.TrimSpace(a.PlaceID),
		Lat:        a.Lat,
		Lon:        a.Lon,
		PriceCents: a.PriceCents,
		BookingURL: strings.TrimSpace(a.BookingURL),
	}

	start, okStart := combine(date, a.StartTime, loc)
	end, okEnd := combine(date, a.EndTime, loc)
	if okStart {
		act.StartTime = &start
	}
	if okEnd {
		if okStart && end.Before(start) {
			end = end.Add(hoursPerDay)
		}
		act.EndTime = &end
	}
	return act
}

// combine joins a calendar date with an HH:mm clock string.
func combine(date time.Time, clock string, loc *time.Location) (time.Time, bool) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(clock))
	if m == nil {
		return time.Time{}, false
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	return time.Date(date.Year(), date.Month(), date.Day(), h, mm, 0, 0, loc), true
}

// parseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns midnight
// of that calendar date in loc.
func parseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), true
	}
	return time.Time{}, false
}

func truncateDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
