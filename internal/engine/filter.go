package engine

import (
	"fmt"
)

// DateFilterSpec selects events by day-arity and by position relative to today.
type DateFilterSpec struct {
	IncludeSingleDay bool
	IncludeMultiDay  bool
	IncludeToday     bool
	IncludeFuture    bool
	IncludePast      bool
}

// AllDates includes every event.
func AllDates() DateFilterSpec {
	return DateFilterSpec{true, true, true, true, true}
}

// Matches decides whether r passes the filter on day today.
//
// The order is significant. Exclusions come first and any of them rejects
// outright: day-arity, past, future, spanning today. Then inclusions are tried
// in priority order: day-arity, today, future, past. Anything left is rejected.
func (s DateFilterSpec) Matches(r *DateRange, today Date) (bool, error) {
	if r == nil {
		return false, ErrMissingDate
	}

	multi := r.IsMultiDay()
	single := !multi
	past := r.End.Before(today)
	future := r.End.After(today)
	spansToday := r.Contains(today)

	if (!s.IncludeSingleDay && single) || (!s.IncludeMultiDay && multi) {
		return false, nil
	}
	if !s.IncludePast && past {
		return false, nil
	}
	if !s.IncludeFuture && future {
		return false, nil
	}
	if !s.IncludeToday && spansToday {
		return false, nil
	}

	if (s.IncludeSingleDay && single) || (s.IncludeMultiDay && multi) {
		return true, nil
	}
	if s.IncludeToday && spansToday {
		return true, nil
	}
	if s.IncludeFuture && future {
		return true, nil
	}
	if s.IncludePast && past {
		return true, nil
	}
	return false, nil
}

// CategoryFilter is an allow-list over the known event categories.
type CategoryFilter struct {
	include map[string]bool
}

// NewCategoryFilter requires a flag for every known category and nothing else.
func NewCategoryFilter(known []string, include map[string]bool) (*CategoryFilter, error) {
	f := &CategoryFilter{include: make(map[string]bool, len(known))}
	for _, c := range known {
		v, ok := include[c]
		if !ok {
			return nil, fmt.Errorf("%w: no flag for category %q", ErrFilter, c)
		}
		f.include[c] = v
	}
	if len(include) != len(f.include) {
		for c := range include {
			if _, ok := f.include[c]; !ok {
				return nil, fmt.Errorf("%w: unknown category %q", ErrFilter, c)
			}
		}
	}
	return f, nil
}

// Allows reports whether category is included; unknown categories are an error.
func (f *CategoryFilter) Allows(category string) (bool, error) {
	v, ok := f.include[category]
	if !ok {
		return false, fmt.Errorf("%w: unknown category %q", ErrFilter, category)
	}
	return v, nil
}

// RelativeTimeFilter is an allow-list over today/future/past.
type RelativeTimeFilter struct {
	allowed map[RelativeTime]bool
}

// NewRelativeTimeFilter builds the filter from the three flags.
func NewRelativeTimeFilter(today, future, past bool) RelativeTimeFilter {
	return RelativeTimeFilter{allowed: map[RelativeTime]bool{
		RelToday:  today,
		RelFuture: future,
		RelPast:   past,
	}}
}

// Allows reports whether rel is in the allow-list.
func (f RelativeTimeFilter) Allows(rel RelativeTime) bool {
	return f.allowed[rel]
}

// RoleFilter is an allow-list over birthday roles.
type RoleFilter struct {
	allowed map[Role]bool
}

// NewRoleFilter builds the filter from one flag per role.
func NewRoleFilter(colleague, child, partner, other bool) RoleFilter {
	return RoleFilter{allowed: map[Role]bool{
		RoleColleague: colleague,
		RoleChild:     child,
		RolePartner:   partner,
		RoleOther:     other,
	}}
}

// AllRoles allows every role.
func AllRoles() RoleFilter {
	return NewRoleFilter(true, true, true, true)
}

// Allows reports whether role is in the allow-list.
func (f RoleFilter) Allows(role Role) bool {
	return f.allowed[role]
}
