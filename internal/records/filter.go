package records

// InYear reports whether d belongs to the calendar year.
func InYear(d Date, year int) bool {
	return !d.IsZero() && d.Year() == year
}

// FilterRevenuesByYear keeps revenues dated within the calendar year.
func FilterRevenuesByYear(revenues []Revenue, year int) []Revenue {
	out := make([]Revenue, 0, len(revenues))
	for _, r := range revenues {
		if InYear(r.Date, year) {
			out = append(out, r)
		}
	}
	return out
}

// FilterRevenuesByPeriod keeps revenues dated within the inclusive period.
func FilterRevenuesByPeriod(revenues []Revenue, period Period) []Revenue {
	out := make([]Revenue, 0, len(revenues))
	for _, r := range revenues {
		if period.Contains(r.Date) {
			out = append(out, r)
		}
	}
	return out
}

// FilterExpensesByYear keeps expenses of the calendar year, optionally only deductible ones.
func FilterExpensesByYear(expenses []Expense, year int, deductibleOnly bool) []Expense {
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if deductibleOnly && !e.Deductible {
			continue
		}
		if InYear(e.Date, year) {
			out = append(out, e)
		}
	}
	return out
}

// FilterExpensesByPeriod keeps expenses within the period, optionally only deductible ones.
func FilterExpensesByPeriod(expenses []Expense, period Period, deductibleOnly bool) []Expense {
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if deductibleOnly && !e.Deductible {
			continue
		}
		if period.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

// FilterProperties keeps properties whose id is listed in ids.
func FilterProperties(properties []Property, ids []string) []Property {
	allowed := idSet(ids)
	out := make([]Property, 0, len(properties))
	for _, p := range properties {
		if _, ok := allowed[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}

// PropertyAllowlist builds a membership test over property ids. An empty list allows everything.
func PropertyAllowlist(ids []string) func(string) bool {
	if len(ids) == 0 {
		return func(string) bool { return true }
	}
	allowed := idSet(ids)
	return func(id string) bool {
		_, ok := allowed[id]
		return ok
	}
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
