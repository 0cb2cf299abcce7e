package domain

// HealthRecord is a single probe observation of a processor endpoint.
// Records are rebuilt on every probe cycle and never mutated in place.
type HealthRecord struct {
	Name            string `json:"name"`
	URL             string `json:"url"`
	Failing         bool   `json:"failing"`
	MinResponseTime int    `json:"minResponseTime"`
}

// DefaultSeed is the route served before any probe cycle has published a
// verdict: the default processor, assumed healthy.
func DefaultSeed(url string) HealthRecord {
	return HealthRecord{Name: DefaultProcessor, URL: url}
}

// Compare picks the better of two probe records. A nil record loses
// outright (nothing could be retrieved from that endpoint); a failing
// record loses to a healthy one regardless of response time; otherwise the
// strictly lower MinResponseTime wins and exact ties go to tieBreak.
// Both nil yields nil.
func Compare(a, b *HealthRecord, tieBreak func(a, b *HealthRecord) *HealthRecord) *HealthRecord {
	if a == nil && b == nil {
		return nil
	}
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.Failing && !b.Failing {
		return b
	}
	if !a.Failing && b.Failing {
		return a
	}
	if a.MinResponseTime == b.MinResponseTime {
		return tieBreak(a, b)
	}
	if a.MinResponseTime < b.MinResponseTime {
		return a
	}
	return b
}

// PreferDefault is the production tie breaker: when two records are equally
// good the default route wins.
func PreferDefault(a, b *HealthRecord) *HealthRecord {
	if a.Name == DefaultProcessor {
		return a
	}
	return b
}
