package telemetry

import (
	"sync"
)

type Report struct {
	Kind   string
	ID     string
	Params []any
	Count  int64
}

// MemoryAPI records every report in memory so tests can assert on them.
type MemoryAPI struct {
	mu      sync.Mutex
	reports []Report
}

func (m *MemoryAPI) add(r Report) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, r)
}

func (m *MemoryAPI) ReportBroken(id string, params ...any) {
	m.add(Report{Kind: "broken", ID: id, Params: params})
}

func (m *MemoryAPI) ReportWarning(id string, params ...any) {
	m.add(Report{Kind: "warning", ID: id, Params: params})
}

func (m *MemoryAPI) ReportDebug(msg string, params ...any) {
	m.add(Report{Kind: "debug", ID: msg, Params: params})
}

func (m *MemoryAPI) ReportCount(id string, count int64) {
	m.add(Report{Kind: "count", ID: id, Count: count})
}

// Reports returns the reports of the given kind, or all of them when kind is empty.
func (m *MemoryAPI) Reports(kind string) []Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Report
	for _, r := range m.reports {
		if kind == "" || r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// Count returns the last count reported under id.
func (m *MemoryAPI) Count(id string) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.reports) - 1; i >= 0; i-- {
		r := m.reports[i]
		if r.Kind == "count" && r.ID == id {
			return r.Count, true
		}
	}
	return 0, false
}
