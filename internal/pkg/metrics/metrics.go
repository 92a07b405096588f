// Package metrics counts what happens across robot connections.
package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Metrics holds process-wide counters. The zero value is ready to use.
type Metrics struct {
	Accepted      int64
	Active        int64
	LoginsOK      int64
	LoginsFailed  int64
	Recharges     int64
	Secrets       int64
	errorsByFault sync.Map // string -> *int64
}

func (m *Metrics) IncAccepted()    { atomic.AddInt64(&m.Accepted, 1) }
func (m *Metrics) IncActive()      { atomic.AddInt64(&m.Active, 1) }
func (m *Metrics) DecActive()      { atomic.AddInt64(&m.Active, -1) }
func (m *Metrics) IncLoginOK()     { atomic.AddInt64(&m.LoginsOK, 1) }
func (m *Metrics) IncLoginFailed() { atomic.AddInt64(&m.LoginsFailed, 1) }
func (m *Metrics) IncRecharge()    { atomic.AddInt64(&m.Recharges, 1) }
func (m *Metrics) IncSecret()      { atomic.AddInt64(&m.Secrets, 1) }

// IncError counts a session that ended with the given fault.
func (m *Metrics) IncError(fault string) {
	v, _ := m.errorsByFault.LoadOrStore(fault, new(int64))
	atomic.AddInt64(v.(*int64), 1)
}

// Errors returns the error count for fault.
func (m *Metrics) Errors(fault string) int64 {
	v, ok := m.errorsByFault.Load(fault)
	if !ok {
		return 0
	}
	return atomic.LoadInt64(v.(*int64))
}

// Snapshot returns a read-only copy for HTTP output.
func (m *Metrics) Snapshot() map[string]any {
	errs := map[string]int64{}
	var faults []string
	m.errorsByFault.Range(func(k, _ any) bool {
		faults = append(faults, k.(string))
		return true
	})
	sort.Strings(faults)
	for _, f := range faults {
		errs[f] = m.Errors(f)
	}
	return map[string]any{
		"connections_accepted": atomic.LoadInt64(&m.Accepted),
		"connections_active":   atomic.LoadInt64(&m.Active),
		"logins_ok":            atomic.LoadInt64(&m.LoginsOK),
		"logins_failed":        atomic.LoadInt64(&m.LoginsFailed),
		"recharges":            atomic.LoadInt64(&m.Recharges),
		"secrets_retrieved":    atomic.LoadInt64(&m.Secrets),
		"errors":               errs,
	}
}
