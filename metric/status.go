package metric

import "sort"

// Status enumerates every registered metric's incarnations for
// diagnostics and admin surfaces. It is allowed to race with an
// in-flight Snapshot: neither operation mutates registry state, so the
// view is eventually consistent.
func (r *Registry) Status() []MetricDescriptor {
	var out []MetricDescriptor
	r.metrics.Range(func(_, v interface{}) bool {
		out = append(out, v.(*Metric).descriptors()...)
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		return snapshotLess(out[i].Name, out[i].Tags, out[j].Name, out[j].Tags)
	})
	return out
}
