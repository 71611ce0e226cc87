package internaldefs

import (
	"strconv"
	"strings"

	goAset "github.com/mansetdig/goAset"
)

// BucketCount is the number of histogram buckets, the last one unbounded.
const BucketCount = len(goAset.HistogramBoundsMillis) + 1

// CounterDef names one exported counter.
type CounterDef struct {
	ID   goAset.MetricID
	Name string
	Help string
}

// HistogramDef names one exported histogram.
type HistogramDef struct {
	ID   goAset.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: goAset.MetricLoginSuccess, Name: "goaset_login_success_total", Help: "Logins that reached the authenticated state."},
	{ID: goAset.MetricLoginRejected, Name: "goaset_login_rejected_total", Help: "Logins the backend refused."},
	{ID: goAset.MetricLoginFailure, Name: "goaset_login_failure_total", Help: "Logins lost to transport, malformed answers or the session store."},
	{ID: goAset.MetricRefreshSuccess, Name: "goaset_refresh_success_total", Help: "Successful credential refreshes."},
	{ID: goAset.MetricRefreshFailure, Name: "goaset_refresh_failure_total", Help: "Failed credential refreshes."},
	{ID: goAset.MetricBootstrapAuthenticated, Name: "goaset_bootstrap_authenticated_total", Help: "Bootstraps that ended authenticated."},
	{ID: goAset.MetricBootstrapUnauthenticated, Name: "goaset_bootstrap_unauthenticated_total", Help: "Bootstraps that ended unauthenticated."},
	{ID: goAset.MetricRoleResolved, Name: "goaset_role_resolved_total", Help: "Roles taken from the backend."},
	{ID: goAset.MetricRoleDefaulted, Name: "goaset_role_defaulted_total", Help: "Role resolutions that fell back to the cached or default role."},
	{ID: goAset.MetricLogout, Name: "goaset_logout_total", Help: "Logout calls."},
	{ID: goAset.MetricSessionCleared, Name: "goaset_session_cleared_total", Help: "Sessions cleared for any reason."},
	{ID: goAset.MetricStateTransition, Name: "goaset_state_transition_total", Help: "Observable authentication state changes."},
}

var HistogramDefs = []HistogramDef{
	{ID: goAset.MetricBackendLatency, Name: "goaset_backend_latency_seconds", Help: "Backend round-trip latency."},
}

// EventsDroppedName is the counter for session events lost to backpressure.
const (
	EventsDroppedName = "goaset_events_dropped_total"
	EventsDroppedHelp = "Session events dropped because the dispatcher buffer was full."
)

// UpperBounds returns the finite bucket bounds in seconds.
func UpperBounds() []float64 {
	out := make([]float64, len(goAset.HistogramBoundsMillis))
	for i, ms := range goAset.HistogramBoundsMillis {
		out[i] = float64(ms) / 1000
	}
	return out
}

// BoundLabels returns the le label of every bucket, ending with "+Inf".
func BoundLabels() []string {
	out := make([]string, 0, BucketCount)
	for _, b := range UpperBounds() {
		out = append(out, strconv.FormatFloat(b, 'g', -1, 64))
	}
	return append(out, "+Inf")
}

// BoundSuffixes returns BoundLabels in a form usable inside instrument names.
func BoundSuffixes() []string {
	labels := BoundLabels()
	out := make([]string, len(labels))
	for i, l := range labels {
		if l == "+Inf" {
			out[i] = "inf"
			continue
		}
		out[i] = strings.ReplaceAll(l, ".", "_")
	}
	return out
}

// NormalizeBuckets copies raw into a fixed-size array, ignoring extra entries.
func NormalizeBuckets(raw []uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [BucketCount]uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
