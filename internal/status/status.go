// Package status normalizes the live state of subordinate systems into a
// uniform model. Each subordinate is represented by an Adapter that probes
// the cheap signal (TCP reachability or filesystem presence) and then
// enriches the result on a best-effort basis; the Registry aggregates all
// adapters concurrently into one ordered view.
package status

// State is the normalized lifecycle state of a subordinate system.
type State string

// The four states a subordinate system can report.
const (
	StateOnline    State = "online"
	StateOffline   State = "offline"
	StateInstalled State = "installed"
	StateMissing   State = "missing"
)

// SystemStatus is the normalized status of one subordinate system. It is
// produced fresh on every aggregation pass and never persisted. Detail is
// always populated, even for offline and missing systems.
type SystemStatus struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Icon   string   `json:"icon"`
	State  State    `json:"status"`
	Port   int      `json:"port,omitempty"`
	URL    string   `json:"url,omitempty"`
	Detail string   `json:"detail"`
	Tags   []string `json:"tags"`
}
