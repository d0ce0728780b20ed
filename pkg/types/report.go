package types

// Report is the outcome of one pipeline run
type Report struct {
	DryRun   bool           `json:"dry_run" yaml:"dry_run"`
	Warnings []Warning      `json:"warnings" yaml:"warnings"`
	Results  []ItemResult   `json:"results" yaml:"results"`
	Counts   map[string]int `json:"counts" yaml:"counts"`
}

// Tally recomputes Counts from Results
func (r *Report) Tally() {
	r.Counts = map[string]int{
		string(StateDone):    0,
		string(StateSkipped): 0,
		string(StateFailed):  0,
	}
	for _, res := range r.Results {
		r.Counts[string(res.State)]++
	}
}

// Failed returns the results that ended in StateFailed
func (r *Report) Failed() []ItemResult {
	var failed []ItemResult
	for _, res := range r.Results {
		if res.State == StateFailed {
			failed = append(failed, res)
		}
	}
	return failed
}

// OK reports whether no item failed
func (r *Report) OK() bool {
	return len(r.Failed()) == 0
}

// Mutations returns the number of filesystem writes performed by the run
func (r *Report) Mutations() int {
	n := 0
	for _, res := range r.Results {
		n += res.Mutations
	}
	return n
}
