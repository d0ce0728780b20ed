package types

// ResolvedItem is a concrete source file produced by expanding one group.
// It only lives for the duration of a run.
type ResolvedItem struct {
	// Source is the absolute path of the file on disk
	Source string
	// RelPath is the slash-separated path relative to the effective basedir,
	// with host suffixes stripped from every component. Renaming has not
	// been applied yet.
	RelPath string
	// Group is the owning group's name
	Group string
	// Host is the classification of the source entry
	Host HostClass
}

// PlanItem is one entry of the sync plan, the sole input of the executor
type PlanItem struct {
	Source      string `json:"source" yaml:"source"`
	Destination string `json:"destination" yaml:"destination"`
	Group       string `json:"group" yaml:"group"`
	// RelPath is the pre-rename relative path; it locates the staged copy
	RelPath string `json:"rel_path" yaml:"rel_path"`
	// StagingPath is the absolute path of the staged copy for the symlink
	// method and empty for the copy method
	StagingPath    string         `json:"staging_path,omitempty" yaml:"staging_path,omitempty"`
	Method         Method         `json:"method" yaml:"method"`
	Scope          Scope          `json:"scope" yaml:"scope"`
	Renderable     bool           `json:"renderable" yaml:"renderable"`
	AllowOverwrite bool           `json:"allow_overwrite" yaml:"allow_overwrite"`
	Context        map[string]any `json:"-" yaml:"-"`
}

// ItemState is the terminal state of a plan item after execution
type ItemState string

const (
	StatePending ItemState = "pending"
	StateStaged  ItemState = "staged"
	StateDone    ItemState = "done"
	StateSkipped ItemState = "skipped"
	StateFailed  ItemState = "failed"
)

// ItemAction names what was done (or, in dry-run, what would be done)
type ItemAction string

const (
	ActionCopy     ItemAction = "copy"
	ActionLink     ItemAction = "link"
	ActionRestage  ItemAction = "restage"
	ActionReplace  ItemAction = "replace"
	ActionUpToDate ItemAction = "up-to-date"
	ActionConflict ItemAction = "conflict"
	ActionError    ItemAction = "error"
)

// ItemResult records the outcome of executing one plan item
type ItemResult struct {
	Item   PlanItem   `json:"item" yaml:"item"`
	State  ItemState  `json:"state" yaml:"state"`
	Action ItemAction `json:"action" yaml:"action"`
	Reason string     `json:"reason,omitempty" yaml:"reason,omitempty"`
	Err    error      `json:"-" yaml:"-"`
	// Mutations counts the filesystem writes performed for the item
	Mutations int `json:"mutations" yaml:"mutations"`
}

// Warning is a non-fatal observation made while resolving sources
type Warning struct {
	Group   string `json:"group" yaml:"group"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
	Message string `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	if w.Path == "" {
		return w.Group + ": " + w.Message
	}
	return w.Group + ": " + w.Message + " (" + w.Path + ")"
}
