package output

import (
	"encoding/json"
	"io"

	"github.com/arthur-debert/dtsync/pkg/types"
	"gopkg.in/yaml.v3"
)

// encoder is satisfied by both json.Encoder and yaml.Encoder
type encoder interface {
	Encode(v interface{}) error
}

// machineRenderer provides structured output for machine consumption
type machineRenderer struct {
	enc   encoder
	flush func() error
}

func newJSONRenderer(w io.Writer) *machineRenderer {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return &machineRenderer{enc: enc, flush: func() error { return nil }}
}

func newYAMLRenderer(w io.Writer) *machineRenderer {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return &machineRenderer{enc: enc, flush: enc.Close}
}

// resultView adds the error text that ItemResult keeps out of serialization
type resultView struct {
	types.ItemResult `yaml:",inline"`
	Error            string `json:"error,omitempty" yaml:"error,omitempty"`
}

type reportView struct {
	DryRun    bool            `json:"dry_run" yaml:"dry_run"`
	OK        bool            `json:"ok" yaml:"ok"`
	Mutations int             `json:"mutations" yaml:"mutations"`
	Counts    map[string]int  `json:"counts" yaml:"counts"`
	Warnings  []types.Warning `json:"warnings" yaml:"warnings"`
	Results   []resultView    `json:"results" yaml:"results"`
}

func (r *machineRenderer) RenderReport(report *types.Report) error {
	view := reportView{
		DryRun:    report.DryRun,
		OK:        report.OK(),
		Mutations: report.Mutations(),
		Counts:    report.Counts,
		Warnings:  nonNil(report.Warnings),
		Results:   make([]resultView, 0, len(report.Results)),
	}
	for _, res := range report.Results {
		rv := resultView{ItemResult: res}
		if res.Err != nil {
			rv.Error = res.Err.Error()
		}
		view.Results = append(view.Results, rv)
	}
	return r.encode(view)
}

func (r *machineRenderer) RenderPlan(plan []types.PlanItem, warnings []types.Warning) error {
	if plan == nil {
		plan = []types.PlanItem{}
	}
	return r.encode(planView{Plan: plan, Warnings: nonNil(warnings)})
}

func (r *machineRenderer) RenderError(err error) error {
	return r.encode(map[string]string{"error": err.Error()})
}

func (r *machineRenderer) encode(v interface{}) error {
	if err := r.enc.Encode(v); err != nil {
		return err
	}
	return r.flush()
}

func nonNil(w []types.Warning) []types.Warning {
	if w == nil {
		return []types.Warning{}
	}
	return w
}
