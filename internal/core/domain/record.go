package domain

import "time"

const (
	// AbsentValue marks an insurance field the document did not carry.
	AbsentValue = "No encontrado"
	// NotApplicable marks an empty circulation-permit field.
	NotApplicable = "No aplica"
)

// ExtractedRecord maps the fixed field keys of one format to trimmed values.
type ExtractedRecord map[string]string

func (r ExtractedRecord) Clone() ExtractedRecord {
	out := make(ExtractedRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// DocumentResult is the successful output of processing one document.
type DocumentResult struct {
	Format   DocumentFormat      `json:"format"`
	Fields   ExtractedRecord     `json:"fields"`
	Title    string              `json:"title,omitempty"`
	Patterns map[string]string   `json:"patterns,omitempty"`
	Warnings []ValidationWarning `json:"warnings,omitempty"`
}

// SourceFile is one input of a batch.
type SourceFile struct {
	Name     string
	MimeType string
	Data     []byte
}

// Outcome is the per-document result of a batch: Result is set on success,
// Err on failure.
type Outcome struct {
	Index    int             `json:"index"`
	FileName string          `json:"file_name"`
	Result   *DocumentResult `json:"result,omitempty"`
	Err      error           `json:"-"`
	Error    string          `json:"error,omitempty"`
	Duration time.Duration   `json:"-"`
}

func (o Outcome) Succeeded() bool {
	return o.Result != nil && o.Err == nil
}

// FailureReport is the flattened failure entry shown to users.
type FailureReport struct {
	FileName string `json:"file_name"`
	Error    string `json:"error"`
}

// BatchResult holds one outcome per submitted file, in submission order.
type BatchResult struct {
	Expected DocumentFormat `json:"expected_format,omitempty"`
	Outcomes []Outcome      `json:"outcomes"`
	Elapsed  time.Duration  `json:"-"`
}

func (b BatchResult) Successes() []Outcome {
	out := make([]Outcome, 0, len(b.Outcomes))
	for _, o := range b.Outcomes {
		if o.Succeeded() {
			out = append(out, o)
		}
	}
	return out
}

func (b BatchResult) Failures() []FailureReport {
	out := make([]FailureReport, 0)
	for _, o := range b.Outcomes {
		if o.Succeeded() {
			continue
		}
		msg := o.Error
		if msg == "" && o.Err != nil {
			msg = o.Err.Error()
		}
		out = append(out, FailureReport{FileName: o.FileName, Error: msg})
	}
	return out
}

// ProgressStatus mirrors the settled state of a single document.
type ProgressStatus string

const (
	ProgressFulfilled ProgressStatus = "fulfilled"
	ProgressRejected  ProgressStatus = "rejected"
)

// ProgressEvent is emitted once per completed document.
type ProgressEvent struct {
	Processed            int            `json:"progress"`
	Total                int            `json:"total"`
	FileName             string         `json:"file"`
	Status               ProgressStatus `json:"status"`
	Error                string         `json:"error,omitempty"`
	EstimatedMsRemaining int64          `json:"estimated_ms_remaining"`
	Successes            int            `json:"successes"`
	Failures             int            `json:"failures"`
}
