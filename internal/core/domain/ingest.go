package domain

import "fmt"

// IngestStage is a step of the per-document ingestion state machine.
//
//	RECEIVED → READ → CHUNKED → EMBEDDED → STORED
//	RECEIVED → FAILED (from any stage)
type IngestStage string

// Ingestion stages.
const (
	StageReceived IngestStage = "received"
	StageRead     IngestStage = "read"
	StageChunked  IngestStage = "chunked"
	StageEmbedded IngestStage = "embedded"
	StageStored   IngestStage = "stored"
	StageFailed   IngestStage = "failed"
)

// IngestStatus is the terminal outcome of one document.
type IngestStatus string

// Ingestion outcomes.
const (
	IngestSucceeded IngestStatus = "succeeded"
	IngestFailed    IngestStatus = "failed"
)

// IngestInput is one document submitted to a batch.
type IngestInput struct {
	// DocumentID overrides the id derived from Name when set.
	DocumentID string

	// Name is the file name or path the bytes came from.
	Name string

	// Data is the raw PDF payload.
	Data []byte

	// ReadErr carries a failure that happened while staging the input
	// (e.g. the file vanished). The document is reported as failed.
	ReadErr error
}

// ID returns the effective document id.
func (in IngestInput) ID() string {
	if in.DocumentID != "" {
		return in.DocumentID
	}
	return DocumentIDFromPath(in.Name)
}

// IngestResult is the outcome of one document in a batch.
type IngestResult struct {
	DocumentID string       `json:"document_id"`
	Name       string       `json:"name"`
	Status     IngestStatus `json:"status"`
	ChunkCount int          `json:"chunk_count"`
	PageCount  int          `json:"page_count"`

	// Stage is the last stage reached. For failures it is the stage that failed.
	Stage IngestStage `json:"stage"`

	// Error describes the failure. Empty on success.
	Error string `json:"error,omitempty"`

	// Err is the underlying error for errors.Is checks. Not serialised.
	Err error `json:"-"`
}

// Succeeded reports whether the document was stored.
func (r IngestResult) Succeeded() bool {
	return r.Status == IngestSucceeded
}

// BatchIngestReport is the ordered set of results for one ingestion call.
// Results[i] always corresponds to input i.
type BatchIngestReport struct {
	Results   []IngestResult `json:"results"`
	Total     int            `json:"total"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Message   string         `json:"message"`
}

// NewBatchIngestReport summarises results in input order.
func NewBatchIngestReport(results []IngestResult) *BatchIngestReport {
	r := &BatchIngestReport{
		Results: results,
		Total:   len(results),
	}
	for _, res := range results {
		if res.Succeeded() {
			r.Succeeded++
		} else {
			r.Failed++
		}
	}
	r.Message = r.summary()
	return r
}

func (r *BatchIngestReport) summary() string {
	if r.Failed == 0 {
		return fmt.Sprintf("Successfully ingested %d PDF document(s).", r.Succeeded)
	}
	return fmt.Sprintf("Ingested %d of %d PDF document(s); %d failed.", r.Succeeded, r.Total, r.Failed)
}

// FailedResult builds a failed outcome for a document.
func FailedResult(in IngestInput, stage IngestStage, err error) IngestResult {
	return IngestResult{
		DocumentID: in.ID(),
		Name:       in.Name,
		Status:     IngestFailed,
		Stage:      stage,
		Error:      err.Error(),
		Err:        err,
	}
}
