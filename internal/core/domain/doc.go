// Package domain holds the pipeline's value types and sentinel errors.
//
// A PDF enters as an IngestInput, becomes a Document of per-page text, is cut
// into Chunks, and leaves the pipeline as StoredRecords: one vector plus the
// chunk text and its RecordMetadata. Queries come back as SearchResults
// ordered by score. BatchIngestReport collects one IngestResult per input.
//
// Nothing here imports other sercha-pdf packages or third-party modules.
package domain
