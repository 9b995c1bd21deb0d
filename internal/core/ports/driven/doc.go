// Package driven lists what the services need from the outside world:
// a DocumentReader for PDF text, a Chunker, an EmbeddingService and a Store
// (VectorStore plus DocumentCatalog). ConfigStore and EmbeddingValidator
// back the settings service.
package driven
