// Package httpapi exposes the ingestion and search services over HTTP.
//
// Routes:
//
//	POST /ingest   multipart "files" parts, or a "directory" form field
//	POST /search   {"query": "...", "top_k": 5}
//	GET  /health   liveness plus store totals
//	GET  /metrics  Prometheus exposition, when a metrics handler is supplied
//
// Caller errors map to 400, unavailable backends to 503 and anything else to 500.
package httpapi
