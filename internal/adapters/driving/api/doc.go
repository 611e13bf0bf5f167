// Package api exposes the question-answering pipelines over HTTP.
//
// Routes:
//   - GET  /                 health check
//   - POST /api/ingest       multipart upload of one or more PDFs ("files")
//   - POST /api/query        {"query": "..."} returning an answer with sources
//   - POST /api/clear_db     drops every indexed passage
//   - GET  /api/documents    lists the indexed documents
//
// Errors are returned as {"detail": "..."}.
package api
