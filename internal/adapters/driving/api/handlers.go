package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// multipartMemory is how much of an upload is held in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

type rootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ingestResponse struct {
	IngestedDocuments int `json:"ingested_documents"`
}

type queryRequest struct {
	Query string `json:"query"`
}

type sourceResponse struct {
	Document string `json:"document"`
	Page     *int   `json:"page"`
	Snippet  string `json:"snippet"`
}

type queryResponse struct {
	Answer  string           `json:"answer"`
	Sources []sourceResponse `json:"sources"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type documentResponse struct {
	Name     string `json:"name"`
	Passages int    `json:"passages"`
	Pages    int    `json:"pages"`
}

type documentsResponse struct {
	Documents []documentResponse `json:"documents"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{
		Status:  "ok",
		Message: "docqa is running. POST PDFs to /api/ingest and questions to /api/query.",
	})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusUnprocessableEntity, "expected a multipart form with one or more files")
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "no files uploaded")
		return
	}

	for _, fh := range files {
		if !isPDF(fh.Filename) {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("%v: only PDF files are supported, got %q", domain.ErrUnsupportedFileType, fh.Filename))
			return
		}
	}

	total := 0
	for _, fh := range files {
		n, err := s.ingestFile(r, fh)
		if err != nil {
			s.logger.Error("ingest failed",
				slog.String("document", fh.Filename),
				slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		total += n
	}

	writeJSON(w, http.StatusOK, ingestResponse{IngestedDocuments: total})
}

func (s *Server) ingestFile(r *http.Request, fh *multipart.FileHeader) (int, error) {
	name := filepath.Base(fh.Filename)
	f, err := fh.Open()
	if err != nil {
		return 0, domain.NewDocumentProcessingError(name, fmt.Errorf("open upload: %w", err))
	}
	defer f.Close()

	return s.ports.Indexing.Ingest(r.Context(), name, f)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "request body must be JSON with a \"query\" field")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusUnprocessableEntity, "query must not be empty")
		return
	}

	result, err := s.ports.Answer.Answer(r.Context(), req.Query)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger.Error("query failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toQueryResponse(result))
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.ports.Catalog.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "vector index cleared"})
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.ports.Catalog.Documents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := documentsResponse{Documents: make([]documentResponse, 0, len(docs))}
	for _, d := range docs {
		resp.Documents = append(resp.Documents, documentResponse{
			Name:     d.Name,
			Passages: d.Passages,
			Pages:    d.Pages,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// toQueryResponse renders unknown pages as null.
func toQueryResponse(result *domain.AnswerResult) queryResponse {
	resp := queryResponse{
		Answer:  result.Answer,
		Sources: make([]sourceResponse, 0, len(result.Sources)),
	}
	for _, src := range result.Sources {
		out := sourceResponse{Document: src.Document, Snippet: src.Snippet}
		if src.Page != domain.UnknownPage {
			page := src.Page
			out.Page = &page
		}
		resp.Sources = append(resp.Sources, out)
	}
	return resp
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
