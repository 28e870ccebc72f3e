package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/bpmnlayout/pkg/buildinfo"
	"github.com/matzehuels/bpmnlayout/pkg/errors"
	docio "github.com/matzehuels/bpmnlayout/pkg/io"
	"github.com/matzehuels/bpmnlayout/pkg/pipeline"
)

// layoutResponse is a layout result together with the updated document.
type layoutResponse struct {
	Result   *pipeline.Result `json:"result"`
	Document docio.Document   `json:"document"`
}

type moveRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type recommendRequest struct {
	ElementIDs []string `json:"elementIds,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string         `json:"status"`
		Build  buildinfo.Info `json:"build"`
	}{"ok", buildinfo.Get()})
}

func (s *Server) handleListDiagrams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"ids": s.ws.IDs()})
}

// handleCreateDiagram stores the posted document. YAML is accepted with a
// yaml content type or ?format=yaml.
func (s *Server) handleCreateDiagram(w http.ResponseWriter, r *http.Request) {
	data, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d, err := pipeline.Parse(pipeline.Source{Content: data, Format: requestFormat(r)})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := s.ws.Add(d)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/diagrams/"+id)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleGetDiagram(w http.ResponseWriter, r *http.Request) {
	doc, err := s.ws.Document(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDiagram(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.Remove(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLayout lays out a stored diagram. The body holds the layout
// options and may be empty.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var opts pipeline.Options
	if err := s.decode(w, r, &opts); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Logger = s.logger.With("diagram", id)

	res, err := s.ws.Layout(r.Context(), id, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeDocument(w, r, id, res)
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.ws.Recommend(r.Context(), chi.URLParam(r, "id"), req.ElementIDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req moveRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.ws.Move(id, chi.URLParam(r, "elementID"), req.DX, req.DY); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeDocument(w, r, id, nil)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.ws.Undo(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeDocument(w, r, id, nil)
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.ws.Redo(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeDocument(w, r, id, nil)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.ws.History(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// handleBatch applies a batch. A failed batch still returns the per-op
// results, with the status of the error.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var b pipeline.Batch
	if err := s.decode(w, r, &b); err != nil {
		s.writeError(w, r, err)
		return
	}
	if b.Layout != nil {
		b.Layout.Logger = s.logger
	}
	res, err := s.ws.Batch(r.Context(), b)
	if err != nil && res == nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if err != nil {
		status = errors.HTTPStatus(err)
	}
	writeJSON(w, status, res)
}

func (s *Server) writeDocument(w http.ResponseWriter, r *http.Request, id string, res *pipeline.Result) {
	doc, err := s.ws.Document(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if res == nil {
		writeJSON(w, http.StatusOK, doc)
		return
	}
	writeJSON(w, http.StatusOK, layoutResponse{Result: res, Document: doc})
}

func requestFormat(r *http.Request) string {
	if f := r.URL.Query().Get("format"); f != "" {
		return f
	}
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		return string(docio.FormatYAML)
	}
	return string(docio.FormatJSON)
}
