package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
	"github.com/joeydtaylor/switchboard/pkg/logschema"
)

// IndexRequest is the body of POST /index.
type IndexRequest struct {
	IDs []string `json:"ids"`
}

// IndexResponse reports how many ids were admitted before the first rejection.
type IndexResponse struct {
	Accepted int    `json:"accepted"`
	Error    string `json:"error,omitempty"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req IndexRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody)).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	resp := IndexResponse{}
	for _, id := range req.IDs {
		if err := s.indexer.Index(r.Context(), id); err != nil {
			resp.Error = err.Error()
			status := http.StatusInternalServerError
			if errors.Is(err, types.ErrPipelineClosed) {
				status = http.StatusServiceUnavailable
			}
			s.NotifyLoggers(types.WarnLevel, "Index request rejected",
				logschema.FieldComponent, s.GetComponentMetadata(),
				logschema.FieldEvent, "Index",
				logschema.FieldResult, logschema.ResultFailure,
				logschema.FieldRecordID, id,
				logschema.FieldError, err,
			)
			writeJSON(w, status, resp)
			return
		}
		resp.Accepted++
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (s *Server) handleFlush(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	report := s.indexer.Flush(r.Context())
	status := http.StatusOK
	if !report.Complete() {
		status = http.StatusGatewayTimeout
	}
	writeJSON(w, status, report)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.indexer.Stats())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if c, ok := s.indexer.(interface{ IsClosed() bool }); ok && c.IsClosed() {
		http.Error(w, "closed", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
