package knowledge

import (
	"encoding/json"
	"net/http"

	"github.com/drivelane/showroom-ai/pkg/logging"
)

// Handler exposes knowledge ingestion over HTTP.
type Handler struct {
	ingestor *Ingestor
	logger   *logging.Logger
}

func NewHandler(ingestor *Ingestor, logger *logging.Logger) *Handler {
	if ingestor == nil {
		panic("knowledge: ingestor required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{ingestor: ingestor, logger: logger}
}

// AddEntriesRequest is the POST /knowledge payload.
type AddEntriesRequest struct {
	Entries []Entry `json:"entries"`
}

type addEntriesResponse struct {
	Ingested int `json:"ingested"`
}

// AddEntries handles POST /knowledge.
func (h *Handler) AddEntries(w http.ResponseWriter, r *http.Request) {
	var req AddEntriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if len(req.Entries) == 0 {
		http.Error(w, `{"error":"entries required"}`, http.StatusBadRequest)
		return
	}
	for _, e := range req.Entries {
		if e.Content == "" {
			http.Error(w, `{"error":"entry content required"}`, http.StatusBadRequest)
			return
		}
	}

	if err := h.ingestor.AddEntries(r.Context(), req.Entries); err != nil {
		h.logger.Error("knowledge ingestion failed", "error", err)
		http.Error(w, `{"error":"ingestion failed"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(addEntriesResponse{Ingested: len(req.Entries)})
}
