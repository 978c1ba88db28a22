package server

import (
	"encoding/json"
	"net/http"

	hkerrors "github.com/cellmaps/hierkit/pkg/errors"
	"github.com/cellmaps/hierkit/pkg/hierdiff"
)

// ConvertRequest carries one hierarchy document and the target format.
type ConvertRequest struct {
	Input Document `json:"input"`
	To    string   `json:"to"`
}

// ConvertResponse carries the converted document.
type ConvertResponse struct {
	Output Document `json:"output"`
}

// DiffRequest carries the two hierarchies to compare.
type DiffRequest struct {
	Reference   Document `json:"reference"`
	Alternative Document `json:"alternative"`
}

// DiffResponse maps each reference system to its best Jaccard similarity
// in the alternative.
type DiffResponse struct {
	Scores map[string]float64 `json:"scores"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	h, err := req.Input.decode()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if err := h.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity,
			hkerrors.Wrap(hkerrors.ErrCodeMalformedHierarchy, err, "validate hierarchy"))
		return
	}

	out, err := encodeDocument(h, req.To)
	if err != nil {
		status := http.StatusBadRequest
		if hkerrors.Is(err, hkerrors.ErrCodeInternal) {
			status = http.StatusInternalServerError
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, ConvertResponse{Output: out})
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	var req DiffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ref, err := req.Reference.decode()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	alt, err := req.Alternative.decode()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	hierdiff.Compare(ref, alt)

	scores := make(map[string]float64, ref.NodeCount())
	for _, id := range ref.NodeIDs() {
		n, _ := ref.Node(id)
		if score, ok := n.Attr[hierdiff.AttrRobustness].(float64); ok {
			scores[id] = score
		}
	}
	writeJSON(w, http.StatusOK, DiffResponse{Scores: scores})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := errorResponse{Error: hkerrors.UserMessage(err)}
	if code := hkerrors.GetCode(err); code != "" {
		resp.Code = string(code)
	}
	writeJSON(w, status, resp)
}
