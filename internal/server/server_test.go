package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := New(log.NewWithOptions(io.Discard, log.Options{}))
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

const (
	sampleNodes = "Cluster0\t4\tA B C D\t0.9\nCluster1\t2\tA B\t0.8\nCluster2\t2\tC D\t0.8\n"
	sampleEdges = "Cluster0\tCluster1\tdefault\nCluster0\tCluster2\tdefault\n"
)

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestConvertHiDeFToDDOT(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/convert", ConvertRequest{
		Input: Document{Format: FormatHiDeF, Nodes: sampleNodes, Edges: sampleEdges},
		To:    FormatDDOT,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out ConvertResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Output.Format != FormatDDOT {
		t.Errorf("format = %q, want ddot", out.Output.Format)
	}
	if !strings.Contains(out.Output.Ontology, "Cluster0\tCluster1\tdefault") {
		t.Errorf("ontology missing containment row:\n%s", out.Output.Ontology)
	}
}

func TestConvertHiDeFToHCX(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/convert", ConvertRequest{
		Input: Document{Format: FormatHiDeF, Nodes: sampleNodes, Edges: sampleEdges},
		To:    FormatHCX,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out ConvertResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Output.CX2) == 0 {
		t.Error("empty CX2 payload")
	}
}

func TestConvertRejectsUnknownFormat(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/convert", ConvertRequest{
		Input: Document{Format: "obo"},
		To:    FormatHCX,
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	var e errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatal(err)
	}
	if e.Code != "INVALID_FORMAT" {
		t.Errorf("code = %q, want INVALID_FORMAT", e.Code)
	}
}

func TestConvertRejectsInconsistentMembers(t *testing.T) {
	srv := newTestServer(t)

	// Cluster0 claims member C, but its only child covers just {A,B} and
	// no membership edge supplies C.
	resp := postJSON(t, srv.URL+"/convert", ConvertRequest{
		Input: Document{
			Format: FormatHiDeF,
			Nodes:  "Cluster0\t3\tA B C\t0.9\nCluster1\t2\tA B\t0.8\n",
			Edges:  "Cluster0\tCluster1\tdefault\n",
		},
		To: FormatDDOT,
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	var e errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatal(err)
	}
	if e.Code != "MALFORMED_HIERARCHY" {
		t.Errorf("code = %q, want MALFORMED_HIERARCHY", e.Code)
	}
}

func TestConvertRejectsMalformedInput(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/convert", ConvertRequest{
		Input: Document{Format: FormatHiDeF, Nodes: "only-one-column\n"},
		To:    FormatDDOT,
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
}

func TestDiff(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/diff", DiffRequest{
		Reference:   Document{Format: FormatHiDeF, Nodes: sampleNodes, Edges: sampleEdges},
		Alternative: Document{Format: FormatHiDeF, Nodes: "X\t2\tA B\t0.5\n", Edges: ""},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out DiffResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	// Cluster1 = {A,B} matches exactly; Cluster0 = {A,B,C,D} scores 0.5;
	// Cluster2 = {C,D} shares nothing with {A,B}.
	if out.Scores["Cluster1"] != 1 {
		t.Errorf("Cluster1 score = %v, want 1", out.Scores["Cluster1"])
	}
	if out.Scores["Cluster0"] != 0.5 {
		t.Errorf("Cluster0 score = %v, want 0.5", out.Scores["Cluster0"])
	}
	if out.Scores["Cluster2"] != 0 {
		t.Errorf("Cluster2 score = %v, want 0", out.Scores["Cluster2"])
	}
}
