package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/innopdf/policy-agent/analysis"
	"github.com/innopdf/policy-agent/api"
	"github.com/innopdf/policy-agent/chat"
	"github.com/innopdf/policy-agent/ingestion"
	"github.com/innopdf/policy-agent/llm"
	"github.com/innopdf/policy-agent/store"
)

type stubStore struct {
	records  []store.SectionRecord
	policies []store.Policy
}

func (s *stubStore) CreatePolicy(ctx context.Context, meta analysis.PolicyMetadata) (store.Policy, error) {
	policy := store.Policy{
		ID:            uuid.New(),
		Title:         meta.Title,
		Version:       meta.Version,
		EffectiveDate: meta.EffectiveDate,
		CreatedAt:     time.Now(),
	}
	s.policies = append(s.policies, policy)
	return policy, nil
}

func (s *stubStore) CreateSection(ctx context.Context, policyID uuid.UUID, section analysis.Section) (uuid.UUID, error) {
	s.records = append(s.records, store.SectionRecord{
		ID:       uuid.New(),
		PolicyID: policyID,
		Section:  section,
	})
	return s.records[len(s.records)-1].ID, nil
}

func (s *stubStore) AllSections(ctx context.Context) ([]store.SectionRecord, error) {
	return s.records, nil
}

func (s *stubStore) ListPolicies(ctx context.Context) ([]store.Policy, error) {
	return s.policies, nil
}

var _ store.Store = (*stubStore)(nil)

type stubExtractor struct {
	text string
}

func (s *stubExtractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	return s.text, nil
}

type stubLLM struct {
	answer string
}

func (s *stubLLM) Generate(ctx context.Context, messages []llm.Message) (string, error) {
	return s.answer, nil
}

func newTestServer(t *testing.T, st *stubStore) *api.Server {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	extractor := &stubExtractor{text: "제1장 총칙\n이 약관은 보험 계약 내용을 정합니다"}
	ingest := ingestion.NewService(st, extractor, nil, logger)
	chatSvc := chat.NewService(st, nil, &stubLLM{answer: "보험금은 청구 후 지급됩니다."}, logger)
	return api.New(ingest, chatSvc, st, logger)
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t, &stubStore{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUploadRejectsNonPDF(t *testing.T) {
	server := newTestServer(t, &stubStore{})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "terms.docx")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("not a pdf"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/policies", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestUploadRequiresFile(t *testing.T) {
	server := newTestServer(t, &stubStore{})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/policies", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUploadProcessesPDF(t *testing.T) {
	st := &stubStore{}
	server := newTestServer(t, st)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "여행자보험.pdf")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("%PDF-1.4 stub"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/policies", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success      bool `json:"success"`
		SectionCount int  `json:"sectionCount"`
		Policy       struct {
			Title string `json:"title"`
		} `json:"policy"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Fatal("expected success")
	}
	if resp.Policy.Title != "여행자보험" {
		t.Fatalf("expected policy title from filename, got %q", resp.Policy.Title)
	}
	if resp.SectionCount == 0 {
		t.Fatal("expected at least one stored section")
	}
	if len(st.records) != resp.SectionCount {
		t.Fatalf("store holds %d sections, response reports %d", len(st.records), resp.SectionCount)
	}
}

func TestListPolicies(t *testing.T) {
	st := &stubStore{policies: []store.Policy{{
		ID:      uuid.New(),
		Title:   "운전자보험",
		Version: "3.0",
	}}}
	server := newTestServer(t, st)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/policies", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Policies []struct {
			Title string `json:"title"`
		} `json:"policies"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Policies) != 1 || resp.Policies[0].Title != "운전자보험" {
		t.Fatalf("unexpected policies payload: %+v", resp.Policies)
	}
}

func TestChatRejectsEmptyMessages(t *testing.T) {
	server := newTestServer(t, &stubStore{})

	for _, payload := range []string{
		`{}`,
		`{"messages": []}`,
		`{"messages": [{"role": "user", "content": "   "}]}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("payload %s: expected 400, got %d", payload, rec.Code)
		}
	}
}

func TestChatAnswersWithSources(t *testing.T) {
	st := &stubStore{records: []store.SectionRecord{{
		ID:          uuid.New(),
		PolicyTitle: "여행자보험",
		Section: analysis.Section{
			Title:    "보험금 지급",
			Content:  "보험금 지급 절차를 안내합니다",
			Order:    0,
			Keywords: []string{"보험금", "지급", "절차"},
		},
	}}}
	server := newTestServer(t, st)

	payload := `{"messages": [{"role": "user", "content": "보험금 지급 절차가 궁금합니다"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		Role    string `json:"role"`
		Content string `json:"content"`
		Sources []struct {
			Title string `json:"title"`
		} `json:"sources"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Role != llm.RoleAssistant {
		t.Fatalf("expected assistant role, got %q", resp.Role)
	}
	if resp.Content == "" {
		t.Fatal("expected non-empty answer")
	}
	if len(resp.Sources) != 1 || resp.Sources[0].Title != "보험금 지급" {
		t.Fatalf("unexpected sources: %+v", resp.Sources)
	}
}
