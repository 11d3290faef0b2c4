package docstore

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tender-insight-hub/internal/common/config"
	"tender-insight-hub/internal/common/errors"
	"tender-insight-hub/internal/common/logger"
	"tender-insight-hub/internal/models"
)

// stubTransport answers every Elasticsearch request from a handler so the
// store logic can be exercised without a cluster.
type stubTransport struct {
	handler func(req *http.Request) (*http.Response, error)
}

func (s *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return s.handler(req)
}

func esResponse(status int, body string) *http.Response {
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("X-Elastic-Product", "Elasticsearch")
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestStore(t *testing.T, handler func(req *http.Request) (*http.Response, error)) *Store {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://localhost:9200"},
		Transport: &stubTransport{handler: handler},
	})
	require.NoError(t, err)

	cfg := config.ElasticsearchConfig{
		TenderIndex:    "tenders",
		ProfileIndex:   "company-profiles",
		ReadinessIndex: "readiness-scores",
		WorkspaceIndex: "workspace-items",
	}
	return New(client, cfg, logger.NewTestLogger(t))
}

func TestPutTender_IndexesUnderTenderID(t *testing.T) {
	var gotMethod, gotPath, gotBody string
	store := newTestStore(t, func(req *http.Request) (*http.Response, error) {
		gotMethod = req.Method
		gotPath = req.URL.Path
		if req.Body != nil {
			b, _ := io.ReadAll(req.Body)
			gotBody = string(b)
		}
		return esResponse(201, `{"result":"created"}`), nil
	})

	err := store.PutTender(context.Background(), &models.Tender{
		TenderID: "ocds-001",
		Title:    "Water treatment upgrade",
	})
	require.NoError(t, err)
	assert.Equal(t, "PUT", gotMethod)
	assert.Equal(t, "/tenders/_doc/ocds-001", gotPath)
	assert.Contains(t, gotBody, `"tender_id":"ocds-001"`)
}

func TestGetTender_DecodesSource(t *testing.T) {
	store := newTestStore(t, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/tenders/_doc/ocds-001", req.URL.Path)
		return esResponse(200, `{
			"_id": "ocds-001",
			"found": true,
			"_source": {
				"tender_id": "ocds-001",
				"title": "Water treatment upgrade",
				"description": "Upgrade of the municipal water treatment works",
				"province": "Limpopo",
				"budget_min": 1000000,
				"budget_max": 1000000
			}
		}`), nil
	})

	tender, err := store.GetTender(context.Background(), "ocds-001")
	require.NoError(t, err)
	assert.Equal(t, "Water treatment upgrade", tender.Title)
	assert.Equal(t, "Limpopo", tender.Province)
	require.NotNil(t, tender.BudgetMin)
	assert.Equal(t, 1000000.0, *tender.BudgetMin)
}

func TestGetTender_MissingDocumentIsNotFound(t *testing.T) {
	store := newTestStore(t, func(req *http.Request) (*http.Response, error) {
		return esResponse(404, `{"_id":"missing","found":false}`), nil
	})

	_, err := store.GetTender(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestMGetTenders_SkipsMissingDocs(t *testing.T) {
	store := newTestStore(t, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/tenders/_mget", req.URL.Path)
		return esResponse(200, `{
			"docs": [
				{"_id": "a", "found": true, "_source": {"tender_id": "a", "title": "Fencing"}},
				{"_id": "b", "found": false}
			]
		}`), nil
	})

	docs, err := store.MGetTenders(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Fencing", docs["a"].Title)
	_, present := docs["b"]
	assert.False(t, present)
}

func TestMGetTenders_EmptyInputSkipsRoundTrip(t *testing.T) {
	store := newTestStore(t, func(req *http.Request) (*http.Response, error) {
		t.Fatal("no request expected for empty id list")
		return nil, nil
	})

	docs, err := store.MGetTenders(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestReadinessDocID_KeyedByTenderAndTeam(t *testing.T) {
	var gotPath string
	store := newTestStore(t, func(req *http.Request) (*http.Response, error) {
		gotPath = req.URL.Path
		return esResponse(201, `{"result":"created"}`), nil
	})

	err := store.PutReadiness(context.Background(), &models.ReadinessScore{
		TenderID:         "ocds-007",
		TeamID:           "team-42",
		SuitabilityScore: 80,
		CreatedAt:        time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.Equal(t, "/readiness-scores/_doc/ocds-007:team-42", gotPath)
}

func TestGetReadiness_NotFound(t *testing.T) {
	store := newTestStore(t, func(req *http.Request) (*http.Response, error) {
		return esResponse(404, `{"found":false}`), nil
	})

	_, err := store.GetReadiness(context.Background(), "ocds-007", "team-42")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestPutWorkspaceItem_KeyedByTenderAndTeam(t *testing.T) {
	var gotPath, gotBody string
	store := newTestStore(t, func(req *http.Request) (*http.Response, error) {
		gotPath = req.URL.Path
		if req.Body != nil {
			b, _ := io.ReadAll(req.Body)
			gotBody = string(b)
		}
		return esResponse(201, `{"result":"created"}`), nil
	})

	err := store.PutWorkspaceItem(context.Background(), &models.WorkspaceItem{
		ID:       "d6f1",
		TenderID: "ocds-007",
		TeamID:   "team-42",
		Status:   "pending",
	})
	require.NoError(t, err)
	assert.Equal(t, "/workspace-items/_doc/ocds-007:team-42", gotPath)
	assert.Contains(t, gotBody, `"status":"pending"`)
}

func TestGetWorkspaceItem_NotFound(t *testing.T) {
	store := newTestStore(t, func(req *http.Request) (*http.Response, error) {
		return esResponse(404, `{"found":false}`), nil
	})

	_, err := store.GetWorkspaceItem(context.Background(), "ocds-007", "team-42")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestFindWorkspaceByTeam_FiltersAndDecodes(t *testing.T) {
	var gotPath, gotBody string
	store := newTestStore(t, func(req *http.Request) (*http.Response, error) {
		gotPath = req.URL.Path
		if req.Body != nil {
			b, _ := io.ReadAll(req.Body)
			gotBody = string(b)
		}
		return esResponse(200, `{
			"hits": {"hits": [
				{"_source": {"id": "a1", "tender_id": "ocds-007", "team_id": "team-42", "status": "interested"}},
				{"_source": {"id": "b2", "tender_id": "ocds-003", "team_id": "team-42", "status": "interested"}}
			]}
		}`), nil
	})

	items, err := store.FindWorkspaceByTeam(context.Background(), "team-42", "interested")
	require.NoError(t, err)
	assert.Equal(t, "/workspace-items/_search", gotPath)
	assert.Contains(t, gotBody, `"team_id.keyword":"team-42"`)
	assert.Contains(t, gotBody, `"status.keyword":"interested"`)
	assert.Contains(t, gotBody, `"created_at":{"order":"desc"}`)
	require.Len(t, items, 2)
	assert.Equal(t, "ocds-007", items[0].TenderID)
	assert.Equal(t, "ocds-003", items[1].TenderID)
}

func TestFindWorkspaceByTeam_EmptyStatusMatchesAll(t *testing.T) {
	var gotBody string
	store := newTestStore(t, func(req *http.Request) (*http.Response, error) {
		if req.Body != nil {
			b, _ := io.ReadAll(req.Body)
			gotBody = string(b)
		}
		return esResponse(200, `{"hits":{"hits":[]}}`), nil
	})

	items, err := store.FindWorkspaceByTeam(context.Background(), "team-42", "")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotContains(t, gotBody, "status.keyword")
}

func TestGetProfileByTeam_DecodesProfile(t *testing.T) {
	store := newTestStore(t, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/company-profiles/_doc/team-42", req.URL.Path)
		return esResponse(200, `{
			"found": true,
			"_source": {
				"team_id": "team-42",
				"industry_sector": "Construction",
				"geographic_coverage": ["Gauteng", "Limpopo"],
				"years_experience": 10,
				"contact_email": "bids@example.co.za"
			}
		}`), nil
	})

	profile, err := store.GetProfileByTeam(context.Background(), "team-42")
	require.NoError(t, err)
	assert.Equal(t, "Construction", profile.IndustrySector)
	assert.Equal(t, []string{"Gauteng", "Limpopo"}, profile.GeographicCoverage)
}

func TestAllTenderIDs_CollectsHitIDs(t *testing.T) {
	store := newTestStore(t, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/tenders/_search", req.URL.Path)
		return esResponse(200, `{
			"hits": {"hits": [{"_id": "a"}, {"_id": "b"}, {"_id": "c"}]}
		}`), nil
	})

	ids, err := store.AllTenderIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestPutTender_ServerErrorIsRetryable(t *testing.T) {
	store := newTestStore(t, func(req *http.Request) (*http.Response, error) {
		return esResponse(500, `{"error":{"reason":"shard failure"}}`), nil
	})

	err := store.PutTender(context.Background(), &models.Tender{TenderID: "x"})
	require.Error(t, err)

	se, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeDocumentStoreFailed, se.Code)
	assert.True(t, se.Retryable)
}
