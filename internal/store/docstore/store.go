// Package docstore holds the authoritative tender documents, company
// profiles and readiness scores in Elasticsearch. Writes land here before
// any relational projection is attempted.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"tender-insight-hub/internal/common/config"
	"tender-insight-hub/internal/common/errors"
	"tender-insight-hub/internal/common/logger"
	"tender-insight-hub/internal/models"
)

// Store wraps the Elasticsearch client with index-aware document operations.
type Store struct {
	client         *elasticsearch.Client
	tenderIndex    string
	profileIndex   string
	readinessIndex string
	workspaceIndex string
	logger         logger.Logger
}

// New creates a document store over the configured indices.
func New(client *elasticsearch.Client, cfg config.ElasticsearchConfig, log logger.Logger) *Store {
	return &Store{
		client:         client,
		tenderIndex:    cfg.TenderIndex,
		profileIndex:   cfg.ProfileIndex,
		readinessIndex: cfg.ReadinessIndex,
		workspaceIndex: cfg.WorkspaceIndex,
		logger:         log,
	}
}

// EnsureIndices creates the backing indices when they do not exist yet.
// Existing indices are left untouched.
func (s *Store) EnsureIndices(ctx context.Context) error {
	for _, index := range []string{s.tenderIndex, s.profileIndex, s.readinessIndex, s.workspaceIndex} {
		res, err := s.client.Indices.Exists([]string{index},
			s.client.Indices.Exists.WithContext(ctx))
		if err != nil {
			return errors.NewDocumentStoreFailedError("indices-exists", err)
		}
		exists := res.StatusCode == 200
		res.Body.Close()
		if exists {
			continue
		}

		res, err = s.client.Indices.Create(index,
			s.client.Indices.Create.WithContext(ctx))
		if err != nil {
			return errors.NewDocumentStoreFailedError("indices-create", err)
		}
		res.Body.Close()
		if res.IsError() {
			return errors.NewDocumentStoreFailedError("indices-create",
				fmt.Errorf("index %s: %s", index, res.Status()))
		}
	}
	return nil
}

// PutTender indexes the full tender document under its tender_id,
// replacing any prior version wholesale.
func (s *Store) PutTender(ctx context.Context, t *models.Tender) error {
	return s.putDocument(ctx, s.tenderIndex, t.TenderID, t)
}

// GetTender fetches one tender document by id.
func (s *Store) GetTender(ctx context.Context, tenderID string) (*models.Tender, error) {
	var t models.Tender
	found, err := s.getDocument(ctx, s.tenderIndex, tenderID, &t)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NewTenderNotFoundError(tenderID)
	}
	return &t, nil
}

// MGetTenders fetches tender documents in one round trip. Missing ids are
// simply absent from the result, not an error.
func (s *Store) MGetTenders(ctx context.Context, ids []string) (map[string]*models.Tender, error) {
	out := make(map[string]*models.Tender, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	body, err := json.Marshal(map[string]interface{}{"ids": ids})
	if err != nil {
		return nil, errors.NewDocumentStoreFailedError("mget-encode", err)
	}

	res, err := s.client.Mget(bytes.NewReader(body),
		s.client.Mget.WithIndex(s.tenderIndex),
		s.client.Mget.WithContext(ctx))
	if err != nil {
		return nil, errors.NewDocumentStoreFailedError("mget", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewDocumentStoreFailedError("mget", responseError(res))
	}

	var parsed struct {
		Docs []struct {
			ID     string          `json:"_id"`
			Found  bool            `json:"found"`
			Source json.RawMessage `json:"_source"`
		} `json:"docs"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewDocumentStoreFailedError("mget-decode", err)
	}

	for _, doc := range parsed.Docs {
		if !doc.Found {
			continue
		}
		var t models.Tender
		if err := json.Unmarshal(doc.Source, &t); err != nil {
			return nil, errors.NewDocumentStoreFailedError("mget-decode", err)
		}
		out[doc.ID] = &t
	}
	return out, nil
}

// AllTenderIDs lists document ids currently indexed. Reconciliation uses
// this to diff the document store against the relational projection.
func (s *Store) AllTenderIDs(ctx context.Context) ([]string, error) {
	body := []byte(`{"query":{"match_all":{}},"_source":false,"size":10000}`)

	res, err := s.client.Search(
		s.client.Search.WithIndex(s.tenderIndex),
		s.client.Search.WithBody(bytes.NewReader(body)),
		s.client.Search.WithContext(ctx))
	if err != nil {
		return nil, errors.NewDocumentStoreFailedError("all-ids", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewDocumentStoreFailedError("all-ids", responseError(res))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewDocumentStoreFailedError("all-ids-decode", err)
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

// PutProfile indexes a company profile under its team id.
func (s *Store) PutProfile(ctx context.Context, p *models.CompanyProfile) error {
	return s.putDocument(ctx, s.profileIndex, p.TeamID, p)
}

// GetProfileByTeam fetches the profile for a team.
func (s *Store) GetProfileByTeam(ctx context.Context, teamID string) (*models.CompanyProfile, error) {
	var p models.CompanyProfile
	found, err := s.getDocument(ctx, s.profileIndex, teamID, &p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NewProfileNotFoundError(teamID)
	}
	return &p, nil
}

// DeleteProfile removes a team's profile document.
func (s *Store) DeleteProfile(ctx context.Context, teamID string) error {
	res, err := s.client.Delete(s.profileIndex, teamID,
		s.client.Delete.WithContext(ctx))
	if err != nil {
		return errors.NewDocumentStoreFailedError("delete-profile", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return errors.NewProfileNotFoundError(teamID)
	}
	if res.IsError() {
		return errors.NewDocumentStoreFailedError("delete-profile", responseError(res))
	}
	return nil
}

// pairDocID keys a document by the (tender, team) pair so a rewrite for
// the same pair overwrites instead of accumulating versions. Readiness
// scores and workspace items share this keying.
func pairDocID(tenderID, teamID string) string {
	return tenderID + ":" + teamID
}

// PutReadiness stores a readiness score, replacing any prior score for the
// same tender and team.
func (s *Store) PutReadiness(ctx context.Context, r *models.ReadinessScore) error {
	return s.putDocument(ctx, s.readinessIndex, pairDocID(r.TenderID, r.TeamID), r)
}

// GetReadiness fetches the stored score for a tender and team pair.
func (s *Store) GetReadiness(ctx context.Context, tenderID, teamID string) (*models.ReadinessScore, error) {
	var r models.ReadinessScore
	found, err := s.getDocument(ctx, s.readinessIndex, pairDocID(tenderID, teamID), &r)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NewReadinessNotFoundError(tenderID, teamID)
	}
	return &r, nil
}

// PutWorkspaceItem stores a workspace item, replacing any prior item for
// the same tender and team.
func (s *Store) PutWorkspaceItem(ctx context.Context, item *models.WorkspaceItem) error {
	return s.putDocument(ctx, s.workspaceIndex, pairDocID(item.TenderID, item.TeamID), item)
}

// GetWorkspaceItem fetches the tracked item for a tender and team pair.
func (s *Store) GetWorkspaceItem(ctx context.Context, tenderID, teamID string) (*models.WorkspaceItem, error) {
	var item models.WorkspaceItem
	found, err := s.getDocument(ctx, s.workspaceIndex, pairDocID(tenderID, teamID), &item)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NewWorkspaceItemNotFoundError(tenderID, teamID)
	}
	return &item, nil
}

// FindWorkspaceByTeam lists a team's tracked items, newest first. An empty
// status matches every item.
func (s *Store) FindWorkspaceByTeam(ctx context.Context, teamID, status string) ([]*models.WorkspaceItem, error) {
	filters := []map[string]interface{}{
		{"term": map[string]interface{}{"team_id.keyword": teamID}},
	}
	if status != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"status.keyword": status},
		})
	}
	body, err := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"filter": filters},
		},
		"sort": []map[string]interface{}{
			{"created_at": map[string]interface{}{"order": "desc"}},
		},
		"size": 100,
	})
	if err != nil {
		return nil, errors.NewDocumentStoreFailedError("workspace-find-encode", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithIndex(s.workspaceIndex),
		s.client.Search.WithBody(bytes.NewReader(body)),
		s.client.Search.WithContext(ctx))
	if err != nil {
		return nil, errors.NewDocumentStoreFailedError("workspace-find", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewDocumentStoreFailedError("workspace-find", responseError(res))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewDocumentStoreFailedError("workspace-find-decode", err)
	}

	items := make([]*models.WorkspaceItem, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		var item models.WorkspaceItem
		if err := json.Unmarshal(hit.Source, &item); err != nil {
			return nil, errors.NewDocumentStoreFailedError("workspace-find-decode", err)
		}
		items = append(items, &item)
	}
	return items, nil
}

func (s *Store) putDocument(ctx context.Context, index, id string, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return errors.NewDocumentStoreFailedError("index-encode", err)
	}

	req := esapi.IndexRequest{
		Index:      index,
		DocumentID: id,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return errors.NewDocumentStoreFailedError("index", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewDocumentStoreFailedError("index", responseError(res))
	}
	return nil
}

func (s *Store) getDocument(ctx context.Context, index, id string, dest interface{}) (bool, error) {
	res, err := s.client.Get(index, id,
		s.client.Get.WithContext(ctx))
	if err != nil {
		return false, errors.NewDocumentStoreFailedError("get", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return false, nil
	}
	if res.IsError() {
		return false, errors.NewDocumentStoreFailedError("get", responseError(res))
	}

	var parsed struct {
		Found  bool            `json:"found"`
		Source json.RawMessage `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return false, errors.NewDocumentStoreFailedError("get-decode", err)
	}
	if !parsed.Found {
		return false, nil
	}
	if err := json.Unmarshal(parsed.Source, dest); err != nil {
		return false, errors.NewDocumentStoreFailedError("get-decode", err)
	}
	return true, nil
}

func responseError(res *esapi.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	return fmt.Errorf("%s: %s", res.Status(), string(snippet))
}
