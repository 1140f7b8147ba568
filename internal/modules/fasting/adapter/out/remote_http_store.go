package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fasttrack/internal/modules/fasting/domain"
	"fasttrack/internal/modules/fasting/dto"
	fastingout "fasttrack/internal/modules/fasting/port/out"
	identitydto "fasttrack/internal/modules/identity/dto"
	apperrors "fasttrack/internal/platform/errors"
)

const recordsPath = "/api/v1/records"

// HTTPRemoteStore talks to the fastbase REST API.
type HTTPRemoteStore struct {
	httpClient *http.Client
	baseURL    string
}

func NewHTTPRemoteStore(httpClient *http.Client, baseURL string) fastingout.RemoteStore {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPRemoteStore{httpClient: httpClient, baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
}

func (s *HTTPRemoteStore) List(ctx context.Context, identity identitydto.Identity) ([]domain.Session, error) {
	var out dto.RowList
	if err := s.do(ctx, identity, http.MethodGet, recordsPath, nil, &out); err != nil {
		return nil, err
	}
	sessions := make([]domain.Session, 0, len(out.Records))
	for _, row := range out.Records {
		session, err := FromRow(row)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (s *HTTPRemoteStore) Insert(ctx context.Context, identity identitydto.Identity, session domain.Session) (domain.Session, error) {
	var out dto.Row
	if err := s.do(ctx, identity, http.MethodPost, recordsPath, ToRow(session, identity.UserID), &out); err != nil {
		return domain.Session{}, err
	}
	return FromRow(out)
}

func (s *HTTPRemoteStore) Update(ctx context.Context, identity identitydto.Identity, session domain.Session) error {
	return s.do(ctx, identity, http.MethodPut, recordsPath+"/"+url.PathEscape(session.ID), ToRow(session, identity.UserID), nil)
}

func (s *HTTPRemoteStore) Delete(ctx context.Context, identity identitydto.Identity, id string) error {
	return s.do(ctx, identity, http.MethodDelete, recordsPath+"/"+url.PathEscape(id), nil, nil)
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *HTTPRemoteStore) do(ctx context.Context, identity identitydto.Identity, method, path string, body any, out any) error {
	if !identity.Present() {
		return apperrors.ErrUnauthenticated
	}
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, r)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if identity.Token != "" {
		req.Header.Set("Authorization", "Bearer "+identity.Token)
	}
	req.Header.Set("X-User-ID", identity.UserID)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	}

	var eb errorBody
	_ = json.NewDecoder(resp.Body).Decode(&eb)
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return apperrors.ErrUnauthenticated
	case http.StatusNotFound:
		return apperrors.ErrNotFound
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, eb.Error)
	default:
		if strings.TrimSpace(eb.Error) != "" {
			return fmt.Errorf("remote %d: %s", resp.StatusCode, eb.Error)
		}
		return fmt.Errorf("remote status %d", resp.StatusCode)
	}
}
