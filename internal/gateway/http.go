package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/glog"

	"github.com/armankhan8150/taskscape-front/internal/models"
)

const defaultHTTPTimeout = 10 * time.Second
const defaultConnectTimeout = 5 * time.Second

// HTTPGateway talks to the taskscape REST API. Collections live under
// /api/v1/{kind}; writes are POST (insert), PATCH /{id} (update) and
// DELETE /{id}.
type HTTPGateway struct {
	baseURL    string
	token      string
	userID     string
	httpClient *http.Client
}

// NewHTTPGateway builds a gateway for the API at baseURL, authenticated with
// the given bearer token. The session user id is read from the token's "sub"
// claim; the signature is the server's to verify, not ours.
func NewHTTPGateway(baseURL, token string) (*HTTPGateway, error) {
	userID, err := subjectFromToken(token)
	if err != nil {
		return nil, fmt.Errorf("parse api token: %w", err)
	}

	dialer := &net.Dialer{Timeout: defaultConnectTimeout}
	return &HTTPGateway{
		baseURL: baseURL,
		token:   token,
		userID:  userID,
		httpClient: &http.Client{
			Transport: &http.Transport{DialContext: dialer.DialContext},
			Timeout:   defaultHTTPTimeout,
		},
	}, nil
}

func subjectFromToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return "", err
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return sub, nil
}

func (g *HTTPGateway) SessionUserID() string {
	return g.userID
}

func (g *HTTPGateway) Fetch(ctx context.Context, kind models.Kind, params Params) ([]models.Entity, error) {
	u := fmt.Sprintf("%s/api/v1/%s", g.baseURL, kind)
	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		u += "?" + q.Encode()
	}

	body, err := g.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	records, err := DecodeRecords(kind, body)
	if err != nil {
		return nil, err
	}
	glog.V(2).Infof("[gw]fetch %s n=%d\n", kind, len(records))
	return records, nil
}

func (g *HTTPGateway) Submit(ctx context.Context, kind models.Kind, op Operation, entity models.Entity) (models.Entity, error) {
	var method, u string
	var payload io.Reader

	switch op {
	case OpInsert:
		method = http.MethodPost
		u = fmt.Sprintf("%s/api/v1/%s", g.baseURL, kind)
	case OpUpdate:
		method = http.MethodPatch
		u = fmt.Sprintf("%s/api/v1/%s/%s", g.baseURL, kind, entity.EntityID())
	case OpDelete:
		method = http.MethodDelete
		u = fmt.Sprintf("%s/api/v1/%s/%s", g.baseURL, kind, entity.EntityID())
	default:
		return nil, fmt.Errorf("submit: unknown operation %q", op)
	}

	if op != OpDelete {
		encoded, err := json.Marshal(entity)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", kind, err)
		}
		payload = bytes.NewReader(encoded)
	}

	body, err := g.do(ctx, method, u, payload)
	if err != nil {
		return nil, err
	}

	if op == OpDelete && len(body) == 0 {
		// a delete is confirmed by status alone
		glog.V(2).Infof("[gw]submit %s %s id=%s\n", op, kind, entity.EntityID())
		return entity, nil
	}

	confirmed, err := DecodeRecord(kind, body)
	if err != nil {
		return nil, err
	}
	glog.V(2).Infof("[gw]submit %s %s id=%s\n", op, kind, confirmed.EntityID())
	return confirmed, nil
}

// apiError is the error envelope the API returns on non-2xx statuses
type apiError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (g *HTTPGateway) do(ctx context.Context, method, u string, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, payload)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		apiErr.Error = fmt.Sprintf("status %d", resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return nil, &ValidationError{Field: apiErr.Field, Reason: apiErr.Error}
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, &AuthError{Reason: apiErr.Error}
	case http.StatusNotFound:
		return nil, &NotFoundError{ID: apiErr.Error}
	case http.StatusConflict:
		return nil, &ConflictError{Reason: apiErr.Error}
	default:
		return nil, &NetworkError{Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, apiErr.Error)}
	}
}
