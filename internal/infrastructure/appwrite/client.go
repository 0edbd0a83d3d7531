// Package appwrite is a document store backend talking to a hosted
// Appwrite database over its REST API.
package appwrite

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"freshsave/internal/core/apperror"
	"freshsave/internal/core/id"
	"freshsave/internal/infrastructure/storage/docstore"
)

var tracer = otel.Tracer("freshsave/appwrite")

const defaultTimeout = 15 * time.Second

// Config describes how to reach an Appwrite project.
type Config struct {
	Endpoint   string // e.g. https://cloud.appwrite.io/v1
	ProjectID  string
	APIKey     string
	DatabaseID string
	SelfSigned bool // accept self-signed certificates (local instances)
	Timeout    time.Duration
}

// Client implements docstore.Store for one Appwrite database.
type Client struct {
	Endpoint   string
	ProjectID  string
	APIKey     string
	DatabaseID string
	HTTPClient *http.Client
}

var _ docstore.Store = (*Client)(nil)

// New builds a client from cfg.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("missing appwrite endpoint")
	}
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, fmt.Errorf("missing appwrite project id")
	}
	if strings.TrimSpace(cfg.DatabaseID) == "" {
		return nil, fmt.Errorf("missing appwrite database id")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.SelfSigned {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for local instances
	}

	return &Client{
		Endpoint:   strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"),
		ProjectID:  cfg.ProjectID,
		APIKey:     cfg.APIKey,
		DatabaseID: cfg.DatabaseID,
		HTTPClient: &http.Client{Timeout: timeout, Transport: transport},
	}, nil
}

// apiError is the error body Appwrite returns on non-2xx responses.
type apiError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Type    string `json:"type"`
}

func (c *Client) documentsURL(collectionID string) string {
	return fmt.Sprintf("%s/databases/%s/collections/%s/documents",
		c.Endpoint, url.PathEscape(c.DatabaseID), url.PathEscape(collectionID))
}

func (c *Client) documentURL(collectionID, documentID string) string {
	return c.documentsURL(collectionID) + "/" + url.PathEscape(documentID)
}

func (c *Client) CreateDocument(ctx context.Context, collectionID, documentID string, data docstore.Fields) (docstore.Document, error) {
	if id.IsBlank(documentID) {
		documentID = id.Unique
	}
	if data == nil {
		data = docstore.Fields{}
	}
	body := map[string]any{"documentId": documentID, "data": data}

	var doc docstore.Document
	err := c.do(ctx, "create", collectionID, documentID, http.MethodPost, c.documentsURL(collectionID), body, &doc)
	return doc, err
}

func (c *Client) GetDocument(ctx context.Context, collectionID, documentID string) (docstore.Document, error) {
	var doc docstore.Document
	err := c.do(ctx, "get", collectionID, documentID, http.MethodGet, c.documentURL(collectionID, documentID), nil, &doc)
	return doc, err
}

func (c *Client) UpdateDocument(ctx context.Context, collectionID, documentID string, data docstore.Fields) (docstore.Document, error) {
	if data == nil {
		data = docstore.Fields{}
	}
	var doc docstore.Document
	err := c.do(ctx, "update", collectionID, documentID, http.MethodPatch, c.documentURL(collectionID, documentID), map[string]any{"data": data}, &doc)
	return doc, err
}

func (c *Client) DeleteDocument(ctx context.Context, collectionID, documentID string) error {
	return c.do(ctx, "delete", collectionID, documentID, http.MethodDelete, c.documentURL(collectionID, documentID), nil, nil)
}

func (c *Client) ListDocuments(ctx context.Context, collectionID string, queries ...docstore.Query) (docstore.DocumentList, error) {
	if err := docstore.ValidateAll(queries); err != nil {
		return docstore.DocumentList{}, apperror.NewInvalidInput(err.Error())
	}

	u := c.documentsURL(collectionID)
	if len(queries) > 0 {
		v := url.Values{}
		for _, q := range queries {
			v.Add("queries[]", q.String())
		}
		u += "?" + v.Encode()
	}

	var list docstore.DocumentList
	err := c.do(ctx, "list", collectionID, "", http.MethodGet, u, nil, &list)
	return list, err
}

// Ping calls the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, "ping", "", "", http.MethodGet, c.Endpoint+"/health", nil, nil)
}

func (c *Client) do(ctx context.Context, op, collectionID, documentID, method, endpoint string, reqBody any, out any) error {
	ctx, span := tracer.Start(ctx, "docstore."+op,
		trace.WithAttributes(
			attribute.String("db.system", "appwrite"),
			attribute.String("docstore.collection", collectionID),
			attribute.String("http.method", method),
		))
	defer span.End()

	err := c.roundTrip(ctx, op, collectionID, documentID, method, endpoint, reqBody, out)
	if err != nil && !apperror.IsNotFound(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, op, collectionID, documentID, method, endpoint string, reqBody any, out any) error {
	var body io.Reader
	if reqBody != nil {
		payload, err := json.Marshal(reqBody)
		if err != nil {
			return apperror.NewInternal(fmt.Errorf("marshal appwrite %s payload: %w", op, err))
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("create appwrite request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Appwrite-Project", c.ProjectID)
	if c.APIKey != "" {
		req.Header.Set("X-Appwrite-Key", c.APIKey)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return ctxErr
		}
		return apperror.NewStore(op, fmt.Errorf("execute appwrite request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperror.NewStore(op, fmt.Errorf("read appwrite response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return mapError(op, collectionID, documentID, resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := decodeInto(raw, out); err != nil {
		return apperror.NewStore(op, fmt.Errorf("decode appwrite response: %w", err))
	}
	return nil
}

func mapError(op, collectionID, documentID string, status int, raw []byte) error {
	var ae apiError
	_ = json.Unmarshal(raw, &ae)
	if ae.Message == "" {
		ae.Message = http.StatusText(status)
	}
	cause := fmt.Errorf("appwrite %s failed with status %d: %s (%s)", op, status, ae.Message, ae.Type)

	switch status {
	case http.StatusNotFound:
		if documentID != "" {
			return docstore.NotFound(collectionID, documentID)
		}
		return apperror.NewStore(op, cause).WithDetail("type", ae.Type)
	case http.StatusConflict:
		return apperror.NewConflict(ae.Message).WithCause(cause)
	case http.StatusBadRequest:
		return apperror.NewInvalidInput(ae.Message).WithCause(cause)
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return apperror.NewTimeout("appwrite "+op, cause)
	}
	return apperror.NewStore(op, cause).WithDetail("type", ae.Type)
}
