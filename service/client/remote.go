package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/itiky/employee-sync/model"
)

// RequestIdHeader is the request correlation header.
const RequestIdHeader = "X-Request-Id"

// ErrRemoteFailed is the single remote operation failure kind (transport error or non-success response).
var ErrRemoteFailed = errors.New("remote operation failed")

type (
	// RemoteCollection is the remote employee collection API.
	RemoteCollection interface {
		// List fetches the full collection in the server order.
		List(ctx context.Context) (model.RecordList, error)
		// Create creates a new record.
		Create(ctx context.Context, req model.WriteRequest) (model.WriteResult, error)
		// Update updates an existing record.
		Update(ctx context.Context, id model.RecordId, req model.WriteRequest) (model.WriteResult, error)
		// Delete deletes an existing record.
		Delete(ctx context.Context, id model.RecordId) error
	}

	// HTTPCollection implements RemoteCollection over the HTTP API.
	HTTPCollection struct {
		baseUrl    string
		httpClient *http.Client
		log        *log.Entry
	}
)

// String implements the stringer interface.
func (c *HTTPCollection) String() string {
	return fmt.Sprintf("HTTPCollection (%s)", c.baseUrl)
}

// List implements RemoteCollection interface.
func (c *HTTPCollection) List(ctx context.Context) (model.RecordList, error) {
	raw, err := c.do(ctx, http.MethodGet, "/employees", nil)
	if err != nil {
		return nil, err
	}

	res := model.ListResponse{}
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("%w: list: response unmarshal: %v", ErrRemoteFailed, err)
	}
	if res.Data == nil {
		return nil, fmt.Errorf("%w: list: response data: missing", ErrRemoteFailed)
	}

	return model.NewRecordList(res.Data), nil
}

// Create implements RemoteCollection interface.
func (c *HTTPCollection) Create(ctx context.Context, req model.WriteRequest) (model.WriteResult, error) {
	raw, err := c.do(ctx, http.MethodPost, "/create", req)
	if err != nil {
		return model.WriteResult{}, err
	}

	return c.decodeWriteResult(raw), nil
}

// Update implements RemoteCollection interface.
func (c *HTTPCollection) Update(ctx context.Context, id model.RecordId, req model.WriteRequest) (model.WriteResult, error) {
	raw, err := c.do(ctx, http.MethodPut, "/update/"+url.PathEscape(id.String()), req)
	if err != nil {
		return model.WriteResult{}, err
	}

	return c.decodeWriteResult(raw), nil
}

// Delete implements RemoteCollection interface.
func (c *HTTPCollection) Delete(ctx context.Context, id model.RecordId) error {
	_, err := c.do(ctx, http.MethodDelete, "/delete/"+url.PathEscape(id.String()), nil)

	return err
}

// decodeWriteResult decodes the create/update response data.
// The response body is implementation-defined, so an unknown format yields an empty result.
func (c *HTTPCollection) decodeWriteResult(raw []byte) model.WriteResult {
	res := model.WriteResponse{}
	if err := json.Unmarshal(raw, &res); err != nil {
		c.log.Debugf("write response: unknown format: %v", err)
		return model.WriteResult{}
	}

	return res.Data
}

// do sends the request and returns the response body.
// Any transport error, non-2xx status or "error" envelope is wrapped with ErrRemoteFailed.
func (c *HTTPCollection) do(ctx context.Context, method, path string, reqBody interface{}) (retRaw []byte, retErr error) {
	reqId := uuid.New().String()
	opLog := c.log.WithFields(log.Fields{
		"request_id": reqId,
		"op":         method + " " + path,
	})

	opStart := time.Now()
	defer func() {
		opDur := time.Since(opStart)
		monitor.RequestSent(opDur, retErr != nil)
		if retErr != nil {
			opLog.Debugf("[%v] failed: %v", opDur, retErr)
			return
		}
		opLog.Debugf("[%v] done", opDur)
	}()

	var body io.Reader
	if reqBody != nil {
		raw, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %s: request marshal: %v", ErrRemoteFailed, method, path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseUrl+path, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: request build: %v", ErrRemoteFailed, method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIdHeader, reqId)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrRemoteFailed, method, path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: reading body: %v", ErrRemoteFailed, method, path, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s %s: unexpected status %d", ErrRemoteFailed, method, path, res.StatusCode)
	}

	envelope := model.ErrorResponse{}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Status == model.StatusError {
		return nil, fmt.Errorf("%w: %s %s: %s", ErrRemoteFailed, method, path, envelope.Message)
	}

	return raw, nil
}

// NewHTTPCollection creates a new HTTPCollection object.
// A zero timeout leaves the request duration unbounded.
func NewHTTPCollection(baseUrl string, timeout time.Duration) (*HTTPCollection, error) {
	if timeout < 0 {
		return nil, fmt.Errorf("%s: must be GTE 0", "timeout")
	}

	u, err := url.Parse(baseUrl)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid: %w", "baseUrl", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%s: scheme must be http or https", "baseUrl")
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%s: host: empty", "baseUrl")
	}

	c := &HTTPCollection{
		baseUrl:    strings.TrimRight(baseUrl, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	c.log = log.WithField("component", c.String())

	return c, nil
}
