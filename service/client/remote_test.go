package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/itiky/employee-sync/model"
	"github.com/itiky/employee-sync/service/server"
)

type capturedRequest struct {
	Method    string
	Path      string
	Body      string
	RequestId string
}

// newCaptureServer responds with the given status/body and records requests.
func newCaptureServer(t *testing.T, status int, body string) (*httptest.Server, func() []capturedRequest) {
	mu := sync.Mutex{}
	captured := make([]capturedRequest, 0)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		mu.Lock()
		defer mu.Unlock()
		captured = append(captured, capturedRequest{
			Method:    r.Method,
			Path:      r.URL.Path,
			Body:      string(raw),
			RequestId: r.Header.Get(RequestIdHeader),
		})

		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv, func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedRequest(nil), captured...)
	}
}

// Test checks request paths, methods and the prefixed / unprefixed field names asymmetry.
func Test_HTTPCollection_Wire(t *testing.T) {
	ctx := context.Background()

	srv, captured := newCaptureServer(t, http.StatusOK, `{
		"status": "success",
		"data": [{"id": 1, "employee_name": "Bob", "employee_salary": "5000", "employee_age": "40"}]
	}`)
	remote, err := NewHTTPCollection(srv.URL+"/api/v1/", time.Second)
	require.NoError(t, err)

	list, err := remote.List(ctx)
	require.NoError(t, err)
	require.Equal(t, model.RecordList{{Id: "1", Name: "Bob", Salary: "5000", Age: "40"}}, list)

	// write responses have an unknown format here: an empty result is returned
	res, err := remote.Create(ctx, model.WriteRequest{Name: "Alice", Salary: "1000", Age: "30"})
	require.NoError(t, err)
	require.Equal(t, model.RecordId(""), res.Id)

	_, err = remote.Update(ctx, "7", model.PlaceholderUpdate)
	require.NoError(t, err)

	require.NoError(t, remote.Delete(ctx, "7"))

	requests := captured()
	require.Len(t, requests, 4)
	expected := []capturedRequest{
		{Method: http.MethodGet, Path: "/api/v1/employees"},
		{Method: http.MethodPost, Path: "/api/v1/create", Body: `{"name":"Alice","salary":"1000","age":"30"}`},
		{Method: http.MethodPut, Path: "/api/v1/update/7", Body: `{"name":"test","salary":"123","age":"23"}`},
		{Method: http.MethodDelete, Path: "/api/v1/delete/7"},
	}
	for i, req := range requests {
		require.NotEmpty(t, req.RequestId, "request[%d]", i)
		req.RequestId = ""
		require.Equal(t, expected[i], req, "request[%d]", i)
	}
}

// Test checks that numeric ids beyond the float64 precision are sent back unchanged.
func Test_HTTPCollection_LargeId(t *testing.T) {
	ctx := context.Background()

	srv, captured := newCaptureServer(t, http.StatusOK, `{
		"status": "success",
		"data": [{"id": 9007199254740993, "employee_name": "Bob", "employee_salary": 5000, "employee_age": 40}]
	}`)
	remote, err := NewHTTPCollection(srv.URL, time.Second)
	require.NoError(t, err)

	list, err := remote.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, model.RecordId("9007199254740993"), list[0].Id)

	require.NoError(t, remote.Delete(ctx, list[0].Id))
	_, err = remote.Update(ctx, list[0].Id, model.PlaceholderUpdate)
	require.NoError(t, err)

	requests := captured()
	require.Len(t, requests, 3)
	require.Equal(t, "/delete/9007199254740993", requests[1].Path)
	require.Equal(t, "/update/9007199254740993", requests[2].Path)
}

// Test checks that a malformed list response leaves the local list unchanged.
func Test_Controller_LoadMissingData(t *testing.T) {
	ctx := context.Background()

	srv, _ := newCaptureServer(t, http.StatusOK, `{"status":"success"}`)
	remote, err := NewHTTPCollection(srv.URL, time.Second)
	require.NoError(t, err)

	ctrl, err := NewRecordSyncController(remote, NotifierFunc(func(model.Notification) {}), ControllerConfig{ReconcileMode: ReconcilePatch})
	require.NoError(t, err)

	local := model.RecordList{{Id: "1", Name: "Bob"}}
	ctrl.records = local.Copy()

	require.ErrorIs(t, ctrl.Load(ctx), ErrRemoteFailed)
	require.Equal(t, local, ctrl.Records())
}

func Test_HTTPCollection_Failures(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"status":"error","message":"boom"}`},
		{"not found", http.StatusNotFound, ``},
		{"error envelope", http.StatusOK, `{"status":"error","message":"Too Many Attempts."}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newCaptureServer(t, tc.status, tc.body)
			remote, err := NewHTTPCollection(srv.URL, time.Second)
			require.NoError(t, err)

			_, err = remote.List(ctx)
			require.ErrorIs(t, err, ErrRemoteFailed)
			_, err = remote.Create(ctx, model.WriteRequest{})
			require.ErrorIs(t, err, ErrRemoteFailed)
			_, err = remote.Update(ctx, "1", model.WriteRequest{})
			require.ErrorIs(t, err, ErrRemoteFailed)
			require.ErrorIs(t, remote.Delete(ctx, "1"), ErrRemoteFailed)
		})
	}

	// malformed list body
	srv, _ := newCaptureServer(t, http.StatusOK, `[1, 2`)
	remote, err := NewHTTPCollection(srv.URL, time.Second)
	require.NoError(t, err)
	_, err = remote.List(ctx)
	require.ErrorIs(t, err, ErrRemoteFailed)

	// list body without data must not be taken for an empty collection
	noData, _ := newCaptureServer(t, http.StatusOK, `{"status":"success"}`)
	noDataRemote, err := NewHTTPCollection(noData.URL, time.Second)
	require.NoError(t, err)
	_, err = noDataRemote.List(ctx)
	require.ErrorIs(t, err, ErrRemoteFailed)

	// transport failure
	srv.Close()
	_, err = remote.List(ctx)
	require.ErrorIs(t, err, ErrRemoteFailed)

	// timeout
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()
	remote, err = NewHTTPCollection(slow.URL, 50*time.Millisecond)
	require.NoError(t, err)
	require.ErrorIs(t, remote.Delete(ctx, "1"), ErrRemoteFailed)
}

func Test_HTTPCollection_Config(t *testing.T) {
	_, err := NewHTTPCollection("ftp://host", time.Second)
	require.Error(t, err)
	_, err = NewHTTPCollection("http://", time.Second)
	require.Error(t, err)
	_, err = NewHTTPCollection("http://host", -time.Second)
	require.Error(t, err)
	_, err = NewHTTPCollection("::bad", time.Second)
	require.Error(t, err)
}

// Test drives RecordSyncController against the reference server.
func Test_Controller_WithServer(t *testing.T) {
	ctx := context.Background()

	svc, err := server.NewEmployeeService(server.Config{BasePath: "/api/v1"})
	require.NoError(t, err)
	srv := httptest.NewServer(svc.Handler())
	defer srv.Close()

	remote, err := NewHTTPCollection(srv.URL+"/api/v1", time.Second)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	ctrl, err := NewRecordSyncController(remote, NewWriterNotifier(out), ControllerConfig{})
	require.NoError(t, err)

	require.NoError(t, ctrl.Load(ctx))
	require.Empty(t, ctrl.Records())

	// create is not reflected until the next Load
	ctrl.BeginCreate()
	require.NoError(t, ctrl.SetField("name", "Bob"))
	require.NoError(t, ctrl.SetField("salary", "5000"))
	require.NoError(t, ctrl.SetField("age", "40"))
	require.NoError(t, ctrl.Submit(ctx))
	require.Empty(t, ctrl.Records())

	require.NoError(t, ctrl.Load(ctx))
	require.Equal(t, model.RecordList{{Id: "1", Name: "Bob", Salary: "5000", Age: "40"}}, ctrl.Records())

	// update sends the placeholder values
	ctrl.BeginUpdate("1")
	require.NoError(t, ctrl.Submit(ctx))
	require.NoError(t, ctrl.Load(ctx))
	require.Equal(t, model.RecordList{{Id: "1", Name: "test", Salary: "123", Age: "23"}}, ctrl.Records())

	// delete of an unknown record fails
	require.ErrorIs(t, ctrl.Delete(ctx, "42"), ErrRemoteFailed)
	require.NoError(t, ctrl.Delete(ctx, "1"))
	require.Len(t, ctrl.Records(), 1)
	require.NoError(t, ctrl.Load(ctx))
	require.Empty(t, ctrl.Records())

	require.Equal(t, "[Success] Employee added successfully\n"+
		"[Success] Employee updated successfully\n"+
		"[Error] Something went wrong\n"+
		"[Success] Employee deleted successfully\n", out.String())

	// create response carries the id used by the patch reconciliation
	res, err := remote.Create(ctx, model.WriteRequest{Name: "Ann"})
	require.NoError(t, err)
	require.Equal(t, model.RecordId("2"), res.Id)

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"name":"Ann"`)
}
