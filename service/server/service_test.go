package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/itiky/employee-sync/model"
	"github.com/itiky/employee-sync/storage"
)

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	svc, err := NewEmployeeService(cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(svc.Handler())
	t.Cleanup(srv.Close)

	return srv
}

func doRequest(t *testing.T, method, url string, body string) (int, []byte) {
	var reqBody io.Reader
	if body != "" {
		reqBody = bytes.NewBufferString(body)
	}

	req, err := http.NewRequest(method, url, reqBody)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	return res.StatusCode, raw
}

// Test creates, updates and deletes employees checking the list response after each step.
func Test_EmployeeService_CRUD(t *testing.T) {
	srv := newTestServer(t, Config{BasePath: "/api/v1/"})
	base := srv.URL + "/api/v1"

	list := func() []map[string]interface{} {
		status, raw := doRequest(t, http.MethodGet, base+"/employees", "")
		require.Equal(t, http.StatusOK, status)

		res := struct {
			Status string                   `json:"status"`
			Data   []map[string]interface{} `json:"data"`
		}{}
		require.NoError(t, json.Unmarshal(raw, &res))
		require.Equal(t, model.StatusSuccess, res.Status)

		return res.Data
	}

	require.Empty(t, list())

	// create
	status, raw := doRequest(t, http.MethodPost, base+"/create", `{"name":"Bob","salary":"5000","age":"40"}`)
	require.Equal(t, http.StatusOK, status)
	createRes := model.WriteResponse{}
	require.NoError(t, json.Unmarshal(raw, &createRes))
	require.Equal(t, model.RecordId("1"), createRes.Data.Id)
	require.Contains(t, string(raw), `"id":1`)

	status, _ = doRequest(t, http.MethodPost, base+"/create", `{"name":"Ann","salary":"","age":"abc"}`)
	require.Equal(t, http.StatusOK, status)

	items := list()
	require.Len(t, items, 2)
	require.Equal(t, map[string]interface{}{
		"id":              float64(1),
		"employee_name":   "Bob",
		"employee_salary": "5000",
		"employee_age":    "40",
	}, items[0])
	require.Equal(t, "Ann", items[1]["employee_name"])

	// update keeps the order
	status, _ = doRequest(t, http.MethodPut, base+"/update/1", `{"name":"Bobby","salary":"6000","age":"41"}`)
	require.Equal(t, http.StatusOK, status)
	items = list()
	require.Equal(t, "Bobby", items[0]["employee_name"])

	// delete
	status, raw = doRequest(t, http.MethodDelete, base+"/delete/1", "")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(raw), model.StatusSuccess)
	items = list()
	require.Len(t, items, 1)
	require.Equal(t, "Ann", items[0]["employee_name"])
}

func Test_EmployeeService_Errors(t *testing.T) {
	srv := newTestServer(t, Config{})

	status, raw := doRequest(t, http.MethodPut, srv.URL+"/update/42", `{"name":"x"}`)
	require.Equal(t, http.StatusNotFound, status)
	errRes := model.ErrorResponse{}
	require.NoError(t, json.Unmarshal(raw, &errRes))
	require.Equal(t, model.StatusError, errRes.Status)

	status, _ = doRequest(t, http.MethodDelete, srv.URL+"/delete/42", "")
	require.Equal(t, http.StatusNotFound, status)

	status, _ = doRequest(t, http.MethodDelete, srv.URL+"/delete/abc", "")
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = doRequest(t, http.MethodPost, srv.URL+"/create", `{not json`)
	require.Equal(t, http.StatusBadRequest, status)
}

func Test_EmployeeService_FaultInjection(t *testing.T) {
	srv := newTestServer(t, Config{FailRate: 1.0})

	for _, path := range []string{"/employees", "/delete/1"} {
		method := http.MethodGet
		if strings.HasPrefix(path, "/delete") {
			method = http.MethodDelete
		}
		status, raw := doRequest(t, method, srv.URL+path, "")
		require.Equal(t, http.StatusInternalServerError, status)
		require.Contains(t, string(raw), "injected failure")
	}

	// metrics are not affected by fault injection
	status, raw := doRequest(t, http.MethodGet, srv.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(raw), `employee_sync_requests_total{code="500",route="list"} 1`)
	require.Contains(t, string(raw), "employee_sync_employees 0")
}

func Test_EmployeeService_Config(t *testing.T) {
	_, err := NewEmployeeService(Config{FailRate: 1.5})
	require.Error(t, err)

	_, err = NewEmployeeService(Config{Latency: -1})
	require.Error(t, err)

	_, err = NewEmployeeService(Config{SeedFile: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)

	seedPath := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, storage.GenAndSaveInitialStorage(seedPath, 3))
	srv := newTestServer(t, Config{SeedFile: seedPath})

	status, raw := doRequest(t, http.MethodGet, srv.URL+"/employees", "")
	require.Equal(t, http.StatusOK, status)
	res := model.ListResponse{}
	require.NoError(t, json.Unmarshal(raw, &res))
	require.Len(t, res.Data, 3)
}

func Test_EmployeeService_RequestId(t *testing.T) {
	srv := newTestServer(t, Config{})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/employees", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIdHeader, "req-1")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, "req-1", res.Header.Get(RequestIdHeader))

	res, err = http.Get(srv.URL + "/employees")
	require.NoError(t, err)
	res.Body.Close()
	require.NotEmpty(t, res.Header.Get(RequestIdHeader))
}

// Test lists changes since an older version and checks they bring the older list to the latest one.
func Test_EmployeeService_Changes(t *testing.T) {
	srv := newTestServer(t, Config{})

	getList := func() (string, model.RecordList) {
		res, err := http.Get(srv.URL + "/employees")
		require.NoError(t, err)
		defer res.Body.Close()

		listRes := model.ListResponse{}
		require.NoError(t, json.NewDecoder(res.Body).Decode(&listRes))

		return res.Header.Get(VersionHeader), model.NewRecordList(listRes.Data)
	}

	getChanges := func(since string) model.ChangesResponse {
		status, raw := doRequest(t, http.MethodGet, srv.URL+"/changes?since="+since, "")
		require.Equal(t, http.StatusOK, status)

		res := model.ChangesResponse{}
		require.NoError(t, json.Unmarshal(raw, &res))
		require.Equal(t, model.StatusSuccess, res.Status)

		return res
	}

	version, _ := getList()
	require.Equal(t, "0", version)

	doRequest(t, http.MethodPost, srv.URL+"/create", `{"name":"Bob","salary":"5000","age":"40"}`)
	doRequest(t, http.MethodPost, srv.URL+"/create", `{"name":"Ann","salary":"4000","age":"30"}`)
	oldVersion, oldList := getList()
	require.Equal(t, "2", oldVersion)

	doRequest(t, http.MethodPut, srv.URL+"/update/1", `{"name":"Bobby","salary":"6000","age":"41"}`)
	doRequest(t, http.MethodDelete, srv.URL+"/delete/2", "")
	doRequest(t, http.MethodPost, srv.URL+"/create", `{"name":"Eve","salary":"","age":""}`)
	latestVersion, latestList := getList()
	require.Equal(t, "5", latestVersion)

	changes := getChanges(oldVersion)
	require.Equal(t, 5, changes.Version)
	require.Len(t, changes.Data, 3)

	listOps := make([]model.ListOperation, 0, len(changes.Data))
	for _, change := range changes.Data {
		listOps = append(listOps, model.ListOperation{
			Type:   change.Type,
			Id:     change.Id,
			Record: change.ToRecord(),
		})
	}
	require.Equal(t, model.DeleteOperationType, listOps[1].Type)

	upgradedList, err := model.ApplyListOperations(oldList, listOps...)
	require.NoError(t, err)
	require.Equal(t, latestList, upgradedList)

	// up to date
	changes = getChanges(latestVersion)
	require.Equal(t, 5, changes.Version)
	require.Empty(t, changes.Data)

	status, _ := doRequest(t, http.MethodGet, srv.URL+"/changes?since=abc", "")
	require.Equal(t, http.StatusBadRequest, status)
	status, _ = doRequest(t, http.MethodGet, srv.URL+"/changes", "")
	require.Equal(t, http.StatusBadRequest, status)
}
