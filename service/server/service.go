package server

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"

	"github.com/itiky/employee-sync/model"
	"github.com/itiky/employee-sync/storage"
)

// Route names (used as metrics labels).
const (
	RouteList    = "list"
	RouteCreate  = "create"
	RouteUpdate  = "update"
	RouteDelete  = "delete"
	RouteChanges = "changes"
)

// VersionHeader reports the collection version the list response is built from.
const VersionHeader = "X-Collection-Version"

type (
	// Config keeps EmployeeService settings.
	Config struct {
		// API path prefix (e.g. "/api/v1")
		BasePath string
		// Fixture file path (optional)
		SeedFile string
		// Simulated latency added to every API request
		Latency time.Duration
		// Random failure rate [0.0, 1.0]
		FailRate float64
		// CORS allowed origins (empty allows any)
		CORSOrigins []string
	}

	// EmployeeService implements the employee collection HTTP API.
	EmployeeService struct {
		// Config
		cfg Config
		// State
		collection *storage.Collection
		metrics    *Metrics
		//
		log *log.Entry
	}
)

// Handler builds the HTTP handler: API routes under BasePath and /metrics.
func (s *EmployeeService) Handler() http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	if s.cfg.BasePath != "" {
		api = r.PathPrefix(s.cfg.BasePath).Subrouter()
	}
	api.Use(requestIdMiddleware, s.logMiddleware, s.metrics.Middleware, s.faultMiddleware)
	api.HandleFunc("/employees", s.ListEmployees).Methods(http.MethodGet).Name(RouteList)
	api.HandleFunc("/create", s.CreateEmployee).Methods(http.MethodPost).Name(RouteCreate)
	api.HandleFunc("/update/{id}", s.UpdateEmployee).Methods(http.MethodPut).Name(RouteUpdate)
	api.HandleFunc("/delete/{id}", s.DeleteEmployee).Methods(http.MethodDelete).Name(RouteDelete)
	api.HandleFunc("/changes", s.ListChanges).Methods(http.MethodGet).Name(RouteChanges)

	corsOpts := cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", RequestIdHeader},
		ExposedHeaders: []string{RequestIdHeader, VersionHeader},
	}

	return cors.New(corsOpts).Handler(r)
}

// ListEmployees handles GET /employees.
func (s *EmployeeService) ListEmployees(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	version, data := s.collection.Snapshot()
	s.requestLog(r).Debugf("list: v%d: %d items", version, len(data))

	w.Header().Set(VersionHeader, strconv.Itoa(version))
	writeJSON(w, http.StatusOK, model.ListResponse{
		Status:  model.StatusSuccess,
		Data:    data,
		Message: "Successfully! All records has been fetched.",
	})

	go monitor.ListRequestServed(time.Since(start))
}

// CreateEmployee handles POST /create.
func (s *EmployeeService) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, ok := s.decodeWriteRequest(w, r)
	if !ok {
		go monitor.OpsHandled(time.Since(start), true)
		return
	}

	stOp, err := storage.NewCreateOperation(req, start.UTC())
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("create operation: %w", err))
		go monitor.OpsHandled(time.Since(start), true)
		return
	}

	listOp, ok := s.apply(stOp)
	if !ok {
		s.writeError(w, r, http.StatusInternalServerError, fmt.Errorf("create operation: not applied"))
		go monitor.OpsHandled(time.Since(start), true)
		return
	}

	writeJSON(w, http.StatusOK, model.WriteResponse{
		Status:  model.StatusSuccess,
		Data:    newWriteResult(listOp.Record),
		Message: "Successfully! Record has been added.",
	})

	go monitor.OpsHandled(time.Since(start), false)
}

// UpdateEmployee handles PUT /update/{id}.
func (s *EmployeeService) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := mux.Vars(r)["id"]

	req, ok := s.decodeWriteRequest(w, r)
	if !ok {
		go monitor.OpsHandled(time.Since(start), true)
		return
	}

	stOp, err := storage.NewUpdateOperation(id, req, start.UTC())
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("update operation: %w", err))
		go monitor.OpsHandled(time.Since(start), true)
		return
	}

	listOp, ok := s.apply(stOp)
	if !ok {
		s.writeError(w, r, http.StatusNotFound, fmt.Errorf("record %s: not found", id))
		go monitor.OpsHandled(time.Since(start), true)
		return
	}

	writeJSON(w, http.StatusOK, model.WriteResponse{
		Status:  model.StatusSuccess,
		Data:    newWriteResult(listOp.Record),
		Message: "Successfully! Record has been updated.",
	})

	go monitor.OpsHandled(time.Since(start), false)
}

// DeleteEmployee handles DELETE /delete/{id}.
func (s *EmployeeService) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := mux.Vars(r)["id"]

	stOp, err := storage.NewDeleteOperation(id, start.UTC())
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("delete operation: %w", err))
		go monitor.OpsHandled(time.Since(start), true)
		return
	}

	if _, ok := s.apply(stOp); !ok {
		s.writeError(w, r, http.StatusNotFound, fmt.Errorf("record %s: not found", id))
		go monitor.OpsHandled(time.Since(start), true)
		return
	}

	writeJSON(w, http.StatusOK, model.DeleteResponse{
		Status:  model.StatusSuccess,
		Data:    id,
		Message: "Successfully! Record has been deleted",
	})

	go monitor.OpsHandled(time.Since(start), false)
}

// ListChanges handles GET /changes?since={version}.
// Returns list operations to apply on a list of the specified version to bring it to the latest one.
func (s *EmployeeService) ListChanges(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	since, err := strconv.Atoi(r.URL.Query().Get("since"))
	if err != nil || since < 0 {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("since: must be a version number"))
		return
	}

	version, listOps := s.collection.DiffWithLatest(since)
	s.requestLog(r).Debugf("changes: v%d -> v%d: %d ops", since, version, len(listOps))

	data := make([]model.ChangeData, 0, len(listOps))
	for _, listOp := range listOps {
		data = append(data, model.ChangeData{
			Type: listOp.Type,
			EmployeeData: model.EmployeeData{
				Id:     listOp.Id,
				Name:   model.Text(listOp.Record.Name),
				Salary: model.Text(listOp.Record.Salary),
				Age:    model.Text(listOp.Record.Age),
			},
		})
	}

	w.Header().Set(VersionHeader, strconv.Itoa(version))
	writeJSON(w, http.StatusOK, model.ChangesResponse{
		Status:  model.StatusSuccess,
		Version: version,
		Data:    data,
	})

	go monitor.ListRequestServed(time.Since(start))
}

// Start starts the service monitor.
func (s *EmployeeService) Start() {
	monitor.Start()
	s.log.Infof("start: %d items", s.collection.Len())
}

// Stop stops the service monitor.
func (s *EmployeeService) Stop() {
	monitor.Stop()
	s.log.Info("stop")
}

// apply applies a single storage operation and returns the resulting list operation.
func (s *EmployeeService) apply(stOp storage.StorageOperation) (model.ListOperation, bool) {
	version, listOps := s.collection.Apply(stOp)
	if len(listOps) != 1 {
		return model.ListOperation{}, false
	}
	s.log.Debugf("%s: collection v%d", stOp.GetType(), version)

	return listOps[0], true
}

// decodeWriteRequest parses the create/update request body (responds on failure).
func (s *EmployeeService) decodeWriteRequest(w http.ResponseWriter, r *http.Request) (model.WriteRequest, bool) {
	req := model.WriteRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return model.WriteRequest{}, false
	}

	return req, true
}

// writeError logs the error and responds with the error envelope.
func (s *EmployeeService) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.requestLog(r).Warnf("%d: %v", status, err)

	writeJSON(w, status, model.ErrorResponse{
		Status:  model.StatusError,
		Message: err.Error(),
	})
}

// requestLog returns a request scoped logger.
func (s *EmployeeService) requestLog(r *http.Request) *log.Entry {
	return s.log.WithField("request_id", r.Header.Get(RequestIdHeader))
}

// NewEmployeeService creates a new EmployeeService object.
func NewEmployeeService(cfg Config) (*EmployeeService, error) {
	if cfg.FailRate < 0 || cfg.FailRate > 1 {
		return nil, fmt.Errorf("%s: must be in [0.0, 1.0] range", "FailRate")
	}
	if cfg.Latency < 0 {
		return nil, fmt.Errorf("%s: must be GTE 0", "Latency")
	}
	cfg.BasePath = "/" + strings.Trim(cfg.BasePath, "/")
	if cfg.BasePath == "/" {
		cfg.BasePath = ""
	}

	collection, err := storage.NewCollectionFromFile(cfg.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("storage.NewCollectionFromFile: %w", err)
	}

	return &EmployeeService{
		cfg:        cfg,
		collection: collection,
		metrics: NewMetrics(func() float64 {
			return float64(collection.Len())
		}),
		log: log.WithField("component", "employee-service"),
	}, nil
}

// newWriteResult builds the create/update response data.
func newWriteResult(rec model.Record) model.WriteResult {
	return model.WriteResult{
		Id:     rec.Id,
		Name:   model.Text(rec.Name),
		Salary: model.Text(rec.Salary),
		Age:    model.Text(rec.Age),
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("JSON response encode: %v", err)
	}
}

// shouldFail decides if a request should fail according to the configured rate.
func shouldFail(rate float64) bool {
	return rate > 0 && rand.Float64() < rate
}
