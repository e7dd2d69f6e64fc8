package model

// Response envelope statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// List employees HTTP request (GET /employees).
type (
	ListResponse struct {
		Status  string         `json:"status"`
		Data    []EmployeeData `json:"data"`
		Message string         `json:"message,omitempty"`
	}

	// EmployeeData is a list item: field names are "employee_" prefixed.
	EmployeeData struct {
		Id     RecordId `json:"id"`
		Name   Text     `json:"employee_name"`
		Salary Text     `json:"employee_salary"`
		Age    Text     `json:"employee_age"`
	}
)

// Create / update employee HTTP requests (POST /create, PUT /update/{id}).
type (
	// WriteRequest field names are not prefixed.
	WriteRequest struct {
		Name   string `json:"name"`
		Salary string `json:"salary"`
		Age    string `json:"age"`
	}

	WriteResponse struct {
		Status  string      `json:"status"`
		Data    WriteResult `json:"data"`
		Message string      `json:"message,omitempty"`
	}

	WriteResult struct {
		Id     RecordId `json:"id,omitempty"`
		Name   Text     `json:"name"`
		Salary Text     `json:"salary"`
		Age    Text     `json:"age"`
	}
)

// Delete employee HTTP request (DELETE /delete/{id}).
type (
	DeleteResponse struct {
		Status  string `json:"status"`
		Data    string `json:"data,omitempty"`
		Message string `json:"message,omitempty"`
	}
)

// List changes HTTP request (GET /changes?since={version}).
type (
	ChangesResponse struct {
		Status  string       `json:"status"`
		Version int          `json:"version"`
		Data    []ChangeData `json:"data"`
	}

	// ChangeData is a list operation in the list item format (only id is set for delete).
	ChangeData struct {
		Type OperationType `json:"type"`
		EmployeeData
	}
)

// ErrorResponse is returned on any failure.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
