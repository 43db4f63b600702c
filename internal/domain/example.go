// Package domain holds the Example entity, its request shapes and the typed
// errors every layer shares.
package domain

import (
	"encoding/json"
	"time"

	"github.com/jonesrussell/north-cloud/example-api/internal/pagination"
)

// ResourceExample names the Example resource in error messages.
const ResourceExample = "Example"

// Field limits for Example.
const (
	NameMaxLength        = 100
	DescriptionMaxLength = 500
)

// Listing limits.
const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Example is a row of the examples table.
type Example struct {
	ID          int64     `db:"id"          json:"id"`
	Name        string    `db:"name"        json:"name"`
	Description *string   `db:"description" json:"description"`
	IsActive    bool      `db:"is_active"   json:"is_active"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"  json:"updated_at"`
}

// ExampleCreate is the input of Create. IsActive defaults to true.
type ExampleCreate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`

	nameNull     bool
	isActiveNull bool
}

// UnmarshalJSON records explicit nulls for the non-nullable fields so they
// are reported as type errors rather than as missing or defaulted.
func (in *ExampleCreate) UnmarshalJSON(data []byte) error {
	type fields ExampleCreate
	var body struct {
		fields
		Name     Optional[string] `json:"name"`
		IsActive Optional[bool]   `json:"is_active"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}

	*in = ExampleCreate(body.fields)
	in.Name = body.Name.presentPtr()
	in.IsActive = body.IsActive.presentPtr()
	in.nameNull = body.Name.Set && body.Name.Null
	in.isActiveNull = body.IsActive.Set && body.IsActive.Null
	return nil
}

// Validate checks the field constraints.
func (in *ExampleCreate) Validate() error {
	var issues []FieldIssue

	switch {
	case in.nameNull:
		issues = append(issues, typeIssue(locBody, "name", "string_type", "Input should be a valid string"))
	case in.Name == nil:
		issues = append(issues, typeIssue(locBody, "name", "missing", "Field required"))
	default:
		issues = append(issues, validateVar(locBody, "name", *in.Name, "min=1,max=100")...)
	}
	if in.Description != nil {
		issues = append(issues, validateVar(locBody, "description", *in.Description, "max=500")...)
	}
	if in.isActiveNull {
		issues = append(issues, typeIssue(locBody, "is_active", "bool_type", "Input should be a valid boolean"))
	}

	if len(issues) > 0 {
		return NewValidationError(issues...)
	}
	return nil
}

// Active returns IsActive, defaulting to true.
func (in *ExampleCreate) Active() bool {
	if in.IsActive == nil {
		return true
	}
	return *in.IsActive
}

// ExampleUpdate is the input of Update. Only fields present in the request
// body are applied; Description may be explicitly null to clear it.
type ExampleUpdate struct {
	Name        Optional[string] `json:"name"`
	Description Optional[string] `json:"description"`
	IsActive    Optional[bool]   `json:"is_active"`
}

// Validate checks each present field against the Create constraints.
func (in *ExampleUpdate) Validate() error {
	var issues []FieldIssue

	if in.Name.Set {
		if in.Name.Null {
			issues = append(issues, typeIssue(locBody, "name", "string_type", "Input should be a valid string"))
		} else {
			issues = append(issues, validateVar(locBody, "name", in.Name.Value, "min=1,max=100")...)
		}
	}
	if in.Description.Set && !in.Description.Null {
		issues = append(issues, validateVar(locBody, "description", in.Description.Value, "max=500")...)
	}
	if in.IsActive.Set && in.IsActive.Null {
		issues = append(issues, typeIssue(locBody, "is_active", "bool_type", "Input should be a valid boolean"))
	}

	if len(issues) > 0 {
		return NewValidationError(issues...)
	}
	return nil
}

// ChangedFields lists the JSON names of the fields present in the update.
func (in *ExampleUpdate) ChangedFields() []string {
	var fields []string
	if in.Name.Set {
		fields = append(fields, "name")
	}
	if in.Description.Set {
		fields = append(fields, "description")
	}
	if in.IsActive.Set {
		fields = append(fields, "is_active")
	}
	return fields
}

// ListParams selects one page of examples. An empty Search matches everything.
type ListParams struct {
	Page    int    `json:"page"     validate:"min=1"`
	PerPage int    `json:"per_page" validate:"min=1,max=100"`
	Search  string `json:"search"`
}

// Validate checks the paging bounds.
func (p *ListParams) Validate() error {
	return validateStruct(locQuery, p)
}

// ExamplePage is one page of a listing.
type ExamplePage struct {
	Items []Example
	Meta  pagination.Meta
}
