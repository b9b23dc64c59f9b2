// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofrs/uuid"

	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/catalog"
)

// Group operators
const (
	OperatorAND = "AND"
	OperatorOR  = "OR"
)

// Sort orders
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// RootGroupID names the implicit top-level group of a request
const RootGroupID = "root"

// ConditionValue holds either a single string or a list of strings.
// A JSON null decodes to the empty single value.
type ConditionValue struct {
	Single string
	List   []string
	IsList bool
}

// StringValue builds a single-valued ConditionValue
func StringValue(s string) ConditionValue {
	return ConditionValue{Single: s}
}

// ListValue builds a list-valued ConditionValue
func ListValue(items ...string) ConditionValue {
	return ConditionValue{List: items, IsList: true}
}

// IsEmpty reports a blank single value or an empty list
func (v ConditionValue) IsEmpty() bool {
	if v.IsList {
		return len(v.List) == 0
	}
	return v.Single == ""
}

func (v ConditionValue) String() string {
	if v.IsList {
		return fmt.Sprintf("%q", v.List)
	}
	return fmt.Sprintf("%q", v.Single)
}

// MarshalJSON writes a string or an array of strings
func (v ConditionValue) MarshalJSON() ([]byte, error) {
	if v.IsList {
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	}
	return json.Marshal(v.Single)
}

// UnmarshalJSON accepts a string, an array of strings, or null
func (v *ConditionValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ConditionValue{}
		return nil
	case len(data) > 0 && data[0] == '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("value must be a string or an array of strings")
		}
		*v = ConditionValue{List: list, IsList: true}
		return nil
	default:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("value must be a string or an array of strings")
		}
		*v = ConditionValue{Single: s}
		return nil
	}
}

// Condition is a single filter leaf
type Condition struct {
	ID       string         `json:"id" validate:"required"`
	Field    string         `json:"field" validate:"required,catalog_field"`
	Operator string         `json:"operator" validate:"required"`
	Value    ConditionValue `json:"value"`
	// LogicalOperator is accepted for compatibility and never consulted;
	// the enclosing group's operator governs all of its children.
	LogicalOperator string `json:"logicalOperator,omitempty" validate:"omitempty,oneof=AND OR"`
}

// Group is a recursive AND/OR node
type Group struct {
	ID         string      `json:"id" validate:"required"`
	Operator   string      `json:"operator" validate:"required,oneof=AND OR"`
	Conditions []Condition `json:"conditions" validate:"dive"`
	Groups     []Group     `json:"groups" validate:"dive"`
}

// IsEmpty reports a group without children
func (g Group) IsEmpty() bool {
	return len(g.Conditions) == 0 && len(g.Groups) == 0
}

// SearchRequest is the root group plus sort and paging parameters
type SearchRequest struct {
	Conditions []Condition `json:"conditions" validate:"dive"`
	Groups     []Group     `json:"groups" validate:"dive"`
	Operator   string      `json:"operator,omitempty" validate:"omitempty,oneof=AND OR"`
	SortBy     string      `json:"sort_by,omitempty"`
	SortOrder  string      `json:"sort_order,omitempty" validate:"omitempty,oneof=asc desc"`
	Limit      *int        `json:"limit,omitempty"`
	Offset     *int        `json:"offset,omitempty"`
}

// Root returns the request's implicit top-level group; the operator defaults to AND
func (r SearchRequest) Root() Group {
	op := r.Operator
	if op == "" {
		op = OperatorAND
	}
	return Group{ID: RootGroupID, Operator: op, Conditions: r.Conditions, Groups: r.Groups}
}

// NewSearchRequest builds a request from a root group
func NewSearchRequest(root Group) SearchRequest {
	return SearchRequest{Conditions: root.Conditions, Groups: root.Groups, Operator: root.Operator}
}

// Author is the creator relation of a document
type Author struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Email     string
}

// Tag is a document label
type Tag struct {
	Name  string
	Color string
}

// Document is a stored document row as returned by the repository
type Document struct {
	ID        uuid.UUID
	Title     string
	Content   string
	FileType  string
	Category  string
	Status    string
	OwnerID   uuid.UUID
	Author    *Author
	Tags      []Tag
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// SearchResult is one shaped row of a search response
type SearchResult struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Category  string   `json:"category"`
	Author    string   `json:"author"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
	Tags      []string `json:"tags"`
	Status    string   `json:"status"`
	FileType  string   `json:"file_type"`
}

// SearchMetadata carries the effective paging
type SearchMetadata struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// SearchResponse is the success body of a search
type SearchResponse struct {
	Success  bool           `json:"success"`
	Results  []SearchResult `json:"results"`
	Total    int64          `json:"total"`
	Metadata SearchMetadata `json:"metadata"`
}

// CountResponse is the success body of a preview count
type CountResponse struct {
	Success bool  `json:"success"`
	Total   int64 `json:"total"`
}

// FieldsResponse lists the searchable fields
type FieldsResponse struct {
	Success bool            `json:"success"`
	Version string          `json:"version"`
	Fields  []catalog.Field `json:"fields"`
}
