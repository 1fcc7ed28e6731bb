package models

// Person is the wire representation of a people record.
type Person struct {
	PartitionKey string `json:"partitionKey" validate:"required"`
	RowKey       string `json:"rowKey" validate:"required"`
	ID           string `json:"id,omitempty"`
	FirstName    string `json:"firstName" validate:"required"`
	LastName     string `json:"lastName" validate:"required"`
	ETag         string `json:"etag,omitempty"`
}

// PersonUpdate carries the writable fields of an update request.
type PersonUpdate struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
}

// PeoplePage is one scan segment. PageState resumes the scan and is empty
// once the table is exhausted.
type PeoplePage struct {
	People    []Person `json:"people"`
	PageState string   `json:"pageState,omitempty"`
}

// A description of an error state
type ModelError struct {

	// A human readable description of the error state
	Description string `json:"description,omitempty"`
}
