// types package contains the public API types shared between the storage
// client and the HTTP surface.
package types

import "net/http"

type ModificationResult struct {
	Applied bool                   `json:"applied"`
	Value   map[string]interface{} `json:"value"`
}

type ConditionItem struct {
	Column   string      `json:"column"` // json representation used for error information only
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`
}

// Route represents a request route to be served
type Route struct {
	Method  string
	Pattern string
	Handler http.Handler
}
