package rest

import (
	"net/http"

	"github.com/riptano/table-data-demo/log"
	"github.com/riptano/table-data-demo/people"
	"github.com/riptano/table-data-demo/store"
	"github.com/riptano/table-data-demo/types"
)

// Routes returns the people endpoint routes, to be registered on an
// httprouter instance.
func Routes(repo *store.Repository[*people.Person], logger log.Logger) []types.Route {
	rl := &routeList{repo: repo, logger: logger}

	return []types.Route{
		{
			Method:  http.MethodGet,
			Pattern: "/v1/people",
			Handler: http.HandlerFunc(rl.GetPeople),
		},
		{
			Method:  http.MethodPost,
			Pattern: "/v1/people",
			Handler: http.HandlerFunc(rl.AddPerson),
		},
		{
			Method:  http.MethodGet,
			Pattern: "/v1/people/:partitionKey/:rowKey",
			Handler: http.HandlerFunc(rl.GetPerson),
		},
		{
			Method:  http.MethodPut,
			Pattern: "/v1/people/:partitionKey/:rowKey",
			Handler: http.HandlerFunc(rl.UpdatePerson),
		},
	}
}
