package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gocql/gocql"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/riptano/table-data-demo/config"
	"github.com/riptano/table-data-demo/db"
	"github.com/riptano/table-data-demo/log"
	"github.com/riptano/table-data-demo/people"
	m "github.com/riptano/table-data-demo/rest/models"
	"github.com/riptano/table-data-demo/store"
)

func newTestRouter(t *testing.T, sessionMock *db.SessionMock) *httprouter.Router {
	logger := log.NewZapLogger(zap.NewNop())
	tableStore := store.New(db.NewDbWithSession(sessionMock), "store", config.New(logger))

	repo, err := store.NewRepository[*people.Person](tableStore)
	require.Nil(t, err)

	router := httprouter.New()
	for _, route := range Routes(repo, logger) {
		router.Handler(route.Method, route.Pattern, route.Handler)
	}
	return router
}

func personRow(partitionKey, rowKey, etag, firstName, lastName string, id gocql.UUID) map[string]interface{} {
	return map[string]interface{}{
		store.ColumnPartitionKey: &partitionKey,
		store.ColumnRowKey:       &rowKey,
		store.ColumnETag:         &etag,
		"id":                     &id,
		"first_name":             &firstName,
		"last_name":              &lastName,
	}
}

func peopleMetadata() *gocql.KeyspaceMetadata {
	return db.NewKeyspaceMetadata("store", map[string]map[string]*gocql.ColumnMetadata{
		people.TableName: {
			store.ColumnPartitionKey: {
				Keyspace: "store",
				Table:    people.TableName,
				Name:     store.ColumnPartitionKey,
				Kind:     gocql.ColumnPartitionKey,
				Type:     gocql.NewNativeType(0, gocql.TypeText, ""),
			},
		},
	})
}

func TestGetPersonNotFound(t *testing.T) {
	sessionMock := &db.SessionMock{}
	router := newTestRouter(t, sessionMock)

	sessionMock.
		On("ExecuteIter", mock.Anything, mock.Anything, mock.Anything).
		Return(db.NewResultMock([]map[string]interface{}{}, nil), nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/people/p1/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPerson(t *testing.T) {
	sessionMock := &db.SessionMock{}
	router := newTestRouter(t, sessionMock)

	id := gocql.TimeUUID()
	sessionMock.
		On("ExecuteIter", mock.Anything, mock.Anything, mock.Anything).
		Return(db.NewResultMock([]map[string]interface{}{
			personRow("p1", "r1", "t1", "Nick", "Glas", id),
		}, nil), nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/people/p1/r1", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var model m.Person
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &model))
	assert.Equal(t, "Nick", model.FirstName)
	assert.Equal(t, "Glas", model.LastName)
	assert.Equal(t, id.String(), model.ID)
	assert.Equal(t, "t1", model.ETag)
}

func TestGetPeople(t *testing.T) {
	sessionMock := &db.SessionMock{}
	router := newTestRouter(t, sessionMock)

	sessionMock.
		On("ExecuteIter", mock.Anything, mock.Anything, mock.Anything).
		Return(db.NewResultMock([]map[string]interface{}{
			personRow("p1", "r1", "t1", "Nick", "Glas", gocql.TimeUUID()),
			personRow("p1", "r2", "t2", "Ada", "Lovelace", gocql.TimeUUID()),
		}, []byte("next")), nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/people?pageSize=2", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var page m.PeoplePage
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.People, 2)
	assert.NotEmpty(t, page.PageState)
}

func TestGetPeopleInvalidPageSize(t *testing.T) {
	router := newTestRouter(t, &db.SessionMock{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/people?pageSize=-1", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddPersonValidation(t *testing.T) {
	router := newTestRouter(t, &db.SessionMock{})

	body := `{"partitionKey": "p1", "rowKey": "r1"}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/people", strings.NewReader(body)))

	require.Equal(t, http.StatusBadRequest, w.Code)

	var modelError m.ModelError
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &modelError))
	assert.Contains(t, modelError.Description, "required")
}

func TestAddPerson(t *testing.T) {
	sessionMock := &db.SessionMock{}
	router := newTestRouter(t, sessionMock)

	applied := true
	sessionMock.On("KeyspaceMetadata", "store").Return(peopleMetadata(), nil)
	sessionMock.
		On("ExecuteIter", mock.Anything, mock.Anything, mock.Anything).
		Return(db.NewResultMock([]map[string]interface{}{
			{"[applied]": &applied},
		}, nil), nil)

	body := `{"partitionKey": "p1", "rowKey": "r1", "firstName": "Nick", "lastName": "Glas"}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/people", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, w.Code)

	var model m.Person
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &model))
	assert.NotEmpty(t, model.ID)
	assert.NotEmpty(t, model.ETag)
}

func TestAddPersonConflict(t *testing.T) {
	sessionMock := &db.SessionMock{}
	router := newTestRouter(t, sessionMock)

	applied := false
	sessionMock.On("KeyspaceMetadata", "store").Return(peopleMetadata(), nil)
	sessionMock.
		On("ExecuteIter", mock.Anything, mock.Anything, mock.Anything).
		Return(db.NewResultMock([]map[string]interface{}{
			{"[applied]": &applied},
		}, nil), nil)

	body := `{"partitionKey": "p1", "rowKey": "r1", "firstName": "Nick", "lastName": "Glas"}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/people", strings.NewReader(body)))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdatePerson(t *testing.T) {
	sessionMock := &db.SessionMock{}
	router := newTestRouter(t, sessionMock)

	sessionMock.
		On("ExecuteIter", mock.Anything, mock.Anything, mock.Anything).
		Return(db.NewResultMock([]map[string]interface{}{
			personRow("p1", "r1", "t1", "Nick", "Glas", gocql.TimeUUID()),
		}, nil), nil)
	sessionMock.On("Execute", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	body := `{"firstName": "Simon", "lastName": "Glas"}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/v1/people/p1/r1", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)

	var model m.Person
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &model))
	assert.Equal(t, "Simon", model.FirstName)
	assert.NotEqual(t, "t1", model.ETag)
}

func TestUpdatePersonStaleETag(t *testing.T) {
	sessionMock := &db.SessionMock{}
	router := newTestRouter(t, sessionMock)

	id := gocql.TimeUUID()
	applied := false
	stored := "t2"
	sessionMock.
		On("ExecuteIter", "SELECT * FROM store.people WHERE partition_key = ? AND row_key = ?",
			mock.Anything, mock.Anything).
		Return(db.NewResultMock([]map[string]interface{}{
			personRow("p1", "r1", "t2", "Nick", "Glas", id),
		}, nil), nil)
	sessionMock.
		On("ExecuteIter", mock.MatchedBy(func(query string) bool {
			return strings.HasPrefix(query, "UPDATE store.people")
		}), mock.Anything, mock.Anything).
		Return(db.NewResultMock([]map[string]interface{}{
			{"[applied]": &applied, store.ColumnETag: &stored},
		}, nil), nil)

	body := `{"firstName": "Simon", "lastName": "Glas"}`
	request := httptest.NewRequest(http.MethodPut, "/v1/people/p1/r1", strings.NewReader(body))
	request.Header.Set("If-Match", "t1")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, request)

	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}
