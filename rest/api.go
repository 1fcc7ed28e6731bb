// Package rest exposes the people table over HTTP: paged scans, point
// lookups, inserts and etag-aware updates.
package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gocql/gocql"
	"github.com/julienschmidt/httprouter"

	"github.com/riptano/table-data-demo/log"
	"github.com/riptano/table-data-demo/people"
	m "github.com/riptano/table-data-demo/rest/models"
	"github.com/riptano/table-data-demo/store"
)

const defaultPageSize = 100

var (
	inputValidator *validator.Validate
	trans          ut.Translator
)

func init() {
	inputValidator = validator.New()

	uni := ut.New(en.New(), en.New())
	trans, _ = uni.GetTranslator("en")

	_ = enTranslations.RegisterDefaultTranslations(inputValidator, trans)

	_ = inputValidator.RegisterTranslation("required", trans, func(ut ut.Translator) error {
		return ut.Add("required", "{0} is a required field", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		translated, _ := ut.T("required", fe.Field())
		return translated
	})
}

// translateValidatorError converts the validator's error map into a single
// readable error.
func translateValidatorError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errs := validationErrors.Translate(trans)
	vals := make([]string, 0, len(errs))
	for _, value := range errs {
		vals = append(vals, value)
	}
	return errors.New(strings.Join(vals, " "))
}

type routeList struct {
	repo   *store.Repository[*people.Person]
	logger log.Logger
}

func (s *routeList) params(r *http.Request, name string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(name)
}

func (s *routeList) GetPeople(w http.ResponseWriter, r *http.Request) {
	pageSize := defaultPageSize
	if raw := r.URL.Query().Get("pageSize"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			RespondWithError(w, errors.New("pageSize must be a positive integer"), http.StatusBadRequest)
			return
		}
		pageSize = parsed
	}

	page, err := s.repo.Scan(pageSize, r.URL.Query().Get("pageState"))
	if err != nil {
		s.logger.Error("unable to scan people table", "error", err)
		RespondWithError(w, errors.New("unable to scan table"), http.StatusInternalServerError)
		return
	}

	response := m.PeoplePage{
		People:    make([]m.Person, 0, len(page.Items)),
		PageState: page.ContinuationToken,
	}
	for _, item := range page.Items {
		response.People = append(response.People, toModel(item))
	}

	RespondJSONObjectWithCode(w, http.StatusOK, response)
}

func (s *routeList) GetPerson(w http.ResponseWriter, r *http.Request) {
	partitionKey := s.params(r, "partitionKey")
	rowKey := s.params(r, "rowKey")

	person, err := s.repo.Get(partitionKey, rowKey)
	if err != nil {
		s.logger.Error("unable to get person",
			"partitionKey", partitionKey,
			"rowKey", rowKey,
			"error", err)
		RespondWithError(w, errors.New("unable to get record"), http.StatusInternalServerError)
		return
	}
	if person == nil {
		RespondWithError(w, errors.New("record not found"), http.StatusNotFound)
		return
	}

	RespondJSONObjectWithCode(w, http.StatusOK, toModel(person))
}

func (s *routeList) AddPerson(w http.ResponseWriter, r *http.Request) {
	var model m.Person
	if err := json.NewDecoder(r.Body).Decode(&model); err != nil {
		RespondWithError(w, errors.New("request body is invalid"), http.StatusBadRequest)
		return
	}

	if err := inputValidator.Struct(model); err != nil {
		RespondWithError(w, translateValidatorError(err), http.StatusBadRequest)
		return
	}

	person := people.NewPerson(model.PartitionKey, model.RowKey, model.FirstName, model.LastName)
	if model.ID != "" {
		id, err := gocql.ParseUUID(model.ID)
		if err != nil {
			RespondWithError(w, errors.New("id must be a valid uuid"), http.StatusBadRequest)
			return
		}
		person.ID = id
	}

	if err := s.repo.Insert(person); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			RespondWithError(w, errors.New("record already exists"), http.StatusConflict)
			return
		}
		s.logger.Error("unable to insert person", "error", err)
		RespondWithError(w, errors.New("unable to insert record"), http.StatusInternalServerError)
		return
	}

	RespondJSONObjectWithCode(w, http.StatusCreated, toModel(person))
}

func (s *routeList) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	partitionKey := s.params(r, "partitionKey")
	rowKey := s.params(r, "rowKey")

	var model m.PersonUpdate
	if err := json.NewDecoder(r.Body).Decode(&model); err != nil {
		RespondWithError(w, errors.New("request body is invalid"), http.StatusBadRequest)
		return
	}

	if err := inputValidator.Struct(model); err != nil {
		RespondWithError(w, translateValidatorError(err), http.StatusBadRequest)
		return
	}

	target, err := s.repo.Get(partitionKey, rowKey)
	if err != nil {
		s.logger.Error("unable to get person",
			"partitionKey", partitionKey,
			"rowKey", rowKey,
			"error", err)
		RespondWithError(w, errors.New("unable to get record"), http.StatusInternalServerError)
		return
	}
	if target == nil {
		RespondWithError(w, errors.New("record not found"), http.StatusNotFound)
		return
	}

	target.FirstName = model.FirstName
	target.LastName = model.LastName

	// An If-Match header guards the replace with the supplied etag; without
	// it the overwrite is unconditional.
	etag := r.Header.Get("If-Match")
	if etag == "" {
		etag = store.ETagAny
	}

	if err := s.repo.Replace(target, etag); err != nil {
		if errors.Is(err, store.ErrETagMismatch) {
			RespondWithError(w, errors.New("etag does not match"), http.StatusPreconditionFailed)
			return
		}
		s.logger.Error("unable to replace person", "error", err)
		RespondWithError(w, errors.New("unable to replace record"), http.StatusInternalServerError)
		return
	}

	RespondJSONObjectWithCode(w, http.StatusOK, toModel(target))
}

func toModel(p *people.Person) m.Person {
	return m.Person{
		PartitionKey: p.PartitionKey,
		RowKey:       p.RowKey,
		ID:           p.ID.String(),
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		ETag:         p.ETag,
	}
}
