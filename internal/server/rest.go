package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/hauslink/notify/internal/auth"
	"github.com/hauslink/notify/internal/handler"
	"github.com/hauslink/notify/internal/ierr"
	"go.uber.org/zap"
)

type RESTServer struct {
	logger        *zap.Logger
	authenticator *auth.Authenticator

	listHandler        *handler.ListHandler
	markReadHandler    *handler.MarkReadHandler
	markAllReadHandler *handler.MarkAllReadHandler
	createHandler      *handler.CreateHandler
	dispatchHandler    *handler.DispatchHandler
}

func NewRESTServer(
	logger *zap.Logger,
	authenticator *auth.Authenticator,
	listHandler *handler.ListHandler,
	markReadHandler *handler.MarkReadHandler,
	markAllReadHandler *handler.MarkAllReadHandler,
	createHandler *handler.CreateHandler,
	dispatchHandler *handler.DispatchHandler,
) *RESTServer {
	return &RESTServer{
		logger,
		authenticator,
		listHandler,
		markReadHandler,
		markAllReadHandler,
		createHandler,
		dispatchHandler,
	}
}

func (s *RESTServer) Register(router *mux.Router) {
	router.HandleFunc("/notifications/read-all", s.authenticated(s.handleMarkAllRead)).Methods("PUT")
	router.HandleFunc("/notifications/{id}/read", s.authenticated(s.handleMarkRead)).Methods("PUT")
	router.HandleFunc("/notifications/{id}/read", s.authenticated(s.handleMarkUnread)).Methods("DELETE")
	router.HandleFunc("/notifications", s.authenticated(s.handleList)).Methods("GET")
	router.HandleFunc("/notifications", s.authenticated(s.handleCreate)).Methods("POST")
	router.HandleFunc("/dispatch", s.authenticated(s.handleDispatch)).Methods("POST")
}

func (s *RESTServer) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authentication, err := bearerAuthentication(s.authenticator, r)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}

		ctx := auth.WithAuthentication(r.Context(), authentication)

		next(w, r.WithContext(ctx))
	}
}

func (s *RESTServer) handleList(w http.ResponseWriter, r *http.Request) {
	req := handler.ListRequest{}

	query := r.URL.Query()

	req.UnreadOnly = query.Get("unreadOnly") == "true"

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, s.logger, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("invalid limit")))
			return
		}
		req.Limit = limit
	}

	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, s.logger, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("invalid offset")))
			return
		}
		req.Offset = offset
	}

	response, err := s.listHandler.Handle(r.Context(), req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	writeJSON(w, s.logger, http.StatusOK, response)
}

func (s *RESTServer) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	s.markRead(w, r, true)
}

func (s *RESTServer) handleMarkUnread(w http.ResponseWriter, r *http.Request) {
	s.markRead(w, r, false)
}

func (s *RESTServer) markRead(w http.ResponseWriter, r *http.Request, read bool) {
	id := mux.Vars(r)["id"]

	notification, err := s.markReadHandler.Handle(r.Context(), id, read)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	writeJSON(w, s.logger, http.StatusOK, notification)
}

func (s *RESTServer) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	response, err := s.markAllReadHandler.Handle(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	writeJSON(w, s.logger, http.StatusOK, response)
}

func (s *RESTServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req handler.CreateRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, s.logger, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("invalid request body")))
		return
	}

	notification, err := s.createHandler.Handle(r.Context(), req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	writeJSON(w, s.logger, http.StatusCreated, notification)
}

func (s *RESTServer) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var req handler.DispatchRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, s.logger, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("invalid request body")))
		return
	}

	response, err := s.dispatchHandler.Handle(r.Context(), req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	writeJSON(w, s.logger, http.StatusOK, response)
}
