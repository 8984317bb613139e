package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"

	"discover/lib/aggregate"
	"discover/tier"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type server struct {
	tier tier.Tier
}

func (s server) setHandlers(router *mux.Router) {
	router.HandleFunc("/options", s.Options).Methods(http.MethodPost)
	router.HandleFunc("/validate", s.Validate).Methods(http.MethodPost)
	router.HandleFunc("/internal", s.GetInternal).Methods(http.MethodPost)
	router.HandleFunc("/external", s.GetExternal).Methods(http.MethodPost)

	// for any requests starting with /debug, hand the control to default servemux
	// needed to enable pprof
	router.PathPrefix("/debug/").Handler(http.DefaultServeMux)
}

func readRequest(req *http.Request, v interface{}) error {
	defer req.Body.Close()
	body, err := ioutil.ReadAll(req.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

func (s server) fail(w http.ResponseWriter, req *http.Request, status int, err error) {
	http.Error(w, err.Error(), status)
	s.tier.Logger.Warn("request failed",
		zap.String("path", req.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	)
}

func (s server) reply(w http.ResponseWriter, req *http.Request, v interface{}) {
	ser, err := json.Marshal(v)
	if err != nil {
		s.fail(w, req, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(ser)
}

func (s server) Options(w http.ResponseWriter, req *http.Request) {
	var request aggregate.OptionsRequest
	if err := readRequest(req, &request); err != nil {
		s.fail(w, req, http.StatusBadRequest, fmt.Errorf("invalid request: %v", err))
		return
	}
	s.reply(w, req, s.tier.Options(request.Columns))
}

func (s server) Validate(w http.ResponseWriter, req *http.Request) {
	var request aggregate.ValidateRequest
	if err := readRequest(req, &request); err != nil {
		s.fail(w, req, http.StatusBadRequest, fmt.Errorf("invalid request: %v", err))
		return
	}
	s.reply(w, req, aggregate.ValidateResponse{Valid: request.Valid()})
}

func (s server) GetInternal(w http.ResponseWriter, req *http.Request) {
	var request aggregate.InternalRequest
	if err := readRequest(req, &request); err != nil {
		s.fail(w, req, http.StatusBadRequest, fmt.Errorf("invalid request: %v", err))
		return
	}
	key, err := aggregate.ToInternal(request.Aggregation)
	if errors.Is(err, aggregate.ErrMalformedAggregation) {
		s.fail(w, req, http.StatusBadRequest, err)
		return
	} else if err != nil {
		s.fail(w, req, http.StatusInternalServerError, err)
		return
	}
	s.reply(w, req, aggregate.InternalResponse{Internal: key})
}

func (s server) GetExternal(w http.ResponseWriter, req *http.Request) {
	var request aggregate.ExternalRequest
	if err := readRequest(req, &request); err != nil {
		s.fail(w, req, http.StatusBadRequest, fmt.Errorf("invalid request: %v", err))
		return
	}
	s.reply(w, req, aggregate.ExternalResponse{External: aggregate.ToExternal(request.Internal)})
}
