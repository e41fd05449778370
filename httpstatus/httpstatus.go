// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package httpstatus exposes a read-only JSON view of a Broker's
// topics (§4.8). It never creates, deletes, writes or reads messages;
// it only reflects manifest state already computed by the core log
// engine, mirroring the teacher's transport package in spirit while
// dropping every mutating route (transport/http_transport.go).
package httpstatus

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/ninibe/streamrelay"
)

// Handler implements http.Handler around a Broker.
type Handler struct {
	broker *streamrelay.Broker
}

// NewHandler returns a read-only status handler backed by b.
func NewHandler(b *streamrelay.Broker) *Handler {
	return &Handler{broker: b}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	router := httprouter.New()
	router.GET("/", h.handleServerInfo)
	router.GET("/:topic", h.handleTopicInfo)
	router.ServeHTTP(w, r)
}

func (h *Handler) handleServerInfo(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	names, err := h.broker.TopicList()
	if err != nil {
		jsonError(w, err)
		return
	}
	jsonResponse(w, names)
}

func (h *Handler) handleTopicInfo(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	meta, err := h.broker.Topic(ps.ByName("topic"))
	if err != nil {
		jsonError(w, err)
		return
	}
	jsonResponse(w, meta)
}

func jsonResponse(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("error: failed to encode status response: %s", err)
	}
}

func jsonError(w http.ResponseWriter, err error) {
	srerr := streamrelay.ExtErr(err)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(srerr.StatusCode())
	if encErr := json.NewEncoder(w).Encode(srerr); encErr != nil {
		log.Printf("error: failed to encode error response: %s", encErr)
	}

	level := "warn"
	if srerr == streamrelay.ErrUnknown {
		level = "alert"
	} else if srerr.StatusCode() >= 500 {
		level = "error"
	}
	log.Printf("%s: status request failed: %s", level, srerr)
}
