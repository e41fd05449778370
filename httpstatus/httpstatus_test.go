// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package httpstatus

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ninibe/streamrelay"
)

func TestHandlerServerInfoListsTopics(t *testing.T) {
	b, err := streamrelay.NewBroker(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.CreateTopic("orders", 3, 4); err != nil {
		t.Fatal(err)
	}

	h := NewHandler(b)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	var names []string
	if err := json.Unmarshal(rr.Body.Bytes(), &names); err != nil {
		t.Fatalf("decode: %s, body=%s", err, rr.Body.String())
	}
	if len(names) != 1 || names[0] != "orders" {
		t.Errorf("names = %v, want [orders]", names)
	}
}

func TestHandlerTopicInfoNotFound(t *testing.T) {
	b, err := streamrelay.NewBroker(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	h := NewHandler(b)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/missing", nil))

	if rr.Code != 404 {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestHandlerTopicInfoFound(t *testing.T) {
	b, err := streamrelay.NewBroker(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.CreateTopic("orders", 3, 4); err != nil {
		t.Fatal(err)
	}

	h := NewHandler(b)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/orders", nil))

	if rr.Code != 200 {
		t.Fatalf("status = %d, want 200, body=%s", rr.Code, rr.Body.String())
	}

	var meta streamrelay.TopicMetaData
	if err := json.Unmarshal(rr.Body.Bytes(), &meta); err != nil {
		t.Fatalf("decode: %s", err)
	}
}
