package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func tagTestHandler(store *Store) (http.Handler, *string, *bool) {
	var gotID string
	var tagged bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, tagged = KeyIDFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return store.Tag()(inner), &gotID, &tagged
}

func TestTag_RecognizedSecretSetsKeyID(t *testing.T) {
	store := NewStatic("X-API-Key", map[string]string{"s3cret": "key-1"})
	handler, gotID, tagged := tagTestHandler(store)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-API-Key", "s3cret")
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if !*tagged || *gotID != "key-1" {
		t.Fatalf("key id = (%q, %v), want (\"key-1\", true)", *gotID, *tagged)
	}
}

func TestTag_UnknownSecretPassesUntagged(t *testing.T) {
	store := NewStatic("X-API-Key", map[string]string{"s3cret": "key-1"})
	handler, _, tagged := tagTestHandler(store)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-API-Key", "wrong")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("got %d, want 200 (Tag never rejects)", w.Code)
	}
	if *tagged {
		t.Fatal("unknown secret should not tag the request")
	}
}

func TestTag_MissingHeaderPassesUntagged(t *testing.T) {
	store := NewStatic("X-API-Key", map[string]string{"s3cret": "key-1"})
	handler, _, tagged := tagTestHandler(store)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK || *tagged {
		t.Fatalf("got code=%d tagged=%v, want 200 untagged", w.Code, *tagged)
	}
}

func TestTag_SecretIsTrimmed(t *testing.T) {
	store := NewStatic("", map[string]string{"s3cret": "key-1"})
	handler, gotID, _ := tagTestHandler(store)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-API-Key", "  s3cret  ") // default header name
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if *gotID != "key-1" {
		t.Fatalf("key id = %q, want key-1", *gotID)
	}
}

func TestKeyIDFrom_EmptyContext(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if id, ok := KeyIDFrom(r.Context()); ok || id != "" {
		t.Fatalf("KeyIDFrom = (%q, %v), want empty", id, ok)
	}
}
