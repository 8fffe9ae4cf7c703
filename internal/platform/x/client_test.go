package x

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/PatriPorrato/AgroBot/internal/domain"
)

func testCreds() Credentials {
	return Credentials{
		APIKey:       "key",
		APISecret:    "secret",
		AccessToken:  "token",
		AccessSecret: "token-secret",
	}
}

func TestPublishTextOnly(t *testing.T) {
	var gotBody map[string]any
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2/tweets" {
			t.Errorf("path = %q, want /2/tweets", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth == "" {
			t.Error("missing Authorization header")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"1"}}`))
	}))
	defer api.Close()

	c := NewClient(testCreds(), 5*time.Second).WithBaseURLs(api.URL, api.URL)
	if err := c.Publish(context.Background(), "hola pizarra", nil); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if gotBody["text"] != "hola pizarra" {
		t.Errorf("text = %v", gotBody["text"])
	}
	if _, ok := gotBody["media"]; ok {
		t.Error("media attached to text-only tweet")
	}
}

func TestPublishWithImage(t *testing.T) {
	upload := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/1.1/media/upload.json" {
			t.Errorf("upload path = %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		file, _, err := r.FormFile("media")
		if err != nil {
			t.Fatalf("media form file: %v", err)
		}
		file.Close()
		w.Write([]byte(`{"media_id_string":"7100"}`))
	}))
	defer upload.Close()

	var gotBody map[string]any
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"2"}}`))
	}))
	defer api.Close()

	c := NewClient(testCreds(), 5*time.Second).WithBaseURLs(api.URL, upload.URL)
	if err := c.Publish(context.Background(), "con imagen", []byte{0x89, 'P', 'N', 'G'}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	media, ok := gotBody["media"].(map[string]any)
	if !ok {
		t.Fatalf("media = %v, want object", gotBody["media"])
	}
	ids, ok := media["media_ids"].([]any)
	if !ok || len(ids) != 1 || ids[0] != "7100" {
		t.Errorf("media_ids = %v, want [7100]", media["media_ids"])
	}
}

func TestPublishTweetRejected(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"detail":"duplicate content"}`))
	}))
	defer api.Close()

	c := NewClient(testCreds(), 5*time.Second).WithBaseURLs(api.URL, api.URL)
	err := c.Publish(context.Background(), "repetido", nil)
	if !errors.Is(err, domain.ErrPublishFailed) {
		t.Fatalf("err = %v, want ErrPublishFailed", err)
	}
}

func TestPublishUploadRejected(t *testing.T) {
	upload := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer upload.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("tweet endpoint reached after failed upload")
	}))
	defer api.Close()

	c := NewClient(testCreds(), 5*time.Second).WithBaseURLs(api.URL, upload.URL)
	err := c.Publish(context.Background(), "texto", []byte{1, 2, 3})
	if !errors.Is(err, domain.ErrPublishFailed) {
		t.Fatalf("err = %v, want ErrPublishFailed", err)
	}
}
