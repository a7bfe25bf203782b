package dictionary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const helloBody = `[{"word":"hello","phonetic":"həˈləʊ","meanings":[{"partOfSpeech":"exclamation","definitions":[{"definition":"used as a greeting or to begin a phone conversation.","example":"hello there, Katie!"},{"definition":"second sense"}]},{"partOfSpeech":"noun","definitions":[{"definition":"an utterance of 'hello'; a greeting."}]}]}]`

func TestFirstDefinition(t *testing.T) {
	def, err := FirstDefinition([]byte(helloBody))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def != "used as a greeting or to begin a phone conversation." {
		t.Fatalf("unexpected definition %q", def)
	}
}

func TestFirstDefinitionFailures(t *testing.T) {
	cases := []struct {
		name string
		body string
		want error
	}{
		{"not json", `<html>oops</html>`, ErrDecode},
		{"truncated", `[{"meanings":[`, ErrDecode},
		{"object instead of array", `{"title":"No Definitions Found","message":"Sorry pal"}`, ErrShape},
		{"empty array", `[]`, ErrShape},
		{"null", `null`, ErrShape},
		{"no meanings", `[{"word":"x","meanings":[]}]`, ErrShape},
		{"no definitions", `[{"meanings":[{"definitions":[]}]}]`, ErrShape},
		{"empty definition", `[{"meanings":[{"definitions":[{"definition":""}]}]}]`, ErrShape},
		{"wrong field type", `[{"meanings":"none"}]`, ErrShape},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FirstDefinition([]byte(tc.body))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestClientDefineSuccess(t *testing.T) {
	var gotPath, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(helloBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	def, err := c.Define(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("Define failed: %v", err)
	}
	if def != "used as a greeting or to begin a phone conversation." {
		t.Fatalf("unexpected definition %q", def)
	}
	if gotPath != "/Hello" {
		t.Fatalf("expected literal word in path, got %q", gotPath)
	}
	if gotAgent != "hldict-cli" {
		t.Fatalf("expected user agent, got %q", gotAgent)
	}
}

func TestClientDefineEscapesWord(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(helloBody))
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, time.Second).Define(context.Background(), "a b?"); err != nil {
		t.Fatalf("Define failed: %v", err)
	}
	if gotPath != "/a%20b%3F" {
		t.Fatalf("expected escaped path, got %q", gotPath)
	}
}

func TestClientDefineStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"title":"No Definitions Found"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Define(context.Background(), "zzxq")
	if !errors.Is(err, ErrStatus) {
		t.Fatalf("expected ErrStatus, got %v", err)
	}
	var le *LookupError
	if !errors.As(err, &le) || le.Word != "zzxq" || le.Kind != KindStatus {
		t.Fatalf("expected LookupError for zzxq with status kind, got %#v", err)
	}
}

func TestClientDefineDecodeAndShape(t *testing.T) {
	bodies := map[string]Kind{
		`not json at all`: KindDecode,
		`[]`:              KindShape,
	}
	for body, want := range bodies {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		_, err := NewClient(srv.URL, time.Second).Define(context.Background(), "word")
		srv.Close()
		if got := KindOf(err); got != want {
			t.Fatalf("body %q: expected kind %s, got %s (%v)", body, want, got, err)
		}
	}
}

func TestClientDefineTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := NewClient(srv.URL, 50*time.Millisecond).Define(context.Background(), "slow")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout not enforced, took %v", elapsed)
	}
}

func TestClientDefineNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Define(context.Background(), "offline")
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("", 0)
	if c.BaseURL != DefaultBaseURL {
		t.Fatalf("expected default base url, got %s", c.BaseURL)
	}
	if c.Timeout != DefaultTimeout {
		t.Fatalf("expected default timeout, got %v", c.Timeout)
	}
}

func TestNewHTTPClientPoolsPerWorker(t *testing.T) {
	hc := NewHTTPClient(32)
	tr, ok := hc.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected *http.Transport, got %T", hc.Transport)
	}
	if tr.MaxIdleConnsPerHost != 32 {
		t.Fatalf("expected 32 idle conns per host, got %d", tr.MaxIdleConnsPerHost)
	}
	if tr == http.DefaultTransport {
		t.Fatal("default transport must not be mutated")
	}
	if got := NewHTTPClient(0).Transport.(*http.Transport).MaxIdleConnsPerHost; got != DefaultWorkers {
		t.Fatalf("expected default workers for zero, got %d", got)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(helloBody))
	}))
	defer srv.Close()
	c := NewClient(srv.URL, time.Second).WithHTTPClient(hc)
	if _, err := c.Define(context.Background(), "hello"); err != nil {
		t.Fatalf("Define with custom client failed: %v", err)
	}
}
