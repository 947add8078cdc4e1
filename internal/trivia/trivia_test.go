package trivia

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientFetchQuestion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response_code":0,"results":[{"category":"Geography",` +
			`"question":"What&#039;s the capital of &quot;France&quot;?",` +
			`"correct_answer":"Paris","incorrect_answers":["Lyon","<b>Nice</b>","Marseille"]}]}`))
	}))
	defer srv.Close()

	q, err := NewClient(srv.URL, srv.Client()).FetchQuestion(context.Background())
	if err != nil {
		t.Fatalf("FetchQuestion() error = %v", err)
	}
	if want := `What's the capital of "France"?`; q.Text != want {
		t.Errorf("FetchQuestion() text = %q, want %q", q.Text, want)
	}
	if q.Correct != "Paris" {
		t.Errorf("FetchQuestion() correct = %q, want %q", q.Correct, "Paris")
	}
	if len(q.Distractors) != 3 || q.Distractors[1] != "Nice" {
		t.Errorf("FetchQuestion() distractors = %q", q.Distractors)
	}
}

func TestClientUpstreamFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, ""},
		{"bad json", http.StatusOK, "{"},
		{"no results", http.StatusOK, `{"response_code":1,"results":[]}`},
		{"empty question", http.StatusOK, `{"response_code":0,"results":[{"question":"","correct_answer":"x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, srv.Client()).FetchQuestion(context.Background())
			if !errors.Is(err, ErrUpstreamUnavailable) {
				t.Errorf("FetchQuestion() error = %v, want %v", err, ErrUpstreamUnavailable)
			}
		})
	}
}

func TestStaticSource(t *testing.T) {
	src := NewStaticSource(BuiltinQuestions[:2])
	ctx := context.Background()

	want := []string{"Paris", "Mars", "Paris"}
	for i, w := range want {
		q, err := src.FetchQuestion(ctx)
		if err != nil {
			t.Fatalf("FetchQuestion() error = %v", err)
		}
		if q.Correct != w {
			t.Errorf("FetchQuestion() #%d correct = %q, want %q", i, q.Correct, w)
		}
	}

	if _, err := NewStaticSource(nil).FetchQuestion(ctx); !errors.Is(err, ErrUpstreamUnavailable) {
		t.Errorf("FetchQuestion() on empty bank error = %v, want %v", err, ErrUpstreamUnavailable)
	}
}
