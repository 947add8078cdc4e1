// Package trivia fetches quiz questions from an upstream question bank.
package trivia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/doyensec/safeurl"
	"github.com/microcosm-cc/bluemonday"
)

// DefaultURL asks Open Trivia DB for one multiple choice question.
const DefaultURL = "https://opentdb.com/api.php?amount=1&type=multiple"

var ErrUpstreamUnavailable = errors.New("trivia upstream unavailable")

type Question struct {
	Text        string
	Correct     string
	Distractors []string
	Category    string
}

// Source returns one question per call. Failures are reported, not retried.
type Source interface {
	FetchQuestion(ctx context.Context) (Question, error)
}

// NewSafeHTTPClient builds an HTTP client that refuses private, loopback and
// metadata addresses.
func NewSafeHTTPClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()

	return safeurl.Client(config).Client
}

type Client struct {
	url        string
	httpClient *http.Client
	policy     *bluemonday.Policy
}

func NewClient(url string, httpClient *http.Client) *Client {
	return &Client{
		url:        url,
		httpClient: httpClient,
		policy:     bluemonday.StrictPolicy(),
	}
}

type openTDBResponse struct {
	ResponseCode int `json:"response_code"`
	Results      []struct {
		Category         string   `json:"category"`
		Question         string   `json:"question"`
		CorrectAnswer    string   `json:"correct_answer"`
		IncorrectAnswers []string `json:"incorrect_answers"`
	} `json:"results"`
}

func (c *Client) FetchQuestion(ctx context.Context) (Question, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Question{}, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "epicgambler/1.0 (+https://github.com/susu3304/epicgambler)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Question{}, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Question{}, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var body openTDBResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return Question{}, fmt.Errorf("%w: decode: %v", ErrUpstreamUnavailable, err)
	}
	if body.ResponseCode != 0 || len(body.Results) == 0 {
		return Question{}, fmt.Errorf("%w: response code %d", ErrUpstreamUnavailable, body.ResponseCode)
	}

	r := body.Results[0]
	q := Question{
		Text:     c.clean(r.Question),
		Correct:  c.clean(r.CorrectAnswer),
		Category: c.clean(r.Category),
	}
	for _, d := range r.IncorrectAnswers {
		q.Distractors = append(q.Distractors, c.clean(d))
	}
	if q.Text == "" || q.Correct == "" {
		return Question{}, fmt.Errorf("%w: empty question", ErrUpstreamUnavailable)
	}
	return q, nil
}

// clean strips markup and decodes the entities upstream text arrives with.
func (c *Client) clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(c.policy.Sanitize(s)))
}

// StaticSource cycles through a fixed question bank.
type StaticSource struct {
	mu        sync.Mutex
	questions []Question
	next      int
}

func NewStaticSource(questions []Question) *StaticSource {
	return &StaticSource{questions: questions}
}

func (s *StaticSource) FetchQuestion(ctx context.Context) (Question, error) {
	if err := ctx.Err(); err != nil {
		return Question{}, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.questions) == 0 {
		return Question{}, fmt.Errorf("%w: empty question bank", ErrUpstreamUnavailable)
	}
	q := s.questions[s.next%len(s.questions)]
	s.next++
	return q, nil
}

// BuiltinQuestions is used when no upstream URL is configured.
var BuiltinQuestions = []Question{
	{Text: "What is the capital of France?", Correct: "Paris", Distractors: []string{"Lyon", "Marseille", "Nice"}, Category: "Geography"},
	{Text: "Which planet is known as the Red Planet?", Correct: "Mars", Distractors: []string{"Venus", "Jupiter", "Mercury"}, Category: "Science"},
	{Text: "How many sides does a hexagon have?", Correct: "6", Distractors: []string{"5", "7", "8"}, Category: "Mathematics"},
	{Text: "Who painted the Mona Lisa?", Correct: "Leonardo da Vinci", Distractors: []string{"Michelangelo", "Raphael", "Donatello"}, Category: "Art"},
	{Text: "What is the largest ocean on Earth?", Correct: "Pacific", Distractors: []string{"Atlantic", "Indian", "Arctic"}, Category: "Geography"},
}
