// Package gateway is a typed client for the campus REST API gateway and its GraphQL endpoint.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-portal/internal/models"
	"github.com/noah-isme/campus-portal/pkg/middleware/requestid"
)

// Operation labels used in errors, logs and metrics.
const (
	OpList   = "list"
	OpGet    = "get"
	OpAdd    = "add"
	OpUpdate = "update"
	OpDelete = "delete"
	OpQuery  = "query"
)

// Config configures the gateway client.
type Config struct {
	BaseURL    string
	GraphQLURL string
	Timeout    time.Duration
}

// Observer receives one sample per gateway call.
type Observer interface {
	ObserveGatewayCall(kind, op, outcome string, duration time.Duration)
}

// Client issues independent, non-retried calls against the gateway.
type Client struct {
	baseURL    string
	graphqlURL string
	timeout    time.Duration
	http       *http.Client
	metrics    Observer
	logger     *zap.Logger
}

// New constructs a Client. A nil httpClient uses a fresh http.Client.
func New(cfg Config, httpClient *http.Client, metrics Observer, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	graphqlURL := cfg.GraphQLURL
	if graphqlURL == "" {
		graphqlURL = base + "/graphql"
	}
	return &Client{
		baseURL:    base,
		graphqlURL: graphqlURL,
		timeout:    cfg.Timeout,
		http:       httpClient,
		metrics:    metrics,
		logger:     logger,
	}
}

// Students returns the student resource.
func (c *Client) Students() Resource[models.Student, models.StudentInput] {
	return Resource[models.Student, models.StudentInput]{client: c, kind: models.KindStudent}
}

// Courses returns the course resource.
func (c *Client) Courses() Resource[models.Course, models.CourseInput] {
	return Resource[models.Course, models.CourseInput]{client: c, kind: models.KindCourse}
}

// Universities returns the university resource.
func (c *Client) Universities() Resource[models.University, models.UniversityInput] {
	return Resource[models.University, models.UniversityInput]{client: c, kind: models.KindUniversity}
}

func (c *Client) ListStudents(ctx context.Context) ([]models.Student, error) {
	return c.Students().List(ctx)
}

func (c *Client) GetStudentByID(ctx context.Context, id int64) (models.Student, bool, error) {
	return c.Students().Get(ctx, id)
}

func (c *Client) AddStudent(ctx context.Context, in models.StudentInput) (models.Student, error) {
	return c.Students().Add(ctx, in)
}

func (c *Client) UpdateStudent(ctx context.Context, s models.Student) (models.Student, error) {
	return c.Students().Update(ctx, s)
}

func (c *Client) DeleteStudent(ctx context.Context, id int64) error {
	return c.Students().Delete(ctx, id)
}

func (c *Client) ListCourses(ctx context.Context) ([]models.Course, error) {
	return c.Courses().List(ctx)
}

func (c *Client) GetCourseByID(ctx context.Context, id int64) (models.Course, bool, error) {
	return c.Courses().Get(ctx, id)
}

func (c *Client) AddCourse(ctx context.Context, in models.CourseInput) (models.Course, error) {
	return c.Courses().Add(ctx, in)
}

func (c *Client) UpdateCourse(ctx context.Context, course models.Course) (models.Course, error) {
	return c.Courses().Update(ctx, course)
}

func (c *Client) DeleteCourse(ctx context.Context, id int64) error {
	return c.Courses().Delete(ctx, id)
}

func (c *Client) ListUniversities(ctx context.Context) ([]models.University, error) {
	return c.Universities().List(ctx)
}

func (c *Client) GetUniversityByID(ctx context.Context, id int64) (models.University, bool, error) {
	return c.Universities().Get(ctx, id)
}

func (c *Client) AddUniversity(ctx context.Context, in models.UniversityInput) (models.University, error) {
	return c.Universities().Add(ctx, in)
}

func (c *Client) UpdateUniversity(ctx context.Context, u models.University) (models.University, error) {
	return c.Universities().Update(ctx, u)
}

func (c *Client) DeleteUniversity(ctx context.Context, id int64) error {
	return c.Universities().Delete(ctx, id)
}

// GraphQLRequest is the payload accepted by the GraphQL endpoint.
type GraphQLRequest struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	OperationName string                 `json:"operationName,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Query runs a GraphQL request and decodes its data member into dest.
func (c *Client) Query(ctx context.Context, req GraphQLRequest, dest interface{}) error {
	var resp graphQLResponse
	if err := c.do(ctx, "", OpQuery, http.MethodPost, c.graphqlURL, req, &resp); err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		messages := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			messages = append(messages, e.Message)
		}
		return &Error{Op: OpQuery, Status: http.StatusOK, Err: errors.New(strings.Join(messages, ", "))}
	}
	if dest == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, dest); err != nil {
		return &Error{Op: OpQuery, Status: http.StatusOK, Err: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}

func (c *Client) route(kind models.Kind, parts ...string) string {
	return c.baseURL + "/api/" + kind.Plural() + "/" + strings.Join(parts, "/")
}

// do performs one call. Non-2xx statuses and transport failures become *Error.
func (c *Client) do(ctx context.Context, kind models.Kind, op, method, url string, body, dest interface{}) (err error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	status := 0
	defer func() {
		duration := time.Since(start)
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		if c.metrics != nil {
			c.metrics.ObserveGatewayCall(string(kind), op, outcome, duration)
		}
		c.logger.Debug("gateway_call",
			zap.String("kind", string(kind)),
			zap.String("op", op),
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status", status),
			zap.Duration("latency", duration),
			zap.Error(err),
		)
	}()

	var reader io.Reader
	if body != nil {
		payload, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			return &Error{Kind: kind, Op: op, Err: fmt.Errorf("encode body: %w", marshalErr)}
		}
		reader = bytes.NewReader(payload)
	}

	req, reqErr := http.NewRequestWithContext(ctx, method, url, reader)
	if reqErr != nil {
		return &Error{Kind: kind, Op: op, Err: reqErr}
	}
	req.Header.Set("Accept", "application/json")
	requestid.Propagate(ctx, req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, doErr := c.http.Do(req)
	if doErr != nil {
		return &Error{Kind: kind, Op: op, Err: doErr}
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &Error{Kind: kind, Op: op, Status: resp.StatusCode}
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if decodeErr := json.NewDecoder(resp.Body).Decode(dest); decodeErr != nil {
		return &Error{Kind: kind, Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode body: %w", decodeErr)}
	}
	return nil
}
