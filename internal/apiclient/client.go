package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/2beens/liftlog/internal/auth"
	"github.com/2beens/liftlog/internal/coordinator"
	"github.com/2beens/liftlog/internal/middleware"
	"github.com/2beens/liftlog/internal/misc"
	"github.com/2beens/liftlog/internal/progression"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/internal/workouts"
	"github.com/2beens/liftlog/pkg"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// UserAgent identifies the client to the CORS middleware, which lets
// origin-less requests from known clients through.
const UserAgent = "liftctl/1.0"

var (
	ErrNotLoggedIn  = errors.New("not logged in")
	ErrUnexpected   = errors.New("unexpected response")
	ErrNotFound     = errors.New("not found")
	ErrWrongLogin   = errors.New("wrong credentials")
	ErrProgression  = errors.New("progression unavailable")
	ErrUnauthorized = workouts.ErrUnauthorized
)

// notFoundErrors maps the 404 bodies of the workouts API back to sentinels.
var notFoundErrors = []error{
	workouts.ErrWorkoutNotFound,
	workouts.ErrExerciseNotFound,
	workouts.ErrSetNotFound,
	workouts.ErrTemplateNotFound,
	workouts.ErrSelectionNotFound,
	workouts.ErrTrackedNotFound,
}

// Client talks to the liftlog REST API. It implements coordinator.Remote, so a
// session can run against a remote server the same way it runs in-process.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	token      string
}

var _ coordinator.Remote = (*Client)(nil)

// NewClient returns a client for baseURL. A nil httpClient gets an
// otelhttp instrumented default one.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url [%s]", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{
		baseURL:    u,
		httpClient: httpClient,
	}, nil
}

func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) Token() string {
	return c.token
}

// Login exchanges credentials for a session token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (_ *misc.LoginResponse, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "apiclient.login")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var resp misc.LoginResponse
	status, err := c.do(ctx, http.MethodPost, "/a/login", auth.Credentials{Username: username, Password: password}, &resp)
	if err != nil {
		if status == http.StatusUnauthorized {
			return nil, ErrWrongLogin
		}
		return nil, err
	}
	c.token = resp.Token
	return &resp, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if c.token == "" {
		return ErrNotLoggedIn
	}
	if _, err := c.do(ctx, http.MethodGet, "/a/logout", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

func (c *Client) Selections(ctx context.Context) ([]workouts.ExerciseSelection, error) {
	var list []workouts.ExerciseSelection
	if _, err := c.do(ctx, http.MethodGet, "/selections", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) ListTemplates(ctx context.Context) ([]workouts.Template, error) {
	var list []workouts.Template
	if _, err := c.do(ctx, http.MethodGet, "/templates", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) ListWorkouts(ctx context.Context) ([]workouts.Workout, error) {
	var list []workouts.Workout
	if _, err := c.do(ctx, http.MethodGet, "/workouts", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) CreateWorkout(ctx context.Context, nw workouts.NewWorkout) (*workouts.Workout, error) {
	var w workouts.Workout
	if _, err := c.do(ctx, http.MethodPost, "/workouts", nw, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *Client) DeleteWorkout(ctx context.Context, workoutID int) error {
	_, err := c.do(ctx, http.MethodDelete, "/workouts/"+strconv.Itoa(workoutID), nil, nil)
	return err
}

func (c *Client) GetWorkout(ctx context.Context, workoutID int) (*workouts.Workout, error) {
	var w workouts.Workout
	if _, err := c.do(ctx, http.MethodGet, "/workouts/"+strconv.Itoa(workoutID), nil, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *Client) ListExercises(ctx context.Context, workoutID int) ([]workouts.Exercise, error) {
	var list []workouts.Exercise
	if _, err := c.do(ctx, http.MethodGet, "/workouts/"+strconv.Itoa(workoutID)+"/exercises", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) ListSets(ctx context.Context, workoutID int) ([]workouts.Set, error) {
	var list []workouts.Set
	if _, err := c.do(ctx, http.MethodGet, "/workouts/"+strconv.Itoa(workoutID)+"/sets", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) CreateExercise(ctx context.Context, ne workouts.NewExercise) (*workouts.Exercise, error) {
	var e workouts.Exercise
	path := "/workouts/" + strconv.Itoa(ne.WorkoutID) + "/exercises"
	if _, err := c.do(ctx, http.MethodPost, path, ne, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) DeleteExercise(ctx context.Context, exerciseID int) error {
	_, err := c.do(ctx, http.MethodDelete, "/exercises/"+strconv.Itoa(exerciseID), nil, nil)
	return err
}

func (c *Client) UpdateExerciseNote(ctx context.Context, exerciseID int, note *string) (*workouts.Exercise, error) {
	var e workouts.Exercise
	path := "/exercises/" + strconv.Itoa(exerciseID) + "/note"
	if _, err := c.do(ctx, http.MethodPatch, path, workouts.NoteRequest{Note: note}, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) CreateSet(ctx context.Context, ns workouts.NewSet) (*workouts.Set, error) {
	var s workouts.Set
	path := "/exercises/" + strconv.Itoa(ns.ExerciseID) + "/sets"
	if _, err := c.do(ctx, http.MethodPost, path, ns, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) DeleteSet(ctx context.Context, setID int) error {
	_, err := c.do(ctx, http.MethodDelete, "/sets/"+strconv.Itoa(setID), nil, nil)
	return err
}

func (c *Client) UpdateSet(ctx context.Context, setID int, fields workouts.SetFields) (*workouts.Set, error) {
	var s workouts.Set
	if _, err := c.do(ctx, http.MethodPatch, "/sets/"+strconv.Itoa(setID), fields, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) CompleteWorkout(ctx context.Context, workoutID int, completion workouts.Completion) (*workouts.Workout, error) {
	var w workouts.Workout
	path := "/workouts/" + strconv.Itoa(workoutID) + "/complete"
	if _, err := c.do(ctx, http.MethodPost, path, completion, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *Client) UpdateWorkoutSentiment(ctx context.Context, workoutID int, sentiment workouts.Sentiment) (*workouts.Workout, error) {
	var w workouts.Workout
	path := "/workouts/" + strconv.Itoa(workoutID) + "/sentiment"
	if _, err := c.do(ctx, http.MethodPatch, path, workouts.SentimentRequest{Sentiment: sentiment}, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *Client) ListTracked(ctx context.Context) ([]workouts.TrackedExercise, error) {
	var list []workouts.TrackedExercise
	if _, err := c.do(ctx, http.MethodGet, "/tracked", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) AddTracked(ctx context.Context, selectionID int) (*workouts.TrackedExercise, error) {
	var t workouts.TrackedExercise
	req := workouts.TrackRequest{ExerciseSelectionID: selectionID}
	if _, err := c.do(ctx, http.MethodPost, "/tracked", req, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) RemoveTracked(ctx context.Context, selectionID int) error {
	_, err := c.do(ctx, http.MethodDelete, "/tracked/"+strconv.Itoa(selectionID), nil, nil)
	return err
}

// Progression fetches a progression series. selectionID 0 asks for the
// muscle-group volume series. A response carrying an error flag is returned
// together with ErrProgression.
func (c *Client) Progression(ctx context.Context, rangeToken progression.RangeToken, selectionID int) (*progression.Response, error) {
	q := url.Values{}
	if rangeToken != "" {
		q.Set("range", string(rangeToken))
	}
	if selectionID > 0 {
		q.Set("exercise", strconv.Itoa(selectionID))
	}
	path := "/progression"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var raw struct {
		Type   string          `json:"type"`
		Data   json.RawMessage `json:"data"`
		Groups []string        `json:"groups"`
		Error  string          `json:"error"`
	}
	status, err := c.do(ctx, http.MethodGet, path, nil, &raw)
	if err != nil && status != http.StatusInternalServerError {
		return nil, err
	}

	resp := &progression.Response{
		Type:   raw.Type,
		Groups: raw.Groups,
		Error:  raw.Error,
	}
	if raw.Type == "exercise" {
		var points []progression.WeeklyE1RMPoint
		if uErr := json.Unmarshal(raw.Data, &points); uErr != nil && len(raw.Data) > 0 {
			return nil, fmt.Errorf("%w: decode e1rm points: %s", ErrUnexpected, uErr)
		}
		resp.Data = points
	} else {
		var points []progression.WeeklyMuscleGroupPoint
		if uErr := json.Unmarshal(raw.Data, &points); uErr != nil && len(raw.Data) > 0 {
			return nil, fmt.Errorf("%w: decode volume points: %s", ErrUnexpected, uErr)
		}
		resp.Data = points
	}

	if resp.Error != "" {
		return resp, fmt.Errorf("%w: %s", ErrProgression, resp.Error)
	}
	return resp, err
}

// do sends one request and decodes a 2xx JSON body into out. It returns the
// response status so callers can special-case codes.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reqBody)
	if err != nil {
		return 0, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", pkg.ContentType.JSON)
	}
	if c.token != "" {
		req.Header.Set(middleware.TokenHeader, c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, out); err != nil {
				return resp.StatusCode, fmt.Errorf("%w: decode body: %s", ErrUnexpected, err)
			}
		}
		return resp.StatusCode, nil
	}

	// progression reports failures with a full body
	if resp.StatusCode == http.StatusInternalServerError && out != nil && strings.HasPrefix(path, "/progression") {
		if err := json.Unmarshal(respBody, out); err == nil {
			return resp.StatusCode, fmt.Errorf("%s %s: %w", method, path, ErrProgression)
		}
	}

	return resp.StatusCode, errorFromResponse(resp.StatusCode, respBody)
}

func errorFromResponse(status int, body []byte) error {
	var errResp workouts.ErrorResponse
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		msg = errResp.Error
	}

	switch status {
	case http.StatusBadRequest:
		return &workouts.ValidationError{
			Field:   errResp.Field,
			Message: strings.TrimPrefix(strings.TrimPrefix(msg, "validation: "), errResp.Field+": "),
		}
	case http.StatusUnauthorized:
		return ErrNotLoggedIn
	case http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusConflict:
		return workouts.ErrWorkoutCompleted
	case http.StatusNotFound:
		for _, sentinel := range notFoundErrors {
			if strings.HasSuffix(msg, sentinel.Error()) {
				return fmt.Errorf("%s: %w", msg, sentinel)
			}
		}
		return fmt.Errorf("%s: %w", msg, ErrNotFound)
	default:
		return fmt.Errorf("%w: status %d: %s", ErrUnexpected, status, msg)
	}
}
