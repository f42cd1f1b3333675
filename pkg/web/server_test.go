package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Mandeep1904/flight-price-prediction/pkg/config"
	"github.com/Mandeep1904/flight-price-prediction/pkg/formstate"
	"github.com/Mandeep1904/flight-price-prediction/pkg/itinerary"
	"github.com/Mandeep1904/flight-price-prediction/pkg/modelinfo"
	"github.com/Mandeep1904/flight-price-prediction/pkg/prediction"
	"github.com/Mandeep1904/flight-price-prediction/pkg/prediction/mocks"
	"github.com/Mandeep1904/flight-price-prediction/pkg/session"
	"github.com/Mandeep1904/flight-price-prediction/pkg/web/routes"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T, predictor prediction.Predictor) (*fiber.App, *routes.Env) {
	modelInfo, err := modelinfo.Load()
	require.NoError(t, err)

	newController := func() *formstate.Controller {
		return formstate.New(predictor,
			formstate.WithClock(func() time.Time { return testNow }),
			formstate.WithLocation(time.UTC),
		)
	}

	env := &routes.Env{
		Sessions:      session.NewStore(time.Minute, newController),
		ModelInfo:     modelInfo,
		NewController: newController,
	}

	cfg := &config.Config{
		PredictionTimeout: time.Second,
		SessionTTL:        time.Minute,
		Location:          time.UTC,
		CORSOrigins:       "*",
	}

	return NewApp(env, cfg), env
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, string(body)
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == routes.SessionCookie {
			return cookie
		}
	}

	require.Fail(t, "no session cookie set")
	return nil
}

func jsonRequest(method string, target string, body string, cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

type sessionBody struct {
	Session string `json:"session"`
	View    string `json:"view"`
	State   struct {
		Input            map[string]string `json:"input"`
		PredictionResult string            `json:"prediction_result"`
		Notification     *struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"notification"`
		Pending       bool       `json:"pending"`
		LastSubmitted *time.Time `json:"last_submitted"`
	} `json:"state"`
}

func decodeSession(t *testing.T, body string) sessionBody {
	var decoded sessionBody
	require.NoError(t, json.Unmarshal([]byte(body), &decoded))
	return decoded
}

func TestFormPageStartsSession(t *testing.T) {
	app, env := newTestApp(t, new(mocks.MockPredictor))

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/html")
	assert.NotEmpty(t, sessionCookie(t, resp).Value)
	assert.Equal(t, 1, env.Sessions.Count())

	assert.Contains(t, body, `name="Dep_Time"`)
	assert.Contains(t, body, `<option value="Jet Airways" selected>`)
	assert.Contains(t, body, `<option value="0" selected>Non-Stop</option>`)
}

func TestFormSubmitRedirectsAndShowsPrediction(t *testing.T) {
	predictor := new(mocks.MockPredictor)
	app, _ := newTestApp(t, predictor)

	resp, _ := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	cookie := sessionCookie(t, resp)

	form := url.Values{}
	form.Set("Dep_Time", "2025-03-12T09:30")
	form.Set("Arrival_Time", "2025-03-12T12:15")
	form.Set("airline", "IndiGo")
	form.Set("ignored", "value")

	expected := itinerary.Defaults()
	expected.DepartureTime = "2025-03-12T09:30"
	expected.ArrivalTime = "2025-03-12T12:15"
	expected.Airline = "IndiGo"
	predictor.On("Predict", mock.Anything, expected).Return("Your Flight price is Rs. 5000", nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	req.AddCookie(cookie)

	resp, _ = doRequest(t, app, req)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get(fiber.HeaderLocation))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)

	_, body := doRequest(t, app, req)
	assert.Contains(t, body, "Your Flight price is Rs. 5000")
	assert.Contains(t, body, `value="2025-03-12T09:30"`)
	predictor.AssertExpectations(t)
}

func TestFormSubmitValidationShowsNotificationOnce(t *testing.T) {
	predictor := new(mocks.MockPredictor)
	app, _ := newTestApp(t, predictor)

	resp, body := doRequest(t, app, jsonRequest(http.MethodPost, "/submit", `{"Dep_Time": "2025-03-12T12:00", "Arrival_Time": "2025-03-12T08:00"}`, nil))
	cookie := sessionCookie(t, resp)

	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	state := decodeSession(t, body).State
	require.NotNil(t, state.Notification)
	assert.Equal(t, "validation", state.Notification.Kind)
	assert.Equal(t, itinerary.InvertedMessage, state.Notification.Message)
	assert.Equal(t, "2025-03-12T12:00", state.Input["Dep_Time"])

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	_, body = doRequest(t, app, req)
	assert.Contains(t, body, "Arrival date cannot be before departure date!")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	_, body = doRequest(t, app, req)
	assert.NotContains(t, body, "Arrival date cannot be before departure date!")

	predictor.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything)
}

func TestFormSubmitTransportFailure(t *testing.T) {
	predictor := new(mocks.MockPredictor)
	app, _ := newTestApp(t, predictor)

	predictor.On("Predict", mock.Anything, mock.Anything).Return("", errors.New("connection refused")).Once()

	resp, body := doRequest(t, app, jsonRequest(http.MethodPost, "/submit", `{"Dep_Time": "2025-03-12T09:30", "Arrival_Time": "2025-03-12T12:15"}`, nil))

	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	state := decodeSession(t, body).State
	require.NotNil(t, state.Notification)
	assert.Equal(t, "submission-failed", state.Notification.Kind)
	assert.Equal(t, formstate.SubmissionFailedMessage, state.Notification.Message)
}

func TestFormSubmitUnknownFieldChangesNothing(t *testing.T) {
	predictor := new(mocks.MockPredictor)
	app, _ := newTestApp(t, predictor)

	resp, _ := doRequest(t, app, jsonRequest(http.MethodGet, "/session", "", nil))
	cookie := sessionCookie(t, resp)

	// map order is random, repeat so the unknown field is visited at every position
	for i := 0; i < 20; i++ {
		resp, body := doRequest(t, app, jsonRequest(http.MethodPost, "/submit", `{"Source": "Mumbai", "airline": "IndiGo", "Price": "1"}`, cookie))
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "unknown itinerary field")

		_, body = doRequest(t, app, jsonRequest(http.MethodGet, "/session", "", cookie))
		input := decodeSession(t, body).State.Input
		assert.Equal(t, itinerary.DefaultSource, input["Source"])
		assert.Equal(t, itinerary.DefaultAirline, input["airline"])
	}

	predictor.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything)
}

func TestFormSubmitWhilePending(t *testing.T) {
	predictor := new(mocks.MockPredictor)
	app, _ := newTestApp(t, predictor)

	resp, _ := doRequest(t, app, jsonRequest(http.MethodGet, "/session", "", nil))
	cookie := sessionCookie(t, resp)

	started := make(chan struct{})
	release := make(chan struct{})
	predictor.On("Predict", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			close(started)
			<-release
		}).
		Return("Rs. 3900", nil).
		Once()

	submitBody := `{"Dep_Time": "2025-03-12T09:30", "Arrival_Time": "2025-03-12T12:15"}`

	firstStatus := make(chan int, 1)
	go func() {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/submit", submitBody, cookie), -1)
		if err != nil {
			firstStatus <- 0
			return
		}
		firstStatus <- resp.StatusCode
	}()

	<-started

	resp, body := doRequest(t, app, jsonRequest(http.MethodPost, "/submit", submitBody, cookie))
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.True(t, decodeSession(t, body).State.Pending)

	close(release)
	assert.Equal(t, fiber.StatusOK, <-firstStatus)

	_, body = doRequest(t, app, jsonRequest(http.MethodGet, "/session", "", cookie))
	state := decodeSession(t, body).State
	assert.False(t, state.Pending)
	assert.Equal(t, "Rs. 3900", state.PredictionResult)
	predictor.AssertNumberOfCalls(t, "Predict", 1)
}

func TestFieldUpdates(t *testing.T) {
	app, _ := newTestApp(t, new(mocks.MockPredictor))

	resp, body := doRequest(t, app, jsonRequest(http.MethodPost, "/field", `{"name": "Source", "value": "Mumbai"}`, nil))
	cookie := sessionCookie(t, resp)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Mumbai", decodeSession(t, body).State.Input["Source"])

	resp, _ = doRequest(t, app, jsonRequest(http.MethodPost, "/field", `{"name": "Route", "value": "DEL"}`, cookie))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body = doRequest(t, app, jsonRequest(http.MethodPost, "/reset", "", cookie))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, itinerary.DefaultSource, decodeSession(t, body).State.Input["Source"])
}

func TestSessionDetail(t *testing.T) {
	app, _ := newTestApp(t, new(mocks.MockPredictor))

	resp, body := doRequest(t, app, jsonRequest(http.MethodGet, "/session", "", nil))
	cookie := sessionCookie(t, resp)

	basic := decodeSession(t, body)
	assert.Equal(t, cookie.Value, basic.Session)
	assert.Equal(t, "form", basic.View)
	assert.Nil(t, basic.State.LastSubmitted)

	_, body = doRequest(t, app, jsonRequest(http.MethodGet, "/session?detailed=true", "", cookie))
	assert.NotNil(t, decodeSession(t, body).State.LastSubmitted)
}

func TestViewTransitions(t *testing.T) {
	app, _ := newTestApp(t, new(mocks.MockPredictor))

	resp, body := doRequest(t, app, jsonRequest(http.MethodPost, "/view/model-info", "", nil))
	cookie := sessionCookie(t, resp)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "info", decodeSession(t, body).View)

	resp, body = doRequest(t, app, jsonRequest(http.MethodPost, "/view/model-info", "", cookie))
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "info", decodeSession(t, body).View)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	_, body = doRequest(t, app, req)
	assert.Contains(t, body, "Dataset Columns")
	assert.Contains(t, body, "Random Forest")
	assert.Contains(t, body, "Back to Home")

	req = httptest.NewRequest(http.MethodPost, "/view/back", nil)
	req.AddCookie(cookie)
	resp, _ = doRequest(t, app, req)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	_, body = doRequest(t, app, req)
	assert.Contains(t, body, `name="Dep_Time"`)
}

func TestColumnsCSV(t *testing.T) {
	app, _ := newTestApp(t, new(mocks.MockPredictor))

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/model-info/columns.csv", nil))

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/csv")
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "dataset_columns.csv")
	assert.True(t, strings.HasPrefix(body, "Column Name,Role,Impact on Prediction\n"))
}

func TestHealthAndVersion(t *testing.T) {
	app, _ := newTestApp(t, new(mocks.MockPredictor))

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status": "healthy", "sessions": 0}`, body)

	_, body = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/version", nil))
	assert.JSONEq(t, `{"version": "v1.0"}`, body)
}

func TestAPIPredict(t *testing.T) {
	predictor := new(mocks.MockPredictor)
	app, env := newTestApp(t, predictor)

	expected := itinerary.Defaults()
	expected.DepartureTime = "2025-03-12T09:30"
	expected.ArrivalTime = "2025-03-12T12:15"
	expected.Destination = "Hyderabad"
	predictor.On("Predict", mock.Anything, expected).Return("Rs. 6200", nil).Once()

	resp, body := doRequest(t, app, jsonRequest(http.MethodPost, "/api/predict", `{"Dep_Time": "2025-03-12T09:30", "Arrival_Time": "2025-03-12T12:15", "Destination": "Hyderabad"}`, nil))

	require.Equal(t, fiber.StatusOK, resp.StatusCode, body)

	var decoded struct {
		PredictionText string            `json:"prediction_text"`
		Itinerary      map[string]string `json:"itinerary"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &decoded))
	assert.Equal(t, "Rs. 6200", decoded.PredictionText)
	assert.Equal(t, "Hyderabad", decoded.Itinerary["Destination"])
	assert.Equal(t, itinerary.DefaultAirline, decoded.Itinerary["airline"])

	assert.Zero(t, env.Sessions.Count())
	predictor.AssertExpectations(t)
}

func TestAPIPredictFailures(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		predictErr     error
		expectedStatus int
		expectedDetail string
	}{
		{
			name:           "inverted",
			body:           `{"Dep_Time": "2025-03-12T12:00", "Arrival_Time": "2025-03-12T08:00"}`,
			expectedStatus: fiber.StatusUnprocessableEntity,
			expectedDetail: itinerary.InvertedMessage,
		},
		{
			name:           "contradictory",
			body:           `{"Dep_Time": "2025-03-11T12:00", "Arrival_Time": "2025-03-09T08:00"}`,
			expectedStatus: fiber.StatusUnprocessableEntity,
			expectedDetail: itinerary.ContradictoryMessage,
		},
		{
			name:           "missing departure",
			body:           `{"Arrival_Time": "2025-03-12T08:00"}`,
			expectedStatus: fiber.StatusUnprocessableEntity,
		},
		{
			name:           "prediction service down",
			body:           `{"Dep_Time": "2025-03-12T09:30", "Arrival_Time": "2025-03-12T12:15"}`,
			predictErr:     &prediction.TransportError{Endpoint: "http://127.0.0.1:5000/api/predict", StatusCode: 500},
			expectedStatus: fiber.StatusBadGateway,
			expectedDetail: formstate.SubmissionFailedMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			predictor := new(mocks.MockPredictor)
			if tt.predictErr != nil {
				predictor.On("Predict", mock.Anything, mock.Anything).Return("", tt.predictErr).Once()
			}

			app, _ := newTestApp(t, predictor)

			resp, body := doRequest(t, app, jsonRequest(http.MethodPost, "/api/predict", tt.body, nil))

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedDetail != "" {
				assert.Contains(t, body, tt.expectedDetail)
			}
			if tt.predictErr == nil {
				predictor.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestAPIOptions(t *testing.T) {
	app, _ := newTestApp(t, new(mocks.MockPredictor))

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/options", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var decoded struct {
		Source  routes.FieldOptions `json:"Source"`
		Stops   routes.FieldOptions `json:"stops"`
		Airline routes.FieldOptions `json:"airline"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &decoded))

	assert.Equal(t, itinerary.DefaultSource, decoded.Source.Default)
	assert.Len(t, decoded.Airline.Options, len(itinerary.Airlines))
	assert.Equal(t, itinerary.Option{Value: "0", Label: "Non-Stop"}, decoded.Stops.Options[0])
}

func TestAPIModelInfoAndDocs(t *testing.T) {
	app, _ := newTestApp(t, new(mocks.MockPredictor))

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/model-info", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"Random Forest"`)

	resp, body = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "/api/predict")
}
