package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"log/slog"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"outfit-advisor/internal/app"
	"outfit-advisor/internal/config"
	"outfit-advisor/internal/llm"
	"outfit-advisor/internal/logger"
	"outfit-advisor/internal/weather"
)

var londonReading = weather.Reading{
	City:        "London",
	Units:       weather.UnitsMetric,
	Temperature: 15,
	Description: "clear sky",
	WindSpeed:   3.5,
	Humidity:    70,
	IconCode:    "01d",
}

func newTestDeps(t *testing.T, w weather.Client, l llm.Client) app.Deps {
	t.Helper()
	return newTestDepsWithLog(t, w, l, logger.Discard())
}

func newTestDepsWithLog(t *testing.T, w weather.Client, l llm.Client, log *slog.Logger) app.Deps {
	t.Helper()
	cfg := config.Config{
		LLMProvider:        "cohere",
		WeatherIconBaseURL: "https://openweathermap.org/img/wn",
	}
	deps, err := app.Assemble(cfg, log, w, l)
	if err != nil {
		t.Fatalf("failed to assemble deps: %v", err)
	}
	return deps
}

func TestPageHandler(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		setup      func(*weather.MockClient, *llm.MockClient)
		wantStatus int
		contains   []string
		absent     []string
	}{
		{
			name:  "london metric",
			query: "?city=London&units=metric",
			setup: func(w *weather.MockClient, l *llm.MockClient) {
				w.On("Current", mock.Anything, "London", weather.UnitsMetric).Return(londonReading, nil).Once()
				l.On("Chat", mock.Anything, mock.MatchedBy(func(p string) bool {
					return strings.Contains(p, "15°C") && strings.Contains(p, "clear sky")
				})).Return("- **Top**: light jacket", nil).Once()
			},
			wantStatus: http.StatusOK,
			contains:   []string{"15°C", "70%", "3.5 m/s", "Clear sky", "01d@2x.png", "<strong>Top</strong>"},
		},
		{
			name:  "unknown city shows the provider message",
			query: "?city=Zzzzz",
			setup: func(w *weather.MockClient, l *llm.MockClient) {
				w.On("Current", mock.Anything, "Zzzzz", weather.UnitsMetric).
					Return(weather.Reading{}, &weather.CityNotFoundError{Code: 404, Message: "city not found"}).Once()
			},
			wantStatus: http.StatusOK,
			contains:   []string{"City not found: city not found"},
			absent:     []string{"Here's your outfit suggestion:"},
		},
		{
			name:       "empty city renders the bare form",
			query:      "",
			wantStatus: http.StatusOK,
			contains:   []string{"Enter city name"},
			absent:     []string{"Temperature", `class="error"`},
		},
		{
			name:  "units are matched case-insensitively",
			query: "?city=Boston&units=Imperial",
			setup: func(w *weather.MockClient, l *llm.MockClient) {
				r := londonReading
				r.City = "Boston"
				r.Units = weather.UnitsImperial
				w.On("Current", mock.Anything, "Boston", weather.UnitsImperial).Return(r, nil).Once()
				l.On("Chat", mock.Anything, mock.Anything).Return("Shorts", nil).Once()
			},
			wantStatus: http.StatusOK,
			contains:   []string{`<h2 class="place">Boston</h2>`, "15°F", "3.5 mph"},
		},
		{
			name:  "units radio label accepted",
			query: "?city=London&units=" + url.QueryEscape("Metric (°C)"),
			setup: func(w *weather.MockClient, l *llm.MockClient) {
				w.On("Current", mock.Anything, "London", weather.UnitsMetric).Return(londonReading, nil).Once()
				l.On("Chat", mock.Anything, mock.Anything).Return("Jacket", nil).Once()
			},
			wantStatus: http.StatusOK,
			contains:   []string{"15°C"},
		},
		{
			name:       "unknown units shown in the page",
			query:      "?city=London&units=kelvin",
			wantStatus: http.StatusBadRequest,
			contains:   []string{`<p class="error">Invalid input: units must be metric or imperial, got &#34;kelvin&#34;</p>`, `value="London"`},
			absent:     []string{"Temperature", "validation failed"},
		},
		{
			name:       "city too long shown in the page",
			query:      "?city=" + strings.Repeat("a", 201),
			wantStatus: http.StatusBadRequest,
			contains:   []string{"Invalid input: city must be at most 200 characters"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockWeather := new(weather.MockClient)
			mockLLM := new(llm.MockClient)
			if tt.setup != nil {
				tt.setup(mockWeather, mockLLM)
			}

			handler := newHandler(newTestDeps(t, mockWeather, mockLLM))
			req := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
				t.Errorf("Expected HTML content type, got %q", ct)
			}
			body := w.Body.String()
			for _, s := range tt.contains {
				if !strings.Contains(body, s) {
					t.Errorf("Expected body to contain %q", s)
				}
			}
			for _, s := range tt.absent {
				if strings.Contains(body, s) {
					t.Errorf("Expected body not to contain %q", s)
				}
			}

			mockWeather.AssertExpectations(t)
			mockLLM.AssertExpectations(t)
		})
	}
}

func TestAdviceHandler(t *testing.T) {
	tests := []struct {
		name          string
		requestBody   string
		setup         func(*weather.MockClient, *llm.MockClient)
		wantStatus    int
		checkResponse func(*testing.T, map[string]any)
	}{
		{
			name:        "successful advice",
			requestBody: `{"city": "London", "units": "metric"}`,
			setup: func(w *weather.MockClient, l *llm.MockClient) {
				w.On("Current", mock.Anything, "London", weather.UnitsMetric).Return(londonReading, nil).Once()
				l.On("Chat", mock.Anything, mock.Anything).Return("Wear layers", nil).Once()
			},
			wantStatus: http.StatusOK,
			checkResponse: func(t *testing.T, result map[string]any) {
				if result["state"] != "done" {
					t.Errorf("Expected state done, got %v", result["state"])
				}
				wv, ok := result["weather"].(map[string]any)
				if !ok {
					t.Fatalf("Expected weather object, got %v", result["weather"])
				}
				if wv["temperature"] != "15°C" || wv["humidity"] != "70%" || wv["wind_speed"] != "3.5 m/s" || wv["info"] != "Clear sky" {
					t.Errorf("Unexpected weather view: %v", wv)
				}
				sug, _ := result["suggestion"].(map[string]any)
				if sug["text"] != "Wear layers" {
					t.Errorf("Expected suggestion text, got %v", result["suggestion"])
				}
				if _, ok := result["prompt"]; ok {
					t.Error("Prompt should not be serialized")
				}
			},
		},
		{
			name:        "imperial units forwarded",
			requestBody: `{"city": "Boston", "units": "imperial"}`,
			setup: func(w *weather.MockClient, l *llm.MockClient) {
				r := londonReading
				r.Units = weather.UnitsImperial
				w.On("Current", mock.Anything, "Boston", weather.UnitsImperial).Return(r, nil).Once()
				l.On("Chat", mock.Anything, mock.Anything).Return("Shorts", nil).Once()
			},
			wantStatus: http.StatusOK,
			checkResponse: func(t *testing.T, result map[string]any) {
				wv, _ := result["weather"].(map[string]any)
				if wv["temperature"] != "15°F" || wv["wind_speed"] != "3.5 mph" {
					t.Errorf("Unexpected imperial view: %v", wv)
				}
			},
		},
		{
			name:        "city not found returns 404 and skips the suggestion",
			requestBody: `{"city": "Zzzzz"}`,
			setup: func(w *weather.MockClient, l *llm.MockClient) {
				w.On("Current", mock.Anything, "Zzzzz", weather.UnitsMetric).
					Return(weather.Reading{}, &weather.CityNotFoundError{Code: 404, Message: "city not found"}).Once()
			},
			wantStatus: http.StatusNotFound,
			checkResponse: func(t *testing.T, result map[string]any) {
				e, _ := result["error"].(map[string]any)
				if e["kind"] != "city_not_found" || !strings.Contains(e["message"].(string), "city not found") {
					t.Errorf("Unexpected error: %v", result["error"])
				}
				if _, ok := result["weather"]; ok {
					t.Error("Expected no weather for unknown city")
				}
			},
		},
		{
			name:        "suggestion failure returns 502",
			requestBody: `{"city": "London"}`,
			setup: func(w *weather.MockClient, l *llm.MockClient) {
				w.On("Current", mock.Anything, "London", weather.UnitsMetric).Return(londonReading, nil).Once()
				l.On("Chat", mock.Anything, mock.Anything).
					Return("", &llm.SuggestionError{Err: errors.New("unauthorized")}).Once()
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:        "unexpected failure returns 500",
			requestBody: `{"city": "London"}`,
			setup: func(w *weather.MockClient, l *llm.MockClient) {
				w.On("Current", mock.Anything, "London", weather.UnitsMetric).
					Return(weather.Reading{}, errors.New("boom")).Once()
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:        "blank city is idle",
			requestBody: `{"city": "  "}`,
			wantStatus:  http.StatusOK,
			checkResponse: func(t *testing.T, result map[string]any) {
				if result["state"] != "idle" {
					t.Errorf("Expected idle, got %v", result["state"])
				}
			},
		},
		{
			name:        "invalid JSON payload returns 400",
			requestBody: `{invalid json}`,
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "city too long fails validation",
			requestBody: `{"city": "` + strings.Repeat("a", 201) + `"}`,
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "unknown units fail validation",
			requestBody: `{"city": "London", "units": "kelvin"}`,
			wantStatus:  http.StatusBadRequest,
			checkResponse: func(t *testing.T, result map[string]any) {
				fields, _ := result["fields"].([]any)
				if len(fields) != 1 || !strings.Contains(fields[0].(string), "units must be metric or imperial") {
					t.Errorf("Unexpected fields: %v", result["fields"])
				}
			},
		},
		{
			name:        "capitalized units accepted",
			requestBody: `{"city": "Boston", "units": "IMPERIAL"}`,
			setup: func(w *weather.MockClient, l *llm.MockClient) {
				r := londonReading
				r.Units = weather.UnitsImperial
				w.On("Current", mock.Anything, "Boston", weather.UnitsImperial).Return(r, nil).Once()
				l.On("Chat", mock.Anything, mock.Anything).Return("Shorts", nil).Once()
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockWeather := new(weather.MockClient)
			mockLLM := new(llm.MockClient)
			if tt.setup != nil {
				tt.setup(mockWeather, mockLLM)
			}

			handler := adviceHandler(newTestDeps(t, mockWeather, mockLLM))
			req := httptest.NewRequest(http.MethodPost, "/api/advice", bytes.NewBufferString(tt.requestBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			handler(w, req)

			resp := w.Result()
			if resp.StatusCode != tt.wantStatus {
				body, _ := io.ReadAll(resp.Body)
				t.Errorf("Expected status %d, got %d. Body: %s", tt.wantStatus, resp.StatusCode, string(body))
			}

			if tt.checkResponse != nil {
				var result map[string]any
				if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				tt.checkResponse(t, result)
			}

			mockWeather.AssertExpectations(t)
			mockLLM.AssertExpectations(t)
		})
	}
}

func TestHealthz(t *testing.T) {
	handler := newHandler(newTestDeps(t, new(weather.MockClient), new(llm.MockClient)))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Errorf("Expected 200 ok, got %d %q", w.Code, w.Body.String())
	}
}

func TestPageIsGzipped(t *testing.T) {
	handler := newHandler(newTestDeps(t, new(weather.MockClient), new(llm.MockClient)))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Content-Encoding"); got != "gzip" {
		t.Errorf("Expected gzip content encoding, got %q", got)
	}
}

func TestCycleLogsJoinTheRequestLog(t *testing.T) {
	var buf bytes.Buffer
	mockWeather := new(weather.MockClient)
	mockWeather.On("Current", mock.Anything, "Zzzzz", weather.UnitsMetric).
		Return(weather.Reading{}, &weather.CityNotFoundError{Code: 404, Message: "city not found"}).Once()

	deps := newTestDepsWithLog(t, mockWeather, new(llm.MockClient), logger.NewWithWriter(&buf, "debug"))
	w := httptest.NewRecorder()
	newHandler(deps).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?city=Zzzzz", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var cycleLines, requestLines []map[string]any
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var line map[string]any
		require.NoError(t, dec.Decode(&line))
		switch {
		case line["msg"] == "request":
			requestLines = append(requestLines, line)
		case line["cycle_id"] != nil:
			cycleLines = append(cycleLines, line)
		}
	}
	require.Len(t, requestLines, 1)
	require.NotEmpty(t, cycleLines)

	reqID, _ := requestLines[0]["request_id"].(string)
	cycleID, _ := requestLines[0]["cycle_id"].(string)
	assert.NotEmpty(t, reqID)
	assert.NotEmpty(t, cycleID)
	for _, line := range cycleLines {
		assert.Equal(t, reqID, line["request_id"], line["msg"])
		assert.Equal(t, cycleID, line["cycle_id"], line["msg"])
	}
	mockWeather.AssertExpectations(t)
}
