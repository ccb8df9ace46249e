package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultBaseURL     = "https://api.openweathermap.org/data/2.5"
	DefaultIconBaseURL = "https://openweathermap.org/img/wn"

	statusOK       = 200
	unknownMessage = "Unknown error"
)

// OpenWeatherMap calls the OpenWeatherMap current weather endpoint.
type OpenWeatherMap struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewOpenWeatherMap builds a client. The key is sent as is; an empty key is
// rejected by the provider on first use. A nil httpClient gets a client with
// transport defaults.
func NewOpenWeatherMap(apiKey, baseURL string, httpClient *http.Client) *OpenWeatherMap {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &OpenWeatherMap{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// owmResponse mirrors the fields we read. Pointers distinguish absent from zero.
type owmResponse struct {
	Cod     json.Number `json:"cod"` // number on success, string on errors
	Message string      `json:"message"`
	Name    string      `json:"name"`
	Main    *struct {
		Temp     *float64 `json:"temp"`
		Humidity *float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description *string `json:"description"`
		Icon        *string `json:"icon"`
	} `json:"weather"`
	Wind *struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
}

// Current fetches the current weather for city.
func (c *OpenWeatherMap) Current(ctx context.Context, city string, units Units) (Reading, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("units", string(units))
	q.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/weather?"+q.Encode(), nil)
	if err != nil {
		return Reading{}, &TransportError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Reading{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Reading{}, &TransportError{Err: fmt.Errorf("read body: %w", err)}
	}

	var data owmResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return Reading{}, &ParseError{Err: err}
	}

	code, err := statusCode(data.Cod, resp.StatusCode)
	if err != nil {
		return Reading{}, &ParseError{Err: err}
	}
	if code != statusOK {
		msg := data.Message
		if msg == "" {
			msg = unknownMessage
		}
		return Reading{}, &CityNotFoundError{Code: code, Message: msg}
	}

	return data.reading(units)
}

// statusCode prefers the body's cod field and falls back to the HTTP status.
func statusCode(cod json.Number, httpStatus int) (int, error) {
	if cod == "" {
		return httpStatus, nil
	}
	code, err := strconv.Atoi(cod.String())
	if err != nil {
		return 0, fmt.Errorf("invalid cod %q: %w", cod, err)
	}
	return code, nil
}

func (d owmResponse) reading(units Units) (Reading, error) {
	switch {
	case d.Main == nil || d.Main.Temp == nil:
		return Reading{}, &ParseError{Field: "main.temp"}
	case d.Main.Humidity == nil:
		return Reading{}, &ParseError{Field: "main.humidity"}
	case len(d.Weather) == 0 || d.Weather[0].Description == nil:
		return Reading{}, &ParseError{Field: "weather[0].description"}
	case d.Weather[0].Icon == nil:
		return Reading{}, &ParseError{Field: "weather[0].icon"}
	case d.Wind == nil || d.Wind.Speed == nil:
		return Reading{}, &ParseError{Field: "wind.speed"}
	}
	return Reading{
		City:        d.Name,
		Units:       units,
		Temperature: *d.Main.Temp,
		Description: *d.Weather[0].Description,
		WindSpeed:   *d.Wind.Speed,
		Humidity:    *d.Main.Humidity,
		IconCode:    *d.Weather[0].Icon,
	}, nil
}

// IconURL returns the 2x icon image address for an icon code.
func IconURL(base, code string) string {
	if base == "" {
		base = DefaultIconBaseURL
	}
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(code) + "@2x.png"
}
