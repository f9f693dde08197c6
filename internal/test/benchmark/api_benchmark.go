package benchmark

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// APIBenchmark fires concurrent requests at a running API
type APIBenchmark struct {
	BaseURL     string
	Concurrency int
	Requests    int
	AuthToken   string
	Client      *http.Client

	// Inspect, when set, receives every response body. It must be safe for
	// concurrent use.
	Inspect func(statusCode int, body []byte)
}

// BenchmarkResult summarises one run
type BenchmarkResult struct {
	URL            string        `json:"url"`
	Method         string        `json:"method"`
	Concurrency    int           `json:"concurrency"`
	TotalRequests  int           `json:"total_requests"`
	SuccessCount   int           `json:"success_count"`
	FailureCount   int           `json:"failure_count"`
	TotalTime      time.Duration `json:"total_time"`
	AverageTime    time.Duration `json:"average_time"`
	MinTime        time.Duration `json:"min_time"`
	MaxTime        time.Duration `json:"max_time"`
	RequestsPerSec float64       `json:"requests_per_sec"`
	StatusCodes    map[int]int   `json:"status_codes"`
	Errors         []string      `json:"errors"`
}

type requestResult struct {
	Duration   time.Duration
	StatusCode int
	Error      error
}

// NewAPIBenchmark creates a benchmark against baseURL
func NewAPIBenchmark(baseURL string, concurrency, requests int, authToken string) *APIBenchmark {
	return &APIBenchmark{
		BaseURL:     baseURL,
		Concurrency: concurrency,
		Requests:    requests,
		AuthToken:   authToken,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// RunGET benchmarks a GET endpoint
func (b *APIBenchmark) RunGET(path string) *BenchmarkResult {
	return b.run(http.MethodGet, b.BaseURL+path, nil)
}

// RunPOST benchmarks a POST endpoint with a JSON payload
func (b *APIBenchmark) RunPOST(path string, payload interface{}) *BenchmarkResult {
	url := b.BaseURL + path
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return &BenchmarkResult{
			URL:    url,
			Method: http.MethodPost,
			Errors: []string{fmt.Sprintf("encode payload: %v", err)},
		}
	}
	return b.run(http.MethodPost, url, jsonData)
}

func (b *APIBenchmark) run(method, url string, payload []byte) *BenchmarkResult {
	results := make(chan requestResult, b.Requests)
	var wg sync.WaitGroup
	limiter := make(chan struct{}, b.Concurrency)

	startTime := time.Now()

	for i := 0; i < b.Requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			limiter <- struct{}{}
			defer func() { <-limiter }()

			results <- b.do(method, url, payload)
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	result := &BenchmarkResult{
		URL:           url,
		Method:        method,
		Concurrency:   b.Concurrency,
		TotalRequests: b.Requests,
		MinTime:       1<<63 - 1,
		StatusCodes:   make(map[int]int),
	}

	var totalTime time.Duration
	for r := range results {
		if r.Error != nil {
			result.FailureCount++
			result.Errors = append(result.Errors, r.Error.Error())
			continue
		}

		totalTime += r.Duration
		if r.Duration < result.MinTime {
			result.MinTime = r.Duration
		}
		if r.Duration > result.MaxTime {
			result.MaxTime = r.Duration
		}

		result.StatusCodes[r.StatusCode]++
		if r.StatusCode >= 200 && r.StatusCode < 300 {
			result.SuccessCount++
		} else {
			result.FailureCount++
		}
	}

	result.TotalTime = time.Since(startTime)
	result.RequestsPerSec = float64(b.Requests) / result.TotalTime.Seconds()
	if n := result.SuccessCount + result.FailureCount; n > 0 {
		result.AverageTime = totalTime / time.Duration(n)
	}
	return result
}

func (b *APIBenchmark) do(method, url string, payload []byte) requestResult {
	start := time.Now()
	req, err := http.NewRequest(method, url, bytes.NewReader(payload))
	if err != nil {
		return requestResult{Error: err}
	}

	req.Header.Set("Content-Type", "application/json")
	if b.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+b.AuthToken)
	}

	resp, err := b.Client.Do(req)
	if err != nil {
		return requestResult{Error: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return requestResult{Error: err}
	}
	if b.Inspect != nil {
		b.Inspect(resp.StatusCode, body)
	}

	return requestResult{
		Duration:   time.Since(start),
		StatusCode: resp.StatusCode,
	}
}

// SuccessRate is the share of 2xx responses in percent
func (r *BenchmarkResult) SuccessRate() float64 {
	if r.TotalRequests == 0 {
		return 0
	}
	return float64(r.SuccessCount) / float64(r.TotalRequests) * 100
}

// Log writes the result as a single structured line
func (r *BenchmarkResult) Log(log zerolog.Logger) {
	codes := zerolog.Dict()
	for code, count := range r.StatusCodes {
		codes.Int(fmt.Sprint(code), count)
	}

	event := log.Info()
	if r.FailureCount > 0 {
		event = log.Warn()
		if len(r.Errors) > 5 {
			event = event.Strs("errors", r.Errors[:5])
		} else {
			event = event.Strs("errors", r.Errors)
		}
	}

	event.
		Str("method", r.Method).
		Str("url", r.URL).
		Int("concurrency", r.Concurrency).
		Int("requests", r.TotalRequests).
		Int("success", r.SuccessCount).
		Int("failure", r.FailureCount).
		Dur("total", r.TotalTime).
		Dur("avg", r.AverageTime).
		Dur("min", r.MinTime).
		Dur("max", r.MaxTime).
		Float64("rps", r.RequestsPerSec).
		Dict("status_codes", codes).
		Msg("benchmark")
}
