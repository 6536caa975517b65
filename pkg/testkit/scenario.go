// Package testkit drives REST API tests from JSON scenario files.
//
// Each scenario describes one request and what should come back:
//
//	testdata/
//	  login_customer.json        ← scenario
//	  login_customer_req.json    ← request body (optional)
//	  login_customer_res.json    ← expected response body (optional)
//
// Example _test.go:
//
//	func TestAPI(t *testing.T) {
//	    handler := routes.Build(deps)
//	    testkit.RunDir(t, handler, "testdata", testkit.Vars{"customer_token": tok})
//	}
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Scenario describes a single REST API test case loaded from a JSON file.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	RequestMethod   string            `json:"requestMethod"`
	RequestURL      string            `json:"requestUrl"`
	RequestFileName string            `json:"requestFileName"`
	RequestBody     json.RawMessage   `json:"requestBody"`
	Headers         map[string]string `json:"headers"`

	ExpectedCode     int      `json:"expectedCode"`
	ResponseFileName string   `json:"responseFileName"`
	ResponseContains []string `json:"responseContains"`

	dir string
}

// Vars are substituted into the URL, headers and body as ${name}.
type Vars map[string]string

func (v Vars) expand(s string) string {
	if len(v) == 0 || !strings.Contains(s, "${") {
		return s
	}
	for key, val := range v {
		s = strings.ReplaceAll(s, "${"+key+"}", val)
	}
	return s
}

// LoadScenario reads and validates a scenario from a JSON file.
func LoadScenario(path string) (*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid scenario %q: %w", abs, err)
	}

	s.dir = filepath.Dir(abs)
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.RequestURL == "" {
		return fmt.Errorf("requestUrl is required")
	}
	if s.ExpectedCode == 0 {
		return fmt.Errorf("expectedCode is required")
	}
	if s.RequestFileName != "" && len(s.RequestBody) > 0 {
		return fmt.Errorf("requestFileName and requestBody are mutually exclusive")
	}
	if s.RequestMethod == "" {
		s.RequestMethod = "GET"
	}
	return nil
}

func (s *Scenario) resolve(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

// RequestBodyPath is the absolute request body file, or "" when unset.
func (s *Scenario) RequestBodyPath() string { return s.resolve(s.RequestFileName) }

// ResponseBodyPath is the absolute expected response file, or "" when unset.
func (s *Scenario) ResponseBodyPath() string { return s.resolve(s.ResponseFileName) }

// body returns the raw request body, reading RequestFileName if set.
func (s *Scenario) body() ([]byte, error) {
	if p := s.RequestBodyPath(); p != "" {
		return os.ReadFile(p)
	}
	return s.RequestBody, nil
}
