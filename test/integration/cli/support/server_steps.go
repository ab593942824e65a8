package support

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/cucumber/godog"
)

const (
	serverStartTimeout = 10 * time.Second
	pollInterval       = 50 * time.Millisecond
)

var httpClient = &http.Client{Timeout: 5 * time.Second}

// freePort asks the kernel for an unused TCP port.
func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer func() { _ = l.Close() }()
	return l.Addr().(*net.TCPAddr).Port, nil
}

func (testCtx *TestContext) baseURL() string {
	return "http://127.0.0.1:" + strconv.Itoa(testCtx.ServerPort)
}

// theLensIsRunningOnTheSnippet starts "lens run" with the snippet as screen and waits
// until the server answers /health.
func (testCtx *TestContext) theLensIsRunningOnTheSnippet(region string) error {
	if testCtx.ConfigPath == "" || testCtx.ImagePath == "" {
		return errors.New("a screen snippet and a lens config must be created first")
	}
	port, err := freePort()
	if err != nil {
		return fmt.Errorf("failed to find a free port: %w", err)
	}
	testCtx.ServerPort = port

	logFile, err := os.Create(testCtx.TempPath("server.log"))
	if err != nil {
		return err
	}
	testCtx.ServerLog = logFile.Name()

	cmd := exec.Command(testCtx.BinPath, //nolint:gosec // G204: binary under test
		"--config", testCtx.ConfigPath, "run",
		"--source", testCtx.ImagePath,
		"--region", region,
		"--interval", "20ms",
		"--port", strconv.Itoa(port))
	cmd.Dir = testCtx.TempDir
	cmd.Env = append(os.Environ(), testCtx.EnvVars...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	if err := cmd.Start(); err != nil {
		_ = logFile.Close()
		return fmt.Errorf("failed to start lens: %w", err)
	}
	testCtx.ServerProcess = cmd
	go func() {
		_ = cmd.Wait()
		_ = logFile.Close()
	}()

	deadline := time.Now().Add(serverStartTimeout)
	for time.Now().Before(deadline) {
		resp, err := httpClient.Get(testCtx.baseURL() + "/health")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(pollInterval)
	}
	return fmt.Errorf("lens server did not come up on port %d\n%s", port, testCtx.serverLog())
}

func (testCtx *TestContext) serverLog() string {
	if testCtx.ServerLog == "" {
		return ""
	}
	data, _ := os.ReadFile(testCtx.ServerLog)
	return string(data)
}

// StopServer interrupts the lens and waits for it to exit.
func (testCtx *TestContext) StopServer() error {
	cmd := testCtx.ServerProcess
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	testCtx.ServerProcess = nil
	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to signal lens: %w", err)
	}

	deadline := time.Now().Add(serverStartTimeout)
	for time.Now().Before(deadline) {
		if err := cmd.Process.Signal(syscall.Signal(0)); err != nil {
			return nil
		}
		time.Sleep(pollInterval)
	}
	return cmd.Process.Kill()
}

func (testCtx *TestContext) request(method, path string, body []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), httpClient.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, testCtx.baseURL()+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	testCtx.LastHTTPStatusCode = resp.StatusCode
	testCtx.LastHTTPResponse = data
	testCtx.LastHTTPHeaders = make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		testCtx.LastHTTPHeaders[k] = resp.Header.Get(k)
	}
	return nil
}

func (testCtx *TestContext) iSendAGETRequestTo(path string) error {
	return testCtx.request(http.MethodGet, path, nil)
}

func (testCtx *TestContext) iPOSTTo(path string, body *godog.DocString) error {
	return testCtx.request(http.MethodPost, path, []byte(body.Content))
}

// theOverlayShouldShow polls /overlay until a block carries the translation.
func (testCtx *TestContext) theOverlayShouldShow(translated string) error {
	deadline := time.Now().Add(serverStartTimeout)
	for time.Now().Before(deadline) {
		if err := testCtx.request(http.MethodGet, "/overlay", nil); err == nil &&
			testCtx.LastHTTPStatusCode == http.StatusOK &&
			strings.Contains(string(testCtx.LastHTTPResponse), `"translated":"`+translated+`"`) {
			return nil
		}
		time.Sleep(pollInterval)
	}
	return fmt.Errorf("overlay never showed %q\nLast response: %s\n%s",
		translated, string(testCtx.LastHTTPResponse), testCtx.serverLog())
}

func (testCtx *TestContext) theResponseStatusShouldBe(code int) error {
	if testCtx.LastHTTPStatusCode != code {
		return fmt.Errorf("expected status %d, got %d\nBody: %s",
			code, testCtx.LastHTTPStatusCode, string(testCtx.LastHTTPResponse))
	}
	return nil
}

func (testCtx *TestContext) theResponseHeaderShouldBe(name, value string) error {
	if got := testCtx.LastHTTPHeaders[http.CanonicalHeaderKey(name)]; got != value {
		return fmt.Errorf("header %s = %q, want %q", name, got, value)
	}
	return nil
}

func (testCtx *TestContext) theResponseShouldContain(text string) error {
	if !strings.Contains(string(testCtx.LastHTTPResponse), text) {
		return fmt.Errorf("response does not contain '%s'\nBody: %s", text, string(testCtx.LastHTTPResponse))
	}
	return nil
}

func (testCtx *TestContext) theResponseJSONFieldShouldBe(path, expected string) error {
	return jsonFieldEquals(testCtx.LastHTTPResponse, path, expected)
}

func (testCtx *TestContext) theResponseIsAPNG() error {
	if !bytes.HasPrefix(testCtx.LastHTTPResponse, []byte("\x89PNG\r\n\x1a\n")) {
		return errors.New("response is not a PNG image")
	}
	return nil
}

// RegisterServerSteps registers steps that drive a running lens over HTTP.
func (testCtx *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the lens is running on the snippet with region "([^"]*)"$`, testCtx.theLensIsRunningOnTheSnippet)
	sc.Step(`^I send a GET request to "([^"]*)"$`, testCtx.iSendAGETRequestTo)
	sc.Step(`^I POST to "([^"]*)":$`, testCtx.iPOSTTo)
	sc.Step(`^the overlay should show "([^"]*)"$`, testCtx.theOverlayShouldShow)
	sc.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	sc.Step(`^the response header "([^"]*)" should be "([^"]*)"$`, testCtx.theResponseHeaderShouldBe)
	sc.Step(`^the response should contain "([^"]*)"$`, testCtx.theResponseShouldContain)
	sc.Step(`^the response JSON field "([^"]*)" should be "([^"]*)"$`, testCtx.theResponseJSONFieldShouldBe)
	sc.Step(`^the response should be a PNG image$`, testCtx.theResponseIsAPNG)
}
