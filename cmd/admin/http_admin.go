package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

func stateCmd(args []string) {
	fs := flag.NewFlagSet("state", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	_ = fs.Parse(args)

	os.Exit(callAdmin(http.MethodGet, adminURL(*baseURL, "/admin/v1/state", nil), 5*time.Second))
}

func snapshotCmd(args []string) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	reason := fs.String("reason", "admin", "reason recorded in the server log")
	_ = fs.Parse(args)

	q := url.Values{}
	if r := strings.TrimSpace(*reason); r != "" {
		q.Set("reason", r)
	}
	os.Exit(callAdmin(http.MethodPost, adminURL(*baseURL, "/admin/v1/snapshot", q), 10*time.Second))
}

func adminURL(base, path string, q url.Values) string {
	u := strings.TrimRight(strings.TrimSpace(base), "/") + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// callAdmin prints the response body and returns the process exit code.
func callAdmin(method, u string, timeout time.Duration) int {
	body, status, err := doAdmin(method, u, timeout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		return 1
	}
	fmt.Println(string(body))
	if status/100 != 2 {
		return 1
	}
	return 0
}

func doAdmin(method, u string, timeout time.Duration) ([]byte, int, error) {
	req, err := http.NewRequest(method, u, nil)
	if err != nil {
		return nil, 0, err
	}
	cl := &http.Client{Timeout: timeout}
	resp, err := cl.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	return b, resp.StatusCode, err
}
