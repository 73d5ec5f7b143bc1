// Command precache warms the analysis cache by submitting a list of
// repositories against a running API and polling each task to completion.
// Useful before switching the service to offline mode.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

var defaultRepos = []string{
	"https://github.com/gin-gonic/gin",
	"https://github.com/pallets/flask",
	"https://github.com/expressjs/express",
	"https://github.com/fastapi/fastapi",
	"https://github.com/spf13/cobra",
}

func main() {
	api := flag.String("api", "http://localhost:8000", "base URL of the running API")
	file := flag.String("file", "", "file with one repository URL per line (default: built-in list)")
	timeout := flag.Duration("timeout", 5*time.Minute, "per-repository timeout")
	flag.Parse()

	repos := defaultRepos
	if *file != "" {
		loaded, err := loadRepos(*file)
		if err != nil {
			log.Fatalf("read repo list: %v", err)
		}
		repos = loaded
	}

	client := &http.Client{Timeout: 30 * time.Second}
	ok, failed := 0, 0
	for _, repo := range repos {
		if err := precacheOne(client, *api, repo, *timeout); err != nil {
			log.Printf("FAIL %s: %v", repo, err)
			failed++
			continue
		}
		log.Printf("ok   %s", repo)
		ok++
	}
	log.Printf("done: %d cached, %d failed", ok, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func loadRepos(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var repos []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		repos = append(repos, line)
	}
	return repos, sc.Err()
}

func precacheOne(client *http.Client, api, repo string, timeout time.Duration) error {
	body, _ := json.Marshal(map[string]string{"repo_url": repo})
	resp, err := client.Post(api+"/api/analyze", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("analyze returned %d", resp.StatusCode)
	}

	var submit struct {
		TaskID string `json:"task_id"`
		Cached bool   `json:"cached"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&submit); err != nil {
		return err
	}
	if submit.Cached {
		return nil
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		time.Sleep(2 * time.Second)

		pr, err := client.Get(api + "/api/progress/" + submit.TaskID)
		if err != nil {
			return err
		}
		var progress struct {
			Status   string `json:"status"`
			Progress int    `json:"progress"`
			Message  string `json:"message"`
			Error    string `json:"error"`
		}
		err = json.NewDecoder(pr.Body).Decode(&progress)
		pr.Body.Close()
		if err != nil {
			return err
		}

		switch progress.Status {
		case "completed":
			return nil
		case "failed":
			return fmt.Errorf("analysis failed: %s", progress.Error)
		}
	}
	return fmt.Errorf("timed out after %s", timeout)
}
