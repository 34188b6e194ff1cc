package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

var apiBase = resolveAPIBase()

func resolveAPIBase() string {
	if v := os.Getenv("CREON_API"); v != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://localhost:6001"
}

func usage() {
	fmt.Println("Creon CLI")
	fmt.Println()
	fmt.Println("Usage: creon <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  health                          Check gateway health")
	fmt.Println("  status                          Show gateway status")
	fmt.Println("  connect <kind>                  Connect a wallet (metamask|keystore)")
	fmt.Println("  disconnect                      Disconnect the active wallet")
	fmt.Println("  session                         Show the active wallet session")
	fmt.Println("  balance                         Show the connected account balance")
	fmt.Println("  posts                           List known posts")
	fmt.Println("  refresh                         Re-sync posts from the ledger")
	fmt.Println("  publish <title> <body>          Publish a free post")
	fmt.Println("  publish-paid <title> <body> <price>")
	fmt.Println("                                  Publish a paid post")
	fmt.Println("  disclose <postId> [--force]     Disclose a post's content")
	fmt.Println("  withdraw                        Withdraw creator earnings")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  CREON_API    Gateway base URL (default http://localhost:6001)")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "health":
		err = get("/health")
	case "status":
		err = get("/status")
	case "connect":
		if len(os.Args) < 3 {
			err = fmt.Errorf("usage: creon connect <kind>")
			break
		}
		err = post("/v1/wallet/connect", map[string]string{"kind": os.Args[2]})
	case "disconnect":
		err = post("/v1/wallet/disconnect", nil)
	case "session":
		err = get("/v1/wallet/session")
	case "balance":
		err = get("/v1/wallet/balance")
	case "posts":
		err = get("/v1/posts")
	case "refresh":
		err = post("/v1/posts/refresh", nil)
	case "publish":
		if len(os.Args) < 4 {
			err = fmt.Errorf("usage: creon publish <title> <body>")
			break
		}
		err = post("/v1/posts", map[string]interface{}{
			"title": os.Args[2],
			"body":  os.Args[3],
		})
	case "publish-paid":
		if len(os.Args) < 5 {
			err = fmt.Errorf("usage: creon publish-paid <title> <body> <price>")
			break
		}
		err = post("/v1/posts", map[string]interface{}{
			"title": os.Args[2],
			"body":  os.Args[3],
			"paid":  true,
			"price": os.Args[4],
		})
	case "disclose":
		if len(os.Args) < 3 {
			err = fmt.Errorf("usage: creon disclose <postId> [--force]")
			break
		}
		path := "/v1/posts/" + url.PathEscape(os.Args[2]) + "/disclose"
		if len(os.Args) > 3 && os.Args[3] == "--force" {
			path += "?force=true"
		}
		err = post(path, nil)
	case "withdraw":
		err = post("/v1/withdraw", nil)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Printf("unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var httpClient = &http.Client{Timeout: 120 * time.Second}

func get(path string) error {
	resp, err := httpClient.Get(apiBase + path)
	if err != nil {
		return err
	}
	return render(resp)
}

func post(path string, body interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	resp, err := httpClient.Post(apiBase+path, "application/json", reader)
	if err != nil {
		return err
	}
	return render(resp)
}

func render(resp *http.Response) error {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if json.Indent(&pretty, data, "", "  ") == nil {
		fmt.Println(pretty.String())
	} else {
		fmt.Println(string(data))
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("gateway returned %s", resp.Status)
	}
	return nil
}
