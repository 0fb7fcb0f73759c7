// Interactive OAuth helper: generates the YouTube token file that the
// publish stage needs. Run once before enabling YouTube publishing.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"
)

func main() {
	tokenPath := flag.String("token", "youtube_token.json", "Path to save the token")
	credentialsPath := flag.String("credentials", "client_secrets.json", "Path to client_secrets.json")
	flag.Parse()

	fmt.Println("🔐 YouTube Token Generator")
	fmt.Println("========================================")
	fmt.Println()

	if _, err := os.Stat(*credentialsPath); os.IsNotExist(err) {
		fmt.Printf("❌ Credentials file not found: %s\n", *credentialsPath)
		fmt.Println("   Download from https://console.cloud.google.com/")
		fmt.Println("   1. Create OAuth 2.0 credentials (Desktop app)")
		fmt.Println("   2. Download the JSON file and rename it to client_secrets.json")
		os.Exit(1)
	}

	b, err := os.ReadFile(*credentialsPath)
	if err != nil {
		fmt.Printf("❌ Failed to read credentials: %v\n", err)
		os.Exit(1)
	}

	config, err := google.ConfigFromJSON(b, youtube.YoutubeUploadScope, youtube.YoutubeScope)
	if err != nil {
		fmt.Printf("❌ Failed to parse credentials: %v\n", err)
		os.Exit(1)
	}

	authURL := config.AuthCodeURL("state", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Println("📱 Open this URL in your browser:")
	fmt.Printf("   %s\n", authURL)
	fmt.Println()
	fmt.Print("Paste the authorization code here: ")

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		fmt.Printf("❌ Failed to read code: %v\n", err)
		os.Exit(1)
	}

	token, err := config.Exchange(context.Background(), code)
	if err != nil {
		fmt.Printf("❌ Token exchange failed: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Create(*tokenPath)
	if err != nil {
		fmt.Printf("❌ Failed to create token file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		fmt.Printf("❌ Failed to write token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Token saved to %s\n", *tokenPath)
}
