// Local stand-in for the AgentLink directory, seeded with demo agents.
// Run with: go run ./scripts/devdirectory.go
// then point the gateway or an example at the printed base URL.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Harshitk-cp/agentlink/internal/agentlink/agentlinktest"
	"github.com/joho/godotenv"
)

func main() {
	envFile := os.Getenv("AGENTLINK_ENV")
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	// Reuse a configured key so .env keeps working across restarts.
	apiKey := os.Getenv("AGENTLINK_API_KEY")
	if apiKey == "" {
		apiKey = generateAPIKey()
	}

	dir := agentlinktest.NewServer(agentlinktest.Seed()...)
	defer dir.Close()
	dir.RequireAPIKey(apiKey)

	fmt.Println("=== Dev directory running ===")
	fmt.Printf("Base URL: %s\n", dir.URL)
	fmt.Printf("API Key:  %s\n", apiKey)
	fmt.Println("\nSeeded agents:")
	for _, a := range agentlinktest.Seed() {
		fmt.Printf("- %-22s %s\n", a.Slug, a.Category)
	}

	fmt.Println("\nTo use it:")
	fmt.Printf("export AGENTLINK_BASE_URL=%s AGENTLINK_API_KEY=%s\n", dir.URL, apiKey)
	fmt.Printf("curl '%s/api/v1/agents/search?q=security&limit=5'\n", dir.URL)
	fmt.Printf("curl -X POST -H 'Authorization: Bearer %s' -d '{\"fromAgentSlug\":\"me\",\"body\":\"hi\"}' %s/api/v1/agents/scout/connect\n", apiKey, dir.URL)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	for _, c := range dir.Connects() {
		log.Printf("connect %s -> %s: %s", c.FromAgentSlug, c.ToSlug, c.Body)
	}
}

func generateAPIKey() string {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("Failed to generate API key: %v", err)
	}
	return "al_dev_" + base64.RawURLEncoding.EncodeToString(b)
}
