// Command chat is a local REPL against the conversation engine. It talks to
// the real LLM provider but keeps sessions and leads in memory, so it needs
// nothing beyond an API key.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	appconfig "github.com/drivelane/showroom-ai/internal/config"
	"github.com/drivelane/showroom-ai/internal/conversation"
	"github.com/drivelane/showroom-ai/internal/leads"
	"github.com/drivelane/showroom-ai/internal/notify"
	"github.com/drivelane/showroom-ai/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()
	logger := logging.New("warn")
	ctx := context.Background()

	var llm conversation.LLMClient
	if cfg.LLMProvider == "gemini" {
		gemini, err := conversation.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("gemini client: %v", err)
		}
		defer func() { _ = gemini.Close() }()
		llm = gemini
	} else {
		openaiClient, err := conversation.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIChatModel, cfg.OpenAIEmbeddingModel)
		if err != nil {
			log.Fatalf("openai client: %v", err)
		}
		llm = openaiClient
	}
	llm = conversation.NewTimeoutClient(llm, cfg.LLMTimeout)

	repo := leads.NewInMemoryRepository()
	notifier := notify.NewService(notify.NewStubEmailSender(logger), "sales@localhost", logger)
	extractor := conversation.NewFieldExtractor(llm, "", logger)
	engine := conversation.NewEngine(llm, extractor, conversation.NewMemorySessionStore(), logger,
		conversation.WithLeadStore(repo),
		conversation.WithNotifier(notifier),
		conversation.WithThreshold(cfg.QualifyThreshold),
	)

	fmt.Println("Showroom chat. Type a message, or /quit to exit.")

	sessionID := ""
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			break
		}

		result, err := engine.Respond(ctx, sessionID, line)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		sessionID = result.SessionID

		fmt.Printf("\n%s\n", result.Message)
		fmt.Printf("  [score %d, %s]\n\n", result.Score, result.State)
	}
}
