package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/parchi-ai/clinic-backend/internal/evaluation"
	"github.com/parchi-ai/clinic-backend/internal/infrastructure/clients/gemini"
	"github.com/parchi-ai/clinic-backend/pkg/config"
)

func main() {
	goldenPath := flag.String("golden", "config/golden_intake.json", "path to the golden example set")
	verbose := flag.Bool("verbose", false, "include per-example results in the output")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	llm, err := gemini.NewClient(&cfg.Gemini)
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}

	examples, err := evaluation.LoadGoldenExamples(*goldenPath)
	if err != nil {
		log.Fatalf("Failed to load golden examples: %v", err)
	}
	if err := evaluation.ValidateGoldenExamples(examples); err != nil {
		log.Fatalf("Invalid golden examples: %v", err)
	}

	runner := evaluation.NewRunner(llm)
	summary, results, err := runner.Run(context.Background(), examples)
	if err != nil {
		log.Fatalf("Evaluation failed: %v", err)
	}

	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))

	if *verbose {
		detail, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(detail))
	}
}
