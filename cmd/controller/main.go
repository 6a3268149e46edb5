package main

import (
	"os"

	"llm-controller/cmd/controller/cli"
)

// @title           LLM Controller API
// @version         1.0.0
// @description     OpenAI-compatible controller in front of an Ollama or vLLM backend
// @BasePath        /
func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
