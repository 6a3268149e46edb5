// Package cli 는 llm-controller 바이너리의 cobra 명령을 정의한다.
package cli

import (
	"github.com/spf13/cobra"
)

// Version 은 빌드 시 -ldflags "-X llm-controller/cmd/controller/cli.Version=..." 로 덮어쓴다.
var Version = "1.0.0"

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:           "llm-controller",
	Short:         "OpenAI-compatible controller in front of an Ollama or vLLM backend",
	SilenceUsage:  true,
	SilenceErrors: false,
}
