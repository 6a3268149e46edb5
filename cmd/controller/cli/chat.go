package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"llm-controller/cmd/controller/dto"
	"llm-controller/cmd/controller/httpclient"
)

var chatOpts struct {
	url     string
	session string
	model   string
	system  string
}

func init() {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with a running controller through /chatinference (type 'exit' to quit)",
		RunE:  runChat,
	}
	cmd.Flags().StringVar(&chatOpts.url, "url", "http://localhost:9999", "Controller base URL")
	cmd.Flags().StringVar(&chatOpts.session, "session", "default", "Session ID")
	cmd.Flags().StringVar(&chatOpts.model, "model", "", "Model name (default: controller's default model)")
	cmd.Flags().StringVar(&chatOpts.system, "system", "", "System message sent with the first turn")

	RootCmd.AddCommand(cmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	client := httpclient.NewBaseClientWithClient(httpclient.New(httpclient.Config{Timeout: 10 * time.Minute}), chatOpts.url)
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	pendingSystem := chatOpts.system

	fmt.Fprintf(out, "Chatting with %s (session %q, type 'exit' to quit)\n", chatOpts.url, chatOpts.session)
	fmt.Fprintln(out, "----------------------------------------")

	for {
		fmt.Fprint(out, "\nYou: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" {
			break
		}

		var messages []dto.SessionMessageDTO
		if pendingSystem != "" {
			messages = append(messages, dto.SessionMessageDTO{Role: "system", Content: pendingSystem})
		}
		messages = append(messages, dto.SessionMessageDTO{Role: "user", Content: input})

		fmt.Fprint(out, "\nAssistant: ")
		if err := streamTurn(cmd, client, out, messages); err != nil {
			fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
			continue
		}
		pendingSystem = ""
		fmt.Fprintln(out)
	}
	return scanner.Err()
}

func streamTurn(cmd *cobra.Command, client *httpclient.BaseClient, out io.Writer, messages []dto.SessionMessageDTO) error {
	body, err := json.Marshal(dto.ChatInferenceRequestDTO{
		ChatInput: messages,
		Model:     chatOpts.model,
		SessionID: chatOpts.session,
		Stream:    true,
	})
	if err != nil {
		return err
	}

	req, err := client.NewRequest(cmd.Context(), http.MethodPost, "/chatinference", nil, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr dto.ErrorResponseDTO
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s (%d): %s", apiErr.Error, resp.StatusCode, apiErr.Detail)
		}
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	_, err = io.Copy(out, resp.Body)
	return err
}
