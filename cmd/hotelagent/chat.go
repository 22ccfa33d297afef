package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/spf13/cobra"
	"github.com/tbxark/hotelagent/agent"
	"github.com/tbxark/hotelagent/dialogue"
	"github.com/tbxark/hotelagent/types"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the booking assistant in the terminal",
	Long: `Starts an interactive conversation. Commands:
  /state  print the current booking session
  /reset  start over
  /exit   quit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		sessionID, _ := cmd.Flags().GetString("session")
		ctx := agent.WithSessionKey(cmd.Context(), sessionID)
		return runChat(ctx, a, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("session", "cli", "Session id to resume or create")
}

func runChat(ctx context.Context, a *app, in io.Reader, out io.Writer) error {
	runner := adk.NewRunner(ctx, adk.RunnerConfig{
		Agent: agent.NewAgent(
			"HotelBooking",
			"An assistant that makes, checks and changes hotel reservations",
			a.manager,
		),
	})
	reader := bufio.NewReader(in)
	fmt.Fprintf(out, "Assistant: %s\n", dialogue.Greeting)
	for {
		fmt.Fprint(out, "You: ")
		input, rErr := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if rErr != nil && input == "" {
			return nil
		}
		switch input {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		case "/state":
			printState(ctx, a, out)
			continue
		case "/reset":
			if err := a.manager.Reset(ctx); err != nil {
				return err
			}
			if err := a.history.Clear(ctx); err != nil {
				return err
			}
			fmt.Fprintf(out, "Assistant: %s\n", dialogue.Greeting)
			continue
		}

		history, err := a.history.Append(ctx, schema.UserMessage(input))
		if err != nil {
			return err
		}
		iter := runner.Run(ctx, history)
		for {
			event, ok := iter.Next()
			if !ok {
				break
			}
			if event.Err != nil {
				fmt.Fprintf(out, "Assistant: Sorry, something went wrong: %v\n", event.Err)
				continue
			}
			if event.Output == nil || event.Output.MessageOutput == nil {
				continue
			}
			msg, err := event.Output.MessageOutput.GetMessage()
			if err != nil {
				return err
			}
			if _, err := a.history.Append(ctx, msg); err != nil {
				return err
			}
			fmt.Fprintf(out, "Assistant: %s\n", msg.Content)
		}
	}
}

func printState(ctx context.Context, a *app, out io.Writer) {
	s, err := a.manager.Load(ctx)
	if err != nil {
		fmt.Fprintf(out, "No booking yet (%v)\n", err)
		return
	}
	fmt.Fprint(out, types.FormatBooking(s.Info()))
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		fmt.Fprintf(out, "Failed to encode session: %v\n", err)
		return
	}
	fmt.Fprintln(out, string(data))
}
