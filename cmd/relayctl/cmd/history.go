package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

type messageJSON struct {
	ID        *int64 `json:"id"`
	RoomID    string `json:"room_id"`
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

var historyCmd = &cobra.Command{
	Use:   "history <room_id>",
	Short: "Show a room's message history, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var messages []messageJSON
		if err := getJSON("/api/messages/"+args[0], &messages); err != nil {
			return err
		}
		for _, m := range messages {
			fmt.Printf("[%s] %s: %s\n", m.Timestamp, m.Sender, m.Content)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
