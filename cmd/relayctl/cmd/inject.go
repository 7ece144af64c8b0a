package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	injectSender string
	injectNoSave bool
)

var injectCmd = &cobra.Command{
	Use:   "inject <room_id> <content>",
	Short: "Inject a message into a room",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]any{
			"sender":     injectSender,
			"content":    args[1],
			"save_to_db": !injectNoSave,
		}
		var resp struct {
			Status    string `json:"status"`
			Message   string `json:"message"`
			Delivered int    `json:"delivered"`
		}
		if err := postJSON("/api/inject_message/"+args[0], body, &resp); err != nil {
			return err
		}
		fmt.Printf("%s (delivered to %d clients)\n", resp.Message, resp.Delivered)
		return nil
	},
}

func init() {
	injectCmd.Flags().StringVar(&injectSender, "sender", "relayctl", "sender name for the injected message")
	injectCmd.Flags().BoolVar(&injectNoSave, "no-save", false, "broadcast only, do not persist the message")
	rootCmd.AddCommand(injectCmd)
}
