package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type roomJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "List or create chat rooms",
}

var roomsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all rooms",
	RunE: func(cmd *cobra.Command, args []string) error {
		var rooms []roomJSON
		if err := getJSON("/api/rooms", &rooms); err != nil {
			return err
		}
		for _, r := range rooms {
			fmt.Printf("%-24s %s\n", r.ID, r.Name)
		}
		return nil
	},
}

var roomsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new room",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")
		var resp struct {
			Status string   `json:"status"`
			Room   roomJSON `json:"room"`
		}
		if err := postJSON("/api/rooms", map[string]string{"room_name": name}, &resp); err != nil {
			return err
		}
		fmt.Printf("Created room %q (id %s)\n", resp.Room.Name, resp.Room.ID)
		return nil
	},
}

func init() {
	roomsCmd.AddCommand(roomsListCmd)
	roomsCmd.AddCommand(roomsCreateCmd)
	rootCmd.AddCommand(roomsCmd)
}
