package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jcmexdev/ecommerce-orders/internal/notification"
	"github.com/jcmexdev/ecommerce-orders/internal/notification/channels"
)

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List the built-in notification channels",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg := notification.NewRegistry()
		if err := channels.RegisterDefaults(reg); err != nil {
			return err
		}
		for _, name := range reg.Channels() {
			marker := " "
			if name == cfg.Notification.Channel {
				marker = "*"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
		}
		return nil
	},
}
