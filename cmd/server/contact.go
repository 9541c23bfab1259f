package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stuimpact/stuimpactweb2/pkg/finder"
)

func contactCmd() *cobra.Command {
	var apiURL, name, email, message string
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Send a message to the contact intake through the API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := finder.NewClient(apiURL, nil)
			if err := client.SubmitContact(cmd.Context(), name, email, message); err != nil {
				return apiFailure(err, "message rejected")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "message sent")
			return nil
		},
	}
	cmd.Flags().StringVar(&apiURL, "api", "http://localhost:8080/api/v1", "API base URL")
	cmd.Flags().StringVar(&name, "name", "", "sender name")
	cmd.Flags().StringVar(&email, "email", "", "sender email")
	cmd.Flags().StringVarP(&message, "message", "m", "", "message body")
	return cmd
}
