package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xedahq/xeda/internal/registry"
	"github.com/xedahq/xeda/internal/settings"
)

func newListFlowsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-flows",
		Short: "List every registered flow and its one-line description",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, entry := range registry.List() {
				fmt.Printf("%-16s %s\n", entry.Name, entry.Doc)
			}
			return nil
		},
	}
}

func newListSettingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-settings",
		Short: "Describe the common FlowSettings schema every flow accepts",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := json.MarshalIndent(settings.DefaultFlowSettings(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
}
