package commands

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-alerts/pkg/interfaces/store"
)

func getCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the stored preference record for a subject",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSubject(); err != nil {
				return err
			}
			record, err := container.Preferences.Get(cmd.Context(), subjectType, subjectID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					fmt.Printf("no stored preference for %s/%s, defaults apply\n", subjectType, subjectID)
					return nil
				}
				return err
			}
			payload, err := json.MarshalIndent(record, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(payload))
			return nil
		},
	}
	return cmd
}
