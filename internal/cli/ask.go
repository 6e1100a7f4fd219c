package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAskCmd(st *rootState) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "ask [QUESTION]",
		Short: "Answer a single question and exit",
		Example: `  tradepersona ask "What was my biggest loss on DOGE?"
  tradepersona ask --json "How many trades did I make?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.TrimSpace(strings.Join(args, " "))
			if question == "" {
				return fmt.Errorf("question cannot be empty")
			}
			a, err := buildQuietApp(cmd.Context(), st)
			if err != nil {
				return err
			}
			defer a.Close()

			ans := a.Agent().Ask(cmd.Context(), question)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(ans)
			}
			fmt.Fprintln(out, answerStyle.Render(ans.Response))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full answer record as JSON")
	return cmd
}
