package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tradepersona/internal/app"
	"tradepersona/internal/persona"
)

func newPersonaCmd(st *rootState) *cobra.Command {
	var chartPath string
	cmd := &cobra.Command{
		Use:   "persona",
		Short: "Print the persona profile built from the trade history",
		RunE: func(cmd *cobra.Command, args []string) error {
			st.quietLogs()
			profile, err := app.LoadProfile(cmd.Context(), st.cfg)
			if err != nil {
				return err
			}
			buf, err := json.MarshalIndent(profile, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(buf))
			if chartPath == "" {
				return nil
			}
			f, err := os.Create(chartPath)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := persona.RenderChart(f, profile); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "chart written to %s\n", chartPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&chartPath, "chart", "", "Also write an HTML chart of the distributions to this path")
	return cmd
}
