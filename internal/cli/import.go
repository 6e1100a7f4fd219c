package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tradepersona/internal/logger"
	"tradepersona/internal/store/sqlite"
	"tradepersona/internal/tradesource"
)

func newImportCmd(st *rootState) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy trades from the JSON file into the SQLite database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" {
				from = st.cfg.Data.TradesPath
			}
			if to == "" {
				to = st.cfg.Data.SQLitePath
			}
			trades, err := tradesource.NewJSONSource(from).Load(cmd.Context())
			if err != nil {
				return err
			}
			db, err := sqlite.NewSqliteStore(to)
			if err != nil {
				return fmt.Errorf("open sqlite %s: %w", to, err)
			}
			defer db.Close()
			n, err := tradesource.Import(cmd.Context(), db, trades)
			if err != nil {
				return err
			}
			logger.Infof("✓ 已导入 %d 笔交易 %s -> %s", n, from, to)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d trades into %s\n", n, to)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Source JSON file (default data.trades_path)")
	cmd.Flags().StringVar(&to, "to", "", "Target SQLite file (default data.sqlite_path)")
	return cmd
}
