package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"tradepersona/internal/agent"
)

const farewell = "Catch you on the next trade. Cheers!"

type asker interface {
	Ask(ctx context.Context, question string) agent.Answer
}

// lineReader 返回下一行输入；io.EOF 表示输入结束。
type lineReader func() (string, error)

func newChatCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildQuietApp(cmd.Context(), st)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render("Trader persona is ready. Type 'quit' or 'exit' to leave."))
			return chatLoop(cmd.Context(), a.Agent(), surveyReader, out)
		},
	}
}

func surveyReader() (string, error) {
	var line string
	err := survey.AskOne(&survey.Input{Message: "You:"}, &line)
	if errors.Is(err, terminal.InterruptErr) {
		return "", io.EOF
	}
	return line, err
}

func chatLoop(ctx context.Context, a asker, next lineReader, out io.Writer) error {
	for {
		line, err := next()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out, farewellStyle.Render(farewell))
			return nil
		}
		if err != nil {
			return err
		}
		q := strings.TrimSpace(line)
		if q == "" {
			continue
		}
		if isExit(q) {
			fmt.Fprintln(out, farewellStyle.Render(farewell))
			return nil
		}
		ans := a.Ask(ctx, q)
		fmt.Fprintln(out, speakerStyle.Render("Trader:")+" "+answerStyle.Render(ans.Response))
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func isExit(q string) bool {
	switch strings.ToLower(strings.TrimSpace(q)) {
	case "quit", "exit":
		return true
	}
	return false
}
