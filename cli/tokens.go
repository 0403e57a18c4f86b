package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/opal-lang/cherri/runtime/lexer"
)

func newTokensCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens [file|-]",
		Short: "Print the token stream of a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, _, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			logger := newLogger(cmd.ErrOrStderr(), global.debug)
			lexOpts := []lexer.LexerOpt{lexer.WithLogger(logger)}
			if global.debug {
				lexOpts = append(lexOpts, lexer.WithDebugDetailed())
			}

			// Tokens scanned before a lex error are still printed
			tokens, lexErr := lexer.Tokenize(source, lexOpts...)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, tok := range tokens {
				text := fmt.Sprintf("%q", tok.Text)
				if tok.Type == lexer.EOF {
					text = ""
				}
				_, _ = fmt.Fprintf(tw, "%s-%s\t%s\t%s\t%s\n",
					tok.Span.Start, tok.Span.End, tok.Type.Class(), tok.Type, text)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			return lexErr
		},
	}
}
