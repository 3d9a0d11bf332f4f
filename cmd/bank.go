package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/feaquiz/internal/bank"
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Validate the question bank and list its contents",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := bank.Load(resolveBankPath(cmd))
		if err != nil {
			return fmt.Errorf("load question bank: %w", err)
		}
		domain, _ := cmd.Flags().GetString("domain")
		return printBank(cmd.OutOrStdout(), b, domain)
	},
}

func init() {
	bankCmd.Flags().String("domain", "", "List the questions of one domain (or \"all\")")
}

func printBank(w io.Writer, b *bank.Bank, domain string) error {
	fmt.Fprintf(w, "Question bank %s: %d questions\n", b.Version(), b.Len())
	for _, d := range bank.Domains {
		fmt.Fprintf(w, "  %-12s %3d\n", d, b.Count(d))
	}
	if domain == "" {
		return nil
	}

	set := b.Filter(bank.ParseDomain(domain))
	if set.Fallback {
		return fmt.Errorf("no questions tagged %q", domain)
	}
	fmt.Fprintln(w)
	for _, q := range set.Questions {
		fmt.Fprintf(w, "%s [%s] %s\n", q.ID, q.Domain, q.Prompt)
		for i, opt := range q.Options {
			mark := " "
			if i == q.CorrectOption {
				mark = "*"
			}
			fmt.Fprintf(w, "   %s %c) %s\n", mark, 'A'+i, opt)
		}
	}
	return nil
}
