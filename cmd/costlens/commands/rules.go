package commands

import (
	"fmt"

	"github.com/costlens/costlens/pkg/rules"
	"github.com/spf13/cobra"
)

var RulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the anti-pattern rule registry",
	Run: func(cmd *cobra.Command, args []string) {
		for _, rule := range rules.Registry() {
			fmt.Printf("%-9s %-8s %-12s %-16s %s\n",
				rule.ID, rule.Severity, rule.Service, rule.Category, rule.Name)
		}
	},
}
