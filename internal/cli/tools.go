package cli

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var toolsCategory string

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tool catalog",
	Long: `Print every tool the catalog can resolve, including overlay entries.

Examples:
  toolscout tools
  toolscout tools --category memory-forensics`,
	RunE: toolsCommand,
}

func init() {
	toolsCmd.Flags().StringVar(&toolsCategory, "category", "", "Only list tools in this category")
	rootCmd.AddCommand(toolsCmd)
}

func toolsCommand(cmd *cobra.Command, args []string) error {
	rt := runtimeFrom(cmd)
	out := cmd.OutOrStdout()

	reg, _, err := loadRegistry(rt.cfg.Catalog.Dir, rt.log)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Tool", "Category", "Priority", "Aliases", "Repository"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	count := 0
	for _, e := range reg.Entries() {
		if toolsCategory != "" && !strings.EqualFold(e.Category, toolsCategory) {
			continue
		}
		table.Append([]string{e.Name, e.Category, string(e.Priority), strings.Join(e.Aliases, ", "), e.RepositoryURL})
		count++
	}

	if count == 0 {
		fmt.Fprintf(out, "No tools in category %q.\n", toolsCategory)
		return nil
	}
	table.Render()
	fmt.Fprintf(out, "\n%d tools, catalog %s\n", count, reg.Version())
	return nil
}
