package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gregory-lime/jacques-context-manager/internal/cli"
	"github.com/gregory-lime/jacques-context-manager/internal/skills"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "List installed skill descriptors and their context overhead",
	RunE:  runSkills,
}

func init() {
	rootCmd.AddCommand(skillsCmd)
}

func runSkills(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	roots := cfg.Skills.Roots
	if len(roots) == 0 {
		roots = skills.DefaultRoots()
	}
	scanner := skills.NewScanner(roots)

	count, tokens := scanner.Overhead()
	paths := scanner.Descriptors()

	if flagJSON {
		type descriptor struct {
			Path        string `json:"path"`
			Description string `json:"description,omitempty"`
		}
		out := struct {
			Count       int          `json:"count"`
			Tokens      int          `json:"tokens"`
			Descriptors []descriptor `json:"descriptors"`
		}{Count: count, Tokens: tokens}
		for _, p := range paths {
			out.Descriptors = append(out.Descriptors, descriptor{p, skills.Description(p)})
		}
		return printJSON(out)
	}

	fmt.Printf("%d skill(s), %s tokens of overhead\n", count, cli.FormatTokens(tokens))
	if len(paths) == 0 {
		return nil
	}
	table := cli.Table{
		Title:   "Skills",
		Headers: []string{"Skill", "Description"},
	}
	for _, p := range paths {
		name := filepath.Base(filepath.Dir(p))
		desc := skills.Description(p)
		if len(desc) > 60 {
			desc = desc[:60] + "…"
		}
		table.Rows = append(table.Rows, []string{name, desc})
	}
	fmt.Println(cli.RenderTable(table))
	return nil
}
