package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/carcosa-lang/yellow"
	"github.com/carcosa-lang/yellow/pkgs/ast"
	"github.com/carcosa-lang/yellow/pkgs/lexer"
	"github.com/carcosa-lang/yellow/pkgs/parser"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "yellow",
	Short: "Run and inspect Yellow scripts",
	Long: `yellow is a developer CLI around the Yellow interpreter: it runs a
script through a fresh interpreter, drives a line-oriented REPL against a
single persistent interpreter, or dumps a script's tokens and AST without
ever touching sanity.`,
}

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Execute a Yellow script and print its transcript",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start a line-oriented REPL against a single interpreter",
	Args:  cobra.NoArgs,
	RunE:  runRepl,
}

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Print a script's token list and parsed AST",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	rootCmd.AddCommand(runCmd, replCmd, dumpCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	interp := yellow.New()
	transcript := interp.RunCode(string(content))
	fmt.Print(transcript)

	if interp.GetSanity() <= 0 {
		os.Exit(1)
	}
	return nil
}

func runRepl(cmd *cobra.Command, args []string) error {
	interp := yellow.New()
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Fprintln(os.Stderr, "yellow repl - one interpreter, state persists across lines")
	for {
		fmt.Fprint(os.Stderr, "> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		fmt.Print(interp.RunCode(line))
		fmt.Fprintf(os.Stderr, "[sanity: %.2f]\n", interp.GetSanity())
	}
	return scanner.Err()
}

func runDump(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	tokens := lexer.Tokenize(string(content))
	fmt.Println("-- tokens --")
	for _, t := range tokens {
		fmt.Println(t.String())
	}

	stmts, err := parser.Parse(tokens)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}
	fmt.Println("-- ast --")
	fmt.Println(ast.Dump(stmts))
	return nil
}
