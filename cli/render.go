package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/morikuni/failure/v2"
)

var plainFlag bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&plainFlag, "plain", false, "Print raw markdown without rendering or paging")
}

func isTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// render turns report markdown into styled terminal output.
func render(md string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", failure.Wrap(err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return "", failure.Wrap(err)
	}
	return out, nil
}

// show prints a report, styled when stdout is a terminal.
func show(md string) error {
	if plainFlag || !isTerminal() {
		fmt.Print(md)
		return nil
	}
	out, err := render(md)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// page displays a report in the interactive pager, falling back to
// plain output when stdout is not a terminal.
func page(md string) error {
	if plainFlag || !isTerminal() {
		fmt.Print(md)
		return nil
	}
	out, err := render(md)
	if err != nil {
		return err
	}
	return runPager(out)
}
